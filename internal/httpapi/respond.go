package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"tubetrack/internal/domain"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	body, err := encode(envelope{Success: true, Data: data})
	if err != nil {
		writeError(w, domain.Fetchf("Failed to encode response"))
		return
	}
	writeBody(w, status, body)
}

// statusOf maps an operation error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	msg := "Internal error"
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	body, _ := encode(envelope{Success: false, Error: msg})
	writeBody(w, statusOf(err), body)
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Validationf("invalid request body")
	}
	return nil
}

// pathParam reads a URL parameter as text. chi matches against the escaped
// path when it differs from the default encoding, so such values are
// unescaped here.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// intParam reads a numeric URL parameter.
func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, domain.Validationf("%s must be a number", name)
	}
	return n, nil
}

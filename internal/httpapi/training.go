package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tubetrack/internal/domain"
)

func (s *Server) listMonths(r *http.Request) (any, error) {
	return s.training.ListMonths(r.Context())
}

func (s *Server) getMonth(r *http.Request) (any, error) {
	return s.training.GetMonth(r.Context(), chi.URLParam(r, "monthId"))
}

func (s *Server) getStats(r *http.Request) (any, error) {
	return s.training.GetProgressStats(r.Context(), chi.URLParam(r, "monthId"))
}

type toggleRequest struct {
	Completed bool `json:"completed"`
}

func (s *Server) toggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	day, err := intParam(r, "day")
	if err != nil {
		writeError(w, err)
		return
	}
	index, err := intParam(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	var req toggleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	d, err := s.training.ToggleChecklistItem(r.Context(), chi.URLParam(r, "monthId"), day, index, req.Completed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, d)
}

type noteRequest struct {
	Note string `json:"note"`
}

func (s *Server) setDayNote(w http.ResponseWriter, r *http.Request) {
	day, err := intParam(r, "day")
	if err != nil {
		writeError(w, err)
		return
	}
	var req noteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	d, err := s.training.SetDayNote(r.Context(), chi.URLParam(r, "monthId"), day, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, d)
}

func (s *Server) resetDay(w http.ResponseWriter, r *http.Request) {
	day, err := intParam(r, "day")
	if err != nil {
		writeError(w, err)
		return
	}
	d, err := s.training.ResetDay(r.Context(), chi.URLParam(r, "monthId"), day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, d)
}

type seedResponse struct {
	Months  int    `json:"months"`
	Message string `json:"message"`
}

// seed writes the curriculum and makes sure the dashboard collections exist.
func (s *Server) seed(w http.ResponseWriter, r *http.Request) {
	n, err := s.training.Seed(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.videos.EnsureCollections(r.Context(), domain.ToWatchCollection, domain.RewatchCollection); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, seedResponse{
		Months:  n,
		Message: "Training data seeded",
	})
}

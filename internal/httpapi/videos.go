package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tubetrack/internal/domain"
	"tubetrack/internal/service"
)

func (s *Server) listCollections(r *http.Request) (any, error) {
	return s.videos.ListCollections(r.Context())
}

func (s *Server) getCollection(r *http.Request) (any, error) {
	return s.videos.GetCollection(r.Context(), chi.URLParam(r, "id"))
}

func (s *Server) listLinks(r *http.Request) (any, error) {
	links, err := s.videos.ListAllLinks(r.Context())
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	tab := domain.Tab(q.Get("tab"))
	if tab != "" && tab != domain.TabToWatch && tab != domain.TabRewatch {
		return nil, domain.Validationf("unknown tab %q", tab)
	}
	return service.FilterLinks(links, tab, q.Get("category")), nil
}

type createCollectionRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := s.videos.CreateCollection(r.Context(), req.ID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

type addLinkRequest struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

func (s *Server) addLink(w http.ResponseWriter, r *http.Request) {
	var req addLinkRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	link, err := s.videos.AddLink(r.Context(), chi.URLParam(r, "id"), req.URL, req.Title, req.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, link)
}

func (s *Server) deleteLink(w http.ResponseWriter, r *http.Request) {
	if err := s.videos.DeleteLink(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "linkId")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

type moveLinkRequest struct {
	To string `json:"to"`
}

func (s *Server) moveLink(w http.ResponseWriter, r *http.Request) {
	var req moveLinkRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.To == "" {
		writeError(w, domain.Validationf("destination collection is required"))
		return
	}
	if err := s.videos.MoveLink(r.Context(), chi.URLParam(r, "id"), req.To, chi.URLParam(r, "linkId")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

type setCategoryRequest struct {
	Category string `json:"category"`
}

func (s *Server) setLinkCategory(w http.ResponseWriter, r *http.Request) {
	var req setCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	link, err := s.videos.SetLinkCategory(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "linkId"), req.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, link)
}

type setWatchedRequest struct {
	Watched bool `json:"watched"`
}

func (s *Server) setLinkWatched(w http.ResponseWriter, r *http.Request) {
	var req setWatchedRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	link, err := s.videos.SetLinkWatched(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "linkId"), req.Watched)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, link)
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) addCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	cats, err := s.videos.AddCategory(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, cats)
}

func (s *Server) renameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.videos.RenameCategory(r.Context(), chi.URLParam(r, "id"), pathParam(r, "name"), req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.videos.DeleteCategory(r.Context(), chi.URLParam(r, "id"), pathParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (s *Server) backfill(w http.ResponseWriter, r *http.Request) {
	report, err := s.videos.BackfillUncategorized(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

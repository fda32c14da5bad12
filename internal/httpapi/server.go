// Package httpapi serves the collection and training operations as a JSON
// API. GET responses are kept in the page cache until an operation
// invalidates the page they belong to.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"tubetrack/internal/cache"
	"tubetrack/internal/domain"
	"tubetrack/internal/metrics"
	"tubetrack/internal/service"
)

// Settings are the presentation preferences served at /api/settings.
type Settings struct {
	Theme string `json:"theme"`
}

// Server routes API requests to the services.
type Server struct {
	videos   *service.VideoService
	training *service.TrainingService
	pages    cache.Pages
	metrics  metrics.Recorder
	settings Settings
	log      logrus.FieldLogger

	metricsHandler http.Handler
	router         chi.Router
}

// Option customises a Server.
type Option func(*Server)

// WithMetrics records request metrics and serves h at /metrics.
func WithMetrics(rec metrics.Recorder, h http.Handler) Option {
	return func(s *Server) {
		s.metrics = rec
		s.metricsHandler = h
	}
}

// NewServer builds the router.
func NewServer(videos *service.VideoService, training *service.TrainingService, pages cache.Pages, settings Settings, logger logrus.FieldLogger, opts ...Option) *Server {
	s := &Server{
		videos:   videos,
		training: training,
		pages:    pages,
		metrics:  metrics.Noop{},
		settings: settings,
		log:      logger.WithField("component", "httpapi"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", func(w http.ResponseWriter, _ *http.Request) {
			writeData(w, http.StatusOK, s.settings)
		})

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", s.cached(staticPage(cache.DashboardPage), s.listCollections))
			r.Post("/", s.createCollection)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.cached(collectionPage, s.getCollection))
				r.Post("/links", s.addLink)
				r.Delete("/links/{linkId}", s.deleteLink)
				r.Post("/links/{linkId}/move", s.moveLink)
				r.Put("/links/{linkId}/category", s.setLinkCategory)
				r.Put("/links/{linkId}/watched", s.setLinkWatched)
				r.Post("/categories", s.addCategory)
				r.Put("/categories/{name}", s.renameCategory)
				r.Delete("/categories/{name}", s.deleteCategory)
			})
		})
		r.Get("/links", s.cached(staticPage(cache.DashboardPage), s.listLinks))

		r.Route("/training", func(r chi.Router) {
			r.Get("/", s.cached(staticPage(cache.TrainingPage), s.listMonths))
			r.Route("/{monthId}", func(r chi.Router) {
				r.Get("/", s.cached(monthPage, s.getMonth))
				r.Get("/stats", s.cached(monthPage, s.getStats))
				r.Put("/days/{day}/checklist/{index}", s.toggleChecklistItem)
				r.Put("/days/{day}/note", s.setDayNote)
				r.Post("/days/{day}/reset", s.resetDay)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/backfill", s.backfill)
			r.Post("/seed", s.seed)
		})
	})
	return r
}

// logRequests logs each request and records its metrics under the matched
// route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		s.metrics.IncRequestsTotal(route, ww.Status())
		s.metrics.ObserveRequestDuration(route, elapsed)

		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"route":      route,
			"status":     ww.Status(),
			"duration":   elapsed,
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("Request served")
	})
}

type pageFunc func(r *http.Request) string

func staticPage(page string) pageFunc {
	return func(*http.Request) string { return page }
}

func collectionPage(r *http.Request) string {
	return cache.CollectionPage(chi.URLParam(r, "id"))
}

func monthPage(r *http.Request) string {
	return cache.MonthPage(chi.URLParam(r, "monthId"))
}

// cached serves a GET from the page cache. On a miss the handler runs and
// a successful response is stored under the page, with the route and query
// string as the variant.
func (s *Server) cached(page pageFunc, load func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := page(r)
		variant := r.URL.Path + "?" + r.URL.RawQuery
		body, gen, ok := s.pages.Get(p, variant)
		if ok {
			s.metrics.IncCacheHits()
			writeBody(w, http.StatusOK, body)
			return
		}
		s.metrics.IncCacheMisses()

		data, err := load(r)
		if err != nil {
			writeError(w, err)
			return
		}
		body, err = encode(envelope{Success: true, Data: data})
		if err != nil {
			s.log.WithError(err).Error("Failed to encode response")
			writeError(w, domain.Fetchf("Failed to encode response"))
			return
		}
		s.pages.Set(p, variant, gen, body)
		writeBody(w, http.StatusOK, body)
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

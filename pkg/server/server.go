// Package server exposes the renderer, field discovery and template store
// over HTTP.
//
// # Routes
//
//	POST /v1/render                    render an ad-hoc schema to PNG
//	POST /v1/fields                    discover the fields of an ad-hoc schema
//	GET  /v1/templates                 list templates
//	GET  /v1/templates/{id}            fetch one template
//	PUT  /v1/templates/{id}            create or replace a template
//	DELETE /v1/templates/{id}          remove a template
//	POST /v1/templates/{id}/render     render a template and record an instance
//	GET  /v1/templates/{id}/fields     discover a template's fields
//	GET  /v1/templates/{id}/csv        CSV header row for bulk data entry
//	GET  /v1/templates/{id}/instances  list recorded instances
//	GET  /healthz                      liveness and build info
//
// Errors are JSON objects {"code": ..., "error": ...}. INVALID_* codes map
// to 400, NOT_FOUND to 404, RESOURCE_EXHAUSTED to 413 and everything else
// to 500.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/labelpress/pkg/pipeline"
	"github.com/matzehuels/labelpress/pkg/store"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 10 << 20

// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
const ShutdownTimeout = 10 * time.Second

// Server serves the HTTP API.
type Server struct {
	runner       *pipeline.Runner
	store        store.Store
	logger       *log.Logger
	maxBodyBytes int64
}

// New returns a server rendering with runner and persisting to st.
// Template runs record instances through the runner, which is given st
// when it has no store of its own.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil, logger)
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	if runner.Store == nil {
		runner.Store = st
	}
	return &Server{
		runner:       runner,
		store:        st,
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Post("/fields", s.handleFields)

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.handleListTemplates)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTemplate)
				r.Put("/", s.handlePutTemplate)
				r.Delete("/", s.handleDeleteTemplate)
				r.Post("/render", s.handleRenderTemplate)
				r.Get("/fields", s.handleTemplateFields)
				r.Get("/csv", s.handleTemplateCSV)
				r.Get("/instances", s.handleListInstances)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, notFound("no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// logRequests logs one line per request at info, or warn for 5xx.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logf := s.logger.Info
		if status >= 500 {
			logf = s.logger.Warn
		}
		logf("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

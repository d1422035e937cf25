// Package chi serves the health, status and metrics endpoints of the
// scheduled daemon.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fwojciec/curator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StatusSource reports on the runs the daemon has finished.
type StatusSource interface {
	Last() *curator.RunState
	Runs() int
}

// Status is the /status response body.
type Status struct {
	Runs  int               `json:"runs"`
	Last  *curator.RunState `json:"last"`
	Error string            `json:"error,omitempty"`
}

// Server is the daemon's HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	status StatusSource
}

// NewServer creates a Server on addr. A nil metrics handler leaves
// /metrics unrouted.
func NewServer(addr string, status StatusSource, metrics http.Handler) *Server {
	s := &Server{
		router: chi.NewRouter(),
		status: status,
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(15 * time.Second))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/status", s.handleStatus)
	if metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", metrics)
	}

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until Shutdown. It returns nil after a graceful
// shutdown.
func (s *Server) ListenAndServe() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := Status{Runs: s.status.Runs(), Last: s.status.Last()}
	if resp.Last != nil && resp.Last.Failure != nil {
		resp.Error = curator.ErrorMessage(resp.Last.Failure)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

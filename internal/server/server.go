// Package server hosts registered functions behind an HTTP mux alongside the
// operational endpoints (health, readiness, Prometheus metrics) and the
// static frontend.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"research-assistant/internal/common/config"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/common/observability"
	"research-assistant/internal/function"
)

type Server struct {
	cfg        config.ServerConfig
	mux        *http.ServeMux
	logger     logger.Logger
	obs        *observability.Observability
	httpServer *http.Server
}

func New(cfg config.ServerConfig, log logger.Logger, obs *observability.Observability) *Server {
	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		logger: log.WithFields(map[string]interface{}{"component": "server"}),
		obs:    obs,
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)
	s.mux.Handle("/metrics", promhttp.Handler())
	if cfg.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	s.httpServer = &http.Server{
		Addr:    cfg.Addr(),
		Handler: s.mux,
	}
	return s
}

// Handle mounts a function at path, accepting only the given HTTP method.
// Requests pass through the full pipeline: request ID, panic recovery,
// metrics, and access logging.
func (s *Server) Handle(name, method, path string, h function.Handler) {
	s.mux.Handle(path, s.pipeline(name, method, h))
}

// Router exposes the assembled mux, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.mux
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.cfg.Addr()})
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests within the given context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, "healthy")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, "ready")
}

func writeStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

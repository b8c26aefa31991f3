// Package ops serves the operational endpoints: health, stats and
// Prometheus metrics. It carries no engine API.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/pulse/pkg/logger"
	"github.com/okian/pulse/pkg/metrics"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// StatsProvider reports service statistics for /stats and /healthz.
type StatsProvider interface {
	Stats() map[string]any
}

// Server is the ops HTTP listener.
type Server struct {
	stats  StatsProvider
	router chi.Router
	logger logger.Logger
}

// NewServer builds the router. stats may be nil.
func NewServer(stats StatsProvider) *Server {
	s := &Server{
		stats:  stats,
		logger: logger.Get().Named("ops"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Serve listens on addr until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServe, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info(ctx, "ops listener started", logger.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return fmt.Errorf("%w: %v", ErrServe, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%w: %v", ErrServe, err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%w: %v", ErrServe, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	metrics.UpdateSystemStats()
	stats := map[string]any{}
	if s.stats != nil {
		stats = s.stats.Stats()
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

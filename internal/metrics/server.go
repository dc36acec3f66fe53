package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"engagelayer/internal/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultAddr = ":9091"

// Server exposes /metrics and /health for the long-running commands.
type Server struct {
	Logger *slog.Logger
	Config *config.Config

	server *http.Server
}

func (s *Server) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "metrics.Server")

	addr := s.Config.MetricsAddr
	if addr == "" {
		addr = defaultAddr
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
	}
	return nil
}

func (s *Server) Run(ctx context.Context) error {
	s.Logger.Info("Starting metrics server", "addr", s.server.Addr)

	go func() {
		<-ctx.Done()
		s.server.Shutdown(context.TODO()) //nolint:errcheck
	}()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Package api serves read-only JSON views of the feed, points and the
// current permission over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"engagelayer/internal/config"
	"engagelayer/internal/core"
	"engagelayer/internal/feed"
	"engagelayer/internal/permission"
	"engagelayer/internal/points"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
)

type contextKey string

const loggerContextKey = contextKey("logger")

const defaultAddr = ":8888"

type Server struct {
	Logger *slog.Logger
	Config *config.Config

	Feed       *feed.Synchronizer
	Points     *points.View
	Permission *permission.Manager

	server *http.Server
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) Run(ctx context.Context) error {
	s.Logger.Info("Starting API server", "addr", s.server.Addr)

	go func() {
		<-ctx.Done()
		// TODO: figure out a good context here, Run's ctx is cancelled.
		s.server.Shutdown(context.TODO()) //nolint:errcheck
	}()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "api.Server")

	addr := s.Config.APIAddr
	if addr == "" {
		addr = defaultAddr
	}

	r := chi.NewMux()

	logger := func(ctx context.Context) *slog.Logger {
		return ctx.Value(loggerContextKey).(*slog.Logger)
	}

	r.Use(
		// json content type
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				next.ServeHTTP(w, r)
			})
		},

		// Logging
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger := s.Logger.With("method", r.Method, "path", r.URL.Path)
				ctx := context.WithValue(r.Context(), loggerContextKey, logger)
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		},

		// Logging
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				sw := &statusWriter{ResponseWriter: w}

				next.ServeHTTP(sw, r)

				duration := time.Since(start)
				logger(r.Context()).Info("request", "duration", duration, "status", sw.status)
			})
		},

		// Recovering panics and logging
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if err := recover(); err != nil {
						logger(r.Context()).Error("panic recovered", "error", err)
						http.Error(w, `{"message": "Internal Server Error"}`, http.StatusInternalServerError)
					}
				}()
				next.ServeHTTP(w, r)
			})
		},
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/v1/feed", s.getFeed)
	r.Get("/v1/points/{address}", s.getPoints)
	r.Get("/v1/permission", s.getPermission)

	s.server = &http.Server{
		Handler:           r,
		Addr:              addr,
		ReadHeaderTimeout: time.Second,
		WriteTimeout:      10 * time.Second,
		ReadTimeout:       time.Second,
		IdleTimeout:       time.Second,
	}
	return nil
}

func (s *Server) getFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := s.Feed.Sync(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, posts)
}

func (s *Server) getPoints(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "address")
	if !common.IsHexAddress(raw) {
		writeError(w, http.StatusBadRequest, errors.New("invalid address"))
		return
	}

	value, err := s.Points.Points(r.Context(), common.HexToAddress(raw))
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, map[string]string{
		"address": common.HexToAddress(raw).Hex(),
		"points":  value.String(),
	})
}

// permissionView is the wire shape of a permission record. The opaque wallet
// context never leaves the process.
type permissionView struct {
	Signer      string            `json:"signer"`
	Scope       []core.ActionKind `json:"scope"`
	SpendingCap string            `json:"spendingCapWei"`
	GrantedAt   int64             `json:"grantedAt"`
	Expiry      int64             `json:"expiry"`
	Pending     int               `json:"pendingActions"`
}

func (s *Server) getPermission(w http.ResponseWriter, r *http.Request) {
	p, err := s.Permission.Current(r.Context())
	if errors.Is(err, core.ErrNoPermission) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, permissionView{
		Signer:      p.Signer.Hex(),
		Scope:       p.Scope,
		SpendingCap: p.SpendingCap.String(),
		GrantedAt:   p.GrantedAt,
		Expiry:      p.Expiry,
		Pending:     len(p.PendingActions),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"message": "Internal Server Error"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": err.Error()}) //nolint:errcheck
}

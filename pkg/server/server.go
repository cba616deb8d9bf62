package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/guorui-lawtech/tmscan/pkg/config"
	"github.com/guorui-lawtech/tmscan/pkg/data"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
)

// Server is the local API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewRouter wires middleware and routes. keys may be nil when the
// config does not require an access key.
func NewRouter(cfg *config.Config, src data.Source, keys HashLoader, logger *slog.Logger) http.Handler {
	return newRouter(NewHandler(cfg, src), cfg.Server.RequireKey, keys, logger)
}

func newRouter(h *Handler, requireKey bool, keys HashLoader, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(Metrics())

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/settings", h.settings)

		r.Group(func(r chi.Router) {
			if requireKey {
				r.Use(AccessKey(keys))
			}
			r.Get("/evaluate", h.evaluate)
			r.Get("/trademarks", h.trademarks)
			r.Get("/trademarks/{id}", h.trademark)
			r.Get("/export", h.export)
		})
	})

	return r
}

// New creates the server listening on 127.0.0.1 at the configured port.
func New(cfg *config.Config, src data.Source, keys HashLoader, logger *slog.Logger) (*Server, error) {
	if cfg == nil || src == nil || logger == nil {
		return nil, errors.New("config, source and logger are required")
	}
	if cfg.Server.RequireKey && keys == nil {
		return nil, errors.New("access key store required when require_key is set")
	}

	return &Server{
		httpServer: &http.Server{
			Addr:           fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port),
			Handler:        NewRouter(cfg, src, keys, logger),
			ReadTimeout:    serverTimeoutSeconds * time.Second,
			WriteTimeout:   serverTimeoutSeconds * time.Second,
			MaxHeaderBytes: 1 << serverMaxHeaderBytes,
		},
		logger: logger,
	}, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server started", "address", "http://"+s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
		defer cancel()

		s.logger.Info("shutting down server")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error shutting down server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

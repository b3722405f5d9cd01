// Package api serves player metrics over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/pable/go-tennis-metrics/internal/service"
	"github.com/pable/go-tennis-metrics/pkg/logger"
	"github.com/pable/go-tennis-metrics/pkg/metrics"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr           string
	RateLimit      float64 // requests per second across all clients; 0 disables
	Burst          int
	AllowedOrigins []string
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{Addr: ":3000", RateLimit: 20, Burst: 40, AllowedOrigins: []string{"*"}}
}

// Server is the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	cfg        Config

	analyzer *service.Analyzer
	metrics  *metrics.Manager
	log      logger.Logger
	limiter  *rate.Limiter
}

// NewServer builds the router. m may be nil, in which case /metrics serves an
// empty registry.
func NewServer(cfg Config, analyzer *service.Analyzer, m *metrics.Manager, log logger.Logger) *Server {
	if m == nil {
		m = metrics.NewManager(metrics.WithMetricsEnabled(false))
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		router:   chi.NewRouter(),
		cfg:      cfg,
		analyzer: analyzer,
		metrics:  m,
		log:      log.Named("api"),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.observe)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "API server starting", logger.String("addr", s.cfg.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("serve %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info(shutdownCtx, "API server stopping")
	return s.httpServer.Shutdown(shutdownCtx)
}

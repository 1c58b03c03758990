// Package api serves the latest portfolio, on-demand evaluation, health
// checks and Prometheus metrics over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/rustam-sa/nba-01/internal/config"
	"github.com/rustam-sa/nba-01/internal/metrics"
	"github.com/rustam-sa/nba-01/internal/pipeline"
)

// Options configures a Server
type Options struct {
	ServiceName string
	Version     string
	Server      config.ServerConfig
	Metrics     config.MetricsConfig
	Pipeline    pipeline.Config
	Store       *RunStore
	DB          DatabasePinger
	Logger      *logrus.Logger
}

// Server is the HTTP API
type Server struct {
	serviceName string
	version     string
	cfg         config.ServerConfig
	metrics     config.MetricsConfig
	pipeline    pipeline.Config
	store       *RunStore
	db          DatabasePinger
	logger      *logrus.Logger
	router      chi.Router
	server      *http.Server

	mu    sync.RWMutex
	ready bool
}

// NewServer creates a server and builds its routes
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Store == nil {
		opts.Store = NewRunStore(nil)
	}
	if opts.Server.Address == "" {
		opts.Server.Address = ":8080"
	}

	s := &Server{
		serviceName: opts.ServiceName,
		version:     opts.Version,
		cfg:         opts.Server,
		metrics:     opts.Metrics,
		pipeline:    opts.Pipeline,
		store:       opts.Store,
		db:          opts.DB,
		logger:      opts.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.metrics.Enabled {
		path := s.metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/runs/latest", s.handleLatestRun)
		r.Get("/runs/latest/parlays", s.handleLatestParlays)
		r.Post("/evaluate", s.handleEvaluate)
	})

	return r
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store returns the run store the server reads from
func (s *Server) Store() *RunStore {
	return s.store
}

// Start serves in the background until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.router,
		ReadTimeout:  seconds(s.cfg.ReadTimeoutSeconds, 15),
		WriteTimeout: seconds(s.cfg.WriteTimeoutSeconds, 30),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"address": s.cfg.Address,
			"service": s.serviceName,
		}).Info("API server starting")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			s.logger.WithError(err).Warn("API server shutdown")
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("API server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func seconds(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}

func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  chimiddleware.GetReqID(r.Context()),
			}).Debug("HTTP request")
		})
	}
}

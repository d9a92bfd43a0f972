// Package server exposes the diagram pipeline and store over HTTP.
//
// # Architecture
//
// The server is a thin JSON facade: handlers decode a request, call the
// same [pipeline.Runner] and [store.Store] methods the CLI calls, and
// encode the result. Pipeline stage routes live under /api/v1 next to
// diagram CRUD; /healthz and /metrics serve liveness checks and
// Prometheus metrics.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//		return err
//	}
//	srv, err := server.FromConfig(ctx, cfg, logger)
//	if err != nil {
//		return err
//	}
//	defer srv.Close()
//	return srv.Run(ctx)
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/scrawl/pkg/ai"
	"github.com/matzehuels/scrawl/pkg/cache"
	"github.com/matzehuels/scrawl/pkg/config"
	"github.com/matzehuels/scrawl/pkg/pipeline"
	"github.com/matzehuels/scrawl/pkg/store"
)

// shutdownTimeout bounds how long Run waits for in-flight requests when
// the context is canceled.
const shutdownTimeout = 15 * time.Second

// Server serves the diagram API.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	cfg    config.ServerConfig
	logger *log.Logger
}

// New assembles a server from its collaborators. A nil store disables
// the /api/v1/diagrams routes; a nil logger falls back to log.Default.
func New(runner *pipeline.Runner, st store.Store, cfg config.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		store:  st,
		cfg:    cfg,
		logger: logger,
	}
}

// FromConfig builds a server and its collaborators from configuration:
// cache backend, diagram store, and model client. The model client is
// created even when the API key environment variable is unset; generate
// requests then fail with AI_KEY_MISSING while layout and export keep
// working. Prometheus metrics are registered as a side effect.
func FromConfig(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	c, err := buildCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	client := ai.NewClient(ai.Config{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey(),
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	}, nil)
	gen := ai.NewGenerator(client, logger)

	st, err := buildStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	RegisterMetrics()
	runner := pipeline.NewRunner(c, nil, gen, logger)
	return New(runner, st, cfg.Server, logger), nil
}

func buildCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	if cfg.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	dir := cfg.Dir
	if dir == "" {
		d, err := cache.DefaultDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

func buildStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if cfg.Backend == "mongo" {
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
	}
	return store.NewFileStore(cfg.Dir)
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/layout", s.handleLayout)
		r.Post("/export", s.handleExport)

		if s.store != nil {
			r.Route("/diagrams", func(r chi.Router) {
				r.Post("/", s.handleDiagramCreate)
				r.Get("/", s.handleDiagramList)
				r.Get("/{id}", s.handleDiagramGet)
				r.Put("/{id}", s.handleDiagramUpdate)
				r.Delete("/{id}", s.handleDiagramDelete)
			})
		}
	})

	return r
}

// logRequests records every request in the log and in the HTTP metrics.
// The route label uses the chi pattern (e.g. /api/v1/diagrams/{id}) so
// metric cardinality stays bounded.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		httpSeconds.WithLabelValues(route).Observe(elapsed.Seconds())

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Run starts the HTTP server and blocks until ctx is canceled or the
// listener fails. On cancellation, in-flight requests get up to
// shutdownTimeout to finish.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases the runner's cache and the store.
func (s *Server) Close() error {
	var errs []error
	if s.runner != nil {
		errs = append(errs, s.runner.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return stderrors.Join(errs...)
}

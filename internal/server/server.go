package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cogc-planning/bulletin/internal/api"
	"github.com/cogc-planning/bulletin/internal/bulletin"
	"github.com/cogc-planning/bulletin/internal/catalog"
	"github.com/cogc-planning/bulletin/internal/config"
	"github.com/cogc-planning/bulletin/internal/providers"
	"github.com/cogc-planning/bulletin/internal/server/endpoints"
	"github.com/cogc-planning/bulletin/internal/svcctx"
)

// Server is the bulletin HTTP server. It owns the provider registry, the
// catalog cache and the parse pipeline, and rebuilds the pipeline when the
// configuration changes on disk.
type Server struct {
	httpServer   *http.Server
	registry     *providers.Registry
	configMgr    *config.Manager
	catalogStore *catalog.PostgresStore
	catalogCache *catalog.Cache
	logger       *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port int
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}

	// Create provider registry
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)
	registry.Reload(cfg.ConfigManager.Get().ToProviderRegistryConfig())

	s := &Server{
		registry:  registry,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}

	// Watch for config changes: reload providers and swap the pipeline.
	cfg.ConfigManager.OnChange(func(c *config.Config) {
		s.registry.Reload(c.ToProviderRegistryConfig())
		s.rebuildPipeline(c)
		s.logger.Info("provider registry and pipeline reloaded from config")
	})

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      s.withServices(mux),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs. A missing or unreachable catalog database is not fatal: the
// cache serves the built-in fallback subset and /ready reports degraded.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	cfg := s.configMgr.Get()

	// Connect the catalog store
	if dsn := config.ResolveEnvVars(cfg.Catalog.DSN); dsn != "" {
		store, err := catalog.NewPostgresStore(ctx, dsn)
		if err != nil {
			s.logger.Warn("catalog database unavailable, serving built-in fallback", "error", err)
		} else {
			s.catalogStore = store
		}
	} else {
		s.logger.Info("no catalog DSN configured, serving built-in fallback")
	}

	var store catalog.Store
	if s.catalogStore != nil {
		store = s.catalogStore
	}
	s.catalogCache = catalog.NewCache(store, cfg.CatalogTTL(), s.logger)

	// Create services struct for context enrichment
	s.services = &svcctx.Services{
		Catalog:   s.catalogCache,
		Registry:  s.registry,
		ConfigMgr: s.configMgr,
		Logger:    s.logger,
	}
	s.rebuildPipeline(cfg)

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// rebuildPipeline constructs the parse pipeline from the current config and
// provider registry, swapping in a fresh Services value. In-flight requests
// keep the Services pointer they were handed.
func (s *Server) rebuildPipeline(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.services == nil {
		return
	}

	var ocr providers.OCRProvider
	if name := cfg.Defaults.OCRProvider; name != "" {
		p, err := s.registry.GetOCR(name)
		if err != nil {
			s.logger.Warn("default OCR provider unavailable", "provider", name, "error", err)
		} else {
			ocr = p
		}
	}

	var llm providers.LLMClient
	if name := cfg.Defaults.LLMProvider; name != "" {
		c, err := s.registry.GetLLM(name)
		if err != nil {
			s.logger.Warn("default LLM provider unavailable", "provider", name, "error", err)
		} else {
			llm = c
		}
	}

	services := *s.services
	services.Pipeline = bulletin.NewPipeline(s.logger, ocr, llm, s.catalogCache, cfg.ToOptions())
	s.services = &services
}

// shutdown performs graceful shutdown of the HTTP server and closes the
// catalog store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.catalogStore != nil {
		s.catalogStore.Close()
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// CatalogCache returns the catalog cache.
// Returns nil if the server hasn't started yet.
func (s *Server) CatalogCache() *catalog.Cache {
	return s.catalogCache
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		s.mu.RLock()
		services := s.services
		s.mu.RUnlock()
		if services != nil {
			ctx = svcctx.WithServices(ctx, services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable if the catalog cache or pipeline aren't ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		ready := s.services != nil && s.services.Pipeline != nil && s.catalogCache != nil
		s.mu.RUnlock()
		if !ready {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}

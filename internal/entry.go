// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/sgk/internal/api"
	"github.com/starford/sgk/internal/cache"
	"github.com/starford/sgk/internal/grounding"
	"github.com/starford/sgk/internal/loader"
	"github.com/starford/sgk/internal/mcpserver"
	"github.com/starford/sgk/internal/search"
	"github.com/starford/sgk/internal/sse"
	"github.com/starford/sgk/internal/storage"
	"github.com/starford/sgk/internal/store"
	"github.com/starford/sgk/internal/watch"
)

// components are the long-lived services shared by both run modes.
type components struct {
	cfg    *Config
	logger *slog.Logger
	store  *store.Store
	close  func()
}

func setup(opts ...Option) (*components, error) {
	app := &application{logOutput: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_source", cfg.Content.Source),
		slog.String("content_path", cfg.Content.Path),
		slog.String("content_base_url", cfg.Content.BaseURL),
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	l := app.loader
	if l == nil {
		var err error
		if l, err = newLoader(cfg.Content); err != nil {
			return nil, fmt.Errorf("init loader: %w", err)
		}
	}

	kv, err := cache.Open(cfg.Cache.Backend, cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	closeFn := func() {}
	if c, ok := kv.(io.Closer); ok {
		closeFn = func() {
			if err := c.Close(); err != nil {
				logger.Warn("cache close failed", slog.String("error", err.Error()))
			}
		}
	}

	st := store.New(l, kv,
		store.WithLogger(logger),
		store.WithIndexOptions(search.WithQueryCache(cfg.Search.QueryCacheSize)),
	)
	return &components{cfg: cfg, logger: logger, store: st, close: closeFn}, nil
}

func newLoader(c ContentConfig) (loader.Loader, error) {
	switch c.Source {
	case SourceHTTP:
		return loader.NewHTTP(c.BaseURL, c.Manifest, &http.Client{Timeout: 30 * time.Second})
	default:
		fs, err := storage.NewFS(c.Path)
		if err != nil {
			return nil, err
		}
		return loader.NewFS(fs, c.Manifest), nil
	}
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	c, err := setup(opts...)
	if err != nil {
		return err
	}
	defer c.close()
	cfg, logger, st := c.cfg, c.logger, c.store

	// SSE broker relays every store transition.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	unsubscribe := st.Subscribe(broker.PublishState)
	defer unsubscribe()

	// Build API service and router.
	svc := api.NewService(st, api.Defaults{TopK: cfg.Search.TopK, MaxChars: cfg.Search.MaxContextChars})
	apiRouter := api.NewRouter(api.NewHandler(st, svc), cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", api.Live)
	r.Get("/health/ready", api.Ready(st))

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Load the corpus; the server answers NOT_READY until it completes.
	g.Go(func() error {
		st.Init(gCtx)
		return nil
	})

	// Reload on content changes.
	if cfg.Content.Source == SourceFS && cfg.Content.Watch {
		g.Go(func() error {
			return watch.Watch(gCtx, cfg.Content.Path, watch.Options{
				Logger:   logger,
				OnEvent:  broker.PublishContentEvent,
				OnChange: st.Reload,
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP loads the corpus and serves the MCP tools on stdio.
func RunMCP(ctx context.Context, opts ...Option) error {
	c, err := setup(append([]Option{WithLogOutput(os.Stderr)}, opts...)...)
	if err != nil {
		return err
	}
	defer c.close()

	c.store.Init(ctx)
	if s := c.store.State(); s.Status != store.StatusReady {
		c.logger.Warn("mcp: corpus unavailable, tools will report NO_SGK", slog.String("error", s.Error))
	}

	srv := mcpserver.New(c.store, grounding.Options{
		TopK:     c.cfg.Search.TopK,
		MaxChars: c.cfg.Search.MaxContextChars,
	})
	c.logger.Info("mcp: serving on stdio")
	return srv.ServeStdio()
}

// Check loads the corpus once and reports its status. It fails unless the
// store ends ready.
func Check(ctx context.Context, opts ...Option) (store.Summary, error) {
	c, err := setup(opts...)
	if err != nil {
		return store.Summary{}, err
	}
	defer c.close()

	c.store.Init(ctx)
	s := c.store.State().Summary()
	if s.Status != store.StatusReady {
		return s, fmt.Errorf("corpus not ready: %s", s.Error)
	}
	return s, nil
}

// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/clawmarks/internal/api"
	"github.com/starford/clawmarks/internal/index"
	"github.com/starford/clawmarks/internal/markservice"
	"github.com/starford/clawmarks/internal/mcpserver"
	"github.com/starford/clawmarks/internal/sse"
	"github.com/starford/clawmarks/internal/store"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_root", cfg.Store.Root),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, db, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// SSE broker; service change notifications feed it.
	broker := sse.NewBroker(2 * time.Second)
	svc.OnChange = broker.PublishChange

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

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
		broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdio with the given options. Logs go
// to stderr so stdout stays clean for the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, db, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("MCP server starting on stdio",
		slog.String("store_root", cfg.Store.Root),
		slog.String("index_path", cfg.Index.Path))

	return mcpserver.New(svc).ServeStdio()
}

// buildService wires the store, search index, and mark service. The
// index is synced from the loaded document; a sync failure is logged
// but does not prevent startup.
func buildService(cfg *Config) (*markservice.Service, *index.DB, error) {
	if err := os.MkdirAll(cfg.Store.Root, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create store root: %w", err)
	}

	st, err := store.New(cfg.Store.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("init store: %w", err)
	}

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	doc, err := st.Load()
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("load document: %w", err)
	}
	if err := index.Sync(db, doc); err != nil {
		slog.Warn("initial index sync failed", slog.String("error", err.Error()))
	}

	return markservice.NewService(st, db), db, nil
}

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

	"github.com/fabriclens/fabriclens/internal/api"
	"github.com/fabriclens/fabriclens/internal/layout"
	"github.com/fabriclens/fabriclens/internal/mcpserver"
	"github.com/fabriclens/fabriclens/internal/provider"
	"github.com/fabriclens/fabriclens/internal/session"
	"github.com/fabriclens/fabriclens/internal/sse"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. MCP stdio mode owns stdout, so
	// logs go to stderr there.
	logOut := os.Stdout
	if app.mcp {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("provider_mode", cfg.Provider.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Select the lineage provider.
	var source provider.Source
	var fileSource *provider.FileSource
	switch cfg.Provider.Mode {
	case ProviderModeFile:
		fileSource = provider.NewFileSource(cfg.Provider.File)
		source = fileSource
	default:
		source = provider.NewClient(cfg.Provider.URL, cfg.Provider.Timeout())
	}

	// SSE broker; each solver tick pushes one frame through it.
	broker := sse.NewBroker(cfg.Simulation.TickInterval())
	defer broker.Close()

	svc := session.New(session.Config{
		CanvasWidth:  cfg.Canvas.Width,
		CanvasHeight: cfg.Canvas.Height,
		Force:        cfg.Simulation.Force,
		Minimap:      cfg.Minimap,
		Particles:    cfg.Particles.Animator(),
	}, source, layout.NewTickerScheduler(cfg.Simulation.TickInterval()), func(frame session.Frame) {
		broker.PublishFrame(frame)
	}, logger)
	defer svc.Close()

	// Load the initial graph. A failed load is not fatal; the session
	// reports it and a later refresh can recover.
	if err := svc.Init(ctx); err != nil {
		logger.Warn("initial graph load failed", slog.String("error", err.Error()))
	}

	if app.mcp {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !svc.Loaded() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"loading"}`))
			return
		}
		loadedAt, took := svc.LoadInfo()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","loaded_at":%q,"load_ms":%d}`,
			loadedAt.Format(time.RFC3339), took.Milliseconds())
	})

	// Mount API routes under /api; frames stream from /api/events.
	r.Mount("/api", api.NewRouter(svc, broker))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// In file mode, watch the payload for edits and reload the graph.
	if fileSource != nil {
		g.Go(func() error {
			return fileSource.Watch(gCtx, logger, func() {
				if err := svc.Reload(gCtx); err != nil {
					logger.Warn("graph reload failed", slog.String("error", err.Error()))
				}
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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

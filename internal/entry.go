// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"bytes"
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

	"github.com/starford/taxonomy/internal/api"
	"github.com/starford/taxonomy/internal/checksum"
	"github.com/starford/taxonomy/internal/codec"
	"github.com/starford/taxonomy/internal/filewatch"
	"github.com/starford/taxonomy/internal/mcpserver"
	"github.com/starford/taxonomy/internal/sse"
	"github.com/starford/taxonomy/internal/store"
	"github.com/starford/taxonomy/internal/taxonservice"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	return app, nil
}

// openService opens the configured record store. The caller closes the
// returned store.
func (a *application) openService(ctx context.Context) (*taxonservice.Service, *store.DB, error) {
	db := a.config.Database
	st, err := store.Open(ctx, db.Driver, db.DSN, db.Table)
	if err != nil {
		return nil, nil, fmt.Errorf("init store: %w", err)
	}
	a.logger.Debug("store: opened",
		slog.String("driver", db.Driver),
		slog.String("table", st.Table()))
	return taxonservice.NewService(st, a.logger), st, nil
}

// Load writes the stored taxonomy to w as a document in format f.
func Load(ctx context.Context, w io.Writer, f codec.Format, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, st, err := app.openService(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	return svc.Load(ctx, w, f)
}

// Store reads a document in format f from r and replaces the stored taxonomy.
func Store(ctx context.Context, r io.Reader, f codec.Format, opts ...Option) (*taxonservice.StoreResult, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	svc, st, err := app.openService(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return svc.Store(ctx, r, f, app.storeOptions()...)
}

// Check converts a document in format f from r without storing it.
func Check(ctx context.Context, r io.Reader, f codec.Format, opts ...Option) (*taxonservice.StoreResult, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	return taxonservice.NewService(nil, app.logger).Check(ctx, r, f, app.storeOptions()...)
}

func (a *application) storeOptions() []taxonservice.StoreOption {
	if a.allowEmpty {
		return []taxonservice.StoreOption{taxonservice.AllowEmpty()}
	}
	return nil
}

// ServeMCP runs the read-only MCP server on stdin/stdout until ctx ends.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, st, err := app.openService(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	app.logger.Info("mcp: serving on stdio", slog.String("version", app.version))
	srv := mcpserver.New(svc, app.version)
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("driver", cfg.Database.Driver),
		slog.String("table", cfg.Database.Table),
		slog.String("watch_path", cfg.Watch.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, st, err := app.openService(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	broker := sse.NewBroker()
	defer broker.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := svc.Ready(req.Context()); err != nil {
			logger.Warn("health: store not ready", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled() {
		format, err := codec.ParseFormat(cfg.Watch.Format)
		if err != nil {
			return err
		}
		g.Go(func() error {
			err := filewatch.Watch(gCtx, cfg.Watch.Path, logger, func(ctx context.Context, data []byte) error {
				res, err := svc.Store(ctx, bytes.NewReader(data), format)
				if err != nil {
					return err
				}
				broker.PublishStored(res.Entries, cfg.Watch.Path, checksum.Sum(data))
				logger.Info("watch: stored",
					slog.String("path", cfg.Watch.Path),
					slog.Int("entries", res.Entries),
					slog.Int("warnings", len(res.Warnings)))
				return nil
			})
			if err != nil {
				return fmt.Errorf("watch %s: %w", cfg.Watch.Path, err)
			}
			return nil
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

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hanzideck/hanzideck-api/internal/catalog"
	"github.com/hanzideck/hanzideck-api/internal/config"
	"github.com/hanzideck/hanzideck-api/internal/domain/srs"
	"github.com/hanzideck/hanzideck-api/internal/platform/postgres"
	"github.com/hanzideck/hanzideck-api/internal/queue"
	"github.com/hanzideck/hanzideck-api/internal/service/review"
)

// application holds the wired components of the server.
type application struct {
	config        *config.Config
	logger        *slog.Logger
	db            *sql.DB
	catalog       *catalog.Catalog
	reviewService review.ReviewService
}

// newApplication builds the full dependency graph: database pool,
// migrations, catalog, scheduler, review service.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load card catalog: %w", err)
	}
	logger.Info("card catalog loaded", "cards", cat.Len())

	reviewStore := postgres.NewPostgresReviewStore(db, logger)
	scheduler := srs.NewScheduler(nil)

	serviceCfg := review.Config{
		Queue: queue.Config{
			BatchSize:    cfg.Queue.BatchSize,
			FlushDelay:   time.Duration(cfg.Queue.FlushDelayMillis) * time.Millisecond,
			FlushTimeout: time.Duration(cfg.Queue.FlushTimeoutMillis) * time.Millisecond,
			RetryDelay:   time.Duration(cfg.Queue.RetryDelayMillis) * time.Millisecond,
			MaxAttempts:  cfg.Queue.MaxFlushAttempts,
		},
		DueCountTTL:             time.Duration(cfg.Queue.DueCountTTLSeconds) * time.Second,
		DueCountRefreshInterval: time.Duration(cfg.Queue.DueCountRefreshSeconds) * time.Second,
	}

	reviewService := review.NewReviewService(cat, reviewStore, scheduler, serviceCfg, logger)

	return &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		catalog:       cat,
		reviewService: reviewService,
	}, nil
}

// Run starts the HTTP server and blocks until shutdown completes.
func (app *application) Run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:      app.setupRouter(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		app.logger.Info("shutdown signal received", "signal", sig.String())
	}

	return app.shutdown(srv)
}

// shutdown drains in order: stop accepting requests, force-drain the
// write queues so buffered outcomes reach the store, then release
// resources. The whole sequence is bounded by the configured timeout so
// an unreachable store cannot block process teardown.
func (app *application) shutdown(srv *http.Server) error {
	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		app.logger.Error("http server shutdown failed", "error", err)
	}

	if err := app.reviewService.ForceDrain(ctx); err != nil {
		app.logger.Error("failed to drain review queues", "error", err)
	}

	app.reviewService.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}

	app.logger.Info("shutdown complete")
	return nil
}

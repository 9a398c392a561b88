// Package server initializes and runs the identity storage service.
// It opens the database, runs migrations, wires the adapter behind the
// HTTP API, starts the cleanup worker, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"identikit/internal/adapter"
	"identikit/internal/logging"
	"identikit/internal/server/config"
	"identikit/internal/server/httpapi"
	"identikit/internal/server/metrics"
	"identikit/internal/server/repositories/repomanager"
	"identikit/internal/server/workers/cleanup"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	adapter  *adapter.Adapter
	cleanup  *cleanup.Service
	registry *prometheus.Registry
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	l := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(l)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	a := adapter.New(db, repos, logger, m)

	worker := cleanup.New(db, repos, logger,
		cleanup.WithInterval(c.CleanupInterval),
		cleanup.WithMetrics(m),
	)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		adapter:  a,
		cleanup:  worker,
		registry: registry,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	handler := httpapi.NewHandler(app.adapter, app.logger)
	health := httpapi.NewHealth(app.config.Environment)
	health.RegisterCheck("database", func() error { return app.db.Ping() })

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: httpapi.NewRouter(handler, health, app.registry),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http server shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = app.cleanup.Start(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}

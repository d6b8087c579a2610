// Package app initializes and runs the sync service. It wires storage,
// the OAuth session, the fetcher and the orchestrator, handles graceful
// shutdown, starts the periodic scheduler, and serves the HTTP trigger
// endpoints.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/max-sakeco/xero-sync/internal/auth"
	"github.com/max-sakeco/xero-sync/internal/config"
	"github.com/max-sakeco/xero-sync/internal/httpapi"
	"github.com/max-sakeco/xero-sync/internal/logging"
	"github.com/max-sakeco/xero-sync/internal/repositories/repomanager"
	syncer "github.com/max-sakeco/xero-sync/internal/sync"
	"github.com/max-sakeco/xero-sync/internal/xero"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	session      *auth.Session
	orchestrator *syncer.Orchestrator
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("repository init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	session := auth.NewSession(cfg, rm.Tokens(db), logger)
	fetcher := xero.NewClient(cfg, logger)
	orchestrator := syncer.NewOrchestrator(db, rm, session, fetcher, logger)

	return &App{
		config:       cfg,
		logger:       logger,
		session:      session,
		orchestrator: orchestrator,
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
	handler := httpapi.NewHandler(app.session, app.orchestrator, app.logger)

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: httpapi.NewRouter(handler),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startScheduler triggers a sync every SyncInterval. A run that overlaps
// the next tick is skipped rather than queued.
func (app *App) startScheduler(ctx context.Context) {
	ticker := time.NewTicker(app.config.SyncInterval)
	defer ticker.Stop()

	app.logger.Info(ctx, "scheduler started", "interval", app.config.SyncInterval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.runSync(ctx, false)
		}
	}
}

func (app *App) runSync(ctx context.Context, forceFull bool) {
	if _, err := app.orchestrator.Run(ctx, forceFull); err != nil {
		app.logger.Warn(ctx, "scheduled sync skipped", "error", err)
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if app.config.SyncNow {
		app.runSync(ctx, app.config.ForceFullSync)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startScheduler(ctx)
	}()

	wg.Wait()
}

// Package server initializes and runs the main application server. It wires
// storage, the authenticator registry and the credential services, runs the
// schema migrations, and serves the HTTP surface until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"

	"github.com/ivanpetrenko/authgate/internal/logging"
	"github.com/ivanpetrenko/authgate/internal/randx"
	"github.com/ivanpetrenko/authgate/internal/server/auth"
	"github.com/ivanpetrenko/authgate/internal/server/config"
	"github.com/ivanpetrenko/authgate/internal/server/httpapi"
	"github.com/ivanpetrenko/authgate/internal/server/models"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/repomanager"
	"github.com/ivanpetrenko/authgate/internal/server/schema"
	"github.com/ivanpetrenko/authgate/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

// NewApp builds the full service stack: database handle (with a bounded ping
// retry so the app survives the database starting up after it), migrations,
// repositories, the authenticator registry, services, and the HTTP handler
// set. callbacks may be nil; every notification is then a no-op.
func NewApp(ctx context.Context, cfg *config.Config, callbacks *services.Callbacks) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn(ctx, "database not ready, retrying", "error", err.Error())
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager(schema.Default())
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	rnd := randx.New()

	registry := auth.NewRegistry()
	registry.Register(models.SchemeRefToken, auth.NewRefTokenAuthenticator(rm.Tokens(db), rm.Users(db)))
	registry.Register(models.SchemeShareCode, auth.NewShareCodeAuthenticator(rm.Accounts(db), cfg.ShareRole))

	coordinator := services.NewCoordinator(db, rm, registry, rnd, logger, callbacks, cfg)
	verification := services.NewVerificationService(db, rm, rnd, logger, callbacks, cfg)
	reset := services.NewResetService(db, rm, rnd, logger, callbacks, cfg)

	srv := httpapi.NewServer(coordinator, verification, reset, logger)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
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

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.server.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}

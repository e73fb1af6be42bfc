package app

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

	httpapi "github.com/aussiebroadwan/breakroom/internal/lobby/http"
	"github.com/aussiebroadwan/breakroom/internal/lobby/metrics"
	"github.com/aussiebroadwan/breakroom/internal/lobby/service"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store/drivers/memory"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store/drivers/sqlite"
	"github.com/aussiebroadwan/breakroom/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the lobby service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Services
	coordinator         *service.Coordinator
	housekeepingService *service.HousekeepingService

	// HTTP server
	hub    *httpapi.Hub
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "lobby-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: metrics.NewRegistry(),
	}
	app.metrics = metrics.New(app.registry)

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("lobby service starting",
		slog.Int("port", app.cfg.Port),
		slog.String("ledger", app.cfg.LedgerDriver),
		slog.Any("allowed_origins", app.cfg.AllowedOrigins),
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops accepting requests, closes every websocket with "going away",
// waits for the sessions to leave the lobby and then releases the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down lobby service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Hijacked websocket connections are not tracked by the server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slog.Any("error", err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slog.Any("error", err))
		}
	}

	app.hub.Close()
	if err := app.hub.Wait(ctx); err != nil {
		app.logger.Warn("websocket sessions still open at deadline",
			slog.Int("open", app.hub.Len()),
			slog.Any("error", err),
		)
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", slog.Any("error", err))
		return err
	}

	app.logger.Info("lobby service stopped")
	return nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// initStore opens the ledger driver and applies migrations
func (app *Application) initStore() error {
	switch app.cfg.LedgerDriver {
	case DriverSQLite:
		db, err := sqlite.NewStore(app.cfg.DatabaseFile)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.db = db
		app.logger.Info("database migrations applied successfully",
			slog.String("database", app.cfg.DatabaseFile),
		)
	default:
		app.db = memory.NewStore()
	}
	return nil
}

// initServices initializes the coordinator, its transport and housekeeping
func (app *Application) initServices() {
	app.hub = httpapi.NewHub(httpapi.HubConfig{
		SendBuffer:     app.cfg.SendBuffer,
		MaxFrameBytes:  app.cfg.MaxFrameBytes,
		FrameLimit:     app.cfg.FrameLimit(),
		AllowedOrigins: app.cfg.AllowedOrigins,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     30 * time.Second,
	}, app.metrics)

	app.coordinator = service.NewCoordinator(app.db, app.hub, service.WithMetrics(app.metrics))

	app.housekeepingService = service.NewHousekeepingService(
		app.coordinator,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.InviteRetention,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.cfg.RateLimits,
		app.logger,
	)

	// Wire services to router
	router.Coordinator = app.coordinator
	router.Hub = app.hub
	router.Gatherer = app.registry
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

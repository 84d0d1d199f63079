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

	httpapi "github.com/aussiebroadwan/miniboss/internal/auth/http"
	"github.com/aussiebroadwan/miniboss/internal/auth/metrics"
	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
	"github.com/aussiebroadwan/miniboss/pkg/cryptox"
	"github.com/aussiebroadwan/miniboss/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the authorization server with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	pepper  string
	metrics *metrics.Metrics

	// Services
	userService         *service.UserService
	clientService       *service.ClientService
	grantService        *service.GrantService
	tokenValidator      *service.TokenValidator
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
// It fails when the deployment does not have exactly one internal client.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "miniboss",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	pepper, err := cryptox.LoadPepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.pepper = pepper

	db, err := OpenStore(ctx, cfg, false)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.logger.Info("database ready", "driver", cfg.DatabaseDriver)

	app.initServices()

	if err := app.checkInternalClient(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()
	return app, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("miniboss starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down miniboss...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("miniboss stopped")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.userService = &service.UserService{Store: app.db, Pepper: app.pepper}
	app.clientService = &service.ClientService{Store: app.db}
	app.grantService = &service.GrantService{
		Store:      app.db,
		Users:      app.userService,
		Clients:    app.clientService,
		Metrics:    app.metrics,
		PendingTTL: app.cfg.PendingTTL,
		CodeTTL:    app.cfg.CodeTTL,
		TokenTTL:   app.cfg.TokenTTL,
	}
	app.tokenValidator = &service.TokenValidator{Grants: app.grantService}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.metrics,
		app.cfg.HousekeepingInterval,
	)
}

// checkInternalClient enforces the single internal client, seeding it from
// configuration on a fresh deployment.
func (app *Application) checkInternalClient(ctx context.Context) error {
	c, err := app.clientService.LookupInternalClient(ctx)
	if err == nil {
		app.logger.Info("internal client found", "client_id", c.ID)
		return nil
	}
	if !errors.Is(err, service.ErrInvariantViolation) || app.cfg.InternalClientRedirectURI == "" {
		app.logger.Error("internal client check failed", "error", err)
		return fmt.Errorf("internal client: %w", err)
	}

	// Create refuses a second internal client, so a deployment with several
	// still fails here.
	c, err = app.clientService.Create(ctx, app.cfg.InternalClientName, app.cfg.InternalClientRedirectURI, true)
	if err != nil {
		app.logger.Error("internal client check failed", "error", err)
		return fmt.Errorf("seed internal client: %w", err)
	}
	app.logger.Info("internal client created", "client_id", c.ID, "redirect_uri", c.RedirectURI)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.metrics, app.logger)

	router.LoginURL = app.cfg.LoginURL
	router.Limits.Disabled = !app.cfg.RateLimitEnabled
	router.UserService = app.userService
	router.ClientService = app.clientService
	router.GrantService = app.grantService
	router.TokenValidator = app.tokenValidator
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

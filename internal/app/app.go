package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/turnstile/internal/http"
	"github.com/aussiebroadwan/turnstile/internal/service"
	"github.com/aussiebroadwan/turnstile/internal/store"
	"github.com/aussiebroadwan/turnstile/internal/store/drivers/sqlite"
	"github.com/aussiebroadwan/turnstile/pkg/jwtauth"
	"github.com/aussiebroadwan/turnstile/pkg/kvstore"
	"github.com/aussiebroadwan/turnstile/pkg/kvstore/sqlitekv"
	"github.com/aussiebroadwan/turnstile/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the token service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        store.Store
	kv        *sqlitekv.Store // nil unless the sqlite ledger backend is used
	blocklist *jwtauth.Blocklist
	issuer    *jwtauth.Issuer
	auth      *jwtauth.Authenticator

	// Services
	tokenService        *service.TokenService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService // nil without the sqlite ledger

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "turnstile",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.Secret == "" {
		return nil, fmt.Errorf("TURNSTILE_SECRET is required")
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initTokens(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	if err := app.bootstrap(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
	}

	app.logger.Info("turnstile starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"blocklist", app.cfg.BlocklistEnabled,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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
	app.logger.Info("shutting down turnstile...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingService != nil {
		app.housekeepingService.Stop()
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("turnstile stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initTokens builds the jwtauth pipeline: blocklist first, then the issuer
// and authenticator that share it.
func (app *Application) initTokens() error {
	if app.cfg.BlocklistEnabled {
		kv, err := app.ledgerStore()
		if err != nil {
			return err
		}

		scope := jwtauth.ScopeAll
		if app.cfg.BlocklistScope == "refresh" {
			scope = jwtauth.ScopeRefresh
		}

		app.blocklist = &jwtauth.Blocklist{
			Store: kv,
			Scope: scope,
			Grace: app.cfg.BlocklistGrace,
		}
	}

	cfg := jwtauth.Config{
		Secret:       []byte(app.cfg.Secret),
		Algorithm:    app.cfg.Algorithm,
		AccessTTL:    app.cfg.AccessTTL,
		RefreshTTL:   app.cfg.RefreshTTL,
		Leeway:       app.cfg.Leeway,
		Locations:    tokenLocations(app.cfg.TokenLocations),
		CookieSecure: app.cfg.CookieSecure,
	}

	issuer, err := jwtauth.NewIssuer(cfg, app.blocklist)
	if err != nil {
		return fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	app.issuer = issuer

	auth, err := jwtauth.NewAuthenticator(cfg, app.blocklist)
	if err != nil {
		return fmt.Errorf("failed to initialize authenticator: %w", err)
	}
	app.auth = auth

	return nil
}

// ledgerStore picks the revocation ledger backend. The sqlite backend shares
// the service database so one migration history covers both.
func (app *Application) ledgerStore() (kvstore.Store, error) {
	switch app.cfg.BlocklistBackend {
	case "memory":
		app.logger.Info("revocation ledger using in-memory store")
		return kvstore.NewMemory(), nil
	case "sqlite", "":
		sqliteStore, ok := app.db.(*sqlite.Store)
		if !ok {
			return nil, fmt.Errorf("sqlite ledger backend requires the sqlite database driver")
		}
		app.kv = sqlitekv.New(sqliteStore.DB())
		app.logger.Info("revocation ledger using sqlite store", "file", app.cfg.DatabaseFile)
		return app.kv, nil
	default:
		return nil, fmt.Errorf("unknown blocklist backend %q", app.cfg.BlocklistBackend)
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.userService = &service.UserService{Store: app.db}
	app.tokenService = &service.TokenService{
		Issuer:    app.issuer,
		Blocklist: app.blocklist,
	}

	if app.kv != nil {
		app.housekeepingService = service.NewHousekeepingService(
			app.kv,
			app.logger,
			app.cfg.HousekeepingInterval,
		)
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.auth,
		app.issuer,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// bootstrap creates the initial user when the store is empty and a bootstrap
// password was supplied.
func (app *Application) bootstrap() error {
	if app.cfg.BootstrapPassword == "" {
		return nil
	}

	ctx := context.Background()
	if err := app.userService.Bootstrap(ctx, app.cfg.BootstrapUsername, app.cfg.BootstrapPassword); err != nil {
		return fmt.Errorf("failed to bootstrap initial user: %w", err)
	}
	return nil
}

func tokenLocations(names []string) []jwtauth.TokenLocation {
	out := make([]jwtauth.TokenLocation, 0, len(names))
	for _, name := range names {
		out = append(out, jwtauth.TokenLocation(name))
	}
	return out
}

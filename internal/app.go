// Package internal contains core application functionality
package internal

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/gofiber/fiber/v2"

	"weblytics/internal/analytics"
	"weblytics/internal/config"
	"weblytics/internal/database"
	"weblytics/internal/events"
	"weblytics/internal/logging"
	"weblytics/internal/pkg/geoip"
)

// Application owns every long-lived component and wires them together
// explicitly. Nothing here reads global state: the config is loaded once
// and handed down, so tests can assemble the same graph around an
// in-memory database.
type Application struct {
	Config     *config.Config
	Logger     *slog.Logger
	DBManager  *database.Manager
	Geo        *geoip.Locator
	Store      *events.Store
	Enricher   *events.Enricher
	Calculator *analytics.ActiveUserCalculator
	Server     *fiber.App
}

// NewApp loads configuration from the environment and builds the full
// component graph.
func NewApp() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig builds the application around an already-validated
// config.
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := logging.NewLogger(cfg)

	dbManager, err := database.NewManager(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	geo := geoip.Open(cfg.GeoDBPath, logger)
	loc := cfg.Location()

	store := events.NewStore(dbManager.GetConnection(), logger)
	enricher := events.NewEnricher(geo, logger, loc, nil)
	calculator := analytics.NewActiveUserCalculator(store, loc, cfg.WAUWindowDays, cfg.MAUWindowDays, nil)

	server := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: cfg.IsProduction(),
	})
	MountRoutes(server, &RouteDeps{
		Config:     cfg,
		Logger:     logger,
		DB:         dbManager.GetConnection(),
		Store:      store,
		Enricher:   enricher,
		Calculator: calculator,
	})

	return &Application{
		Config:     cfg,
		Logger:     logger,
		DBManager:  dbManager,
		Geo:        geo,
		Store:      store,
		Enricher:   enricher,
		Calculator: calculator,
		Server:     server,
	}, nil
}

// Migrate creates or updates the event tables.
func (a *Application) Migrate() error {
	return a.DBManager.Migrate(
		&events.Pageview{},
		&events.AnchorClick{},
		&events.QueryExecution{},
	)
}

// Start listens on the configured port and blocks until shutdown.
func (a *Application) Start() error {
	addr := ":" + a.Config.AppPort
	a.Logger.Info("Starting server", slog.String("addr", addr))
	return a.Server.Listen(addr)
}

// Shutdown stops the HTTP server and releases storage handles.
func (a *Application) Shutdown(ctx context.Context) error {
	if err := a.Server.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to stop http server: %w", err)
	}
	if err := a.Geo.Close(); err != nil {
		a.Logger.Warn("Failed to close geo database", slog.Any("error", err))
	}
	return a.DBManager.Close()
}


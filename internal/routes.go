package internal

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"weblytics/internal/analytics"
	"weblytics/internal/config"
	"weblytics/internal/events"
	handlers "weblytics/internal/http"
)

// publicCORSConfig is the permissive CORS setup shared by the public
// collect endpoints, which are called cross-origin from tracked pages.
var publicCORSConfig = cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Referer, User-Agent, Session-Id",
}

// RouteDeps bundles the components the handlers are built from.
type RouteDeps struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *gorm.DB
	Store      *events.Store
	Enricher   *events.Enricher
	Calculator *analytics.ActiveUserCalculator
}

// MountRoutes registers every route on the fiber app.
func MountRoutes(app *fiber.App, deps *RouteDeps) {
	collect := handlers.NewCollectHandler(deps.Store, deps.Enricher, deps.Logger)
	stats := handlers.NewStatsHandler(deps.Store, deps.Calculator, deps.Config, deps.Logger)
	health := handlers.NewHealthHandler(deps.DB, deps.Logger)

	collectGroup := app.Group("/collect", cors.New(publicCORSConfig))
	collectGroup.Post("/pageview", collect.Pageview)
	collectGroup.Post("/anchor-click", collect.AnchorClick)
	collectGroup.Post("/query-execution", collect.QueryExecution)

	statsGroup := app.Group("/stats")
	statsGroup.Get("/pageviews", stats.Pageviews)
	statsGroup.Get("/unique-visitors", stats.UniqueVisitors)
	statsGroup.Get("/anchor-clicks", stats.AnchorClicks)
	statsGroup.Get("/active-users", stats.ActiveUsers)
	statsGroup.Get("/top-services", stats.TopServices)

	app.Get("/_health", health.Index)
}

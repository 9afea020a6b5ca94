package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rei-nationwide/platform-api/internal/config"
	"github.com/rei-nationwide/platform-api/internal/handler"
	"github.com/rei-nationwide/platform-api/internal/middleware"
	"github.com/rei-nationwide/platform-api/internal/models"
	"github.com/rei-nationwide/platform-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	PropertyHandler *handler.PropertyHandler
	AIHandler       *handler.AIHandler
	AdminHandler    *handler.AdminHandler
	AuthMiddleware  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/", handler.Root(cfg))
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	authenticate := deps.AuthMiddleware
	if authenticate == nil {
		authenticate = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(api.Group("/auth", authenticate))
	}

	protected := api.Group("", authenticate)

	if deps.PropertyHandler != nil {
		deps.PropertyHandler.Register(protected)

		restricted := protected.Group("", middleware.RequireRole(
			models.RoleAdmin, models.RoleManager, models.RoleAcquisitions,
		))
		deps.PropertyHandler.RegisterRestricted(restricted)
	}

	if deps.AIHandler != nil {
		deps.AIHandler.Register(protected)
	}

	if deps.AdminHandler != nil {
		admin := protected.Group("/admin")
		deps.AdminHandler.RegisterUsers(admin.Group("", middleware.RequireRole(models.RoleAdmin)))
		deps.AdminHandler.RegisterActivity(admin.Group("", middleware.RequireRole(models.RoleAdmin, models.RoleManager)))
	}
}

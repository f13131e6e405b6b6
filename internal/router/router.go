package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumen-academy/grading-api/internal/config"
	"github.com/lumen-academy/grading-api/internal/handler"
	"github.com/lumen-academy/grading-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradingHandler   *handler.GradingHandler
	GradebookHandler *handler.GradebookHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	protected := api.Group("", jwtMiddleware)

	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(protected)
	}

	if deps.GradebookHandler != nil {
		deps.GradebookHandler.Register(protected)
	}
}

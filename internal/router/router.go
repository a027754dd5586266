package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/intervue-api/internal/config"
	"github.com/noah-isme/intervue-api/internal/handler"
	"github.com/noah-isme/intervue-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	InterviewHandler *handler.InterviewHandler
	SubmitLimiter    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.InterviewHandler != nil {
		interview := api.Group("/interview")
		deps.InterviewHandler.Register(interview, deps.SubmitLimiter)
	}

	app.Get("/metrics", observability.MetricsHandler())
}

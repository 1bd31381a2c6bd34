package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hhafez300/thena-pagerduty-bridge/internal/handlers"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/middleware"
)

// SetupRoutes configures all application routes with dependencies
func SetupRoutes(app *fiber.App, healthHandler *handlers.HealthHandler, eventsHandler *handlers.EventsHandler, webhookToken string) {
	app.Get("/health", healthHandler.HealthCheck)

	// Thena validates endpoints with GET/HEAD and empty POSTs; fiber's Get also serves HEAD
	thena := app.Group("/thena", middleware.RequireToken(webhookToken))
	{
		thena.Get("/events", handlers.Probe)
		thena.Post("/events", eventsHandler.HandleEvent)

		thena.Get("/installations", handlers.Probe)
		thena.Post("/installations", handlers.HandleInstallation)
	}
}

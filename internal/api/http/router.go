package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Feedback       *handlers.FeedbackHandler
	Reference      *handlers.ReferenceHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	v1 := app.Group("/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/customers/login", cfg.Auth.CustomerLogin)
	authGroup.Post("/employees/login", cfg.Auth.EmployeeLogin)

	protected := v1.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())

	reference := protected.Group("/reference")
	reference.Get("/channels", cfg.Reference.Channels)
	reference.Get("/complaints", cfg.Reference.Complaints)
	reference.Get("/priorities", cfg.Reference.Priorities)
	reference.Get("/sources", cfg.Reference.Sources)
	reference.Get("/divisions", cfg.Reference.Divisions)
	reference.Get("/terminals", cfg.Reference.Terminals)
	reference.Get("/policies", auth.RequireEmployee(), cfg.Reference.Policies)

	tickets := protected.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Get("/:id/activities", cfg.Tickets.ListActivities)
	tickets.Post("/:id/activities", cfg.Tickets.AddActivity)
	tickets.Get("/:id/status-history", cfg.Tickets.StatusHistory)
	tickets.Get("/:id/email-history", auth.RequireEmployee(), cfg.Tickets.EmailHistory)

	tickets.Post("/:id/feedback", auth.RequireCustomer(), cfg.Feedback.Submit)
	tickets.Patch("/:id/feedback", auth.RequireCustomer(), cfg.Feedback.Update)
	tickets.Get("/:id/feedback", cfg.Feedback.Get)
}

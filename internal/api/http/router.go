package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ssu-portal/internal/api/http/handlers"
	"github.com/spec-kit/ssu-portal/internal/auth"
	"github.com/spec-kit/ssu-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Integration    *handlers.IntegrationHandler
	Callback       *handlers.CallbackHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	// confirmation channel for the external sink; the generated id is the
	// only credential
	app.Post("/api/callback/:callbackID", cfg.Callback.Receive)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/tickets", auth.RequireRole(), cfg.Tickets.List)
	protected.Get("/tickets/:id", auth.RequireRole(), cfg.Tickets.Get)

	master := protected.Group("/master", auth.RequireRole(domain.RoleMaster))
	master.Post("/tickets/import", cfg.Tickets.Import)
	master.Post("/tickets/assign", cfg.Tickets.Assign)
	master.Post("/tickets/deliver", cfg.Tickets.Deliver)

	manager := protected.Group("/manager", auth.RequireManager())
	manager.Post("/tickets/start", cfg.Tickets.Start)
	manager.Post("/tickets/close", cfg.Tickets.Close)

	admin := protected.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/integration", cfg.Integration.Get)
	admin.Put("/integration", cfg.Integration.Update)
}

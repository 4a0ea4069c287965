package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fleet-service/internal/api/http/handlers"
	"github.com/spec-kit/fleet-service/internal/api/ws"
	"github.com/spec-kit/fleet-service/internal/auth"
	"github.com/spec-kit/fleet-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Vehicles       *handlers.VehiclesHandler
	Inspections    *handlers.InspectionsHandler
	Shipments      *handlers.ShipmentsHandler
	Trips          *handlers.TripsHandler
	Notifications  *handlers.NotificationsHandler
	Stream         *ws.Handler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP and websocket routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/login/external", cfg.Auth.LoginExternal)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Get("/verify", cfg.Auth.Verify)
	authGroup.Post("/logout", cfg.Auth.Logout)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/me", cfg.Auth.Me)

	vehicles := protected.Group("/vehicles")
	vehicles.Get("", cfg.Vehicles.List)
	vehicles.Get("/:id", cfg.Vehicles.Get)
	vehicles.Get("/:id/inspections", cfg.Inspections.ListByVehicle)
	vehicles.Post("", auth.RequireRole(domain.RoleManager, domain.RoleAdmin), cfg.Vehicles.Create)
	vehicles.Put("/:id", auth.RequireRole(domain.RoleManager, domain.RoleAdmin), cfg.Vehicles.Update)

	protected.Post("/inspections", auth.RequireRole(domain.RoleDriver, domain.RoleManager), cfg.Inspections.Create)

	shipments := protected.Group("/shipments")
	shipments.Get("", cfg.Shipments.List)
	shipments.Get("/:id", cfg.Shipments.Get)
	shipments.Post("", auth.RequireRole(domain.RoleDispatcher, domain.RoleManager, domain.RoleAdmin), cfg.Shipments.Create)
	shipments.Post("/:id/status", auth.RequireRole(domain.RoleDriver, domain.RoleDispatcher, domain.RoleManager), cfg.Shipments.ChangeStatus)

	trips := protected.Group("/trips")
	trips.Get("/mine", cfg.Trips.Mine)
	trips.Post("", auth.RequireRole(domain.RoleDispatcher, domain.RoleManager, domain.RoleAdmin), cfg.Trips.Assign)
	trips.Post("/:id/start", auth.RequireRole(domain.RoleDriver), cfg.Trips.Start)
	trips.Post("/:id/complete", auth.RequireRole(domain.RoleDriver), cfg.Trips.Complete)

	notifications := protected.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	// The websocket stream authenticates itself at handshake time; it does
	// not sit behind the HTTP auth middleware because anonymous connections
	// are accepted by design.
	app.Get("/ws/notifications", cfg.Stream.Upgrade, cfg.Stream.Stream())
}

// Package router defines how HTTP routes are registered for the API.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/venuora/venue-reservation/internal/handler"
	"github.com/venuora/venue-reservation/internal/middleware"
	"github.com/venuora/venue-reservation/internal/model"
)

// Handlers bundles the constructed handlers the router wires up.  All
// dependency injection happens in main; the router only maps paths.
type Handlers struct {
	Auth          *handler.AuthHandler
	Reservations  *handler.ReservationHandler
	Notifications *handler.NotificationHandler
}

// RegisterRoutes registers all application routes on the provided
// Echo instance.  The Redis client powers rate limiting on mutating
// endpoints and may be nil, which disables limiting.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	// Health check for load balancers; no authentication.
	e.GET("/healthz", handler.Health)

	// Registration and login live outside the protected group.
	e.POST("/v1/auth/register", h.Auth.Register)
	e.POST("/v1/auth/login", h.Auth.Login)

	// Everything else requires a valid access token with a known role.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleGuest, model.RoleAdmin))

	limited := middleware.RateLimit(rdb, 10, time.Minute)

	auth.POST("/reservations", h.Reservations.Create, limited)
	auth.GET("/reservations", h.Reservations.List)
	auth.GET("/reservations/:id", h.Reservations.Get)
	auth.POST("/reservations/:id/cancel", h.Reservations.Cancel, limited)
	auth.POST("/reservations/:id/confirm-payment", h.Reservations.ConfirmPayment, limited)

	auth.GET("/notifications", h.Notifications.List)
	auth.PATCH("/notifications/:id/read", h.Notifications.MarkRead)
	auth.POST("/notifications/read-all", h.Notifications.MarkAllRead)

	// Administrative surface: reminder trigger and notification cleanup.
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/reminders/:id", h.Reservations.SendReminder)
	admin.DELETE("/notifications", h.Notifications.Cleanup)
}

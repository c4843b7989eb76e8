// Package router wires handlers and middleware to the HTTP routes.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tickethub/tickethub/internal/handler"
	"github.com/tickethub/tickethub/internal/middleware"
)

// RegisterRoutes registers routes that need neither authentication nor
// handler state. Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the token endpoints under /v1/auth plus the
// protected /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	me := e.Group("/v1")
	me.Use(middleware.JWTAuth(jwtSecret))
	me.Use(middleware.RequireRole("user", "admin"))
	me.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints. The
// cache middleware is applied here and nowhere else: these are the
// only routes whose responses are identical for every caller.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/shows", p.ListShows)
	g.GET("/shows/:id", p.GetShow)
	g.GET("/shows/:id/seats", p.GetShowSeats)
}

// RegisterBookings registers the authenticated booking endpoints.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("user", "admin"))
	g.POST("/shows/:id/bookings", b.CreateBooking)
	g.GET("/my-bookings", b.ListBookings)
	g.POST("/bookings/:id/confirm", b.Confirm)
	g.POST("/bookings/:id/cancel", b.Cancel)
}

// RegisterAdmin registers the show management endpoints, restricted to
// the admin role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("admin"))
	g.POST("/shows", a.CreateShow)
	g.DELETE("/shows/:id", a.DeleteShow)
}

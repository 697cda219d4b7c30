package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/kachapon/seminar-registration/internal/handler"    // import the handlers that implement business logic
	"github.com/kachapon/seminar-registration/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/kachapon/seminar-registration/internal/model"      // import staff role constants
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems poll this endpoint to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers staff authentication routes and their middleware.
// Unauthenticated operations live under /v1/auth, protected endpoints under
// /v1.  There is no self-service registration; accounts are provisioned by
// an admin via RegisterStaffAdmin.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and returns a fresh pair.
	g.POST("/refresh", a.Refresh)

	// Protected endpoints: a valid access token with a known staff role.
	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff, model.RoleAdmin),
	)
	auth.GET("/me", a.Me)
	auth.POST("/logout", a.Logout)

	// Account provisioning is admin only.
	admin := e.Group("/v1/staff-accounts",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.POST("", a.CreateStaff)
}

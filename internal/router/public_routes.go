package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kachapon/seminar-registration/internal/handler"
)

// RegisterPublic registers the unauthenticated registrant-facing routes:
// the reference tables, the live duplicate-name check, one-shot form
// submission and the step-by-step wizard sessions.  No JWT or role
// middleware applies here; the global rate limiter still does.
func RegisterPublic(e *echo.Echo, r *handler.RegistrationHandler, w *handler.WizardHandler) {
	// Option tables for the form dropdowns.  Response caching is applied
	// globally, so repeated loads do not hit the database.
	e.GET("/v1/reference", r.Reference)

	// Called while the attendee types their name.
	e.GET("/v1/duplicate-check", r.DuplicateCheck)

	// Complete payload in one request, revalidated server-side.
	e.POST("/v1/registrations", r.Submit)

	// Wizard sessions: create, inspect, edit fields, step and submit.
	g := e.Group("/v1/wizard")
	g.POST("", w.Create)
	g.GET("/:id", w.Get)
	g.PUT("/:id/fields", w.UpdateFields)
	g.POST("/:id/next", w.Next)
	g.POST("/:id/back", w.Back)
	g.POST("/:id/submit", w.Submit)
}

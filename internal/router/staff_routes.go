package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kachapon/seminar-registration/internal/handler"
	"github.com/kachapon/seminar-registration/internal/middleware"
	"github.com/kachapon/seminar-registration/internal/model"
)

// RegisterStaff registers the venue desk endpoints under /v1/staff.  All
// routes require a valid JWT with the STAFF or ADMIN role; transportation
// replacement is admin only.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, sc *handler.ScanHandler, jwtSecret string) {
	g := e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff, model.RoleAdmin),
	)

	// Ticket resolution: typed/pasted code, name search or photo upload.
	g.GET("/registrants/:code", s.Lookup)
	g.GET("/registrants", s.Search)
	g.POST("/scan", sc.Scan)

	// Ledger updates.
	g.PUT("/registrants/:code/status", s.SetStatus)
	g.POST("/registrants/:code/consumables/:kind", s.Redeem)
	g.POST("/registrants/:code/gift", s.MarkGift)

	// Notes and travel-record corrections change what the desk sees
	// about a registrant, so they are restricted to admins.
	admin := e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.PUT("/registrants/:code/notes", s.UpdateNotes)
	admin.PUT("/registrants/:code/transportation", s.ReplaceTransportation)
}

package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kachapon/seminar-registration/internal/repository"
	"github.com/kachapon/seminar-registration/internal/service"
	"github.com/kachapon/seminar-registration/internal/wizard"
)

// RegistrationHandler serves the public, unauthenticated side: form
// submission, the live duplicate-name check and the reference tables
// the form is built from.
type RegistrationHandler struct {
	Svc  *service.RegistrationService
	Refs *repository.ReferenceRepo
}

func NewRegistrationHandler(svc *service.RegistrationService, refs *repository.ReferenceRepo) *RegistrationHandler {
	return &RegistrationHandler{Svc: svc, Refs: refs}
}

type registrationResp struct {
	TicketCode     string `json:"ticket_code"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	AttendanceType string `json:"attendance_type"`
}

// Submit accepts a complete form payload in one shot, revalidates every
// step server-side and persists the registrant.  The wizard session
// endpoints funnel into the same service call.
func (h *RegistrationHandler) Submit(c echo.Context) error {
	var form wizard.Form
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	reg, err := h.Svc.Submit(ctx, form)
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}
	return c.JSON(http.StatusCreated, registrationResp{
		TicketCode:     reg.TicketCode,
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		AttendanceType: reg.AttendanceType,
	})
}

// DuplicateCheck reports whether a first/last name pair is already
// registered.  The form calls it while the user types; an incomplete
// pair is answered without touching the database.
func (h *RegistrationHandler) DuplicateCheck(c echo.Context) error {
	first := strings.TrimSpace(c.QueryParam("first_name"))
	last := strings.TrimSpace(c.QueryParam("last_name"))
	if first == "" || last == "" {
		return c.JSON(http.StatusOK, echo.Map{"duplicate": false})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	exists, err := h.Svc.Registrants().NameExists(ctx, first, last)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"duplicate": exists})
}

// Reference returns the option tables for the form dropdowns.  The
// response cache middleware keeps this cheap under load.
func (h *RegistrationHandler) Reference(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ref, err := h.Refs.LoadAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, ref)
}

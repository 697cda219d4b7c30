package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/kachapon/seminar-registration/internal/lock"
	"github.com/kachapon/seminar-registration/internal/repository"
	"github.com/kachapon/seminar-registration/internal/service"
	"github.com/kachapon/seminar-registration/internal/ticket"
	"github.com/kachapon/seminar-registration/internal/wizard"
)

// validate checks the struct tags on request DTOs after binding.
var validate = validator.New()

// staffID extracts the authenticated staff id from echo.Context.  The
// JWT middleware stores the raw "sub" claim, which arrives as float64
// after JSON decoding; legacy tokens may carry it as a string.
func staffID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// writeDomainError translates service and repository errors into the
// HTTP responses shared by the registrant and staff endpoints.  It
// returns false when err was nil and nothing was written.
func writeDomainError(c echo.Context, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return true, c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, ticket.ErrInvalidCode):
		return true, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket code"})
	case errors.Is(err, service.ErrInvalidKind):
		return true, c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown consumable kind"})
	case errors.Is(err, repository.ErrRegistrantNotFound):
		return true, c.JSON(http.StatusNotFound, echo.Map{"error": "registrant not found"})
	case errors.Is(err, repository.ErrDuplicateEntrant):
		return true, c.JSON(http.StatusConflict, echo.Map{"error": "name already registered"})
	case errors.Is(err, service.ErrInvalidTransition):
		return true, c.JSON(http.StatusConflict, echo.Map{"error": "status transition not allowed"})
	case errors.Is(err, repository.ErrConflict), errors.Is(err, lock.ErrLocked):
		return true, c.JSON(http.StatusConflict, echo.Map{"error": "concurrent update, retry"})
	case errors.Is(err, wizard.ErrSessionNotFound):
		return true, c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	return true, c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

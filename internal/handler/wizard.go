package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kachapon/seminar-registration/internal/service"
	"github.com/kachapon/seminar-registration/internal/wizard"
)

// WizardHandler exposes the step machine over HTTP.  Each session is a
// stored form plus the active step; every request rebuilds a wizard
// value around the stored state, applies one transition and saves the
// result back.
type WizardHandler struct {
	Sessions wizard.SessionStore
	Names    wizard.RegistrantLookup
	Svc      *service.RegistrationService
}

func NewWizardHandler(store wizard.SessionStore, names wizard.RegistrantLookup, svc *service.RegistrationService) *WizardHandler {
	return &WizardHandler{Sessions: store, Names: names, Svc: svc}
}

type sessionResp struct {
	ID         string              `json:"id"`
	Step       int                 `json:"step"`
	Form       wizard.Form         `json:"form"`
	Duplicate  bool                `json:"duplicate"`
	Errors     []wizard.FieldError `json:"errors,omitempty"`
	FirstError *wizard.FieldError  `json:"first_error,omitempty"`
}

func sessionState(id string, st wizard.SessionState, w *wizard.Wizard) sessionResp {
	resp := sessionResp{ID: id, Step: st.Step, Form: st.Form, Duplicate: st.DupFlagged}
	if w != nil {
		resp.Errors = w.Errors()
		resp.FirstError = w.FirstError()
	}
	return resp
}

// rebuild turns stored state into a live wizard for one transition.
func (h *WizardHandler) rebuild(st wizard.SessionState) *wizard.Wizard {
	w := wizard.New(h.Svc.Lookup(), nil)
	w.Form = st.Form
	w.Step = st.Step
	w.SetDuplicate(st.DupFlagged)
	// The store is authoritative here, so the rejected-name wipe runs
	// synchronously instead of on a timer against this throwaway copy.
	w.SetNameClearDelay(0)
	return w
}

// Create starts an empty session at the Personal step.
func (h *WizardHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	id, err := h.Sessions.Create(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	return c.JSON(http.StatusCreated, sessionState(id, wizard.SessionState{}, nil))
}

// Get returns the current session state.
func (h *WizardHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	id := c.Param("id")
	st, err := h.Sessions.Get(ctx, id)
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}
	return c.JSON(http.StatusOK, sessionState(id, st, nil))
}

// UpdateFields applies a partial field payload to the session.  Fields
// with clearing rules go through their setters so switching, say, the
// transport mode wipes the fields of the abandoned branch.  Editing a
// name drops any duplicate verdict; when both names are present the
// pair is re-checked before the session is saved.
func (h *WizardHandler) UpdateFields(c echo.Context) error {
	var fields map[string]json.RawMessage
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id := c.Param("id")
	st, err := h.Sessions.Get(ctx, id)
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}

	nameEdited := false
	applied := 0
	for _, key := range wizard.FieldOrder {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		applied++
		if err := applyField(&st.Form, key, raw); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "field": key})
		}
		if key == wizard.FieldFirstName || key == wizard.FieldLastName {
			nameEdited = true
		}
	}
	if applied != len(fields) {
		for key := range fields {
			if !knownField(key) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown field: " + key, "field": key})
			}
		}
	}
	// A payload may carry a mode switch and a sub-field of the branch
	// that switch excludes in the same body.  Re-running the mode
	// setters after every field has landed keeps the excluded branch
	// empty regardless of payload key order.
	st.Form.SetTransportType(st.Form.TransportType)
	st.Form.SetLocationType(st.Form.LocationType)
	st.Form.SetAttendanceType(st.Form.AttendanceType)
	if nameEdited {
		st.DupFlagged = false
		first := strings.TrimSpace(st.Form.FirstName)
		last := strings.TrimSpace(st.Form.LastName)
		if first != "" && last != "" {
			exists, err := h.Names.NameExists(ctx, first, last)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "duplicate check failed"})
			}
			st.DupFlagged = exists
		}
	}

	if err := h.Sessions.Save(ctx, id, st); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}
	return c.JSON(http.StatusOK, sessionState(id, st, nil))
}

// Next validates the active step and advances on success.  A duplicate
// verdict on the Personal step fails validation and wipes the rejected
// name pair from the stored session.
func (h *WizardHandler) Next(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id := c.Param("id")
	st, err := h.Sessions.Get(ctx, id)
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}

	w := h.rebuild(st)
	stepErr := w.Next()
	st.Step = w.Step
	// rebuild sets a synchronous clear, so a duplicate failure has
	// already wiped the rejected names from w.Form by this point.
	st.Form = w.Form
	if stepErr != nil && st.Step == wizard.StepPersonal && st.DupFlagged {
		st.DupFlagged = false
	}
	if err := h.Sessions.Save(ctx, id, st); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}

	if stepErr != nil {
		return c.JSON(http.StatusBadRequest, sessionState(id, st, w))
	}
	return c.JSON(http.StatusOK, sessionState(id, st, w))
}

// Back moves one step toward Personal without validating.
func (h *WizardHandler) Back(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	id := c.Param("id")
	st, err := h.Sessions.Get(ctx, id)
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}

	w := h.rebuild(st)
	w.Back()
	st.Step = w.Step
	if err := h.Sessions.Save(ctx, id, st); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}
	return c.JSON(http.StatusOK, sessionState(id, st, nil))
}

// Submit hands the accumulated form to the registration service.  The
// session must be on the confirmation step; it is deleted once the
// registrant is persisted.
func (h *WizardHandler) Submit(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id := c.Param("id")
	st, err := h.Sessions.Get(ctx, id)
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}
	if st.Step != wizard.StepConfirmation {
		return c.JSON(http.StatusConflict, echo.Map{"error": "wizard is not on the confirmation step"})
	}

	reg, err := h.Svc.Submit(ctx, st.Form)
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}

	_ = h.Sessions.Delete(ctx, id)
	return c.JSON(http.StatusCreated, registrationResp{
		TicketCode:     reg.TicketCode,
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		AttendanceType: reg.AttendanceType,
	})
}

// applyField routes one key/value pair onto the form.  Unknown keys
// are rejected so client typos surface immediately.
func applyField(f *wizard.Form, key string, raw json.RawMessage) error {
	switch key {
	case wizard.FieldFirstName:
		return decodeInto(raw, &f.FirstName)
	case wizard.FieldLastName:
		return decodeInto(raw, &f.LastName)
	case wizard.FieldEmail:
		return decodeInto(raw, &f.Email)
	case wizard.FieldPhone:
		return decodeInto(raw, &f.Phone)
	case wizard.FieldOrgName:
		return decodeInto(raw, &f.OrgName)
	case wizard.FieldOrgTypeID:
		return decodeInto(raw, &f.OrgTypeID)
	case wizard.FieldOrgTypeOther:
		return decodeInto(raw, &f.OrgTypeOther)
	case wizard.FieldLocationType:
		var v string
		if err := decodeInto(raw, &v); err != nil {
			return err
		}
		f.SetLocationType(v)
	case wizard.FieldDistrictID:
		return decodeInto(raw, &f.DistrictID)
	case wizard.FieldProvinceID:
		return decodeInto(raw, &f.ProvinceID)
	case wizard.FieldTransportType:
		var v string
		if err := decodeInto(raw, &v); err != nil {
			return err
		}
		f.SetTransportType(v)
	case wizard.FieldPublicSubtypeID:
		return decodeInto(raw, &f.PublicSubtypeID)
	case wizard.FieldPublicOther:
		return decodeInto(raw, &f.PublicOther)
	case wizard.FieldVehicleTypeID:
		return decodeInto(raw, &f.VehicleTypeID)
	case wizard.FieldVehicleOther:
		return decodeInto(raw, &f.VehicleOther)
	case wizard.FieldFuelType:
		return decodeInto(raw, &f.FuelType)
	case wizard.FieldFuelOther:
		return decodeInto(raw, &f.FuelOther)
	case wizard.FieldPassengerType:
		return decodeInto(raw, &f.PassengerType)
	case wizard.FieldAttendanceType:
		var v string
		if err := decodeInto(raw, &v); err != nil {
			return err
		}
		f.SetAttendanceType(v)
	case wizard.FieldRoomID:
		return decodeInto(raw, &f.RoomID)
	case wizard.FieldConsent:
		return decodeInto(raw, &f.Consent)
	default:
		return errors.New("unknown field: " + key)
	}
	return nil
}

func knownField(key string) bool {
	for _, k := range wizard.FieldOrder {
		if k == key {
			return true
		}
	}
	return false
}

func decodeInto(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.New("invalid value")
	}
	return nil
}

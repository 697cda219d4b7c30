package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kachapon/seminar-registration/internal/model"
	"github.com/kachapon/seminar-registration/internal/service"
	"github.com/kachapon/seminar-registration/internal/ticket"
)

// StaffHandler serves the venue desk: ticket lookup, fuzzy search,
// attendance status, consumable redemption, gifts and notes.  All
// routes sit behind JWTAuth; the admin-only ones additionally behind
// RequireRole(ADMIN).
type StaffHandler struct {
	Ledger *service.LedgerService
}

func NewStaffHandler(ledger *service.LedgerService) *StaffHandler {
	return &StaffHandler{Ledger: ledger}
}

// Lookup resolves a scanned or typed ticket code.  The code is
// normalized first, so a full check-in URL or a bare six-character
// suffix both work.
func (h *StaffHandler) Lookup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sum, err := h.Ledger.Lookup(ctx, c.Param("code"))
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}
	return c.JSON(http.StatusOK, sum)
}

// Search finds registrants by name fragment, the fallback when a
// badge is missing or the camera will not cooperate.
func (h *StaffHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sums, err := h.Ledger.SearchByName(ctx, q, 20)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": sums})
}

type statusReq struct {
	Status int `json:"status" validate:"min=0,max=2"`
}

// SetStatus moves a registrant between not-checked-in, checked-in and
// not-attending.  Disallowed transitions and lost races both come
// back as conflicts.
func (h *StaffHandler) SetStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sum, err := h.Ledger.SetCheckInStatus(ctx, c.Param("code"), req.Status)
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}
	return c.JSON(http.StatusOK, sum)
}

// Redeem flips one consumable flag.  Redeeming an already-redeemed
// item is not an error; the response says so and the flag stays set.
func (h *StaffHandler) Redeem(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sum, already, err := h.Ledger.Redeem(ctx, c.Param("code"), c.Param("kind"))
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}
	return c.JSON(http.StatusOK, echo.Map{
		"registrant":       sum,
		"already_redeemed": already,
	})
}

// MarkGift records that the souvenir was handed over.  Eligibility is
// advisory; the desk can override it.
func (h *StaffHandler) MarkGift(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sum, err := h.Ledger.MarkGiftReceived(ctx, c.Param("code"))
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}
	return c.JSON(http.StatusOK, sum)
}

type notesReq struct {
	Notes string `json:"notes"`
}

// UpdateNotes replaces the free-form desk notes on a registrant.
func (h *StaffHandler) UpdateNotes(c echo.Context) error {
	var req notesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.UpdateNotes(ctx, c.Param("code"), req.Notes); err != nil {
		_, werr := writeDomainError(c, err)
		return werr
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "updated"})
}

type transportationReq struct {
	TransportType   string  `json:"transport_type" validate:"required,oneof=public private walking"`
	PublicSubtypeID *uint64 `json:"public_subtype_id"`
	PublicOther     *string `json:"public_other"`
	VehicleTypeID   *uint64 `json:"vehicle_type_id"`
	VehicleOther    *string `json:"vehicle_other"`
	FuelType        *string `json:"fuel_type"`
	FuelOther       *string `json:"fuel_other"`
	PassengerType   *string `json:"passenger_type"`
}

// ReplaceTransportation swaps a registrant's travel record, admin
// only.  The registrant keeps at most one record, so the old rows are
// dropped and the new one inserted in a single transaction.
func (h *StaffHandler) ReplaceTransportation(c echo.Context) error {
	var req transportationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown transport type"})
	}

	code, err := ticket.Normalize(c.Param("code"))
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	repo := h.Ledger.Registrants()
	reg, err := repo.GetByCode(ctx, code)
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}

	trans := &model.Transportation{
		RegistrantID:    reg.ID,
		TransportType:   req.TransportType,
		PublicSubtypeID: req.PublicSubtypeID,
		PublicOther:     req.PublicOther,
		VehicleTypeID:   req.VehicleTypeID,
		VehicleOther:    req.VehicleOther,
		FuelType:        req.FuelType,
		FuelOther:       req.FuelOther,
		PassengerType:   req.PassengerType,
	}

	tx, err := repo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := repo.ReplaceTransportationTx(ctx, tx, reg.ID, trans); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "replace failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	sum := service.RegistrantSummary{
		Registrant:   reg,
		Transport:    trans,
		GiftEligible: model.GiftEligible(trans.TransportType),
	}
	return c.JSON(http.StatusOK, sum)
}

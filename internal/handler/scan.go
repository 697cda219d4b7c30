package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kachapon/seminar-registration/internal/scanner"
	"github.com/kachapon/seminar-registration/internal/service"
)

// ScanHandler decodes a QR still uploaded by the staff app and
// resolves it straight to a registrant.  Live camera scanning happens
// on the device; this endpoint covers photos and screenshots.
type ScanHandler struct {
	Ledger *service.LedgerService
}

func NewScanHandler(ledger *service.LedgerService) *ScanHandler {
	return &ScanHandler{Ledger: ledger}
}

// Scan reads the "image" part of a multipart upload, decodes the QR
// payload and returns the matching registrant summary plus the raw
// decoded text.
func (h *ScanHandler) Scan(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read image"})
	}
	defer f.Close()

	text, err := scanner.DecodeStill(f)
	if err != nil {
		if errors.Is(err, scanner.ErrNotDetected) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no QR code detected"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sum, err := h.Ledger.Lookup(ctx, text)
	if handled, werr := writeDomainError(c, err); handled {
		return werr
	}
	return c.JSON(http.StatusOK, echo.Map{
		"decoded":    text,
		"registrant": sum,
	})
}

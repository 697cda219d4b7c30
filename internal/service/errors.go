package service

import (
	"errors"
	"fmt"

	"github.com/kachapon/seminar-registration/internal/wizard"
)

// ErrInvalidTransition is returned when a requested check-in status
// change is not one of the exposed transitions.  In particular there
// is no path out of NotAttending.
var ErrInvalidTransition = errors.New("check-in status transition not allowed")

// ErrInvalidKind is returned for a consumable kind other than
// beverage or food.  Handlers translate it into HTTP 400.
var ErrInvalidKind = errors.New("unknown consumable kind")

// ValidationError carries the field-scoped errors of a rejected
// submission.  It is fully handled at the boundary and never escapes
// as a system fault.
type ValidationError struct {
	Fields []wizard.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

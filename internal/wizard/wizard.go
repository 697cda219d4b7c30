package wizard

import (
	"errors"
	"time"
)

// Steps of the registration wizard, in order.
const (
	StepPersonal     = 0
	StepOrganization = 1
	StepAttendance   = 2
	StepConfirmation = 3
)

// ErrValidation is returned by Next and Submit when the active step
// has outstanding field errors.  The individual errors are available
// through Errors and FirstError.
var ErrValidation = errors.New("validation failed")

// ErrNotConfirmationStep is returned by Submit when the wizard has
// not yet reached the confirmation step.
var ErrNotConfirmationStep = errors.New("wizard is not on the confirmation step")

// nameClearDelay is how long the rejected duplicate name values stay
// visible before being wiped.  Forcing re-entry instead of silently
// keeping the rejected pair is intentional.
const nameClearDelay = 1500 * time.Millisecond

// Wizard holds one registration session's state: the accumulated
// form, the active step and the field errors from the last failed
// transition.  It is a plain value driven by explicit calls, so it
// can be exercised in tests without any simulated browser session.
type Wizard struct {
	Form Form
	Step int

	refs  Lookup
	guard *DupGuard
	errs  []FieldError
	done  bool
	// dup carries a duplicate verdict established outside the guard,
	// e.g. restored from a stored session or checked synchronously.
	dup bool
	// clearDelay overrides nameClearDelay; zero clears synchronously.
	clearDelay *time.Duration
}

// New starts a wizard at the Personal step.  guard may be nil when no
// duplicate checking is wanted (offline validation of a payload).
func New(refs Lookup, guard *DupGuard) *Wizard {
	return &Wizard{refs: refs, guard: guard}
}

// Errors returns the field errors recorded by the last Next or
// Submit, in field declaration order.
func (w *Wizard) Errors() []FieldError { return w.errs }

// FirstError returns the single error surfaced to the user, or nil.
func (w *Wizard) FirstError() *FieldError {
	if len(w.errs) == 0 {
		return nil
	}
	return &w.errs[0]
}

// SetDuplicate records a duplicate-name verdict directly.  The HTTP
// layer uses it after a synchronous lookup; Next treats it exactly
// like a guard flag.
func (w *Wizard) SetDuplicate(flag bool) { w.dup = flag }

// Done reports whether the wizard reached the Success pseudo-state.
func (w *Wizard) Done() bool { return w.done }

// MarkSubmitted moves the wizard into the Success pseudo-state.  The
// caller invokes it after the backend accepted the submission.
func (w *Wizard) MarkSubmitted() { w.done = true }

// ValidateStep runs the validator of the given step and returns its
// errors without mutating wizard state.
func (w *Wizard) ValidateStep(step int) []FieldError {
	switch step {
	case StepPersonal:
		return validatePersonal(&w.Form, w.duplicateFlagged())
	case StepOrganization:
		return validateOrganization(&w.Form, w.refs)
	case StepAttendance:
		return validateAttendance(&w.Form, w.refs)
	case StepConfirmation:
		return validateConfirmation(&w.Form)
	}
	return nil
}

// Next advances to the following step when the active step validates
// cleanly; otherwise it records the errors and returns ErrValidation.
// A duplicate-name failure on the Personal step additionally clears
// the name fields after a short delay.
func (w *Wizard) Next() error {
	errs := w.ValidateStep(w.Step)
	w.errs = errs
	if len(errs) > 0 {
		if w.Step == StepPersonal && w.duplicateFlagged() {
			w.scheduleNameClear()
		}
		return ErrValidation
	}
	if w.Step < StepConfirmation {
		w.Step++
	}
	return nil
}

// Back returns to the previous step.  It never validates and is a
// no-op on the first step.
func (w *Wizard) Back() {
	w.errs = nil
	if w.Step > StepPersonal {
		w.Step--
	}
}

// ValidateAll re-runs every step's validator against the accumulated
// form.  The submission endpoint uses it to revalidate one-shot
// payloads that never walked through the step transitions.
func (w *Wizard) ValidateAll() []FieldError {
	var errs []FieldError
	for step := StepPersonal; step <= StepConfirmation; step++ {
		errs = append(errs, w.ValidateStep(step)...)
	}
	w.errs = errs
	return errs
}

// Submit validates the confirmation step and reports whether the
// wizard may hand the form to persistence.  The wizard itself owns no
// I/O; the registration service performs the actual insert and then
// calls MarkSubmitted.
func (w *Wizard) Submit() error {
	if w.Step != StepConfirmation {
		return ErrNotConfirmationStep
	}
	return w.Next()
}

// SetNameClearDelay overrides the delay before a rejected name pair
// is wiped.  Zero clears synchronously, which is what server-driven
// sessions want: the store holds the state, so a timer firing against
// a wizard that has already been discarded would mutate nothing
// anyone reads.
func (w *Wizard) SetNameClearDelay(d time.Duration) {
	w.clearDelay = &d
}

func (w *Wizard) duplicateFlagged() bool {
	return w.dup || (w.guard != nil && w.guard.Flagged())
}

// scheduleNameClear wipes the rejected name pair after the UX delay.
func (w *Wizard) scheduleNameClear() {
	d := nameClearDelay
	if w.clearDelay != nil {
		d = *w.clearDelay
	}
	if d <= 0 {
		w.Form.FirstName = ""
		w.Form.LastName = ""
		return
	}
	time.AfterFunc(d, func() {
		w.Form.FirstName = ""
		w.Form.LastName = ""
	})
}

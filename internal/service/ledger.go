package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kachapon/seminar-registration/internal/lock"
	"github.com/kachapon/seminar-registration/internal/model"
	"github.com/kachapon/seminar-registration/internal/queue"
	"github.com/kachapon/seminar-registration/internal/repository"
	"github.com/kachapon/seminar-registration/internal/ticket"
)

// Consumable kinds accepted by Redeem.
const (
	ConsumableBeverage = "beverage"
	ConsumableFood     = "food"
)

// consumableColumns maps a kind to its trusted column name.  Unknown
// kinds never reach the repository.
var consumableColumns = map[string]string{
	ConsumableBeverage: "beverage_status",
	ConsumableFood:     "food_status",
}

// allowedTransitions enumerates the exposed check-in moves: the free
// 0⇄1 toggle and the one-way paths into NotAttending.  NotAttending
// has no exit.
var allowedTransitions = map[[2]int]bool{
	{model.StatusNotCheckedIn, model.StatusCheckedIn}:    true,
	{model.StatusCheckedIn, model.StatusNotCheckedIn}:    true,
	{model.StatusNotCheckedIn, model.StatusNotAttending}: true,
	{model.StatusCheckedIn, model.StatusNotAttending}:    true,
}

// RegistrantSummary is what staff see after a lookup or mutation:
// the registrant plus the derived gift eligibility and the travel
// mode it derives from.
type RegistrantSummary struct {
	Registrant   *model.Registrant     `json:"registrant"`
	Transport    *model.Transportation `json:"transportation,omitempty"`
	GiftEligible bool                  `json:"gift_eligible"`
}

// LedgerService owns the check-in state machine and the consumable
// flags.  Every mutation is serialized per ticket code through the
// locker and performed as a conditional update, so two staff scanning
// the same badge cannot both win.
type LedgerService struct {
	registrants *repository.RegistrantRepo
	locks       lock.TicketLocker
	publish     PublishFunc
	log         zerolog.Logger
}

// NewLedgerService wires the ledger.  publish may be nil to disable
// the check-in thank-you notification.
func NewLedgerService(registrants *repository.RegistrantRepo, locks lock.TicketLocker, publish PublishFunc, log zerolog.Logger) *LedgerService {
	return &LedgerService{registrants: registrants, locks: locks, publish: publish, log: log}
}

// Registrants exposes the underlying repo for callers that need raw
// row access, e.g. the admin transportation endpoint.
func (s *LedgerService) Registrants() *repository.RegistrantRepo { return s.registrants }

// Lookup resolves raw staff input (typed suffix, pasted code or
// scanned payload) to a registrant summary.  ticket.ErrInvalidCode is
// returned for unparseable input and repository.ErrRegistrantNotFound
// when the code does not resolve.
func (s *LedgerService) Lookup(ctx context.Context, rawCode string) (*RegistrantSummary, error) {
	code, err := ticket.Normalize(rawCode)
	if err != nil {
		return nil, err
	}
	reg, err := s.registrants.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, reg)
}

// SearchByName returns candidate registrants for a fuzzy name query.
// A single candidate behaves like an exact lookup; more than one
// requires the operator to pick explicitly before any mutation, so
// the service never auto-selects a "best" match.
func (s *LedgerService) SearchByName(ctx context.Context, query string, limit int) ([]RegistrantSummary, error) {
	regs, err := s.registrants.SearchByName(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]RegistrantSummary, 0, len(regs))
	for i := range regs {
		sum, err := s.summarize(ctx, &regs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	return out, nil
}

// SetCheckInStatus applies one transition of the check-in state
// machine.  Setting the current status again is a no-op success, an
// unexposed transition returns ErrInvalidTransition, and a lost race
// surfaces as repository.ErrConflict.  Entering CheckedIn dispatches
// the thank-you notification without gating the transition on it.
func (s *LedgerService) SetCheckInStatus(ctx context.Context, rawCode string, target int) (*RegistrantSummary, error) {
	if target != model.StatusNotCheckedIn && target != model.StatusCheckedIn && target != model.StatusNotAttending {
		return nil, ErrInvalidTransition
	}
	code, err := ticket.Normalize(rawCode)
	if err != nil {
		return nil, err
	}
	release, err := s.locks.Acquire(ctx, code)
	if err != nil {
		return nil, err
	}
	defer release()

	reg, err := s.registrants.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if reg.CheckInStatus == target {
		return s.summarize(ctx, reg)
	}
	if !allowedTransitions[[2]int{reg.CheckInStatus, target}] {
		return nil, ErrInvalidTransition
	}
	if err := s.registrants.UpdateCheckInStatus(ctx, code, reg.CheckInStatus, target); err != nil {
		return nil, err
	}
	reg.CheckInStatus = target

	if target == model.StatusCheckedIn {
		s.notifyCheckedIn(reg)
	}
	return s.summarize(ctx, reg)
}

// Redeem marks a beverage or food as received.  Redeeming an already
// received consumable is a success with no state change, never an
// error, so scanner retries and double-taps stay invisible to staff.
func (s *LedgerService) Redeem(ctx context.Context, rawCode, kind string) (*RegistrantSummary, bool, error) {
	column, ok := consumableColumns[kind]
	if !ok {
		return nil, false, ErrInvalidKind
	}
	code, err := ticket.Normalize(rawCode)
	if err != nil {
		return nil, false, err
	}
	release, err := s.locks.Acquire(ctx, code)
	if err != nil {
		return nil, false, err
	}
	defer release()

	already, err := s.registrants.RedeemConsumable(ctx, code, column)
	if err != nil {
		return nil, false, err
	}
	reg, err := s.registrants.GetByCode(ctx, code)
	if err != nil {
		return nil, false, err
	}
	sum, err := s.summarize(ctx, reg)
	if err != nil {
		return nil, false, err
	}
	return sum, already, nil
}

// MarkGiftReceived records the souvenir handover.  Eligibility is
// display-only and deliberately not enforced here; the operator may
// override it.
func (s *LedgerService) MarkGiftReceived(ctx context.Context, rawCode string) (*RegistrantSummary, error) {
	code, err := ticket.Normalize(rawCode)
	if err != nil {
		return nil, err
	}
	if err := s.registrants.MarkGiftReceived(ctx, code); err != nil {
		return nil, err
	}
	reg, err := s.registrants.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, reg)
}

// UpdateNotes replaces the staff-only notes for a registrant.
func (s *LedgerService) UpdateNotes(ctx context.Context, rawCode, notes string) error {
	code, err := ticket.Normalize(rawCode)
	if err != nil {
		return err
	}
	return s.registrants.UpdateAdminNotes(ctx, code, notes)
}

// summarize attaches the transportation record and the derived gift
// eligibility.  The eligibility rule lives in exactly one place,
// model.GiftEligible; this is the only call site on the read path.
func (s *LedgerService) summarize(ctx context.Context, reg *model.Registrant) (*RegistrantSummary, error) {
	trans, err := s.registrants.GetTransportation(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	eligible := false
	if trans != nil {
		eligible = model.GiftEligible(trans.TransportType)
	}
	return &RegistrantSummary{Registrant: reg, Transport: trans, GiftEligible: eligible}, nil
}

func (s *LedgerService) notifyCheckedIn(reg *model.Registrant) {
	if s.publish == nil {
		return
	}
	ev := queue.RegistrantNotifyEvent{
		Kind:       queue.KindCheckedIn,
		TicketCode: reg.TicketCode,
		FirstName:  reg.FirstName,
		LastName:   reg.LastName,
		Email:      reg.Email,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.publish(ctx, s.log, ev); err != nil {
			s.log.Warn().Err(err).Str("ticket", ev.TicketCode).Msg("check-in notification publish failed")
		}
	}()
}

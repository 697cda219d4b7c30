// Package service implements the registration submission and the
// venue-side ledgers on top of the repository layer.  Handlers stay
// thin; everything with invariants lives here so it can be tested
// without HTTP.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kachapon/seminar-registration/internal/model"
	"github.com/kachapon/seminar-registration/internal/queue"
	"github.com/kachapon/seminar-registration/internal/repository"
	"github.com/kachapon/seminar-registration/internal/ticket"
	"github.com/kachapon/seminar-registration/internal/wizard"
)

// codeRetries bounds how often a colliding ticket code is regenerated
// before the submission is given up as a persistence failure.
const codeRetries = 5

// PublishFunc dispatches one notification event.  It is injected so
// tests can capture events instead of talking to a broker.
type PublishFunc func(ctx context.Context, log zerolog.Logger, ev queue.RegistrantNotifyEvent) error

// RegistrationService turns a validated wizard form into a persisted
// registrant with a fresh ticket code.
type RegistrationService struct {
	registrants *repository.RegistrantRepo
	refs        wizard.Lookup
	publish     PublishFunc
	log         zerolog.Logger
}

// NewRegistrationService wires the service.  publish may be nil to
// disable notifications (tests, offline tooling).
func NewRegistrationService(registrants *repository.RegistrantRepo, refs wizard.Lookup, publish PublishFunc, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{registrants: registrants, refs: refs, publish: publish, log: log}
}

// Lookup exposes the reference lookup so handlers can build wizards
// against the same snapshot the service validates with.
func (s *RegistrationService) Lookup() wizard.Lookup { return s.refs }

// Registrants exposes the repository for the duplicate-check endpoint.
func (s *RegistrationService) Registrants() *repository.RegistrantRepo { return s.registrants }

// Submit validates the accumulated form against every wizard step,
// re-checks the duplicate-name policy inside the insert transaction,
// allocates a unique ticket code and creates the registrant together
// with its transportation record as one unit.  On success the
// confirmation notification is dispatched fire-and-forget.
//
// Returned errors: *ValidationError for field failures,
// repository.ErrDuplicateEntrant for a name collision, anything else
// is a persistence failure.
func (s *RegistrationService) Submit(ctx context.Context, form wizard.Form) (*model.Registrant, error) {
	// A one-shot payload never went through the step transitions, so
	// the mode setters run here to drop sub-fields of branches the
	// chosen modes exclude.  Without this a walking registration could
	// smuggle in vehicle data, or a morning one a breakout room.
	form.SetTransportType(form.TransportType)
	form.SetLocationType(form.LocationType)
	form.SetAttendanceType(form.AttendanceType)

	w := wizard.New(s.refs, nil)
	w.Form = form
	if errs := w.ValidateAll(); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	reg := registrantFromForm(&form)
	trans := transportationFromForm(&form)

	tx, err := s.registrants.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// The debounced client-side guard is advisory; the policy is
	// enforced here, before any row is written.
	exists, err := s.registrants.NameExistsTx(ctx, tx, form.FirstName, form.LastName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrDuplicateEntrant
	}

	for attempt := 0; ; attempt++ {
		code, err := ticket.Generate()
		if err != nil {
			return nil, err
		}
		reg.TicketCode = code
		err = s.registrants.CreateTx(ctx, tx, reg, trans)
		if err == nil {
			break
		}
		if err == repository.ErrCodeCollision && attempt < codeRetries {
			continue
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.notify(queue.RegistrantNotifyEvent{
		Kind:           queue.KindRegistrationConfirmed,
		TicketCode:     reg.TicketCode,
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		Email:          reg.Email,
		AttendanceType: reg.AttendanceType,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	})
	return reg, nil
}

// notify dispatches an event without ever failing the caller.  The
// publish itself runs on a fresh context so a finished HTTP request
// cannot cancel it mid-flight.
func (s *RegistrationService) notify(ev queue.RegistrantNotifyEvent) {
	if s.publish == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.publish(ctx, s.log, ev); err != nil {
			s.log.Warn().Err(err).Str("ticket", ev.TicketCode).Msg("notification publish failed")
		}
	}()
}

func registrantFromForm(f *wizard.Form) *model.Registrant {
	return &model.Registrant{
		FirstName:      f.FirstName,
		LastName:       f.LastName,
		Email:          f.Email,
		Phone:          f.Phone,
		OrgName:        f.OrgName,
		OrgTypeID:      derefOr(f.OrgTypeID, 0),
		OrgTypeOther:   strPtrOrNil(f.OrgTypeOther),
		LocationType:   f.LocationType,
		DistrictID:     f.DistrictID,
		ProvinceID:     f.ProvinceID,
		AttendanceType: f.AttendanceType,
		RoomID:         f.RoomID,
	}
}

func transportationFromForm(f *wizard.Form) *model.Transportation {
	if f.TransportType == "" {
		return nil
	}
	return &model.Transportation{
		TransportType:   f.TransportType,
		PublicSubtypeID: f.PublicSubtypeID,
		PublicOther:     strPtrOrNil(f.PublicOther),
		VehicleTypeID:   f.VehicleTypeID,
		VehicleOther:    strPtrOrNil(f.VehicleOther),
		FuelType:        strPtrOrNil(f.FuelType),
		FuelOther:       strPtrOrNil(f.FuelOther),
		PassengerType:   strPtrOrNil(f.PassengerType),
	}
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefOr(v *uint64, def uint64) uint64 {
	if v == nil {
		return def
	}
	return *v
}

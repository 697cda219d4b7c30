package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kachapon/seminar-registration/internal/model"
)

// RegistrantRepo provides persistence for registrants and their
// transportation sub-records.  A registrant and its transportation
// are always written inside one transaction so a half-created
// registration can never be observed.  All timestamp fields are
// stored in UTC.
type RegistrantRepo struct {
	db *sql.DB
}

// NewRegistrantRepo returns a new RegistrantRepo bound to the given database.
func NewRegistrantRepo(db *sql.DB) *RegistrantRepo { return &RegistrantRepo{db: db} }

// DB exposes the underlying handle so handlers and services can open
// transactions spanning multiple repository calls.
func (r *RegistrantRepo) DB() *sql.DB { return r.db }

const registrantColumns = `id, ticket_code, first_name, last_name, email, phone,
	org_name, org_type_id, org_type_other, location_type, district_id, province_id,
	attendance_type, room_id, check_in_status, beverage_status, food_status,
	gift_received, admin_notes, created_at, updated_at`

// scanRegistrant reads one row in registrantColumns order.
func scanRegistrant(row interface{ Scan(...any) error }) (*model.Registrant, error) {
	var reg model.Registrant
	var orgTypeOther, adminNotes sql.NullString
	var districtID, provinceID, roomID sql.NullInt64
	err := row.Scan(
		&reg.ID, &reg.TicketCode, &reg.FirstName, &reg.LastName, &reg.Email, &reg.Phone,
		&reg.OrgName, &reg.OrgTypeID, &orgTypeOther, &reg.LocationType, &districtID, &provinceID,
		&reg.AttendanceType, &roomID, &reg.CheckInStatus, &reg.BeverageStatus, &reg.FoodStatus,
		&reg.GiftReceived, &adminNotes, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if orgTypeOther.Valid {
		v := orgTypeOther.String
		reg.OrgTypeOther = &v
	}
	if adminNotes.Valid {
		v := adminNotes.String
		reg.AdminNotes = &v
	}
	if districtID.Valid {
		v := uint64(districtID.Int64)
		reg.DistrictID = &v
	}
	if provinceID.Valid {
		v := uint64(provinceID.Int64)
		reg.ProvinceID = &v
	}
	if roomID.Valid {
		v := uint64(roomID.Int64)
		reg.RoomID = &v
	}
	return &reg, nil
}

// NameExists reports whether a registrant with the exact (first, last)
// pair already exists.  The comparison is case-insensitive, matching
// the collation of the name columns.
func (r *RegistrantRepo) NameExists(ctx context.Context, firstName, lastName string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM registrants WHERE first_name = ? AND last_name = ?)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q,
		strings.TrimSpace(firstName), strings.TrimSpace(lastName)).Scan(&exists)
	return exists, err
}

// NameExistsTx is NameExists inside an existing transaction.  The
// registration service calls it right before the insert so the
// duplicate policy holds even when the debounced client-side check
// raced another submission.
func (r *RegistrantRepo) NameExistsTx(ctx context.Context, tx *sql.Tx, firstName, lastName string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM registrants WHERE first_name = ? AND last_name = ?)`
	var exists bool
	err := tx.QueryRowContext(ctx, q,
		strings.TrimSpace(firstName), strings.TrimSpace(lastName)).Scan(&exists)
	return exists, err
}

// CreateTx inserts a registrant and, when trans is non-nil, its
// transportation record within the scope of an existing transaction.
// It populates the generated IDs on the provided structs.  A unique
// index violation on ticket_code is reported as ErrCodeCollision so
// the caller can allocate a fresh code and retry; the caller must
// commit or rollback the transaction.
func (r *RegistrantRepo) CreateTx(ctx context.Context, tx *sql.Tx, reg *model.Registrant, trans *model.Transportation) error {
	const q = `INSERT INTO registrants
		(ticket_code, first_name, last_name, email, phone,
		 org_name, org_type_id, org_type_other, location_type, district_id, province_id,
		 attendance_type, room_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		reg.TicketCode, reg.FirstName, reg.LastName, reg.Email, reg.Phone,
		reg.OrgName, reg.OrgTypeID, reg.OrgTypeOther, reg.LocationType, reg.DistrictID, reg.ProvinceID,
		reg.AttendanceType, reg.RoomID,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrCodeCollision
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reg.ID = uint64(id)
	if trans == nil {
		return nil
	}
	trans.RegistrantID = reg.ID
	return r.insertTransportationTx(ctx, tx, trans)
}

func (r *RegistrantRepo) insertTransportationTx(ctx context.Context, tx *sql.Tx, trans *model.Transportation) error {
	const q = `INSERT INTO transportations
		(registrant_id, transport_type, public_subtype_id, public_other,
		 vehicle_type_id, vehicle_other, fuel_type, fuel_other, passenger_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		trans.RegistrantID, trans.TransportType, trans.PublicSubtypeID, trans.PublicOther,
		trans.VehicleTypeID, trans.VehicleOther, trans.FuelType, trans.FuelOther, trans.PassengerType,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	trans.ID = uint64(id)
	return nil
}

// GetByCode returns the registrant identified by the canonical ticket
// code, or ErrRegistrantNotFound.
func (r *RegistrantRepo) GetByCode(ctx context.Context, code string) (*model.Registrant, error) {
	q := `SELECT ` + registrantColumns + ` FROM registrants WHERE ticket_code = ?`
	reg, err := scanRegistrant(r.db.QueryRowContext(ctx, q, code))
	if err == sql.ErrNoRows {
		return nil, ErrRegistrantNotFound
	}
	return reg, err
}

// GetTransportation returns the registrant's transportation record or
// nil when none was captured at registration time.
func (r *RegistrantRepo) GetTransportation(ctx context.Context, registrantID uint64) (*model.Transportation, error) {
	const q = `SELECT id, registrant_id, transport_type, public_subtype_id, public_other,
		vehicle_type_id, vehicle_other, fuel_type, fuel_other, passenger_type, created_at
		FROM transportations WHERE registrant_id = ?`
	var t model.Transportation
	var publicSubtypeID, vehicleTypeID sql.NullInt64
	var publicOther, vehicleOther, fuelType, fuelOther, passengerType sql.NullString
	err := r.db.QueryRowContext(ctx, q, registrantID).Scan(
		&t.ID, &t.RegistrantID, &t.TransportType, &publicSubtypeID, &publicOther,
		&vehicleTypeID, &vehicleOther, &fuelType, &fuelOther, &passengerType, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if publicSubtypeID.Valid {
		v := uint64(publicSubtypeID.Int64)
		t.PublicSubtypeID = &v
	}
	if vehicleTypeID.Valid {
		v := uint64(vehicleTypeID.Int64)
		t.VehicleTypeID = &v
	}
	for _, pair := range []struct {
		src sql.NullString
		dst **string
	}{
		{publicOther, &t.PublicOther},
		{vehicleOther, &t.VehicleOther},
		{fuelType, &t.FuelType},
		{fuelOther, &t.FuelOther},
		{passengerType, &t.PassengerType},
	} {
		if pair.src.Valid {
			v := pair.src.String
			*pair.dst = &v
		}
	}
	return &t, nil
}

// SearchByName returns registrants whose first or last name contains
// the query, newest first.  The result is a candidate list: when it
// holds more than one row the staff UI must ask the operator to pick
// before any mutation proceeds.
func (r *RegistrantRepo) SearchByName(ctx context.Context, query string, limit int) ([]model.Registrant, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	q := `SELECT ` + registrantColumns + ` FROM registrants
		WHERE LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?
		   OR LOWER(CONCAT(first_name, ' ', last_name)) LIKE ?
		ORDER BY created_at DESC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Registrant, 0, limit)
	for rows.Next() {
		reg, err := scanRegistrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *reg)
	}
	return out, rows.Err()
}

// UpdateCheckInStatus performs a compare-and-swap on the check-in
// status: the row is updated only when its current status still
// equals from.  ErrConflict means another staff member changed the
// status first; ErrRegistrantNotFound means the code does not
// resolve.
func (r *RegistrantRepo) UpdateCheckInStatus(ctx context.Context, code string, from, to int) error {
	const q = `UPDATE registrants SET check_in_status = ? WHERE ticket_code = ? AND check_in_status = ?`
	res, err := r.db.ExecContext(ctx, q, to, code, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	exists, err := r.codeExists(ctx, code)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRegistrantNotFound
	}
	return ErrConflict
}

// RedeemConsumable sets the beverage or food flag to received.  The
// flags are monotonic: the update only matches rows where the flag is
// still 0, and a second redemption reports alreadyRedeemed instead of
// an error so scanner retries stay invisible.  column must be a
// trusted identifier supplied by the service layer.
func (r *RegistrantRepo) RedeemConsumable(ctx context.Context, code, column string) (alreadyRedeemed bool, err error) {
	q := `UPDATE registrants SET ` + column + ` = 1 WHERE ticket_code = ? AND ` + column + ` = 0`
	res, err := r.db.ExecContext(ctx, q, code)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return false, nil
	}
	exists, err := r.codeExists(ctx, code)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrRegistrantNotFound
	}
	return true, nil
}

// MarkGiftReceived records that the souvenir was handed over.
// Idempotent the same way consumable redemption is.
func (r *RegistrantRepo) MarkGiftReceived(ctx context.Context, code string) error {
	const q = `UPDATE registrants SET gift_received = 1 WHERE ticket_code = ?`
	res, err := r.db.ExecContext(ctx, q, code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		exists, err := r.codeExists(ctx, code)
		if err != nil {
			return err
		}
		if !exists {
			return ErrRegistrantNotFound
		}
	}
	return nil
}

// UpdateAdminNotes replaces the staff-only free-text notes.
func (r *RegistrantRepo) UpdateAdminNotes(ctx context.Context, code string, notes string) error {
	const q = `UPDATE registrants SET admin_notes = ? WHERE ticket_code = ?`
	res, err := r.db.ExecContext(ctx, q, notes, code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		exists, err := r.codeExists(ctx, code)
		if err != nil {
			return err
		}
		if !exists {
			return ErrRegistrantNotFound
		}
	}
	return nil
}

// ReplaceTransportationTx swaps a registrant's transportation record
// wholesale (admin edit): any existing record is deleted and the new
// one, when non-nil, inserted, all inside the provided transaction.
func (r *RegistrantRepo) ReplaceTransportationTx(ctx context.Context, tx *sql.Tx, registrantID uint64, trans *model.Transportation) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM transportations WHERE registrant_id = ?`, registrantID); err != nil {
		return err
	}
	if trans == nil {
		return nil
	}
	trans.RegistrantID = registrantID
	return r.insertTransportationTx(ctx, tx, trans)
}

func (r *RegistrantRepo) codeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM registrants WHERE ticket_code = ?)`, code).Scan(&exists)
	return exists, err
}

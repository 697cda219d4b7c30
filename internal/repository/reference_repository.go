package repository

import (
	"context"
	"database/sql"

	"github.com/kachapon/seminar-registration/internal/model"
)

// ReferenceRepo reads the lookup tables consumed by the registration
// wizard: organization types, public transport subtypes, vehicle
// types, fuel types, seminar rooms, Bangkok districts and provinces.
// The service never mutates these tables; they are owned by the
// event organizers and loaded once per request (the response cache
// middleware keeps this cheap).
type ReferenceRepo struct {
	db *sql.DB
}

// NewReferenceRepo returns a new ReferenceRepo bound to the given database.
func NewReferenceRepo(db *sql.DB) *ReferenceRepo { return &ReferenceRepo{db: db} }

// LoadAll fetches every lookup list in one call.
func (r *ReferenceRepo) LoadAll(ctx context.Context) (*model.ReferenceData, error) {
	var ref model.ReferenceData
	var err error
	if ref.OrgTypes, err = r.loadRefItems(ctx, "org_types"); err != nil {
		return nil, err
	}
	if ref.PublicSubtypes, err = r.loadRefItems(ctx, "public_transport_subtypes"); err != nil {
		return nil, err
	}
	if ref.VehicleTypes, err = r.loadRefItems(ctx, "vehicle_types"); err != nil {
		return nil, err
	}
	if ref.FuelTypes, err = r.loadFuelTypes(ctx); err != nil {
		return nil, err
	}
	if ref.Rooms, err = r.loadRefItems(ctx, "rooms"); err != nil {
		return nil, err
	}
	if ref.Districts, err = r.loadAreas(ctx, "districts"); err != nil {
		return nil, err
	}
	if ref.Provinces, err = r.loadAreas(ctx, "provinces"); err != nil {
		return nil, err
	}
	return &ref, nil
}

// loadRefItems reads an id/name/is_other lookup table.  table comes
// from the fixed set above, never from user input.
func (r *ReferenceRepo) loadRefItems(ctx context.Context, table string) ([]model.RefItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, is_other FROM `+table+` ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.RefItem, 0)
	for rows.Next() {
		var it model.RefItem
		if err := rows.Scan(&it.ID, &it.Name, &it.IsOther); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *ReferenceRepo) loadFuelTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM fuel_types ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *ReferenceRepo) loadAreas(ctx context.Context, table string) ([]model.Area, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	areas := make([]model.Area, 0)
	for rows.Next() {
		var a model.Area
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

package model

// Reference data consumed by the registration wizard.  These lists
// are read-only lookup tables owned by the event organizers; the
// service only enumerates them.

// RefItem is a generic lookup row shared by organization types,
// public transport subtypes, vehicle types and seminar rooms.
type RefItem struct {
	ID      uint64 `json:"id"`       // <table>.id
	Name    string `json:"name"`     // <table>.name
	IsOther bool   `json:"is_other"` // sentinel row that unlocks the free-text field
}

// Area is a lookup row for Bangkok districts and provinces.
type Area struct {
	ID   uint64 `json:"id"`   // districts.id / provinces.id
	Name string `json:"name"` // districts.name / provinces.name
}

// ReferenceData aggregates every lookup list the wizard needs so the
// client can fetch them in one request.
type ReferenceData struct {
	OrgTypes       []RefItem `json:"org_types"`
	PublicSubtypes []RefItem `json:"public_subtypes"`
	VehicleTypes   []RefItem `json:"vehicle_types"`
	FuelTypes      []string  `json:"fuel_types"`
	Rooms          []RefItem `json:"rooms"`
	Districts      []Area    `json:"districts"`
	Provinces      []Area    `json:"provinces"`
}

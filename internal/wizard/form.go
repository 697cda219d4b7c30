// Package wizard implements the four-step registration form as an
// explicit state machine: Personal(0) → Organization(1) →
// Attendance(2) → Confirmation(3), terminating in Success once the
// backend accepts the submission.  Moving forward requires the active
// step to validate cleanly; moving back never validates; steps cannot
// be skipped.
package wizard

import "github.com/kachapon/seminar-registration/internal/model"

// Field keys.  Their declaration order inside each step decides which
// error is surfaced as the single user-facing notification when
// validation fails (all field errors are still recorded for inline
// display).
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldPhone     = "phone"

	FieldOrgName         = "org_name"
	FieldOrgTypeID       = "org_type_id"
	FieldOrgTypeOther    = "org_type_other"
	FieldLocationType    = "location_type"
	FieldDistrictID      = "district_id"
	FieldProvinceID      = "province_id"
	FieldTransportType   = "transport_type"
	FieldPublicSubtypeID = "public_subtype_id"
	FieldPublicOther     = "public_other"
	FieldVehicleTypeID   = "vehicle_type_id"
	FieldVehicleOther    = "vehicle_other"
	FieldFuelType        = "fuel_type"
	FieldFuelOther       = "fuel_other"
	FieldPassengerType   = "passenger_type"

	FieldAttendanceType = "attendance_type"
	FieldRoomID         = "room_id"

	FieldConsent = "consent"
)

// FieldOrder lists every field key in declaration order.  Callers
// applying a partial update walk it so identical payloads always
// touch the form in the same sequence.
var FieldOrder = []string{
	FieldFirstName, FieldLastName, FieldEmail, FieldPhone,
	FieldOrgName, FieldOrgTypeID, FieldOrgTypeOther,
	FieldLocationType, FieldDistrictID, FieldProvinceID,
	FieldTransportType, FieldPublicSubtypeID, FieldPublicOther,
	FieldVehicleTypeID, FieldVehicleOther, FieldFuelType, FieldFuelOther,
	FieldPassengerType,
	FieldAttendanceType, FieldRoomID,
	FieldConsent,
}

// Form accumulates everything the attendee enters across the four
// steps.  Pointer fields distinguish "not chosen" from a zero id.
type Form struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	OrgName      string  `json:"org_name"`
	OrgTypeID    *uint64 `json:"org_type_id"`
	OrgTypeOther string  `json:"org_type_other"`

	LocationType string  `json:"location_type"`
	DistrictID   *uint64 `json:"district_id"`
	ProvinceID   *uint64 `json:"province_id"`

	TransportType   string  `json:"transport_type"`
	PublicSubtypeID *uint64 `json:"public_subtype_id"`
	PublicOther     string  `json:"public_other"`
	VehicleTypeID   *uint64 `json:"vehicle_type_id"`
	VehicleOther    string  `json:"vehicle_other"`
	FuelType        string  `json:"fuel_type"`
	FuelOther       string  `json:"fuel_other"`
	PassengerType   string  `json:"passenger_type"`

	AttendanceType string  `json:"attendance_type"`
	RoomID         *uint64 `json:"room_id"`

	Consent bool `json:"consent"`
}

// SetTransportType switches the travel mode and wipes every sub-field
// belonging to the other modes.  Mutual exclusivity is enforced by
// clearing, not by hiding, so a payload can never smuggle stale
// private-transport data under a walking registration.
func (f *Form) SetTransportType(t string) {
	f.TransportType = t
	if t != model.TransportPublic {
		f.PublicSubtypeID = nil
		f.PublicOther = ""
	}
	if t != model.TransportPrivate {
		f.VehicleTypeID = nil
		f.VehicleOther = ""
		f.FuelType = ""
		f.FuelOther = ""
		f.PassengerType = ""
	}
}

// SetLocationType switches between bangkok and province and clears
// the sub-field that no longer matches.
func (f *Form) SetLocationType(t string) {
	f.LocationType = t
	if t != model.LocationBangkok {
		f.DistrictID = nil
	}
	if t != model.LocationProvince {
		f.ProvinceID = nil
	}
}

// SetAttendanceType changes the session segment and drops the room
// selection when the afternoon is no longer included.
func (f *Form) SetAttendanceType(t string) {
	f.AttendanceType = t
	if !model.AfternoonIncluded(t) {
		f.RoomID = nil
	}
}

package model

import "time"

// Check-in status values stored in registrants.check_in_status.  The
// transitions between them are enforced by the ledger service: the
// toggle between NotCheckedIn and CheckedIn is free in both
// directions, either of those states may move to NotAttending, and
// nothing moves out of NotAttending.
const (
	StatusNotCheckedIn = 0 // registrant has not arrived yet
	StatusCheckedIn    = 1 // registrant has been checked in at the venue
	StatusNotAttending = 2 // registrant marked as not attending
)

// Attendance type values stored in registrants.attendance_type.
const (
	AttendanceMorning   = "morning"
	AttendanceAfternoon = "afternoon"
	AttendanceFullDay   = "full_day"
)

// Location type values stored in registrants.location_type.
const (
	LocationBangkok  = "bangkok"
	LocationProvince = "province"
)

// Registrant records one attendee of the seminar.  It is created once
// at successful wizard submission and from then on only its status
// fields and admin notes are mutated.  The ticket code uniquely and
// permanently identifies the registrant; it is never reused or
// changed after insertion.
//
// Fields:
//
//	ID             – primary key identifier.
//	TicketCode     – canonical CCI-XXXXXX code assigned at creation.
//	FirstName      – attendee first name.
//	LastName       – attendee last name.
//	Email          – contact email, format checked by the wizard.
//	Phone          – local phone number (9–10 digits, leading 0).
//	OrgName        – organization the attendee belongs to.
//	OrgTypeID      – reference to organization_types.
//	OrgTypeOther   – free text when the type is the "other" sentinel.
//	LocationType   – "bangkok" or "province".
//	DistrictID     – Bangkok district reference; set iff LocationType is bangkok.
//	ProvinceID     – province reference; set iff LocationType is province.
//	AttendanceType – "morning", "afternoon" or "full_day".
//	RoomID         – afternoon seminar room; set iff attendance includes the afternoon.
//	CheckInStatus  – 0 not checked in, 1 checked in, 2 not attending.
//	BeverageStatus – 0 not received, 1 received (monotonic).
//	FoodStatus     – 0 not received, 1 received (monotonic).
//	GiftReceived   – whether the souvenir was handed over.
//	AdminNotes     – free text mutable by staff only.
type Registrant struct {
	ID             uint64    // registrants.id
	TicketCode     string    // registrants.ticket_code
	FirstName      string    // registrants.first_name
	LastName       string    // registrants.last_name
	Email          string    // registrants.email
	Phone          string    // registrants.phone
	OrgName        string    // registrants.org_name
	OrgTypeID      uint64    // registrants.org_type_id
	OrgTypeOther   *string   // registrants.org_type_other (nullable)
	LocationType   string    // registrants.location_type
	DistrictID     *uint64   // registrants.district_id (nullable)
	ProvinceID     *uint64   // registrants.province_id (nullable)
	AttendanceType string    // registrants.attendance_type
	RoomID         *uint64   // registrants.room_id (nullable)
	CheckInStatus  int       // registrants.check_in_status
	BeverageStatus int       // registrants.beverage_status
	FoodStatus     int       // registrants.food_status
	GiftReceived   bool      // registrants.gift_received
	AdminNotes     *string   // registrants.admin_notes (nullable)
	CreatedAt      time.Time // registrants.created_at
	UpdatedAt      time.Time // registrants.updated_at
}

// AfternoonIncluded reports whether the attendance type covers the
// afternoon segment, which is what makes a room selection mandatory.
func AfternoonIncluded(attendanceType string) bool {
	return attendanceType == AttendanceAfternoon || attendanceType == AttendanceFullDay
}

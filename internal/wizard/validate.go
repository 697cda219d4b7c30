package wizard

import (
	"regexp"

	"github.com/kachapon/seminar-registration/internal/model"
)

// FieldError is one field-scoped validation failure.  Errors are
// produced in field declaration order, so the first element is the
// one surfaced as the user-facing notification.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Local phone numbers: 9 or 10 digits starting with 0.
	phoneRe = regexp.MustCompile(`^0\d{8,9}$`)
)

// Lookup answers reference-data questions the validators need: which
// lookup rows are the "other" sentinel and which ids exist at all.
// It is built from the read-only reference lists, keeping the wizard
// testable without a database.
type Lookup struct {
	OrgTypeOther map[uint64]bool // org type id -> is the "other" sentinel
	PublicOther  map[uint64]bool // public subtype id -> is the "other" sentinel
	VehicleOther map[uint64]bool // vehicle type id -> is the "other" sentinel
	FuelTypes    map[string]bool // known fuel type names
	Rooms        map[uint64]bool // known afternoon room ids
	Districts    map[uint64]bool // known Bangkok district ids
	Provinces    map[uint64]bool // known province ids
}

// NewLookup indexes reference data for the validators.
func NewLookup(ref model.ReferenceData) Lookup {
	l := Lookup{
		OrgTypeOther: make(map[uint64]bool, len(ref.OrgTypes)),
		PublicOther:  make(map[uint64]bool, len(ref.PublicSubtypes)),
		VehicleOther: make(map[uint64]bool, len(ref.VehicleTypes)),
		FuelTypes:    make(map[string]bool, len(ref.FuelTypes)),
		Rooms:        make(map[uint64]bool, len(ref.Rooms)),
		Districts:    make(map[uint64]bool, len(ref.Districts)),
		Provinces:    make(map[uint64]bool, len(ref.Provinces)),
	}
	for _, t := range ref.OrgTypes {
		l.OrgTypeOther[t.ID] = t.IsOther
	}
	for _, t := range ref.PublicSubtypes {
		l.PublicOther[t.ID] = t.IsOther
	}
	for _, t := range ref.VehicleTypes {
		l.VehicleOther[t.ID] = t.IsOther
	}
	for _, f := range ref.FuelTypes {
		l.FuelTypes[f] = true
	}
	for _, r := range ref.Rooms {
		l.Rooms[r.ID] = true
	}
	for _, d := range ref.Districts {
		l.Districts[d.ID] = true
	}
	for _, p := range ref.Provinces {
		l.Provinces[p.ID] = true
	}
	return l
}

// validatePersonal checks step 0.  duplicate is the ephemeral flag
// maintained by the duplicate-entrant guard; when set it fails the
// step with a duplicate-specific message on the first name field.
func validatePersonal(f *Form, duplicate bool) []FieldError {
	var errs []FieldError
	if f.FirstName == "" {
		errs = append(errs, FieldError{FieldFirstName, "first name is required"})
	}
	if f.LastName == "" {
		errs = append(errs, FieldError{FieldLastName, "last name is required"})
	}
	if f.Email == "" {
		errs = append(errs, FieldError{FieldEmail, "email is required"})
	} else if !emailRe.MatchString(f.Email) {
		errs = append(errs, FieldError{FieldEmail, "email format is invalid"})
	}
	if f.Phone == "" {
		errs = append(errs, FieldError{FieldPhone, "phone is required"})
	} else if !phoneRe.MatchString(f.Phone) {
		errs = append(errs, FieldError{FieldPhone, "phone must be 9-10 digits starting with 0"})
	}
	if duplicate && f.FirstName != "" && f.LastName != "" {
		errs = append(errs, FieldError{FieldFirstName, "a registrant with this first and last name already exists"})
	}
	return errs
}

// validateOrganization checks step 1: organization identity, location
// and travel mode, each with their conditional required sub-fields.
func validateOrganization(f *Form, refs Lookup) []FieldError {
	var errs []FieldError
	if f.OrgName == "" {
		errs = append(errs, FieldError{FieldOrgName, "organization name is required"})
	}
	switch {
	case f.OrgTypeID == nil:
		errs = append(errs, FieldError{FieldOrgTypeID, "organization type is required"})
	case refs.OrgTypeOther[*f.OrgTypeID] && f.OrgTypeOther == "":
		errs = append(errs, FieldError{FieldOrgTypeOther, "please specify the organization type"})
	}

	switch f.LocationType {
	case "":
		errs = append(errs, FieldError{FieldLocationType, "location type is required"})
	case model.LocationBangkok:
		if f.DistrictID == nil {
			errs = append(errs, FieldError{FieldDistrictID, "district is required"})
		} else if !refs.Districts[*f.DistrictID] {
			errs = append(errs, FieldError{FieldDistrictID, "unknown district"})
		}
	case model.LocationProvince:
		if f.ProvinceID == nil {
			errs = append(errs, FieldError{FieldProvinceID, "province is required"})
		} else if !refs.Provinces[*f.ProvinceID] {
			errs = append(errs, FieldError{FieldProvinceID, "unknown province"})
		}
	default:
		errs = append(errs, FieldError{FieldLocationType, "location type must be bangkok or province"})
	}

	switch f.TransportType {
	case "":
		errs = append(errs, FieldError{FieldTransportType, "transport type is required"})
	case model.TransportPublic:
		if f.PublicSubtypeID == nil {
			errs = append(errs, FieldError{FieldPublicSubtypeID, "public transport subtype is required"})
		} else if refs.PublicOther[*f.PublicSubtypeID] && f.PublicOther == "" {
			errs = append(errs, FieldError{FieldPublicOther, "please specify the public transport"})
		}
	case model.TransportPrivate:
		if f.VehicleTypeID == nil {
			errs = append(errs, FieldError{FieldVehicleTypeID, "vehicle type is required"})
		} else if refs.VehicleOther[*f.VehicleTypeID] && f.VehicleOther == "" {
			errs = append(errs, FieldError{FieldVehicleOther, "please specify the vehicle"})
		}
		switch {
		case f.FuelType == "":
			errs = append(errs, FieldError{FieldFuelType, "fuel type is required"})
		case f.FuelType == "other":
			if f.FuelOther == "" {
				errs = append(errs, FieldError{FieldFuelOther, "please specify the fuel type"})
			}
		case !refs.FuelTypes[f.FuelType]:
			errs = append(errs, FieldError{FieldFuelType, "unknown fuel type"})
		}
		if f.PassengerType == "" {
			errs = append(errs, FieldError{FieldPassengerType, "passenger type is required"})
		} else if f.PassengerType != model.PassengerDriver && f.PassengerType != model.PassengerCarpool {
			errs = append(errs, FieldError{FieldPassengerType, "passenger type must be driver or carpool"})
		}
	case model.TransportWalking:
		// walking carries no sub-fields
	default:
		errs = append(errs, FieldError{FieldTransportType, "transport type must be public, private or walking"})
	}
	return errs
}

// validateAttendance checks step 2.  A room is required exactly when
// the attendance type includes the afternoon segment.
func validateAttendance(f *Form, refs Lookup) []FieldError {
	var errs []FieldError
	switch f.AttendanceType {
	case "":
		errs = append(errs, FieldError{FieldAttendanceType, "attendance type is required"})
	case model.AttendanceMorning, model.AttendanceAfternoon, model.AttendanceFullDay:
		if model.AfternoonIncluded(f.AttendanceType) {
			if f.RoomID == nil {
				errs = append(errs, FieldError{FieldRoomID, "afternoon seminar room is required"})
			} else if !refs.Rooms[*f.RoomID] {
				errs = append(errs, FieldError{FieldRoomID, "unknown seminar room"})
			}
		}
	default:
		errs = append(errs, FieldError{FieldAttendanceType, "attendance type must be morning, afternoon or full_day"})
	}
	return errs
}

// validateConfirmation checks step 3: the consent checkbox must be
// ticked before submission.
func validateConfirmation(f *Form) []FieldError {
	if !f.Consent {
		return []FieldError{{FieldConsent, "consent is required before submitting"}}
	}
	return nil
}

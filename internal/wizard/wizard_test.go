package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kachapon/seminar-registration/internal/model"
)

func u64(v uint64) *uint64 { return &v }

// testLookup returns reference data with one "other" sentinel per
// list, mirroring the production lookup tables.
func testLookup() Lookup {
	return NewLookup(model.ReferenceData{
		OrgTypes: []model.RefItem{
			{ID: 1, Name: "Government"},
			{ID: 9, Name: "Other", IsOther: true},
		},
		PublicSubtypes: []model.RefItem{
			{ID: 1, Name: "BTS"},
			{ID: 2, Name: "Bus"},
			{ID: 9, Name: "Other", IsOther: true},
		},
		VehicleTypes: []model.RefItem{
			{ID: 1, Name: "Car"},
			{ID: 9, Name: "Other", IsOther: true},
		},
		FuelTypes: []string{"gasoline", "diesel", "electric"},
		Rooms: []model.RefItem{
			{ID: 10, Name: "Room A"},
			{ID: 11, Name: "Room B"},
		},
		Districts: []model.Area{{ID: 100, Name: "Bang Rak"}},
		Provinces: []model.Area{{ID: 200, Name: "Chiang Mai"}},
	})
}

// validForm fills every step with a consistent morning registration
// travelling by public transport.
func validForm() Form {
	return Form{
		FirstName:       "Somchai",
		LastName:        "Jaidee",
		Email:           "somchai@example.com",
		Phone:           "0812345678",
		OrgName:         "Ministry of Energy",
		OrgTypeID:       u64(1),
		LocationType:    model.LocationBangkok,
		DistrictID:      u64(100),
		TransportType:   model.TransportPublic,
		PublicSubtypeID: u64(1),
		AttendanceType:  model.AttendanceMorning,
		Consent:         true,
	}
}

func TestWizardWalksAllStepsForward(t *testing.T) {
	w := New(testLookup(), nil)
	w.Form = validForm()

	require.NoError(t, w.Next())
	assert.Equal(t, StepOrganization, w.Step)
	require.NoError(t, w.Next())
	assert.Equal(t, StepAttendance, w.Step)
	require.NoError(t, w.Next())
	assert.Equal(t, StepConfirmation, w.Step)
	require.NoError(t, w.Submit())
	assert.Empty(t, w.Errors())
}

func TestWizardNextBlockedByStepErrors(t *testing.T) {
	w := New(testLookup(), nil)
	w.Form = validForm()
	w.Form.Email = "not-an-email"

	err := w.Next()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StepPersonal, w.Step)
	require.NotNil(t, w.FirstError())
	assert.Equal(t, FieldEmail, w.FirstError().Field)
}

func TestWizardBackNeverValidates(t *testing.T) {
	w := New(testLookup(), nil)
	w.Form = validForm()
	require.NoError(t, w.Next())

	// Wreck the personal step, then go back: allowed regardless.
	w.Form.Email = ""
	w.Back()
	assert.Equal(t, StepPersonal, w.Step)
	assert.Empty(t, w.Errors())

	// Back on the first step stays put.
	w.Back()
	assert.Equal(t, StepPersonal, w.Step)
}

func TestWizardSubmitRequiresConfirmationStep(t *testing.T) {
	w := New(testLookup(), nil)
	w.Form = validForm()
	assert.ErrorIs(t, w.Submit(), ErrNotConfirmationStep)
}

func TestWizardConsentRequired(t *testing.T) {
	w := New(testLookup(), nil)
	w.Form = validForm()
	w.Form.Consent = false
	w.Step = StepConfirmation

	err := w.Submit()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, FieldConsent, w.FirstError().Field)
}

func TestPhonePattern(t *testing.T) {
	w := New(testLookup(), nil)
	for phone, ok := range map[string]bool{
		"0812345678":  true,  // 10 digits, mobile
		"021234567":   true,  // 9 digits, landline
		"812345678":   false, // missing leading 0
		"08123456":    false, // too short
		"08123456789": false, // too long
		"08-1234567":  false, // punctuation
	} {
		w.Form = validForm()
		w.Form.Phone = phone
		errs := w.ValidateStep(StepPersonal)
		if ok {
			assert.Empty(t, errs, "phone %q should pass", phone)
		} else {
			assert.NotEmpty(t, errs, "phone %q should fail", phone)
		}
	}
}

func TestRoomRequiredIffAfternoonIncluded(t *testing.T) {
	cases := []struct {
		attendance string
		roomNeeded bool
	}{
		{model.AttendanceMorning, false},
		{model.AttendanceAfternoon, true},
		{model.AttendanceFullDay, true},
	}
	for _, tc := range cases {
		t.Run(tc.attendance, func(t *testing.T) {
			w := New(testLookup(), nil)
			w.Form = validForm()
			w.Form.AttendanceType = tc.attendance
			w.Form.RoomID = nil
			errs := w.ValidateStep(StepAttendance)
			if tc.roomNeeded {
				require.Len(t, errs, 1)
				assert.Equal(t, FieldRoomID, errs[0].Field)
			} else {
				assert.Empty(t, errs)
			}

			// With a valid room the step always passes.
			w.Form.RoomID = u64(10)
			assert.Empty(t, w.ValidateStep(StepAttendance))
		})
	}
}

func TestTransportSwitchClearsOtherModeFields(t *testing.T) {
	f := validForm()
	f.SetTransportType(model.TransportPrivate)
	f.VehicleTypeID = u64(1)
	f.FuelType = "diesel"
	f.PassengerType = model.PassengerDriver

	// Switching to walking wipes every public and private sub-field.
	f.SetTransportType(model.TransportWalking)
	assert.Nil(t, f.PublicSubtypeID)
	assert.Empty(t, f.PublicOther)
	assert.Nil(t, f.VehicleTypeID)
	assert.Empty(t, f.VehicleOther)
	assert.Empty(t, f.FuelType)
	assert.Empty(t, f.FuelOther)
	assert.Empty(t, f.PassengerType)

	w := New(testLookup(), nil)
	w.Form = f
	assert.Empty(t, w.ValidateStep(StepOrganization))
}

func TestLocationSwitchClearsMismatchedArea(t *testing.T) {
	f := validForm()
	require.NotNil(t, f.DistrictID)
	f.SetLocationType(model.LocationProvince)
	assert.Nil(t, f.DistrictID)
	f.ProvinceID = u64(200)

	f.SetLocationType(model.LocationBangkok)
	assert.Nil(t, f.ProvinceID)
}

func TestAttendanceSwitchClearsRoom(t *testing.T) {
	f := validForm()
	f.SetAttendanceType(model.AttendanceFullDay)
	f.RoomID = u64(10)
	f.SetAttendanceType(model.AttendanceMorning)
	assert.Nil(t, f.RoomID)
}

func TestOtherSentinelRequiresFreeText(t *testing.T) {
	w := New(testLookup(), nil)
	w.Form = validForm()
	w.Form.OrgTypeID = u64(9) // the "other" sentinel
	errs := w.ValidateStep(StepOrganization)
	require.Len(t, errs, 1)
	assert.Equal(t, FieldOrgTypeOther, errs[0].Field)

	w.Form.OrgTypeOther = "Foundation"
	assert.Empty(t, w.ValidateStep(StepOrganization))
}

func TestPrivateTransportRequiredTree(t *testing.T) {
	w := New(testLookup(), nil)
	w.Form = validForm()
	w.Form.SetTransportType(model.TransportPrivate)

	errs := w.ValidateStep(StepOrganization)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{FieldVehicleTypeID, FieldFuelType, FieldPassengerType}, fields)

	w.Form.VehicleTypeID = u64(1)
	w.Form.FuelType = "other"
	w.Form.PassengerType = model.PassengerCarpool
	errs = w.ValidateStep(StepOrganization)
	require.Len(t, errs, 1)
	assert.Equal(t, FieldFuelOther, errs[0].Field)

	w.Form.FuelOther = "hydrogen"
	assert.Empty(t, w.ValidateStep(StepOrganization))
}

func TestDuplicateFlagFailsPersonalStepAndClearsNames(t *testing.T) {
	lookup := &stubLookupAlwaysExists{}
	guard := NewDupGuard(lookup, time.Millisecond, zerologNop())
	w := New(testLookup(), guard)
	w.Form = validForm()
	w.SetNameClearDelay(0)

	guard.NameEdited(w.Form.FirstName, w.Form.LastName)
	waitForFlag(t, guard)

	err := w.Next()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, w.FirstError().Message, "already exists")
	// The rejected pair is wiped so the user must re-enter it.
	assert.Empty(t, w.Form.FirstName)
	assert.Empty(t, w.Form.LastName)
}

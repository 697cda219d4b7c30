package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kachapon/seminar-registration/internal/model"
	"github.com/kachapon/seminar-registration/internal/service"
	"github.com/kachapon/seminar-registration/internal/wizard"
)

type stubNames struct{ exists bool }

func (s stubNames) NameExists(context.Context, string, string) (bool, error) {
	return s.exists, nil
}

func handlerRefs() wizard.Lookup {
	return wizard.NewLookup(model.ReferenceData{
		OrgTypes:       []model.RefItem{{ID: 1, Name: "Government"}, {ID: 99, Name: "Other", IsOther: true}},
		PublicSubtypes: []model.RefItem{{ID: 1, Name: "BTS"}},
		VehicleTypes:   []model.RefItem{{ID: 1, Name: "Sedan"}},
		FuelTypes:      []string{"gasoline", "diesel", "other"},
		Rooms:          []model.RefItem{{ID: 1, Name: "Room A"}},
		Districts:      []model.Area{{ID: 10, Name: "Bang Rak"}},
		Provinces:      []model.Area{{ID: 20, Name: "Chiang Mai"}},
	})
}

func newWizardHandler(dup bool) *WizardHandler {
	svc := service.NewRegistrationService(nil, handlerRefs(), nil, zerolog.Nop())
	store := wizard.NewSessionStore(nil, 0)
	return NewWizardHandler(store, stubNames{exists: dup}, svc)
}

func doJSON(e *echo.Echo, method, path string, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(r, rec), rec
}

func createSession(t *testing.T, e *echo.Echo, h *WizardHandler) string {
	t.Helper()
	c, rec := doJSON(e, http.MethodPost, "/v1/wizard", "")
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp sessionResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func updateFields(t *testing.T, e *echo.Echo, h *WizardHandler, id, body string) (sessionResp, int) {
	t.Helper()
	c, rec := doJSON(e, http.MethodPut, "/v1/wizard/:id/fields", body)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.UpdateFields(c))
	var resp sessionResp
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return resp, rec.Code
}

func stepNext(t *testing.T, e *echo.Echo, h *WizardHandler, id string) (sessionResp, int) {
	t.Helper()
	c, rec := doJSON(e, http.MethodPost, "/v1/wizard/:id/next", "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Next(c))
	var resp sessionResp
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return resp, rec.Code
}

func TestWizardSessionAdvancesThroughPersonalStep(t *testing.T) {
	e := echo.New()
	h := newWizardHandler(false)
	id := createSession(t, e, h)

	_, code := updateFields(t, e, h, id, `{
		"first_name": "Somchai",
		"last_name":  "Jaidee",
		"email":      "somchai@example.com",
		"phone":      "0812345678"
	}`)
	require.Equal(t, http.StatusOK, code)

	resp, code := stepNext(t, e, h, id)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, wizard.StepOrganization, resp.Step)
	assert.Empty(t, resp.Errors)
}

func TestWizardNextRecordsFieldErrors(t *testing.T) {
	e := echo.New()
	h := newWizardHandler(false)
	id := createSession(t, e, h)

	_, code := updateFields(t, e, h, id, `{"first_name": "Somchai", "last_name": "Jaidee"}`)
	require.Equal(t, http.StatusOK, code)

	resp, code := stepNext(t, e, h, id)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, wizard.StepPersonal, resp.Step)
	require.NotNil(t, resp.FirstError)
	assert.Equal(t, wizard.FieldEmail, resp.FirstError.Field)
}

func TestWizardDuplicateNameBlocksAndClears(t *testing.T) {
	e := echo.New()
	h := newWizardHandler(true)
	id := createSession(t, e, h)

	resp, code := updateFields(t, e, h, id, `{
		"first_name": "Somchai",
		"last_name":  "Jaidee",
		"email":      "somchai@example.com",
		"phone":      "0812345678"
	}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Duplicate)

	resp, code = stepNext(t, e, h, id)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, wizard.StepPersonal, resp.Step)

	// The rejected pair is wiped from the stored session.
	assert.Empty(t, resp.Form.FirstName)
	assert.Empty(t, resp.Form.LastName)
	assert.False(t, resp.Duplicate)
}

func TestWizardSubmitRequiresConfirmationStep(t *testing.T) {
	e := echo.New()
	h := newWizardHandler(false)
	id := createSession(t, e, h)

	c, rec := doJSON(e, http.MethodPost, "/v1/wizard/:id/submit", "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWizardRejectsUnknownField(t *testing.T) {
	e := echo.New()
	h := newWizardHandler(false)
	id := createSession(t, e, h)

	_, code := updateFields(t, e, h, id, `{"favourite_colour": "green"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestWizardUnknownSessionIs404(t *testing.T) {
	e := echo.New()
	h := newWizardHandler(false)

	c, rec := doJSON(e, http.MethodGet, "/v1/wizard/:id", "")
	c.SetParamNames("id")
	c.SetParamValues("nope")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWizardModeSwitchClearsSubFieldsInOneRequest(t *testing.T) {
	e := echo.New()
	h := newWizardHandler(false)
	id := createSession(t, e, h)

	// Both the mode switch and a sub-field of the branch it excludes
	// arrive in a single body.  The stored form must come out clean no
	// matter which key lands first.
	resp, code := updateFields(t, e, h, id, `{
		"vehicle_type_id": 1,
		"fuel_type": "gasoline",
		"passenger_type": "driver",
		"transport_type": "walking"
	}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "walking", resp.Form.TransportType)
	assert.Nil(t, resp.Form.VehicleTypeID)
	assert.Empty(t, resp.Form.FuelType)
	assert.Empty(t, resp.Form.PassengerType)

	resp, code = updateFields(t, e, h, id, `{
		"district_id": 10,
		"location_type": "bangkok",
		"province_id": 20
	}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "bangkok", resp.Form.LocationType)
	assert.Nil(t, resp.Form.ProvinceID)
	require.NotNil(t, resp.Form.DistrictID)
	assert.Equal(t, uint64(10), *resp.Form.DistrictID)
}

package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/easelhq/easel/internal/model"
)

func TestCreateEditorValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/editors", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty name: status = %d, want 400", rec.Code)
	}
}

func TestGetEditor(t *testing.T) {
	srv, _ := newTestServer(t)

	e := apiEditor(t, srv, "ada")

	rec := doRequest(t, srv, http.MethodGet, "/v1/editors/"+e.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got model.Editor
	decodeResponse(t, rec, &got)
	if got.ID != e.ID || got.Name != "ada" {
		t.Errorf("editor = %+v", got)
	}

	rec = doRequest(t, srv, http.MethodGet, "/v1/editors/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing editor: status = %d, want 404", rec.Code)
	}
}

func TestListEditorsFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	e1 := apiEditor(t, srv, "ada")
	apiEditor(t, srv, "grace")

	rec := doRequest(t, srv, http.MethodDelete, "/v1/editors/"+e1.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("deactivate: status = %d, want 204", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/v1/editors?active=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var active []model.Editor
	decodeResponse(t, rec, &active)
	if len(active) != 1 || active[0].Name != "grace" {
		t.Errorf("active editors = %+v", active)
	}
}

func TestSetCapacity(t *testing.T) {
	srv, _ := newTestServer(t)

	e := apiEditor(t, srv, "ada")

	hours := 25
	rec := doRequest(t, srv, http.MethodPut, "/v1/editors/"+e.ID+"/capacity", map[string]any{
		"max_concurrent_units": 4,
		"max_hours_per_week":   hours,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var c model.EditorCapacity
	decodeResponse(t, rec, &c)
	if c.MaxConcurrentUnits != 4 {
		t.Errorf("MaxConcurrentUnits = %d, want 4", c.MaxConcurrentUnits)
	}
	if c.MaxHoursPerWeek == nil || *c.MaxHoursPerWeek != 25 {
		t.Errorf("MaxHoursPerWeek = %v, want 25", c.MaxHoursPerWeek)
	}

	rec = doRequest(t, srv, http.MethodPut, "/v1/editors/"+e.ID+"/capacity", map[string]any{
		"max_concurrent_units": -1,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative capacity: status = %d, want 422", rec.Code)
	}
}

func TestSetCapacityRecomputesLoad(t *testing.T) {
	srv, _ := newTestServer(t)

	e := apiEditor(t, srv, "ada")
	r := apiRequest(t, srv, "spring campaign", 5)
	apiAssign(t, srv, r.ID, e.ID, 5)

	// One full open assignment over the default 10 units: 10%.
	rec := doRequest(t, srv, http.MethodGet, "/v1/editors/"+e.ID+"/load", nil)
	var load struct {
		LoadPercentage float64 `json:"load_percentage"`
		Status         string  `json:"status"`
	}
	decodeResponse(t, rec, &load)
	if load.LoadPercentage != 10.0 {
		t.Fatalf("load = %v, want 10.0", load.LoadPercentage)
	}

	// Halving capacity doubles the load in the same call.
	rec = doRequest(t, srv, http.MethodPut, "/v1/editors/"+e.ID+"/capacity", map[string]any{
		"max_concurrent_units": 5,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("set capacity: status = %d", rec.Code)
	}
	var c model.EditorCapacity
	decodeResponse(t, rec, &c)
	if c.LoadPercentage != 20.0 {
		t.Errorf("LoadPercentage = %v, want 20.0", c.LoadPercentage)
	}
}

func TestSetAvailability(t *testing.T) {
	srv, _ := newTestServer(t)

	e := apiEditor(t, srv, "ada")

	until := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	rec := doRequest(t, srv, http.MethodPut, "/v1/editors/"+e.ID+"/availability", map[string]any{
		"is_available":      false,
		"unavailable_until": until,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var c model.EditorCapacity
	decodeResponse(t, rec, &c)
	if c.IsAvailable {
		t.Error("IsAvailable = true, want false")
	}
	if c.UnavailableUntil == nil || !c.UnavailableUntil.Equal(until) {
		t.Errorf("UnavailableUntil = %v, want %v", c.UnavailableUntil, until)
	}
}

func TestGetEditorLoadMissing(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/v1/editors/missing/load", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

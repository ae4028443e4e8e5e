package procedure

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter() *chi.Mux {
	h := NewHandler()
	r := chi.NewRouter()
	r.Patch("/procedure/step", h.UpdateStep)
	r.Get("/procedure/steps", h.ListSteps)
	return r
}

func decodeData(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Data
}

func TestUpdateStep(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPatch, "/procedure/step", strings.NewReader(`{"surgery_id":"s001","current_step":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec.Body.Bytes())
	if data["step_name"] != "Anesthesia Induction" {
		t.Errorf("step_name = %v, want Anesthesia Induction", data["step_name"])
	}
	if int(data["current_step"].(float64)) != 1 {
		t.Errorf("current_step = %v, want 1", data["current_step"])
	}
	if data["updated_at"] == "" {
		t.Error("updated_at missing")
	}
}

func TestUpdateStepValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing surgery id", `{"current_step":1}`},
		{"step out of range", `{"surgery_id":"s001","current_step":7}`},
		{"negative step", `{"surgery_id":"s001","current_step":-1}`},
		{"invalid json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter()

			req := httptest.NewRequest(http.MethodPatch, "/procedure/step", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListSteps(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/procedure/steps", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeData(t, rec.Body.Bytes())
	steps := data["steps"].([]any)
	if len(steps) != 7 {
		t.Fatalf("got %d steps, want 7", len(steps))
	}
	if steps[0] != "Pre-Procedure Setup" || steps[6] != "Recovery Handoff" {
		t.Errorf("unexpected step labels: %v", steps)
	}
	if _, ok := data["current_step"]; ok {
		t.Error("untracked listing should not carry current_step")
	}
}

func TestListStepsWithTrackedSurgery(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPatch, "/procedure/step", strings.NewReader(`{"surgery_id":"s001","current_step":3}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/procedure/steps?surgery_id=s001", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	data := decodeData(t, rec.Body.Bytes())
	if int(data["current_step"].(float64)) != 3 {
		t.Errorf("current_step = %v, want 3", data["current_step"])
	}
	if data["step_name"] != "Main Procedure Phase" {
		t.Errorf("step_name = %v, want Main Procedure Phase", data["step_name"])
	}
}

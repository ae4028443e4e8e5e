package postop

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aetheris-health/aetheris/internal/storage"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	store := storage.NewMemoryStorage()
	if err := store.SeedDemoPatients(); err != nil {
		t.Fatalf("seed patients: %v", err)
	}
	handler := NewHandler(store, 5*time.Second)

	r := chi.NewRouter()
	r.Post("/postop/complication-risk", handler.ComplicationRisk)

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

func assess(t *testing.T, router *chi.Mux, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/postop/complication-risk", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		return rec.Code, nil
	}
	return rec.Code, decodeData(t, rec.Body.Bytes())
}

func TestComplicationRisk(t *testing.T) {
	router := newTestRouter(t)

	code, data := assess(t, router, `{"patient_id":"p001","surgery_type":"General","duration_minutes":180,"blood_loss_ml":300}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}

	if data["patient_id"] != "p001" {
		t.Errorf("patient_id = %v, want p001", data["patient_id"])
	}
	if data["overall_score"].(float64) <= 0 {
		t.Errorf("overall_score = %v, want > 0", data["overall_score"])
	}

	level := data["risk_level"].(string)
	if level != "LOW" && level != "MEDIUM" && level != "HIGH" {
		t.Errorf("risk_level = %q, not a valid level", level)
	}

	complications := data["complications"].([]any)
	if len(complications) != 4 {
		t.Fatalf("complications = %d, want 4", len(complications))
	}
	for _, raw := range complications {
		c := raw.(map[string]any)
		if c["name"] == "" || c["risk_level"] == "" {
			t.Errorf("incomplete complication entry: %v", c)
		}
	}

	if data["recommendation"] == "" {
		t.Error("recommendation is empty")
	}
}

func TestComplicationRiskScalesWithCourse(t *testing.T) {
	router := newTestRouter(t)

	_, short := assess(t, router, `{"patient_id":"p002","surgery_type":"General","duration_minutes":60,"blood_loss_ml":100}`)
	_, long := assess(t, router, `{"patient_id":"p002","surgery_type":"General","duration_minutes":300,"blood_loss_ml":800}`)

	if long["overall_score"].(float64) <= short["overall_score"].(float64) {
		t.Errorf("long course score %v should exceed short course %v",
			long["overall_score"], short["overall_score"])
	}
}

func TestComplicationRiskComorbidPatientScoresHigher(t *testing.T) {
	router := newTestRouter(t)

	// p001 is ASA III with diabetes and cardiac history; p002 is ASA II.
	_, sicker := assess(t, router, `{"patient_id":"p001","surgery_type":"Orthopedic","duration_minutes":120,"blood_loss_ml":200}`)
	_, healthier := assess(t, router, `{"patient_id":"p002","surgery_type":"Orthopedic","duration_minutes":120,"blood_loss_ml":200}`)

	if sicker["overall_score"].(float64) <= healthier["overall_score"].(float64) {
		t.Errorf("comorbid patient score %v should exceed %v",
			sicker["overall_score"], healthier["overall_score"])
	}
}

func TestComplicationRiskValidation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"unknown patient", `{"patient_id":"p999","surgery_type":"General"}`, http.StatusNotFound},
		{"missing patient id", `{"surgery_type":"General"}`, http.StatusBadRequest},
		{"unknown surgery", `{"patient_id":"p001","surgery_type":"Dental"}`, http.StatusBadRequest},
		{"negative duration", `{"patient_id":"p001","surgery_type":"General","duration_minutes":-5}`, http.StatusBadRequest},
		{"negative blood loss", `{"patient_id":"p001","surgery_type":"General","blood_loss_ml":-1}`, http.StatusBadRequest},
		{"invalid json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/postop/complication-risk", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

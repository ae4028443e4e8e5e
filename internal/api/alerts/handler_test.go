package alerts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aetheris-health/aetheris/internal/models"
	"github.com/aetheris-health/aetheris/internal/storage"
)

func newTestRouter(t *testing.T) (*chi.Mux, storage.Storage) {
	t.Helper()

	store := storage.NewMemoryStorage()
	handler := NewHandler(store, 5*time.Second)

	r := chi.NewRouter()
	r.Get("/alerts", handler.List)
	r.Post("/alerts", handler.Create)
	r.Patch("/alerts/{id}/acknowledge", handler.Acknowledge)
	r.Post("/alerts/acknowledge-all", handler.AcknowledgeAll)

	return r, store
}

func seedAlert(t *testing.T, store storage.Storage, patientID string, severity models.Severity) *models.AlertRecord {
	t.Helper()

	record := &models.AlertRecord{
		PatientID:  patientID,
		Severity:   severity,
		Title:      "CRITICAL: Heart Rate",
		Message:    "Heart Rate has exceeded threshold: 145 bpm (threshold: 140 bpm). Immediate clinical attention required.",
		VitalType:  "heart_rate",
		VitalValue: 145,
	}
	if err := store.Alerts().Create(context.Background(), record); err != nil {
		t.Fatalf("seed alert: %v", err)
	}
	return record
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

func TestListAlerts(t *testing.T) {
	router, store := newTestRouter(t)

	seedAlert(t, store, "p001", models.SeverityCritical)
	seedAlert(t, store, "p001", models.SeverityWarning)
	seedAlert(t, store, "p002", models.SeverityWarning)

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantCode  int
	}{
		{"all alerts", "", 3, http.StatusOK},
		{"filter by patient", "?patient_id=p001", 2, http.StatusOK},
		{"limit", "?limit=1", 1, http.StatusOK},
		{"bad limit", "?limit=zero", 0, http.StatusBadRequest},
		{"bad unread_only", "?unread_only=maybe", 0, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/alerts"+tt.query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			data := decodeData(t, rec.Body.Bytes())
			if int(data["count"].(float64)) != tt.wantCount {
				t.Errorf("count = %v, want %d", data["count"], tt.wantCount)
			}
		})
	}
}

func TestListAlertsUnreadOnly(t *testing.T) {
	router, store := newTestRouter(t)

	record := seedAlert(t, store, "p001", models.SeverityCritical)
	seedAlert(t, store, "p001", models.SeverityWarning)

	if _, err := store.Alerts().Acknowledge(context.Background(), record.ID, "dr.chen"); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/alerts?patient_id=p001&unread_only=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	data := decodeData(t, rec.Body.Bytes())
	if int(data["count"].(float64)) != 1 {
		t.Errorf("unread count = %v, want 1", data["count"])
	}
}

func TestCreateAlert(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{
			"valid alert",
			`{"patient_id":"p001","severity":"critical","title":"CRITICAL: SpO2","message":"SpO2 low","vital_type":"spo2","vital_value":88}`,
			http.StatusCreated,
		},
		{
			"missing patient",
			`{"severity":"critical","title":"t","message":"m"}`,
			http.StatusBadRequest,
		},
		{
			"bad severity",
			`{"patient_id":"p001","severity":"panic","title":"t","message":"m"}`,
			http.StatusBadRequest,
		},
		{
			"missing title",
			`{"patient_id":"p001","severity":"warning","message":"m"}`,
			http.StatusBadRequest,
		},
		{
			"invalid json",
			`{`,
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusCreated {
				return
			}
			data := decodeData(t, rec.Body.Bytes())
			if data["id"] == "" {
				t.Error("created alert has empty id")
			}
			if data["acknowledged"] != false {
				t.Error("created alert should start unacknowledged")
			}
		})
	}
}

func TestAcknowledgeAlert(t *testing.T) {
	router, store := newTestRouter(t)
	record := seedAlert(t, store, "p001", models.SeverityCritical)

	body := strings.NewReader(`{"acknowledged_by":"dr.patel"}`)
	req := httptest.NewRequest(http.MethodPatch, "/alerts/"+record.ID+"/acknowledge", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec.Body.Bytes())
	if data["acknowledged"] != true {
		t.Error("alert not acknowledged")
	}
	if data["acknowledged_by"] != "dr.patel" {
		t.Errorf("acknowledged_by = %v, want dr.patel", data["acknowledged_by"])
	}
}

func TestAcknowledgeAlertDefaultsActor(t *testing.T) {
	router, store := newTestRouter(t)
	record := seedAlert(t, store, "p001", models.SeverityWarning)

	req := httptest.NewRequest(http.MethodPatch, "/alerts/"+record.ID+"/acknowledge", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeData(t, rec.Body.Bytes())
	if data["acknowledged_by"] != "clinician" {
		t.Errorf("acknowledged_by = %v, want clinician", data["acknowledged_by"])
	}
}

func TestAcknowledgeMissingAlert(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPatch, "/alerts/nope/acknowledge", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAcknowledgeAll(t *testing.T) {
	router, store := newTestRouter(t)

	seedAlert(t, store, "p001", models.SeverityCritical)
	seedAlert(t, store, "p001", models.SeverityWarning)
	seedAlert(t, store, "p002", models.SeverityWarning)

	req := httptest.NewRequest(http.MethodPost, "/alerts/acknowledge-all?patient_id=p001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec.Body.Bytes())
	if int(data["acknowledged_count"].(float64)) != 2 {
		t.Errorf("acknowledged_count = %v, want 2", data["acknowledged_count"])
	}

	// Other patient untouched.
	remaining, err := store.Alerts().List(context.Background(), storage.AlertFilter{PatientID: "p002", UnreadOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("p002 unread = %d, want 1", len(remaining))
	}
}

func TestAcknowledgeAllGlobal(t *testing.T) {
	router, store := newTestRouter(t)

	seedAlert(t, store, "p001", models.SeverityCritical)
	seedAlert(t, store, "p002", models.SeverityWarning)
	seedAlert(t, store, "p003", models.SeverityWarning)

	req := httptest.NewRequest(http.MethodPost, "/alerts/acknowledge-all", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec.Body.Bytes())
	if int(data["acknowledged_count"].(float64)) != 3 {
		t.Errorf("acknowledged_count = %v, want 3", data["acknowledged_count"])
	}
	if _, ok := data["patient_id"]; ok {
		t.Error("unscoped response should not carry patient_id")
	}

	remaining, err := store.Alerts().List(context.Background(), storage.AlertFilter{UnreadOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("unread after global acknowledge = %d, want 0", len(remaining))
	}
}

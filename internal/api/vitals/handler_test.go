package vitals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aetheris-health/aetheris/internal/models"
	"github.com/aetheris-health/aetheris/internal/storage"
	"github.com/aetheris-health/aetheris/internal/stream"
	vitalcore "github.com/aetheris-health/aetheris/internal/vitals"
)

func newTestHandler(t *testing.T) (*Handler, storage.Storage) {
	t.Helper()

	store := storage.NewMemoryStorage()
	history := storage.NewHistoryStore(storage.DefaultHistoryCapacity)
	registry, err := vitalcore.NewRegistry("")
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	manager := stream.NewManager(stream.Config{
		Interval: 20 * time.Millisecond,
		Source:   vitalcore.NewSimulator(1),
		Profiles: registry,
		Alerts:   store.Alerts(),
		History:  history,
	})
	t.Cleanup(manager.Shutdown)

	handler := NewHandler(HandlerConfig{
		Storage:      store,
		History:      history,
		Streams:      manager,
		Profiles:     registry,
		QueryTimeout: 5 * time.Second,
		HistoryLimit: 50,
	})
	return handler, store
}

func newTestRouter(t *testing.T) (*chi.Mux, storage.Storage) {
	t.Helper()

	handler, store := newTestHandler(t)

	r := chi.NewRouter()
	r.Post("/vitals/anomaly-check", handler.AnomalyCheck)
	r.Post("/vitals/log", handler.Log)
	r.Get("/vitals/{patientID}/history", handler.History)
	r.Get("/vitals/stream/{patientID}", handler.Stream)

	return r, store
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

func readingBody(patientID string, hr, spo2 float64) string {
	return fmt.Sprintf(
		`{"patient_id":%q,"vitals":{"heart_rate":%g,"spo2":%g,"systolic_bp":120,"diastolic_bp":78,"temperature":36.8,"etco2":38,"resp_rate":15}}`,
		patientID, hr, spo2,
	)
}

func TestAnomalyCheckNormalReading(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/vitals/anomaly-check", strings.NewReader(readingBody("p001", 75, 98)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec.Body.Bytes())
	if data["has_anomaly"] != false {
		t.Error("normal reading flagged as anomaly")
	}
	if data["overall_status"] != "normal" {
		t.Errorf("overall_status = %v, want normal", data["overall_status"])
	}
}

func TestAnomalyCheckFiresAndPersistsAlerts(t *testing.T) {
	router, store := newTestRouter(t)

	// Tachycardia and hypoxia at once.
	req := httptest.NewRequest(http.MethodPost, "/vitals/anomaly-check", strings.NewReader(readingBody("p001", 145, 88)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec.Body.Bytes())
	if data["has_anomaly"] != true {
		t.Fatal("anomalous reading not flagged")
	}
	if int(data["alerts_fired"].(float64)) != 2 {
		t.Errorf("alerts_fired = %v, want 2", data["alerts_fired"])
	}
	if data["overall_status"] != "critical" {
		t.Errorf("overall_status = %v, want critical", data["overall_status"])
	}

	statuses := data["vitals_status"].(map[string]any)
	if statuses["heart_rate"] != string(models.StatusCriticalHigh) {
		t.Errorf("heart_rate status = %v, want %s", statuses["heart_rate"], models.StatusCriticalHigh)
	}

	stored, err := store.Alerts().List(context.Background(), storage.AlertFilter{PatientID: "p001"})
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("persisted alerts = %d, want 2", len(stored))
	}
}

func TestAnomalyCheckValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing patient", `{"vitals":{"heart_rate":75}}`},
		{"invalid json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/vitals/anomaly-check", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestLogClampsOutOfRangeReading(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/vitals/log", strings.NewReader(readingBody("p001", 72, 150)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec.Body.Bytes())
	reading := data["reading"].(map[string]any)
	if reading["spo2"].(float64) != 100 {
		t.Errorf("returned spo2 = %v, want clamped 100", reading["spo2"])
	}

	hreq := httptest.NewRequest(http.MethodGet, "/vitals/p001/history", nil)
	hrec := httptest.NewRecorder()
	router.ServeHTTP(hrec, hreq)

	hdata := decodeData(t, hrec.Body.Bytes())
	latest := hdata["latest"].(map[string]any)
	if latest["spo2"].(float64) != 100 {
		t.Errorf("stored spo2 = %v, want clamped 100", latest["spo2"])
	}
}

func TestAnomalyCheckClampsBeforeClassifying(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/vitals/anomaly-check", strings.NewReader(readingBody("p001", 500, 98)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec.Body.Bytes())
	statuses := data["vitals_status"].(map[string]any)
	if statuses["heart_rate"] != string(models.StatusCriticalHigh) {
		t.Errorf("heart_rate status = %v, want %s", statuses["heart_rate"], models.StatusCriticalHigh)
	}
	alerts := data["alerts"].([]any)
	first := alerts[0].(map[string]any)
	if first["vital_value"].(float64) != 300 {
		t.Errorf("alert vital_value = %v, want clamped 300", first["vital_value"])
	}
}

func TestLogAndHistory(t *testing.T) {
	router, _ := newTestRouter(t)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/vitals/log", strings.NewReader(readingBody("p001", 70+float64(i), 98)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("log status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		logged := decodeData(t, rec.Body.Bytes())
		reading := logged["reading"].(map[string]any)
		if reading["recorded_at"] == "" {
			t.Error("stored reading missing server-assigned recorded_at")
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/vitals/p001/history?limit=3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d, want 200", rec.Code)
	}
	data := decodeData(t, rec.Body.Bytes())
	if int(data["count"].(float64)) != 3 {
		t.Errorf("count = %v, want 3", data["count"])
	}

	if int(data["total"].(float64)) != 5 {
		t.Errorf("total = %v, want 5", data["total"])
	}

	readings := data["readings"].([]any)
	last := readings[len(readings)-1].(map[string]any)
	if last["heart_rate"].(float64) != 74 {
		t.Errorf("last heart_rate = %v, want 74", last["heart_rate"])
	}

	latest := data["latest"].(map[string]any)
	if latest["heart_rate"].(float64) != 74 {
		t.Errorf("latest heart_rate = %v, want 74", latest["heart_rate"])
	}
}

func TestHistoryEmptyPatient(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/vitals/ghost/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeData(t, rec.Body.Bytes())
	if int(data["count"].(float64)) != 0 {
		t.Errorf("count = %v, want 0", data["count"])
	}
}

func TestHistoryBadLimit(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/vitals/p001/history?limit=-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

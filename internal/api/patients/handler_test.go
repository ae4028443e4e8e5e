package patients

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

func newTestRouter(t *testing.T) (*chi.Mux, storage.Storage) {
	t.Helper()

	store := storage.NewMemoryStorage()
	if err := store.SeedDemoPatients(); err != nil {
		t.Fatalf("seed patients: %v", err)
	}
	handler := NewHandler(store, 5*time.Second)

	r := chi.NewRouter()
	r.Get("/patients", handler.List)
	r.Post("/patients", handler.Create)
	r.Get("/patients/{id}", handler.GetByID)

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

func TestListPatients(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeData(t, rec.Body.Bytes())
	if int(data["count"].(float64)) != 3 {
		t.Errorf("count = %v, want 3 demo patients", data["count"])
	}
}

func TestGetPatient(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/patients/p001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeData(t, rec.Body.Bytes())
	if data["name"] != "Rajesh Kumar" {
		t.Errorf("name = %v, want Rajesh Kumar", data["name"])
	}
	if data["asa_class"] != "III" {
		t.Errorf("asa_class = %v, want III", data["asa_class"])
	}
}

func TestGetPatientNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/patients/p999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreatePatient(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{
			"valid patient",
			`{"id":"p100","name":"Meera Iyer","age":35,"gender":"F","medications":["lisinopril"]}`,
			http.StatusCreated,
		},
		{
			"generated id",
			`{"name":"Arun Nair","age":51,"gender":"M"}`,
			http.StatusCreated,
		},
		{
			"missing name",
			`{"id":"p101","age":35}`,
			http.StatusBadRequest,
		},
		{
			"bad age",
			`{"id":"p102","name":"X","age":0}`,
			http.StatusBadRequest,
		},
		{
			"duplicate id",
			`{"id":"p001","name":"Duplicate","age":40}`,
			http.StatusConflict,
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

			req := httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(tt.body))
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
				t.Error("created patient has empty id")
			}
		})
	}
}

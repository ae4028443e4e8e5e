// Package reports exposes the clinical document endpoints.
package reports

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aetheris-health/aetheris/internal/models"
	reportgen "github.com/aetheris-health/aetheris/internal/reports"
	"github.com/aetheris-health/aetheris/internal/storage"
)

// Response helpers
type errorResponse struct {
	Error errorBody `json:"error"`
}
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
type dataResponse struct {
	Data any `json:"data"`
}

const (
	errCodeBadRequest       = "BAD_REQUEST"
	errCodeValidationFailed = "VALIDATION_FAILED"
	errCodeNotFound         = "NOT_FOUND"
	errCodeInternalError    = "INTERNAL_ERROR"
)

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dataResponse{Data: data}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func jsonCreated(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(dataResponse{Data: data}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// Handler serves report endpoints.
type Handler struct {
	storage      storage.Storage
	generator    *reportgen.Generator
	queryTimeout time.Duration
}

// NewHandler creates a report handler.
func NewHandler(store storage.Storage, generator *reportgen.Generator, queryTimeout time.Duration) *Handler {
	if queryTimeout == 0 {
		queryTimeout = 10 * time.Second
	}
	return &Handler{storage: store, generator: generator, queryTimeout: queryTimeout}
}

// GenerateRequest selects the document to produce.
type GenerateRequest struct {
	PatientID  string `json:"patient_id"`
	SurgeryID  string `json:"surgery_id"`
	ReportType string `json:"report_type"`
	ExtraNotes string `json:"extra_notes"`
}

// Generate produces a clinical document and stores it as a draft.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid JSON body")
		return
	}

	req.PatientID = strings.TrimSpace(req.PatientID)
	if req.PatientID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "patient_id is required")
		return
	}
	reportType, ok := models.ParseReportType(req.ReportType)
	if !ok {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "unknown report_type")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	patient, err := h.storage.Patients().GetByID(ctx, req.PatientID)
	if err != nil {
		log.Printf("load patient %s: %v", req.PatientID, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to load patient")
		return
	}
	if patient == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "patient not found")
		return
	}

	report, err := h.generator.Generate(ctx, reportgen.GenerateRequest{
		PatientID:  req.PatientID,
		SurgeryID:  req.SurgeryID,
		ReportType: reportType,
		ExtraNotes: req.ExtraNotes,
	})
	if err != nil {
		log.Printf("generate %s for %s: %v", reportType, req.PatientID, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to generate report")
		return
	}

	jsonCreated(w, report)
}

// Types lists the supported report types.
func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{"types": reportgen.Types()})
}

// List returns a patient's generated reports.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	patientID := strings.TrimSpace(r.URL.Query().Get("patient_id"))
	if patientID == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "patient_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	records, err := h.storage.Reports().ListByPatient(ctx, patientID)
	if err != nil {
		log.Printf("list reports for %s: %v", patientID, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to list reports")
		return
	}

	jsonOK(w, map[string]any{
		"reports": records,
		"count":   len(records),
	})
}

// GetByID returns a single report.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "report id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	report, err := h.storage.Reports().GetByID(ctx, id)
	if err != nil {
		log.Printf("get report %s: %v", id, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to load report")
		return
	}
	if report == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "report not found")
		return
	}

	jsonOK(w, report)
}

// SendToEHR transmits a report to the hospital EHR integration and
// marks it sent. The integration is a mock confirmation for now.
func (h *Handler) SendToEHR(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "report id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	report, err := h.storage.Reports().GetByID(ctx, id)
	if err != nil {
		log.Printf("get report %s: %v", id, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to load report")
		return
	}
	if report == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "report not found")
		return
	}

	if err := h.storage.Reports().UpdateStatus(ctx, id, "sent"); err != nil {
		log.Printf("mark report %s sent: %v", id, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to update report")
		return
	}

	confirmation := "RPT-" + strings.ToUpper(shortID(id))

	jsonOK(w, map[string]any{
		"report_id":    id,
		"status":       "sent",
		"confirmation": confirmation,
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

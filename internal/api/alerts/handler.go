// Package alerts exposes the alert lifecycle endpoints.
package alerts

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aetheris-health/aetheris/internal/metrics"
	"github.com/aetheris-health/aetheris/internal/models"
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

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Handler serves alert endpoints.
type Handler struct {
	storage      storage.Storage
	queryTimeout time.Duration
}

// NewHandler creates an alert handler.
func NewHandler(store storage.Storage, queryTimeout time.Duration) *Handler {
	if queryTimeout == 0 {
		queryTimeout = 10 * time.Second
	}
	return &Handler{storage: store, queryTimeout: queryTimeout}
}

func (h *Handler) queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.queryTimeout)
}

// CreateAlertRequest is the payload for manually raising an alert.
type CreateAlertRequest struct {
	PatientID  string  `json:"patient_id"`
	SurgeryID  string  `json:"surgery_id"`
	Severity   string  `json:"severity"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	VitalType  string  `json:"vital_type"`
	VitalValue float64 `json:"vital_value"`
}

// List returns alerts, newest first. Supports patient_id, unread_only
// and limit query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := storage.AlertFilter{
		PatientID: r.URL.Query().Get("patient_id"),
		Limit:     defaultListLimit,
	}

	if v := r.URL.Query().Get("unread_only"); v != "" {
		unread, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, "unread_only must be a boolean")
			return
		}
		filter.UnreadOnly = unread
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, "limit must be a positive integer")
			return
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		filter.Limit = limit
	}

	ctx, cancel := h.queryContext(r)
	defer cancel()

	records, err := h.storage.Alerts().List(ctx, filter)
	if err != nil {
		log.Printf("list alerts: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to list alerts")
		return
	}

	jsonOK(w, map[string]any{
		"alerts": records,
		"count":  len(records),
	})
}

// Create raises an alert manually, outside the automatic threshold path.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid JSON body")
		return
	}

	req.PatientID = strings.TrimSpace(req.PatientID)
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)

	if req.PatientID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "patient_id is required")
		return
	}
	if req.Title == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "title is required")
		return
	}
	if req.Message == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "message is required")
		return
	}
	severity, ok := models.ParseSeverity(req.Severity)
	if !ok {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "severity must be critical or warning")
		return
	}

	record := &models.AlertRecord{
		PatientID:  req.PatientID,
		SurgeryID:  req.SurgeryID,
		Severity:   severity,
		Title:      req.Title,
		Message:    req.Message,
		VitalType:  req.VitalType,
		VitalValue: req.VitalValue,
	}

	ctx, cancel := h.queryContext(r)
	defer cancel()

	if err := h.storage.Alerts().Create(ctx, record); err != nil {
		log.Printf("create alert: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to create alert")
		return
	}

	metrics.AlertsFiredTotal.WithLabelValues(string(severity)).Inc()

	jsonCreated(w, record)
}

// AcknowledgeRequest names who acknowledged the alert.
type AcknowledgeRequest struct {
	AcknowledgedBy string `json:"acknowledged_by"`
}

// Acknowledge marks a single alert as seen. Acknowledging an already
// acknowledged alert is a no-op that returns the stored record.
func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "alert id is required")
		return
	}

	var req AcknowledgeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid JSON body")
			return
		}
	}
	by := strings.TrimSpace(req.AcknowledgedBy)
	if by == "" {
		by = "clinician"
	}

	ctx, cancel := h.queryContext(r)
	defer cancel()

	record, err := h.storage.Alerts().Acknowledge(ctx, id, by)
	if err != nil {
		log.Printf("acknowledge alert %s: %v", id, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to acknowledge alert")
		return
	}
	if record == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "alert not found")
		return
	}

	metrics.AlertsAcknowledgedTotal.Inc()

	jsonOK(w, record)
}

// AcknowledgeAll marks every unacknowledged alert as seen. An optional
// patient_id query parameter scopes the sweep to one patient.
func (h *Handler) AcknowledgeAll(w http.ResponseWriter, r *http.Request) {
	patientID := strings.TrimSpace(r.URL.Query().Get("patient_id"))

	ctx, cancel := h.queryContext(r)
	defer cancel()

	count, err := h.storage.Alerts().AcknowledgeAll(ctx, patientID)
	if err != nil {
		log.Printf("acknowledge all (patient %q): %v", patientID, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to acknowledge alerts")
		return
	}

	metrics.AlertsAcknowledgedTotal.Add(float64(count))

	resp := map[string]any{"acknowledged_count": count}
	if patientID != "" {
		resp["patient_id"] = patientID
	}
	jsonOK(w, resp)
}

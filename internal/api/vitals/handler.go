// Package vitals exposes telemetry ingest, anomaly checks, bounded
// history and the live vitals stream.
package vitals

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
	"github.com/aetheris-health/aetheris/internal/stream"
	vitalcore "github.com/aetheris-health/aetheris/internal/vitals"
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

// HandlerConfig wires the telemetry collaborators into the handler.
type HandlerConfig struct {
	Storage      storage.Storage
	History      *storage.HistoryStore
	Streams      *stream.Manager
	Profiles     *vitalcore.Registry
	QueryTimeout time.Duration
	HistoryLimit int
}

// Handler serves vitals endpoints.
type Handler struct {
	storage      storage.Storage
	history      *storage.HistoryStore
	streams      *stream.Manager
	profiles     *vitalcore.Registry
	queryTimeout time.Duration
	historyLimit int
}

// NewHandler creates a vitals handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = 10 * time.Second
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = 50
	}
	return &Handler{
		storage:      cfg.Storage,
		history:      cfg.History,
		streams:      cfg.Streams,
		profiles:     cfg.Profiles,
		queryTimeout: cfg.QueryTimeout,
		historyLimit: cfg.HistoryLimit,
	}
}

// ReadingRequest is a manually submitted vitals sample.
type ReadingRequest struct {
	PatientID string               `json:"patient_id"`
	SurgeryID string               `json:"surgery_id"`
	Vitals    models.VitalsReading `json:"vitals"`
}

func (h *Handler) decodeReading(w http.ResponseWriter, r *http.Request) (ReadingRequest, bool) {
	var req ReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid JSON body")
		return req, false
	}
	req.PatientID = strings.TrimSpace(req.PatientID)
	if req.PatientID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "patient_id is required")
		return req, false
	}
	if err := req.Vitals.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return req, false
	}
	// Manual submissions go through the same producer boundary as the
	// simulator: nothing out of absolute range is stored or classified.
	req.Vitals = req.Vitals.Clamp()
	if req.Vitals.RecordedAt.IsZero() {
		req.Vitals.RecordedAt = time.Now().UTC()
	}
	return req, true
}

// AnomalyCheck classifies a submitted reading against the active
// threshold table and persists any alerts it fires.
func (h *Handler) AnomalyCheck(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeReading(w, r)
	if !ok {
		return
	}

	table := h.profiles.Current()
	result := table.ClassifyReading(req.PatientID, req.SurgeryID, req.Vitals)

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	stored := make([]*models.AlertRecord, 0, len(result.Alerts))
	for _, alert := range result.Alerts {
		if err := h.storage.Alerts().Create(ctx, alert); err != nil {
			log.Printf("persist alert for %s: %v", req.PatientID, err)
			jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to persist alerts")
			return
		}
		metrics.AlertsFiredTotal.WithLabelValues(string(alert.Severity)).Inc()
		stored = append(stored, alert)
	}

	jsonOK(w, map[string]any{
		"patient_id":     req.PatientID,
		"has_anomaly":    len(stored) > 0,
		"overall_status": result.Overall,
		"vitals_status":  result.Statuses,
		"alerts_fired":   len(stored),
		"alerts":         stored,
	})
}

// Log appends a reading to the patient's bounded history.
func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeReading(w, r)
	if !ok {
		return
	}

	h.history.Append(req.PatientID, req.Vitals)

	jsonCreated(w, map[string]any{
		"patient_id": req.PatientID,
		"reading":    req.Vitals,
		"count":      h.history.Count(req.PatientID),
	})
}

// History returns the most recent readings, oldest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	if patientID == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "patient id is required")
		return
	}

	limit := h.historyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	readings := h.history.History(patientID, limit)

	resp := map[string]any{
		"patient_id": patientID,
		"count":      len(readings),
		"total":      h.history.Count(patientID),
		"readings":   readings,
	}
	if latest, ok := h.history.Latest(patientID); ok {
		resp["latest"] = latest
	}
	jsonOK(w, resp)
}

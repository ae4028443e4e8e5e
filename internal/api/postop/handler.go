// Package postop exposes the post-operative complication risk endpoint.
package postop

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aetheris-health/aetheris/internal/models"
	"github.com/aetheris-health/aetheris/internal/risk"
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

// Handler serves post-op endpoints.
type Handler struct {
	storage      storage.Storage
	queryTimeout time.Duration
}

// NewHandler creates a post-op handler.
func NewHandler(store storage.Storage, queryTimeout time.Duration) *Handler {
	if queryTimeout == 0 {
		queryTimeout = 10 * time.Second
	}
	return &Handler{storage: store, queryTimeout: queryTimeout}
}

// ComplicationRiskRequest describes the completed surgical course.
type ComplicationRiskRequest struct {
	PatientID       string  `json:"patient_id"`
	SurgeryID       string  `json:"surgery_id"`
	SurgeryType     string  `json:"surgery_type"`
	DurationMinutes int     `json:"duration_minutes"`
	BloodLossML     float64 `json:"blood_loss_ml"`
}

// ComplicationRisk predicts post-operative complications for a patient
// who has just come out of surgery.
func (h *Handler) ComplicationRisk(w http.ResponseWriter, r *http.Request) {
	var req ComplicationRiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid JSON body")
		return
	}

	req.PatientID = strings.TrimSpace(req.PatientID)
	if req.PatientID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "patient_id is required")
		return
	}
	surgeryType, ok := models.ParseSurgeryType(req.SurgeryType)
	if !ok {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "unknown surgery_type")
		return
	}
	if req.DurationMinutes < 0 {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "duration_minutes must not be negative")
		return
	}
	if req.BloodLossML < 0 {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "blood_loss_ml must not be negative")
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

	assessment := risk.PredictComplications(risk.ComplicationInput{
		PatientID:    patient.ID,
		SurgeryID:    req.SurgeryID,
		SurgeryType:  surgeryType,
		DurationMin:  req.DurationMinutes,
		BloodLossML:  req.BloodLossML,
		ASAClass:     patient.ASAClass,
		Age:          patient.Age,
		Diabetes:     hasCondition(patient.MedicalHistory, "diabetes"),
		Hypertension: hasCondition(patient.MedicalHistory, "hypertension"),
		CardiacHx:    hasCondition(patient.MedicalHistory, "cardiac", "heart", "coronary", "fibrillation", "arrhythmia"),
		Smoker:       hasCondition(patient.MedicalHistory, "smok"),
	})

	jsonOK(w, assessment)
}

func hasCondition(history []string, terms ...string) bool {
	for _, entry := range history {
		lower := strings.ToLower(entry)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}

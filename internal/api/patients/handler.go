// Package patients exposes the patient roster endpoints.
package patients

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

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
	errCodeConflict         = "CONFLICT"
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

// Handler serves patient endpoints.
type Handler struct {
	storage      storage.Storage
	queryTimeout time.Duration
}

// NewHandler creates a patient handler.
func NewHandler(store storage.Storage, queryTimeout time.Duration) *Handler {
	if queryTimeout == 0 {
		queryTimeout = 10 * time.Second
	}
	return &Handler{storage: store, queryTimeout: queryTimeout}
}

func (h *Handler) queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.queryTimeout)
}

// CreatePatientRequest is the admission payload.
type CreatePatientRequest struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Age            int      `json:"age"`
	Gender         string   `json:"gender"`
	WeightKg       float64  `json:"weight_kg"`
	HeightCm       float64  `json:"height_cm"`
	BloodType      string   `json:"blood_type"`
	Allergies      []string `json:"allergies"`
	Medications    []string `json:"medications"`
	MedicalHistory []string `json:"medical_history"`
	ASAClass       string   `json:"asa_class"`
}

// List returns all patients.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.queryContext(r)
	defer cancel()

	records, err := h.storage.Patients().List(ctx)
	if err != nil {
		log.Printf("list patients: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to list patients")
		return
	}

	jsonOK(w, map[string]any{
		"patients": records,
		"count":    len(records),
	})
}

// GetByID returns a single patient.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "patient id is required")
		return
	}

	ctx, cancel := h.queryContext(r)
	defer cancel()

	patient, err := h.storage.Patients().GetByID(ctx, id)
	if err != nil {
		log.Printf("get patient %s: %v", id, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to load patient")
		return
	}
	if patient == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "patient not found")
		return
	}

	jsonOK(w, patient)
}

// Create admits a new patient.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid JSON body")
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)

	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "name is required")
		return
	}
	if req.Age <= 0 || req.Age > 150 {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "age must be between 1 and 150")
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	ctx, cancel := h.queryContext(r)
	defer cancel()

	existing, err := h.storage.Patients().GetByID(ctx, req.ID)
	if err != nil {
		log.Printf("check patient %s: %v", req.ID, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to create patient")
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, errCodeConflict, "patient already exists")
		return
	}

	patient := &models.Patient{
		ID:             req.ID,
		Name:           req.Name,
		Age:            req.Age,
		Gender:         req.Gender,
		WeightKg:       req.WeightKg,
		HeightCm:       req.HeightCm,
		BloodType:      req.BloodType,
		Allergies:      req.Allergies,
		Medications:    req.Medications,
		MedicalHistory: req.MedicalHistory,
		ASAClass:       req.ASAClass,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.storage.Patients().Create(ctx, patient); err != nil {
		log.Printf("create patient %s: %v", req.ID, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to create patient")
		return
	}

	jsonCreated(w, patient)
}

// Package preop exposes the pre-operative assessment endpoints.
package preop

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aetheris-health/aetheris/internal/interactions"
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

// Handler serves pre-op assessment endpoints.
type Handler struct {
	storage      storage.Storage
	checker      *interactions.Checker
	queryTimeout time.Duration
}

// NewHandler creates a pre-op handler.
func NewHandler(store storage.Storage, checker *interactions.Checker, queryTimeout time.Duration) *Handler {
	if queryTimeout == 0 {
		queryTimeout = 10 * time.Second
	}
	return &Handler{storage: store, checker: checker, queryTimeout: queryTimeout}
}

// AssessRequest selects the patient and procedure to assess. Vitals are
// optional spot measurements taken at the pre-op visit.
type AssessRequest struct {
	PatientID   string               `json:"patient_id"`
	SurgeryType string               `json:"surgery_type"`
	Vitals      *models.VitalsReading `json:"vitals,omitempty"`
}

// RiskScores is the per-domain risk breakdown.
type RiskScores struct {
	Cardiac    float64 `json:"cardiac"`
	Anesthesia float64 `json:"anesthesia"`
	Surgical   float64 `json:"surgical"`
	Overall    float64 `json:"overall"`
}

// AssessResponse is the full pre-op assessment.
type AssessResponse struct {
	PatientID        string                     `json:"patient_id"`
	SurgeryType      string                     `json:"surgery_type"`
	RiskScores       RiskScores                 `json:"risk_scores"`
	RiskLevel        string                     `json:"risk_level"`
	PredictedASA     string                     `json:"predicted_asa"`
	DrugInteractions []interactions.Interaction `json:"drug_interactions"`
	Checklist        []risk.ChecklistItem       `json:"checklist"`
	Summary          string                     `json:"summary"`
	AssessedAt       time.Time                  `json:"assessed_at"`
}

// Assess runs the full pre-op pipeline: risk scores, ASA prediction,
// drug interaction screen and the preparation checklist.
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
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

	input := buildInput(patient, surgeryType, req.Vitals)
	scores := risk.PreOpScores(input)
	level := risk.ScoreToLevel(scores.Overall)
	predictedASA := risk.PredictASA(input)

	var found []interactions.Interaction
	if h.checker != nil {
		found = h.checker.Check(ctx, patient.Medications)
	}

	checklist := risk.GenerateChecklist(surgeryType, len(found) > 0, level)

	resp := AssessResponse{
		PatientID:   patient.ID,
		SurgeryType: string(surgeryType),
		RiskScores: RiskScores{
			Cardiac:    scores.Cardiac,
			Anesthesia: scores.Anesthesia,
			Surgical:   scores.Surgical,
			Overall:    scores.Overall,
		},
		RiskLevel:        level,
		PredictedASA:     predictedASA,
		DrugInteractions: found,
		Checklist:        checklist,
		Summary:          summarize(patient, surgeryType, scores, level, len(found)),
		AssessedAt:       time.Now().UTC(),
	}

	jsonOK(w, resp)
}

// ChecklistTemplates returns the preparation checklist for every
// procedure category, before risk escalation items are applied.
func (h *Handler) ChecklistTemplates(w http.ResponseWriter, r *http.Request) {
	templates := make(map[string][]risk.ChecklistItem, len(models.SurgeryTypes))
	for _, t := range models.SurgeryTypes {
		templates[string(t)] = risk.GenerateChecklist(t, false, risk.LevelLow)
	}

	jsonOK(w, map[string]any{
		"base":      risk.BaseChecklist(),
		"templates": templates,
	})
}

// buildInput maps the stored patient record onto the scoring input.
// Comorbidity flags come from substring matches on the history list.
func buildInput(p *models.Patient, surgeryType models.SurgeryType, vitals *models.VitalsReading) risk.PreOpInput {
	in := risk.PreOpInput{
		PatientID:    p.ID,
		SurgeryType:  surgeryType,
		ASAClass:     p.ASAClass,
		Medications:  p.Medications,
		WeightKg:     p.WeightKg,
		HeightCm:     p.HeightCm,
		Diabetes:     hasCondition(p.MedicalHistory, "diabetes"),
		Hypertension: hasCondition(p.MedicalHistory, "hypertension"),
		CardiacHx:    hasCondition(p.MedicalHistory, "cardiac", "heart", "coronary", "fibrillation", "arrhythmia"),
		Smoking:      hasCondition(p.MedicalHistory, "smok"),
	}
	if vitals != nil {
		in.SystolicBP = vitals.SystolicBP
		in.DiastolicBP = vitals.DiastolicBP
		in.HeartRate = vitals.HeartRate
		in.SpO2 = vitals.SpO2
		in.Temperature = vitals.Temperature
	}
	return in
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

func summarize(p *models.Patient, surgeryType models.SurgeryType, scores risk.Scores, level string, interactionCount int) string {
	summary := fmt.Sprintf(
		"%s (age %d, ASA %s) is assessed at %s risk for %s surgery with an overall score of %.1f/100.",
		p.Name, p.Age, orUnknown(p.ASAClass), level, strings.ToLower(string(surgeryType)), scores.Overall,
	)
	if interactionCount > 0 {
		summary += fmt.Sprintf(" %d potential drug interaction(s) require pharmacy review.", interactionCount)
	}
	if level == risk.LevelHigh || level == risk.LevelCritical {
		summary += " Anesthesiology consult recommended before scheduling."
	}
	return summary
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

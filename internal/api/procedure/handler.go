// Package procedure tracks the intraoperative procedure timeline.
package procedure

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
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

// Steps is the ordered procedure timeline every surgery walks through.
var Steps = []string{
	"Pre-Procedure Setup",
	"Anesthesia Induction",
	"Incision & Access",
	"Main Procedure Phase",
	"Hemostasis & Verification",
	"Closure",
	"Recovery Handoff",
}

// Handler keeps the per-surgery timeline position in memory. Timeline
// state is intraoperative and ephemeral, like a stream session, so it
// does not go through the durable store.
type Handler struct {
	mu      sync.Mutex
	current map[string]int
}

// NewHandler creates a procedure timeline handler.
func NewHandler() *Handler {
	return &Handler{current: make(map[string]int)}
}

// StepUpdateRequest moves a surgery's timeline to the given step index.
type StepUpdateRequest struct {
	SurgeryID   string `json:"surgery_id"`
	CurrentStep int    `json:"current_step"`
}

// UpdateStep sets the current timeline step for a surgery.
func (h *Handler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	var req StepUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid JSON body")
		return
	}
	req.SurgeryID = strings.TrimSpace(req.SurgeryID)
	if req.SurgeryID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "surgery_id is required")
		return
	}
	if req.CurrentStep < 0 || req.CurrentStep >= len(Steps) {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "step index out of range")
		return
	}

	h.mu.Lock()
	h.current[req.SurgeryID] = req.CurrentStep
	h.mu.Unlock()

	jsonOK(w, map[string]any{
		"surgery_id":   req.SurgeryID,
		"current_step": req.CurrentStep,
		"step_name":    Steps[req.CurrentStep],
		"updated_at":   time.Now().UTC(),
	})
}

// ListSteps returns the step labels, plus the tracked position when a
// surgery_id query parameter names a surgery seen by UpdateStep.
func (h *Handler) ListSteps(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"steps": Steps}

	if id := strings.TrimSpace(r.URL.Query().Get("surgery_id")); id != "" {
		h.mu.Lock()
		idx, ok := h.current[id]
		h.mu.Unlock()
		if ok {
			resp["surgery_id"] = id
			resp["current_step"] = idx
			resp["step_name"] = Steps[idx]
		}
	}

	jsonOK(w, resp)
}

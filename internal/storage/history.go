package storage

import (
	"sync"

	"github.com/aetheris-health/aetheris/internal/models"
)

// DefaultHistoryCapacity bounds the per-patient reading buffer.
const DefaultHistoryCapacity = 100

// HistoryStore keeps a bounded FIFO buffer of recent readings per patient.
// Appending beyond capacity evicts the oldest entry. All methods are safe
// for concurrent use.
type HistoryStore struct {
	mu       sync.RWMutex
	capacity int
	buffers  map[string][]models.VitalsReading
}

// NewHistoryStore creates a history store. A non-positive capacity falls
// back to DefaultHistoryCapacity.
func NewHistoryStore(capacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryStore{
		capacity: capacity,
		buffers:  make(map[string][]models.VitalsReading),
	}
}

// Append pushes a reading onto the patient's buffer, evicting the oldest
// entry when full.
func (h *HistoryStore) Append(patientID string, reading models.VitalsReading) {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf := h.buffers[patientID]
	if len(buf) >= h.capacity {
		// Shift in place so the backing array does not grow unbounded.
		copy(buf, buf[1:])
		buf[len(buf)-1] = reading
	} else {
		buf = append(buf, reading)
	}
	h.buffers[patientID] = buf
}

// History returns up to limit readings, oldest first with the newest last.
// A non-positive limit returns the whole buffer.
func (h *HistoryStore) History(patientID string, limit int) []models.VitalsReading {
	h.mu.RLock()
	defer h.mu.RUnlock()
	buf := h.buffers[patientID]
	if limit > 0 && limit < len(buf) {
		buf = buf[len(buf)-limit:]
	}
	out := make([]models.VitalsReading, len(buf))
	copy(out, buf)
	return out
}

// Latest returns the most recent reading, or false when the patient has
// no history.
func (h *HistoryStore) Latest(patientID string) (models.VitalsReading, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	buf := h.buffers[patientID]
	if len(buf) == 0 {
		return models.VitalsReading{}, false
	}
	return buf[len(buf)-1], true
}

// Count returns how many readings the patient's buffer currently holds.
func (h *HistoryStore) Count(patientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.buffers[patientID])
}

package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/aetheris-health/aetheris/internal/metrics"
	"github.com/aetheris-health/aetheris/internal/models"
	"github.com/aetheris-health/aetheris/internal/storage"
	"github.com/aetheris-health/aetheris/internal/vitals"
)

// Stream message types.
const (
	MessageVitalsUpdate = "vitals_update"
	MessageAnomalyAlert = "ANOMALY_ALERT"
)

// VitalsMessage is one vitals frame on the stream.
type VitalsMessage struct {
	Type      string `json:"type"`
	PatientID string `json:"patient_id"`
	models.VitalsReading
	Status models.OverallStatus `json:"status"`
}

// AlertsMessage carries the alerts fired by a single tick.
type AlertsMessage struct {
	Type   string                `json:"type"`
	Alerts []*models.AlertRecord `json:"alerts"`
}

// Session drives the tick loop for one patient: generate, classify,
// persist, broadcast. It exists only while at least one observer is
// attached.
type Session struct {
	patientID string
	interval  time.Duration
	source    vitals.ReadingSource
	profiles  *vitals.Registry
	alerts    storage.AlertRepository
	history   *storage.HistoryStore
	evict     func(*Observer)
	cancel    context.CancelFunc

	mu        sync.Mutex
	observers map[string]*Observer
}

func newSession(patientID string, m *Manager) *Session {
	s := &Session{
		patientID: patientID,
		interval:  m.interval,
		source:    m.source,
		profiles:  m.profiles,
		alerts:    m.alerts,
		history:   m.history,
		observers: make(map[string]*Observer),
	}
	s.evict = func(o *Observer) { m.Detach(patientID, o) }
	return s
}

func (s *Session) attach(o *Observer) {
	s.mu.Lock()
	s.observers[o.id] = o
	s.mu.Unlock()
	metrics.StreamObserversActive.Inc()
}

// detach removes the observer and reports how many remain. present is
// false when the observer was already gone.
func (s *Session) detach(o *Observer) (remaining int, present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.observers[o.id]; ok {
		delete(s.observers, o.id)
		present = true
		metrics.StreamObserversActive.Dec()
	}
	return len(s.observers), present
}

func (s *Session) run(ctx context.Context) {
	metrics.StreamSessionsActive.Inc()
	defer metrics.StreamSessionsActive.Dec()
	log.Printf("stream session started for patient %s", s.patientID)
	defer log.Printf("stream session stopped for patient %s", s.patientID)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.step(ctx)
		}
	}
}

// step runs one tick: reading, classification, history, alerts, fan-out.
func (s *Session) step(ctx context.Context) {
	reading := s.source.Next(s.patientID)
	classification := s.profiles.Current().ClassifyReading(s.patientID, "", reading)

	s.history.Append(s.patientID, reading)
	metrics.StreamTicksTotal.Inc()

	stored := classification.Alerts[:0]
	for _, a := range classification.Alerts {
		if err := s.alerts.Create(ctx, a); err != nil {
			log.Printf("failed to store alert for patient %s: %v", s.patientID, err)
			metrics.StorageErrors.WithLabelValues("create_alert", "alerts").Inc()
			continue
		}
		metrics.AlertsFiredTotal.WithLabelValues(string(a.Severity)).Inc()
		stored = append(stored, a)
	}

	readingData, err := json.Marshal(VitalsMessage{
		Type:          MessageVitalsUpdate,
		PatientID:     s.patientID,
		VitalsReading: reading,
		Status:        classification.Overall,
	})
	if err != nil {
		log.Printf("failed to encode vitals message: %v", err)
		return
	}
	s.broadcast(outbound{alert: false, data: readingData})

	if len(stored) == 0 {
		return
	}
	alertData, err := json.Marshal(AlertsMessage{
		Type:   MessageAnomalyAlert,
		Alerts: stored,
	})
	if err != nil {
		log.Printf("failed to encode alert message: %v", err)
		return
	}
	s.broadcast(outbound{alert: true, data: alertData})
}

// broadcast fans the payload out to every observer. Observers that cannot
// accept an alert are detached rather than silently losing it.
func (s *Session) broadcast(msg outbound) {
	s.mu.Lock()
	targets := make([]*Observer, 0, len(s.observers))
	for _, o := range s.observers {
		targets = append(targets, o)
	}
	s.mu.Unlock()

	var failed []*Observer
	for _, o := range targets {
		ok, dropped := o.enqueue(msg)
		if dropped {
			metrics.StreamReadingsDroppedTotal.Inc()
		}
		if !ok {
			failed = append(failed, o)
		}
	}
	for _, o := range failed {
		log.Printf("disconnecting observer %s for patient %s: alert delivery failed", o.id, s.patientID)
		metrics.StreamObserversForceClosedTotal.Inc()
		s.evict(o)
	}
}

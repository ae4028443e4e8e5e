package stream

import (
	"context"
	"sync"
	"time"

	"github.com/aetheris-health/aetheris/internal/storage"
	"github.com/aetheris-health/aetheris/internal/vitals"
)

// DefaultInterval is the generation cadence between ticks.
const DefaultInterval = 1500 * time.Millisecond

// Manager owns the per-patient sessions. A session is created when the
// first observer attaches and torn down when the last one detaches.
type Manager struct {
	interval  time.Duration
	queueSize int
	source    vitals.ReadingSource
	profiles  *vitals.Registry
	alerts    storage.AlertRepository
	history   *storage.HistoryStore

	mu       sync.Mutex
	sessions map[string]*Session
}

// Config carries the manager's collaborators and tuning knobs.
type Config struct {
	// Interval between ticks. Zero means DefaultInterval.
	Interval time.Duration
	// QueueSize bounds each observer's outbound queue. Zero means
	// DefaultQueueSize.
	QueueSize int
	Source    vitals.ReadingSource
	Profiles  *vitals.Registry
	Alerts    storage.AlertRepository
	History   *storage.HistoryStore
}

// NewManager creates a session manager.
func NewManager(cfg Config) *Manager {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Manager{
		interval:  interval,
		queueSize: cfg.QueueSize,
		source:    cfg.Source,
		profiles:  cfg.Profiles,
		alerts:    cfg.Alerts,
		history:   cfg.History,
		sessions:  make(map[string]*Session),
	}
}

// Attach registers a new observer for the patient, starting the session's
// tick loop when it is the first one.
func (m *Manager) Attach(patientID string) *Observer {
	obs := NewObserver(m.queueSize)

	m.mu.Lock()
	s, ok := m.sessions[patientID]
	if !ok {
		s = newSession(patientID, m)
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		m.sessions[patientID] = s
		go s.run(ctx)
	}
	s.attach(obs)
	m.mu.Unlock()

	return obs
}

// Detach removes the observer, stopping the session when it was the last
// one. Safe to call for an observer that is already gone.
func (m *Manager) Detach(patientID string, obs *Observer) {
	m.mu.Lock()
	if s, ok := m.sessions[patientID]; ok {
		remaining, _ := s.detach(obs)
		if remaining == 0 {
			s.cancel()
			delete(m.sessions, patientID)
		}
	}
	m.mu.Unlock()

	obs.Close()
}

// ActiveSessions returns how many patient sessions are ticking.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown stops every session and closes every observer.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.cancel()
		s.mu.Lock()
		for _, o := range s.observers {
			o.Close()
		}
		s.mu.Unlock()
	}
}

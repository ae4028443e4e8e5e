package vitals

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/aetheris-health/aetheris/internal/models"
)

// ReadingSource produces the next vitals reading for a patient. Session
// loops pull one reading per tick.
type ReadingSource interface {
	Next(patientID string) models.VitalsReading
}

// Simulator generates physiologically plausible readings: a slow sinusoid
// per vital, a per-patient phase offset so charts do not move in lockstep,
// and gaussian jitter. Values are clamped to each vital's plausible range.
type Simulator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	ticks map[string]int
	now   func() time.Time
}

// NewSimulator returns a simulator seeded for reproducible sequences.
func NewSimulator(seed int64) *Simulator {
	return &Simulator{
		rng:   rand.New(rand.NewSource(seed)),
		ticks: make(map[string]int),
		now:   time.Now,
	}
}

// Next advances the patient's tick counter and produces a reading.
func (s *Simulator) Next(patientID string) models.VitalsReading {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := float64(s.ticks[patientID])
	s.ticks[patientID]++
	offset := phaseOffset(patientID)

	r := models.VitalsReading{
		HeartRate:   round1(75 + 8*math.Sin(0.05*t+offset) + s.gauss(1.5)),
		SpO2:        round1(97.5 + 1.5*math.Sin(0.03*t+offset) + s.gauss(0.3)),
		SystolicBP:  round1(120 + 12*math.Sin(0.04*t+offset+1) + s.gauss(2)),
		DiastolicBP: round1(78 + 8*math.Sin(0.04*t+offset+1) + s.gauss(1.5)),
		Temperature: round2(36.8 + 0.3*math.Sin(0.02*t+offset) + s.gauss(0.05)),
		EtCO2:       round1(38 + 4*math.Sin(0.06*t+offset) + s.gauss(0.8)),
		RespRate:    round1(15 + 3*math.Sin(0.03*t+offset) + s.gauss(0.5)),
		RecordedAt:  s.now().UTC(),
	}

	// Keep readings inside plausible intraoperative ranges even at the
	// jitter extremes.
	r.HeartRate = clamp(r.HeartRate, 40, 160)
	r.SpO2 = clamp(r.SpO2, 85, 100)
	r.SystolicBP = clamp(r.SystolicBP, 70, 200)
	r.DiastolicBP = clamp(r.DiastolicBP, 40, 130)
	r.Temperature = clamp(r.Temperature, 35, 40.5)
	r.EtCO2 = clamp(r.EtCO2, 15, 70)
	r.RespRate = clamp(r.RespRate, 6, 35)
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Simulator) gauss(sigma float64) float64 {
	return s.rng.NormFloat64() * sigma
}

// phaseOffset derives a stable per-patient phase from the ID bytes so the
// same patient always gets the same waveform shape.
func phaseOffset(patientID string) float64 {
	sum := 0
	for i := 0; i < len(patientID); i++ {
		sum += int(patientID[i])
	}
	return float64(sum % 20)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Package models defines domain models for the Aetheris monitoring backend.
package models

import (
	"fmt"
	"math"
	"time"
)

// VitalStatus is the classification tier assigned to a single vital sign.
type VitalStatus string

const (
	StatusNormal       VitalStatus = "normal"
	StatusWarningLow   VitalStatus = "warning_low"
	StatusWarningHigh  VitalStatus = "warning_high"
	StatusCriticalLow  VitalStatus = "critical_low"
	StatusCriticalHigh VitalStatus = "critical_high"
)

// IsCritical reports whether the status is a critical tier.
func (s VitalStatus) IsCritical() bool {
	return s == StatusCriticalLow || s == StatusCriticalHigh
}

// IsWarning reports whether the status is a warning tier.
func (s VitalStatus) IsWarning() bool {
	return s == StatusWarningLow || s == StatusWarningHigh
}

// IsLow reports whether the breach is on the low side.
func (s VitalStatus) IsLow() bool {
	return s == StatusCriticalLow || s == StatusWarningLow
}

// OverallStatus summarizes a whole reading: critical if any vital is
// critical, warning if any is warning, normal otherwise.
type OverallStatus string

const (
	OverallNormal   OverallStatus = "normal"
	OverallWarning  OverallStatus = "warning"
	OverallCritical OverallStatus = "critical"
)

// Vital sign names as used in profiles, status maps, and alert records.
const (
	VitalHeartRate   = "heart_rate"
	VitalSpO2        = "spo2"
	VitalSystolicBP  = "systolic_bp"
	VitalDiastolicBP = "diastolic_bp"
	VitalTemperature = "temperature"
	VitalEtCO2       = "etco2"
	VitalRespRate    = "resp_rate"
)

// VitalNames lists the seven known vital signs in canonical order.
var VitalNames = []string{
	VitalHeartRate,
	VitalSpO2,
	VitalSystolicBP,
	VitalDiastolicBP,
	VitalTemperature,
	VitalEtCO2,
	VitalRespRate,
}

// VitalsReading is one immutable set of physiological measurements.
type VitalsReading struct {
	HeartRate   float64   `json:"heart_rate"`
	SpO2        float64   `json:"spo2"`
	SystolicBP  float64   `json:"systolic_bp"`
	DiastolicBP float64   `json:"diastolic_bp"`
	Temperature float64   `json:"temperature"`
	EtCO2       float64   `json:"etco2"`
	RespRate    float64   `json:"resp_rate"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// absoluteBound is the representable clinical range for a vital sign.
// Values outside are clamped at the producer boundary, never stored.
type absoluteBound struct {
	min, max float64
}

var absoluteBounds = map[string]absoluteBound{
	VitalHeartRate:   {0, 300},
	VitalSpO2:        {0, 100},
	VitalSystolicBP:  {0, 300},
	VitalDiastolicBP: {0, 200},
	VitalTemperature: {30, 45},
	VitalEtCO2:       {0, 100},
	VitalRespRate:    {0, 60},
}

// AbsoluteRange returns the absolute clinical bounds for a vital name.
// ok is false for unknown vitals.
func AbsoluteRange(name string) (min, max float64, ok bool) {
	b, ok := absoluteBounds[name]
	return b.min, b.max, ok
}

// Clamp returns a copy of the reading with every field bounded to its
// absolute clinical range.
func (r VitalsReading) Clamp() VitalsReading {
	r.HeartRate = clampValue(VitalHeartRate, r.HeartRate)
	r.SpO2 = clampValue(VitalSpO2, r.SpO2)
	r.SystolicBP = clampValue(VitalSystolicBP, r.SystolicBP)
	r.DiastolicBP = clampValue(VitalDiastolicBP, r.DiastolicBP)
	r.Temperature = clampValue(VitalTemperature, r.Temperature)
	r.EtCO2 = clampValue(VitalEtCO2, r.EtCO2)
	r.RespRate = clampValue(VitalRespRate, r.RespRate)
	return r
}

func clampValue(name string, v float64) float64 {
	b := absoluteBounds[name]
	if v < b.min {
		return b.min
	}
	if v > b.max {
		return b.max
	}
	return v
}

// Validate rejects readings with non-finite values.
func (r VitalsReading) Validate() error {
	for name, value := range r.Values() {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("vital %s has non-finite value", name)
		}
	}
	return nil
}

// Values returns the reading's seven measurements keyed by vital name.
func (r VitalsReading) Values() map[string]float64 {
	return map[string]float64{
		VitalHeartRate:   r.HeartRate,
		VitalSpO2:        r.SpO2,
		VitalSystolicBP:  r.SystolicBP,
		VitalDiastolicBP: r.DiastolicBP,
		VitalTemperature: r.Temperature,
		VitalEtCO2:       r.EtCO2,
		VitalRespRate:    r.RespRate,
	}
}

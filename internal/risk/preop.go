// Package risk implements the heuristic pre-operative and post-operative
// risk scoring used by the assessment endpoints.
package risk

import (
	"math"

	"github.com/aetheris-health/aetheris/internal/models"
)

// Risk levels, coarsest first.
const (
	LevelLow      = "LOW"
	LevelMedium   = "MEDIUM"
	LevelHigh     = "HIGH"
	LevelCritical = "CRITICAL"
)

// PreOpInput carries the clinical profile for a pre-op assessment.
// Zero-valued vitals mean not measured.
type PreOpInput struct {
	PatientID    string
	SurgeryType  models.SurgeryType
	ASAClass     string
	Medications  []string
	WeightKg     float64
	HeightCm     float64
	SystolicBP   float64
	DiastolicBP  float64
	HeartRate    float64
	SpO2         float64
	Temperature  float64
	Diabetes     bool
	Hypertension bool
	CardiacHx    bool
	Smoking      bool
}

// Scores is the per-domain risk breakdown, each on a 1..100 scale.
type Scores struct {
	Cardiac    float64
	Anesthesia float64
	Surgical   float64
	Overall    float64
}

type baseRisk struct {
	cardiac, anesthesia, surgical float64
}

var surgeryRiskBase = map[models.SurgeryType]baseRisk{
	models.SurgeryCardiac:      {35, 28, 40},
	models.SurgeryNeurological: {20, 25, 30},
	models.SurgeryOrthopedic:   {12, 15, 18},
	models.SurgeryGeneral:      {10, 12, 15},
	models.SurgeryVascular:     {30, 22, 35},
	models.SurgeryThoracic:     {28, 30, 32},
	models.SurgeryAbdominal:    {15, 18, 20},
	models.SurgeryOphthalmic:   {5, 8, 6},
}

var asaBonus = map[string]float64{
	"I": 0, "II": 5, "III": 15, "IV": 30, "V": 50,
}

// PreOpScores computes the heuristic risk breakdown for a surgical
// candidate. Scores are clamped to [1,100]; the overall score weights
// cardiac and anesthesia risk at 35% each and surgical risk at 30%.
func PreOpScores(in PreOpInput) Scores {
	base, ok := surgeryRiskBase[in.SurgeryType]
	if !ok {
		base = baseRisk{10, 12, 15}
	}

	cardiac := base.cardiac
	anesthesia := base.anesthesia
	surgical := base.surgical

	if in.CardiacHx {
		cardiac += 20
		anesthesia += 10
	}
	if in.Diabetes {
		cardiac += 8
		surgical += 5
	}
	if in.Hypertension {
		cardiac += 10
		anesthesia += 5
	}
	if in.Smoking {
		anesthesia += 8
		surgical += 6
	}

	asa := in.ASAClass
	if asa == "" {
		asa = "II"
	}
	bonus, ok := asaBonus[asa]
	if !ok {
		bonus = 5
	}
	cardiac += bonus * 0.4
	anesthesia += bonus * 0.4
	surgical += bonus * 0.2

	if in.SpO2 > 0 && in.SpO2 < 93 {
		anesthesia += 15
	}
	if in.SystolicBP > 160 {
		cardiac += 10
	}

	if bmi, ok := BMI(in.WeightKg, in.HeightCm); ok {
		switch {
		case bmi > 40:
			anesthesia += 12
			surgical += 8
		case bmi > 30:
			anesthesia += 5
			surgical += 3
		}
	}

	cardiac = clampScore(cardiac)
	anesthesia = clampScore(anesthesia)
	surgical = clampScore(surgical)

	return Scores{
		Cardiac:    cardiac,
		Anesthesia: anesthesia,
		Surgical:   surgical,
		Overall:    round1(cardiac*0.35 + anesthesia*0.35 + surgical*0.30),
	}
}

// ScoreToLevel buckets an overall score into a risk level.
func ScoreToLevel(score float64) string {
	switch {
	case score < 25:
		return LevelLow
	case score < 50:
		return LevelMedium
	case score < 75:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// PredictASA estimates the ASA class from the comorbidity count.
func PredictASA(in PreOpInput) string {
	classes := []string{"I", "II", "III", "IV", "V"}
	score := 0
	for _, present := range []bool{in.Diabetes, in.Hypertension, in.CardiacHx, in.Smoking} {
		if present {
			score++
		}
	}
	if score > 4 {
		score = 4
	}
	return classes[score]
}

// BMI computes body mass index, reporting false when either measurement
// is missing.
func BMI(weightKg, heightCm float64) (float64, bool) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, false
	}
	m := heightCm / 100
	return weightKg / (m * m), true
}

func clampScore(v float64) float64 {
	v = round1(v)
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

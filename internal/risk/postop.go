package risk

import "github.com/aetheris-health/aetheris/internal/models"

// ComplicationInput carries the surgical course for a post-op complication
// assessment. Zero values mean unknown.
type ComplicationInput struct {
	PatientID    string
	SurgeryID    string
	SurgeryType  models.SurgeryType
	DurationMin  int
	BloodLossML  float64
	ASAClass     string
	Age          int
	Diabetes     bool
	Hypertension bool
	CardiacHx    bool
	Smoker       bool
}

// Complication is one predicted post-operative complication.
type Complication struct {
	Name        string  `json:"name"`
	RiskPct     float64 `json:"risk_pct"`
	RiskLevel   string  `json:"risk_level"`
	Description string  `json:"description"`
}

// ComplicationAssessment is the overall post-op risk picture.
type ComplicationAssessment struct {
	PatientID      string         `json:"patient_id"`
	OverallScore   float64        `json:"overall_score"`
	RiskLevel      string         `json:"risk_level"`
	Complications  []Complication `json:"complications"`
	Recommendation string         `json:"recommendation"`
}

type complicationBase struct {
	dvt, infection, pneumonia, readmission float64
}

var surgeryComplicationBase = map[models.SurgeryType]complicationBase{
	models.SurgeryCardiac:      {18, 12, 25, 20},
	models.SurgeryOrthopedic:   {22, 8, 12, 15},
	models.SurgeryNeurological: {14, 10, 18, 17},
	models.SurgeryGeneral:      {10, 8, 10, 12},
	models.SurgeryVascular:     {20, 14, 20, 22},
	models.SurgeryThoracic:     {16, 12, 30, 18},
	models.SurgeryAbdominal:    {12, 15, 14, 16},
	models.SurgeryOphthalmic:   {3, 4, 4, 5},
}

var asaMultiplier = map[string]float64{
	"I": 0.7, "II": 1.0, "III": 1.4, "IV": 2.0, "V": 3.0,
}

// riskToLevel buckets a complication percentage. Post-op levels are
// coarser than pre-op ones: anything above 25% is HIGH.
func riskToLevel(pct float64) string {
	switch {
	case pct < 10:
		return LevelLow
	case pct < 25:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// PredictComplications estimates DVT, infection, pneumonia, and 30-day
// readmission risk from the surgical course and patient profile.
func PredictComplications(in ComplicationInput) ComplicationAssessment {
	base, ok := surgeryComplicationBase[in.SurgeryType]
	if !ok {
		base = complicationBase{10, 8, 10, 12}
	}

	mod := 1.0
	if in.Diabetes {
		mod += 0.3
	}
	if in.CardiacHx {
		mod += 0.4
	}
	if in.Hypertension {
		mod += 0.15
	}
	if in.Smoker {
		mod += 0.2
	}

	asa := in.ASAClass
	if asa == "" {
		asa = "II"
	}
	mult, ok := asaMultiplier[asa]
	if !ok {
		mult = 1.0
	}
	mod *= mult

	if in.DurationMin > 240 {
		mod += 0.2
	}
	if in.BloodLossML > 500 {
		mod += 0.25
	}

	dvt := round1(min(base.dvt*mod, 75))
	infection := round1(min(base.infection*mod, 60))
	pneumonia := round1(min(base.pneumonia*mod, 70))
	readmission := round1(min(base.readmission*mod, 60))

	overall := round1(dvt*0.25 + infection*0.25 + pneumonia*0.25 + readmission*0.25)
	level := riskToLevel(overall)

	recommendation := "Standard post-operative monitoring protocol. Follow discharge instructions and schedule follow-up."
	if level == LevelHigh {
		recommendation = "High complication risk detected. Recommend ICU monitoring, early mobilization, " +
			"prophylactic anticoagulation, and daily wound inspection."
	}

	return ComplicationAssessment{
		PatientID:    in.PatientID,
		OverallScore: overall,
		RiskLevel:    level,
		Complications: []Complication{
			{
				Name:        "Deep Vein Thrombosis (DVT)",
				RiskPct:     dvt,
				RiskLevel:   riskToLevel(dvt),
				Description: "Blood clot formation risk in deep veins post-surgery.",
			},
			{
				Name:        "Surgical Site Infection",
				RiskPct:     infection,
				RiskLevel:   riskToLevel(infection),
				Description: "Risk of infection at the incision site or deeper tissues.",
			},
			{
				Name:        "Post-Op Pneumonia",
				RiskPct:     pneumonia,
				RiskLevel:   riskToLevel(pneumonia),
				Description: "Pulmonary complication from reduced mobility and ventilation.",
			},
			{
				Name:        "30-Day Readmission",
				RiskPct:     readmission,
				RiskLevel:   riskToLevel(readmission),
				Description: "Probability of hospital readmission within 30 days of discharge.",
			},
		},
		Recommendation: recommendation,
	}
}

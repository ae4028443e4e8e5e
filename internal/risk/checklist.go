package risk

import "github.com/aetheris-health/aetheris/internal/models"

// ChecklistItem is one pre-operative readiness item.
type ChecklistItem struct {
	ID       int    `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Required bool   `json:"required"`
	Checked  bool   `json:"checked"`
}

// BaseChecklist returns the standard pre-op checklist applied to every
// surgery type.
func BaseChecklist() []ChecklistItem {
	return []ChecklistItem{
		{ID: 1, Label: "Informed consent signed by patient", Category: "legal", Required: true},
		{ID: 2, Label: "Blood work reviewed (CBC, BMP, coagulation)", Category: "labs", Required: true},
		{ID: 3, Label: "Imaging reviewed (X-ray / MRI / CT)", Category: "imaging", Required: true},
		{ID: 4, Label: "NPO status confirmed (nil by mouth)", Category: "nutrition", Required: true},
		{ID: 5, Label: "Allergies verified and documented", Category: "safety", Required: true},
		{ID: 6, Label: "IV access confirmed and patent", Category: "access", Required: true},
		{ID: 7, Label: "Anesthesia plan reviewed and approved", Category: "anesthesia", Required: true},
		{ID: 8, Label: "Drug interactions checked and cleared", Category: "medication", Required: true},
		{ID: 9, Label: "Site marking completed (if applicable)", Category: "surgical", Required: false},
		{ID: 10, Label: "Pre-op antibiotics administered", Category: "medication", Required: false},
	}
}

// GenerateChecklist builds the checklist for one assessment: the base
// items plus surgery-specific, interaction, and high-risk additions.
func GenerateChecklist(surgeryType models.SurgeryType, hasInteractions bool, riskLevel string) []ChecklistItem {
	items := BaseChecklist()

	switch surgeryType {
	case models.SurgeryCardiac:
		items = append(items,
			ChecklistItem{ID: 11, Label: "Cardiology clearance obtained", Category: "specialist", Required: true},
			ChecklistItem{ID: 12, Label: "Echo / stress test results reviewed", Category: "imaging", Required: true},
		)
	case models.SurgeryNeurological:
		items = append(items,
			ChecklistItem{ID: 11, Label: "Neurology consult completed", Category: "specialist", Required: true},
		)
	case models.SurgeryOrthopedic:
		items = append(items,
			ChecklistItem{ID: 11, Label: "DVT prophylaxis plan documented", Category: "safety", Required: true},
		)
	}

	if hasInteractions {
		items = append(items,
			ChecklistItem{ID: 20, Label: "Drug interactions reviewed with pharmacist", Category: "medication", Required: true},
		)
	}

	if riskLevel == LevelHigh || riskLevel == LevelCritical {
		items = append(items,
			ChecklistItem{ID: 21, Label: "ICU bed reserved post-operatively", Category: "planning", Required: true},
			ChecklistItem{ID: 22, Label: "Blood products cross-matched and available", Category: "blood", Required: true},
		)
	}

	return items
}

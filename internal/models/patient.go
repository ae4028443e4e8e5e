package models

import "time"

// Patient is a patient record with the clinical context used by the
// pre-op and post-op assessment endpoints.
type Patient struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Gender         string    `json:"gender"`
	WeightKg       float64   `json:"weight_kg,omitempty"`
	HeightCm       float64   `json:"height_cm,omitempty"`
	BloodType      string    `json:"blood_type,omitempty"`
	Allergies      []string  `json:"allergies"`
	Medications    []string  `json:"medications"`
	MedicalHistory []string  `json:"medical_history"`
	ASAClass       string    `json:"asa_class,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// SurgeryType is a coarse procedure category used by the risk tables.
type SurgeryType string

const (
	SurgeryCardiac      SurgeryType = "Cardiac"
	SurgeryOrthopedic   SurgeryType = "Orthopedic"
	SurgeryNeurological SurgeryType = "Neurological"
	SurgeryGeneral      SurgeryType = "General"
	SurgeryVascular     SurgeryType = "Vascular"
	SurgeryThoracic     SurgeryType = "Thoracic"
	SurgeryAbdominal    SurgeryType = "Abdominal"
	SurgeryOphthalmic   SurgeryType = "Ophthalmic"
)

// SurgeryTypes lists the recognized surgery categories.
var SurgeryTypes = []SurgeryType{
	SurgeryCardiac,
	SurgeryOrthopedic,
	SurgeryNeurological,
	SurgeryGeneral,
	SurgeryVascular,
	SurgeryThoracic,
	SurgeryAbdominal,
	SurgeryOphthalmic,
}

// ParseSurgeryType converts a string to SurgeryType.
func ParseSurgeryType(s string) (SurgeryType, bool) {
	for _, t := range SurgeryTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

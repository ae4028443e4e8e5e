package models

import "time"

// Severity represents alert severity level.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ParseSeverity converts a string to Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "critical":
		return SeverityCritical, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return "", false
	}
}

// AlertRecord is a single fired alert. Records are never deleted; the only
// mutation after creation is acknowledgement, which is terminal.
type AlertRecord struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patient_id"`
	SurgeryID      string    `json:"surgery_id,omitempty"`
	Severity       Severity  `json:"severity"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	VitalType      string    `json:"vital_type,omitempty"`
	VitalValue     float64   `json:"vital_value,omitempty"`
	Acknowledged   bool      `json:"acknowledged"`
	AcknowledgedBy string    `json:"acknowledged_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

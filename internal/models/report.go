package models

import "time"

// ReportType identifies the kind of clinical document to generate.
type ReportType string

const (
	ReportOperativeNote      ReportType = "operative_note"
	ReportDischargeSummary   ReportType = "discharge_summary"
	ReportRiskAssessment     ReportType = "risk_assessment"
	ReportComplicationReport ReportType = "complication_report"
)

// ParseReportType converts a string to ReportType.
func ParseReportType(s string) (ReportType, bool) {
	switch ReportType(s) {
	case ReportOperativeNote, ReportDischargeSummary, ReportRiskAssessment, ReportComplicationReport:
		return ReportType(s), true
	default:
		return "", false
	}
}

// Report is a generated clinical document.
type Report struct {
	ID         string     `json:"id"`
	PatientID  string     `json:"patient_id"`
	SurgeryID  string     `json:"surgery_id,omitempty"`
	ReportType ReportType `json:"report_type"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}

package vitals

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aetheris-health/aetheris/internal/models"
)

// BuildAlert constructs the alert record for a breached vital. The record
// has no ID or timestamp yet; the store assigns both on insert.
func BuildAlert(patientID, surgeryID, name string, value float64, status models.VitalStatus, p *Profile) *models.AlertRecord {
	severity := models.SeverityWarning
	label := "WARNING"
	advice := "Monitor closely."
	if status.IsCritical() {
		severity = models.SeverityCritical
		label = "CRITICAL"
		advice = "Immediate clinical attention required."
	}

	direction := "exceeded"
	threshold := p.CriticalHigh
	if status.IsLow() {
		direction = "dropped below"
		threshold = p.CriticalLow
		if !status.IsCritical() {
			threshold = p.WarningLow
		}
	} else if !status.IsCritical() {
		threshold = p.WarningHigh
	}

	display := displayName(name)
	return &models.AlertRecord{
		PatientID:  patientID,
		SurgeryID:  surgeryID,
		Severity:   severity,
		Title:      fmt.Sprintf("%s: %s", label, display),
		Message: fmt.Sprintf("%s has %s threshold: %s %s (threshold: %s %s). %s",
			display, direction,
			formatValue(value), p.Unit,
			formatValue(threshold), p.Unit,
			advice),
		VitalType:  name,
		VitalValue: value,
	}
}

func displayName(name string) string {
	parts := strings.Split(name, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

// formatValue prints vitals the way monitors display them, one decimal.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

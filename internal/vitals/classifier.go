package vitals

import (
	"github.com/aetheris-health/aetheris/internal/models"
)

// Classification is the outcome of evaluating one reading against a
// threshold table.
type Classification struct {
	// Statuses carries the per-vital status for every vital in the reading.
	Statuses map[string]models.VitalStatus
	// Alerts holds one record per breached vital, in models.VitalNames order.
	// IDs and timestamps are assigned at persistence time.
	Alerts []*models.AlertRecord
	// Overall is the worst per-vital status collapsed to a patient level.
	Overall models.OverallStatus
}

// Classify evaluates a single value against a profile. Critical bounds and
// warning_high are inclusive; warning_low is exclusive, so a value exactly
// on warning_low is still normal. Vitals without a profile always classify
// normal.
func Classify(value float64, p *Profile) models.VitalStatus {
	if p == nil {
		return models.StatusNormal
	}
	switch {
	case value <= p.CriticalLow:
		return models.StatusCriticalLow
	case value >= p.CriticalHigh:
		return models.StatusCriticalHigh
	case value < p.WarningLow:
		return models.StatusWarningLow
	case value >= p.WarningHigh:
		return models.StatusWarningHigh
	default:
		return models.StatusNormal
	}
}

// ClassifyReading evaluates every vital in the reading against the table
// and builds alert records for each breach.
func (t Table) ClassifyReading(patientID, surgeryID string, r models.VitalsReading) Classification {
	c := Classification{
		Statuses: make(map[string]models.VitalStatus, len(models.VitalNames)),
		Overall:  models.OverallNormal,
	}
	values := r.Values()
	for _, name := range models.VitalNames {
		status := Classify(values[name], t[name])
		c.Statuses[name] = status
		if status == models.StatusNormal {
			continue
		}
		c.Alerts = append(c.Alerts, BuildAlert(patientID, surgeryID, name, values[name], status, t[name]))
		if status.IsCritical() {
			c.Overall = models.OverallCritical
		} else if c.Overall == models.OverallNormal {
			c.Overall = models.OverallWarning
		}
	}
	return c
}

// Package vitals provides threshold profiles, the reading classifier, the
// alert factory, and the simulated reading source for patient monitoring.
package vitals

import (
	"fmt"
	"math"

	"github.com/aetheris-health/aetheris/internal/models"
)

// Profile holds the tiered alerting boundaries for one vital sign.
// Invariant: CriticalLow <= WarningLow <= WarningHigh <= CriticalHigh.
// A missing high side is represented as +Inf.
type Profile struct {
	CriticalLow  float64 `yaml:"critical_low"`
	WarningLow   float64 `yaml:"warning_low"`
	WarningHigh  float64 `yaml:"warning_high"`
	CriticalHigh float64 `yaml:"critical_high"`
	Unit         string  `yaml:"unit"`
}

// Validate checks the boundary ordering invariant.
func (p *Profile) Validate(name string) error {
	if p.CriticalLow > p.WarningLow {
		return fmt.Errorf("profile %q: critical_low %.6g above warning_low %.6g", name, p.CriticalLow, p.WarningLow)
	}
	if p.WarningLow > p.WarningHigh {
		return fmt.Errorf("profile %q: warning_low %.6g above warning_high %.6g", name, p.WarningLow, p.WarningHigh)
	}
	if p.WarningHigh > p.CriticalHigh {
		return fmt.Errorf("profile %q: warning_high %.6g above critical_high %.6g", name, p.WarningHigh, p.CriticalHigh)
	}
	return nil
}

// Table maps vital names to their threshold profiles. Vitals absent from
// the table always classify normal.
type Table map[string]*Profile

// Validate validates every profile in the table.
func (t Table) Validate() error {
	for name, p := range t {
		if p == nil {
			return fmt.Errorf("profile %q is empty", name)
		}
		if err := p.Validate(name); err != nil {
			return err
		}
	}
	return nil
}

// DefaultProfiles returns the built-in clinical threshold table.
func DefaultProfiles() Table {
	return Table{
		models.VitalHeartRate: {
			CriticalLow: 40, WarningLow: 50,
			WarningHigh: 120, CriticalHigh: 140,
			Unit: "bpm",
		},
		// SpO2 has no meaningful high side: saturation caps at 100%.
		models.VitalSpO2: {
			CriticalLow: 90, WarningLow: 93,
			WarningHigh: 100, CriticalHigh: math.Inf(1),
			Unit: "%",
		},
		models.VitalSystolicBP: {
			CriticalLow: 80, WarningLow: 90,
			WarningHigh: 160, CriticalHigh: 180,
			Unit: "mmHg",
		},
		models.VitalDiastolicBP: {
			CriticalLow: 40, WarningLow: 50,
			WarningHigh: 100, CriticalHigh: 120,
			Unit: "mmHg",
		},
		models.VitalTemperature: {
			CriticalLow: 35.0, WarningLow: 35.5,
			WarningHigh: 38.5, CriticalHigh: 39.5,
			Unit: "°C",
		},
		models.VitalEtCO2: {
			CriticalLow: 20, WarningLow: 25,
			WarningHigh: 50, CriticalHigh: 60,
			Unit: "mmHg",
		},
		models.VitalRespRate: {
			CriticalLow: 8, WarningLow: 10,
			WarningHigh: 25, CriticalHigh: 30,
			Unit: "br/min",
		},
	}
}

package vitals

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aetheris-health/aetheris/internal/models"
)

func TestLoadProfilesFromBytesOverridesDefaults(t *testing.T) {
	data := []byte(`
profiles:
  heart_rate:
    critical_low: 35
    warning_low: 45
    warning_high: 110
    critical_high: 130
    unit: bpm
`)
	table, err := LoadProfilesFromBytes(data)
	if err != nil {
		t.Fatalf("LoadProfilesFromBytes() error = %v", err)
	}

	hr := table[models.VitalHeartRate]
	if hr.CriticalLow != 35 || hr.CriticalHigh != 130 {
		t.Errorf("heart_rate profile = %+v, want overridden bounds", hr)
	}

	// Vitals the file does not mention keep their defaults.
	if table[models.VitalSpO2].CriticalLow != 90 {
		t.Errorf("spo2 critical_low = %g, want default 90", table[models.VitalSpO2].CriticalLow)
	}
}

func TestLoadProfilesFromBytesZeroHighIsUnbounded(t *testing.T) {
	data := []byte(`
profiles:
  spo2:
    critical_low: 88
    warning_low: 92
    warning_high: 100
    unit: "%"
`)
	table, err := LoadProfilesFromBytes(data)
	if err != nil {
		t.Fatalf("LoadProfilesFromBytes() error = %v", err)
	}
	if got := Classify(99, table[models.VitalSpO2]); got != models.StatusNormal {
		t.Errorf("spo2=99 with unbounded high = %s, want normal", got)
	}
	if got := Classify(100, table[models.VitalSpO2]); got != models.StatusWarningHigh {
		t.Errorf("spo2=100 at warning bound = %s, want warning_high", got)
	}
}

func TestLoadProfilesFromBytesRejectsInvalidOrdering(t *testing.T) {
	data := []byte(`
profiles:
  heart_rate:
    critical_low: 60
    warning_low: 50
    warning_high: 120
    critical_high: 140
`)
	if _, err := LoadProfilesFromBytes(data); err == nil {
		t.Fatal("expected ordering error, got nil")
	}
}

func TestRegistryReloadKeepsPreviousTableOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.yaml")

	valid := []byte(`
profiles:
  heart_rate:
    critical_low: 35
    warning_low: 45
    warning_high: 110
    critical_high: 130
`)
	if err := os.WriteFile(path, valid, 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := NewRegistry(path)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if reg.Current()[models.VitalHeartRate].CriticalLow != 35 {
		t.Fatal("initial load did not apply the file")
	}

	invalid := []byte("profiles:\n  heart_rate: {critical_low: 90, warning_low: 50}\n")
	if err := os.WriteFile(path, invalid, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := reg.Reload(); err == nil {
		t.Fatal("expected reload error for invalid file")
	}
	if reg.Current()[models.VitalHeartRate].CriticalLow != 35 {
		t.Error("previous table was not kept after failed reload")
	}
}

func TestNewRegistryWithoutFileUsesDefaults(t *testing.T) {
	reg, err := NewRegistry("")
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if reg.Current()[models.VitalHeartRate].CriticalLow != 40 {
		t.Error("registry without file should carry defaults")
	}
}

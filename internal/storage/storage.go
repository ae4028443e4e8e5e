// Package storage provides persistence interfaces and implementations for
// patients, alerts, and generated reports.
package storage

import (
	"context"

	"github.com/aetheris-health/aetheris/internal/models"
)

// Storage is the main interface for persistence operations.
type Storage interface {
	// Open initializes the backing store.
	Open() error
	// Close releases the backing store.
	Close() error
	// Migrate brings the schema up to date. A no-op for stores without one.
	Migrate() error
	// SeedDemoPatients inserts the demo patient roster when the patient
	// table is empty.
	SeedDemoPatients() error

	// Repository accessors
	Patients() PatientRepository
	Alerts() AlertRepository
	Reports() ReportRepository
}

// PatientRepository defines operations for patient records.
type PatientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	List(ctx context.Context) ([]*models.Patient, error)
	Count(ctx context.Context) (int64, error)
}

// AlertFilter narrows alert listings. Zero values mean no filtering.
type AlertFilter struct {
	PatientID  string
	UnreadOnly bool
	Limit      int
}

// AlertRepository defines the alert lifecycle. Alerts are append-only;
// acknowledgement is the only mutation and it is terminal.
type AlertRepository interface {
	// Create stores a new unacknowledged alert, assigning an id and
	// creation timestamp when the record carries none.
	Create(ctx context.Context, alert *models.AlertRecord) error
	GetByID(ctx context.Context, id string) (*models.AlertRecord, error)
	// List returns alerts newest-created-first.
	List(ctx context.Context, filter AlertFilter) ([]*models.AlertRecord, error)
	// Acknowledge marks the alert acknowledged and records the
	// acknowledger. Re-acknowledging succeeds without changes. A missing
	// id returns (nil, nil).
	Acknowledge(ctx context.Context, id, acknowledgedBy string) (*models.AlertRecord, error)
	// AcknowledgeAll acknowledges every unacknowledged alert, optionally
	// scoped to one patient, and returns how many were flipped.
	AcknowledgeAll(ctx context.Context, patientID string) (int64, error)
}

// ReportRepository defines operations for generated clinical documents.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	ListByPatient(ctx context.Context, patientID string) ([]*models.Report, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aetheris-health/aetheris/internal/models"
)

// MemoryStorage implements Storage with in-process maps. It is the default
// backend; state does not survive a restart.
type MemoryStorage struct {
	patients *memoryPatientRepo
	alerts   *memoryAlertRepo
	reports  *memoryReportRepo
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		patients: &memoryPatientRepo{byID: make(map[string]*models.Patient)},
		alerts:   &memoryAlertRepo{byID: make(map[string]*models.AlertRecord)},
		reports:  &memoryReportRepo{byID: make(map[string]*models.Report)},
	}
}

// Open is a no-op for the in-memory backend.
func (s *MemoryStorage) Open() error { return nil }

// Close is a no-op for the in-memory backend.
func (s *MemoryStorage) Close() error { return nil }

// Migrate is a no-op for the in-memory backend.
func (s *MemoryStorage) Migrate() error { return nil }

// SeedDemoPatients inserts the demo roster when no patients exist.
func (s *MemoryStorage) SeedDemoPatients() error {
	ctx := context.Background()
	count, err := s.Patients().Count(ctx)
	if err != nil || count > 0 {
		return err
	}
	for _, p := range demoPatients() {
		if err := s.Patients().Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Patients returns the patient repository.
func (s *MemoryStorage) Patients() PatientRepository { return s.patients }

// Alerts returns the alert repository.
func (s *MemoryStorage) Alerts() AlertRepository { return s.alerts }

// Reports returns the report repository.
func (s *MemoryStorage) Reports() ReportRepository { return s.reports }

func demoPatients() []*models.Patient {
	now := time.Now().UTC()
	return []*models.Patient{
		{
			ID: "p001", Name: "Rajesh Kumar", Age: 58, Gender: "Male",
			WeightKg: 82, HeightCm: 172, BloodType: "B+",
			Allergies:      []string{"Penicillin"},
			Medications:    []string{"Warfarin", "Aspirin", "Metformin"},
			MedicalHistory: []string{"Type 2 Diabetes", "Hypertension", "Atrial Fibrillation"},
			ASAClass:       "III", CreatedAt: now,
		},
		{
			ID: "p002", Name: "Priya Sharma", Age: 42, Gender: "Female",
			WeightKg: 65, HeightCm: 162, BloodType: "O+",
			Allergies:      []string{},
			Medications:    []string{"Metoprolol", "Lisinopril"},
			MedicalHistory: []string{"Hypertension"},
			ASAClass:       "II", CreatedAt: now,
		},
		{
			ID: "p003", Name: "Amit Patel", Age: 67, Gender: "Male",
			WeightKg: 90, HeightCm: 175, BloodType: "A+",
			Allergies:      []string{"Sulfa"},
			Medications:    []string{"Atorvastatin", "Clopidogrel", "Aspirin"},
			MedicalHistory: []string{"CAD", "Hypertension", "Dyslipidemia"},
			ASAClass:       "IV", CreatedAt: now,
		},
	}
}

type memoryPatientRepo struct {
	mu    sync.RWMutex
	byID  map[string]*models.Patient
	order []string
}

func (r *memoryPatientRepo) Create(_ context.Context, patient *models.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if patient.ID == "" {
		patient.ID = uuid.NewString()[:8]
	}
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = time.Now().UTC()
	}
	cp := *patient
	r.byID[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	return nil
}

func (r *memoryPatientRepo) GetByID(_ context.Context, id string) (*models.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memoryPatientRepo) List(_ context.Context) ([]*models.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Patient, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryPatientRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

type memoryAlertRepo struct {
	mu    sync.RWMutex
	byID  map[string]*models.AlertRecord
	order []string
}

func (r *memoryAlertRepo) Create(_ context.Context, alert *models.AlertRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	cp := *alert
	r.byID[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	return nil
}

func (r *memoryAlertRepo) GetByID(_ context.Context, id string) (*models.AlertRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memoryAlertRepo) List(_ context.Context, filter AlertFilter) ([]*models.AlertRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.AlertRecord
	// Insertion order is creation order, so walk backwards for
	// newest-first.
	for i := len(r.order) - 1; i >= 0; i-- {
		a := r.byID[r.order[i]]
		if filter.PatientID != "" && a.PatientID != filter.PatientID {
			continue
		}
		if filter.UnreadOnly && a.Acknowledged {
			continue
		}
		cp := *a
		out = append(out, &cp)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *memoryAlertRepo) Acknowledge(_ context.Context, id, acknowledgedBy string) (*models.AlertRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	if !a.Acknowledged {
		a.Acknowledged = true
		a.AcknowledgedBy = acknowledgedBy
	}
	cp := *a
	return &cp, nil
}

func (r *memoryAlertRepo) AcknowledgeAll(_ context.Context, patientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, a := range r.byID {
		if a.Acknowledged {
			continue
		}
		if patientID != "" && a.PatientID != patientID {
			continue
		}
		a.Acknowledged = true
		count++
	}
	return count, nil
}

type memoryReportRepo struct {
	mu    sync.RWMutex
	byID  map[string]*models.Report
	order []string
}

func (r *memoryReportRepo) Create(_ context.Context, report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	cp := *report
	r.byID[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	return nil
}

func (r *memoryReportRepo) GetByID(_ context.Context, id string) (*models.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *rep
	return &cp, nil
}

func (r *memoryReportRepo) ListByPatient(_ context.Context, patientID string) ([]*models.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Report
	for i := len(r.order) - 1; i >= 0; i-- {
		rep := r.byID[r.order[i]]
		if rep.PatientID != patientID {
			continue
		}
		cp := *rep
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryReportRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.byID[id]
	if !ok {
		return nil
	}
	rep.Status = status
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aetheris-health/aetheris/internal/models"
)

type sqlitePatientRepo struct {
	db *sql.DB
}

func (r *sqlitePatientRepo) Create(ctx context.Context, patient *models.Patient) error {
	if patient.ID == "" {
		patient.ID = uuid.NewString()[:8]
	}
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = time.Now().UTC()
	}

	allergies, err := json.Marshal(sliceOrEmpty(patient.Allergies))
	if err != nil {
		return fmt.Errorf("marshal allergies: %w", err)
	}
	medications, err := json.Marshal(sliceOrEmpty(patient.Medications))
	if err != nil {
		return fmt.Errorf("marshal medications: %w", err)
	}
	history, err := json.Marshal(sliceOrEmpty(patient.MedicalHistory))
	if err != nil {
		return fmt.Errorf("marshal medical history: %w", err)
	}

	query := `
		INSERT INTO patients (id, name, age, gender, weight_kg, height_cm,
			blood_type, allergies_json, medications_json, medical_history_json,
			asa_class, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		patient.ID, patient.Name, patient.Age, patient.Gender,
		patient.WeightKg, patient.HeightCm, patient.BloodType,
		string(allergies), string(medications), string(history),
		patient.ASAClass, patient.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *sqlitePatientRepo) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	query := `
		SELECT id, name, age, gender, weight_kg, height_cm, blood_type,
			allergies_json, medications_json, medical_history_json,
			asa_class, created_at
		FROM patients WHERE id = ?
	`
	return scanPatient(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqlitePatientRepo) List(ctx context.Context) ([]*models.Patient, error) {
	query := `
		SELECT id, name, age, gender, weight_kg, height_cm, blood_type,
			allergies_json, medications_json, medical_history_json,
			asa_class, created_at
		FROM patients ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var patients []*models.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *sqlitePatientRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM patients").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*models.Patient, error) {
	p := &models.Patient{}
	var allergies, medications, history string
	err := row.Scan(
		&p.ID, &p.Name, &p.Age, &p.Gender, &p.WeightKg, &p.HeightCm,
		&p.BloodType, &allergies, &medications, &history,
		&p.ASAClass, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	if err := json.Unmarshal([]byte(allergies), &p.Allergies); err != nil {
		return nil, fmt.Errorf("unmarshal allergies: %w", err)
	}
	if err := json.Unmarshal([]byte(medications), &p.Medications); err != nil {
		return nil, fmt.Errorf("unmarshal medications: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &p.MedicalHistory); err != nil {
		return nil, fmt.Errorf("unmarshal medical history: %w", err)
	}
	return p, nil
}

func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

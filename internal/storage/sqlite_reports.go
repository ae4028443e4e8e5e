package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aetheris-health/aetheris/internal/models"
)

type sqliteReportRepo struct {
	db *sql.DB
}

func (r *sqliteReportRepo) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO reports (id, patient_id, surgery_id, report_type, title,
			content, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		report.ID, report.PatientID, nullString(report.SurgeryID),
		report.ReportType, report.Title, report.Content, report.Status,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *sqliteReportRepo) GetByID(ctx context.Context, id string) (*models.Report, error) {
	query := `
		SELECT id, patient_id, surgery_id, report_type, title, content, status, created_at
		FROM reports WHERE id = ?
	`
	return scanReport(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteReportRepo) ListByPatient(ctx context.Context, patientID string) ([]*models.Report, error) {
	query := `
		SELECT id, patient_id, surgery_id, report_type, title, content, status, created_at
		FROM reports WHERE patient_id = ? ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *sqliteReportRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE reports SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	return nil
}

func scanReport(row rowScanner) (*models.Report, error) {
	rep := &models.Report{}
	var surgeryID sql.NullString
	err := row.Scan(
		&rep.ID, &rep.PatientID, &surgeryID, &rep.ReportType,
		&rep.Title, &rep.Content, &rep.Status, &rep.CreatedAt,
	)
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}
	rep.SurgeryID = surgeryID.String
	return rep, nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aetheris-health/aetheris/internal/models"
)

type sqliteAlertRepo struct {
	db *sql.DB
}

func (r *sqliteAlertRepo) Create(ctx context.Context, alert *models.AlertRecord) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO alerts (id, patient_id, surgery_id, severity, title, message,
			vital_type, vital_value, acknowledged, acknowledged_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.PatientID, nullString(alert.SurgeryID),
		alert.Severity, alert.Title, alert.Message,
		alert.VitalType, alert.VitalValue,
		boolToInt(alert.Acknowledged), nullString(alert.AcknowledgedBy),
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (r *sqliteAlertRepo) GetByID(ctx context.Context, id string) (*models.AlertRecord, error) {
	query := `
		SELECT id, patient_id, surgery_id, severity, title, message,
			vital_type, vital_value, acknowledged, acknowledged_by, created_at
		FROM alerts WHERE id = ?
	`
	return scanAlert(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteAlertRepo) List(ctx context.Context, filter AlertFilter) ([]*models.AlertRecord, error) {
	query := `
		SELECT id, patient_id, surgery_id, severity, title, message,
			vital_type, vital_value, acknowledged, acknowledged_by, created_at
		FROM alerts
	`
	var conds []string
	var args []any
	if filter.PatientID != "" {
		conds = append(conds, "patient_id = ?")
		args = append(args, filter.PatientID)
	}
	if filter.UnreadOnly {
		conds = append(conds, "acknowledged = 0")
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.AlertRecord
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *sqliteAlertRepo) Acknowledge(ctx context.Context, id, acknowledgedBy string) (*models.AlertRecord, error) {
	query := `
		UPDATE alerts SET acknowledged = 1, acknowledged_by = ?
		WHERE id = ? AND acknowledged = 0
	`
	if _, err := r.db.ExecContext(ctx, query, acknowledgedBy, id); err != nil {
		return nil, fmt.Errorf("acknowledge alert: %w", err)
	}
	// Zero rows affected means either already acknowledged or absent;
	// the read distinguishes the two.
	return r.GetByID(ctx, id)
}

func (r *sqliteAlertRepo) AcknowledgeAll(ctx context.Context, patientID string) (int64, error) {
	query := "UPDATE alerts SET acknowledged = 1 WHERE acknowledged = 0"
	var args []any
	if patientID != "" {
		query += " AND patient_id = ?"
		args = append(args, patientID)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("acknowledge all alerts: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count acknowledged alerts: %w", err)
	}
	return count, nil
}

func scanAlert(row rowScanner) (*models.AlertRecord, error) {
	a := &models.AlertRecord{}
	var surgeryID, acknowledgedBy sql.NullString
	var acknowledged int
	err := row.Scan(
		&a.ID, &a.PatientID, &surgeryID, &a.Severity, &a.Title, &a.Message,
		&a.VitalType, &a.VitalValue, &acknowledged, &acknowledgedBy, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan alert: %w", err)
	}
	a.SurgeryID = surgeryID.String
	a.AcknowledgedBy = acknowledgedBy.String
	a.Acknowledged = acknowledged != 0
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations holds all database migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up: `
			-- Patients table
			CREATE TABLE IF NOT EXISTS patients (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				age INTEGER NOT NULL,
				gender TEXT,
				weight_kg REAL,
				height_cm REAL,
				blood_type TEXT,
				allergies_json TEXT NOT NULL,
				medications_json TEXT NOT NULL,
				medical_history_json TEXT NOT NULL,
				asa_class TEXT,
				created_at DATETIME NOT NULL
			);

			-- Alerts table
			CREATE TABLE IF NOT EXISTS alerts (
				id TEXT PRIMARY KEY,
				patient_id TEXT NOT NULL,
				surgery_id TEXT,
				severity TEXT NOT NULL,
				title TEXT NOT NULL,
				message TEXT NOT NULL,
				vital_type TEXT,
				vital_value REAL,
				acknowledged INTEGER NOT NULL DEFAULT 0,
				acknowledged_by TEXT,
				created_at DATETIME NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_alerts_patient ON alerts(patient_id);
			CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at);

			-- Reports table
			CREATE TABLE IF NOT EXISTS reports (
				id TEXT PRIMARY KEY,
				patient_id TEXT NOT NULL,
				surgery_id TEXT,
				report_type TEXT NOT NULL,
				title TEXT NOT NULL,
				content TEXT NOT NULL,
				status TEXT NOT NULL,
				created_at DATETIME NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_reports_patient ON reports(patient_id);
		`,
	},
}

// runMigrations applies all pending migrations.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction for migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d (%s): %w", m.Version, m.Name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Name, time.Now(),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

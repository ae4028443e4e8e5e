package storage

import (
	"context"
	"database/sql"
	"fmt"

	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	path string
	db   *sql.DB

	patients *sqlitePatientRepo
	alerts   *sqliteAlertRepo
	reports  *sqliteReportRepo
}

// NewSQLiteStorage creates a new SQLite storage backed by the given file.
func NewSQLiteStorage(path string) *SQLiteStorage {
	return &SQLiteStorage{path: path}
}

// Open initializes the database connection.
func (s *SQLiteStorage) Open() error {
	ctx := context.Background()

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// SQLite is single-writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	s.db = db
	s.patients = &sqlitePatientRepo{db: db}
	s.alerts = &sqliteAlertRepo{db: db}
	s.reports = &sqliteReportRepo{db: db}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database connection for health checks.
func (s *SQLiteStorage) DB() *sql.DB {
	return s.db
}

// Migrate runs database migrations.
func (s *SQLiteStorage) Migrate() error {
	return runMigrations(s.db)
}

// SeedDemoPatients inserts the demo roster when no patients exist.
func (s *SQLiteStorage) SeedDemoPatients() error {
	ctx := context.Background()
	count, err := s.Patients().Count(ctx)
	if err != nil {
		return fmt.Errorf("count patients: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, p := range demoPatients() {
		if err := s.Patients().Create(ctx, p); err != nil {
			return fmt.Errorf("seed patient %s: %w", p.ID, err)
		}
	}
	return nil
}

// Patients returns the patient repository.
func (s *SQLiteStorage) Patients() PatientRepository { return s.patients }

// Alerts returns the alert repository.
func (s *SQLiteStorage) Alerts() AlertRepository { return s.alerts }

// Reports returns the report repository.
func (s *SQLiteStorage) Reports() ReportRepository { return s.reports }

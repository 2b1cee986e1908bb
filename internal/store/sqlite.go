package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Store owns the embedded SQLite file backing the dashboard. It is
// constructed once by the application entry point and injected into every
// repository; nothing else opens connections.
type Store struct {
	db   *sql.DB
	path string
}

// schemaStatements creates the five tables and six indexes. Every
// statement is IF NOT EXISTS so Initialize is safe on an already
// initialized store.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS patient (
		patient_id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cmas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		category TEXT NOT NULL,
		value INTEGER NOT NULL,
		patient_id TEXT NOT NULL,
		FOREIGN KEY (patient_id) REFERENCES patient (patient_id)
	)`,
	`CREATE TABLE IF NOT EXISTS lab_result_group (
		lab_result_group_id TEXT PRIMARY KEY,
		group_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lab_result (
		lab_result_id TEXT PRIMARY KEY,
		lab_result_group_id TEXT NOT NULL,
		patient_id TEXT NOT NULL,
		result_name TEXT NOT NULL,
		unit TEXT,
		result_name_english TEXT,
		FOREIGN KEY (lab_result_group_id) REFERENCES lab_result_group (lab_result_group_id),
		FOREIGN KEY (patient_id) REFERENCES patient (patient_id)
	)`,
	`CREATE TABLE IF NOT EXISTS measurement (
		measurement_id TEXT PRIMARY KEY,
		lab_result_id TEXT NOT NULL,
		date_time TEXT NOT NULL,
		value TEXT NOT NULL,
		FOREIGN KEY (lab_result_id) REFERENCES lab_result (lab_result_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cmas_patient_id ON cmas (patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_cmas_date ON cmas (date)`,
	`CREATE INDEX IF NOT EXISTS idx_lab_result_patient_id ON lab_result (patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_lab_result_group_id ON lab_result (lab_result_group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_measurement_lab_result_id ON measurement (lab_result_id)`,
	`CREATE INDEX IF NOT EXISTS idx_measurement_date_time ON measurement (date_time)`,
}

// Exists reports whether the backing store file is already present.
// No side effects; used to gate the first-launch import.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Open opens (creating if absent) the SQLite file at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// DB exposes the underlying handle for repositories and transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Initialize creates the schema if it does not exist. Any failure is
// fatal to startup; there is no partial-schema recovery.
func (s *Store) Initialize(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
	}
	return nil
}

// BeginTx starts the single multi-statement transaction used by the
// import pipeline.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

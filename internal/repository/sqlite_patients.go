package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"jdm-dashboard/internal/domain"
)

// SqlitePatientsRepository PatientsRepository 实现 (embedded SQLite).
type SqlitePatientsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSqlitePatientsRepository(db *sql.DB, logger *zap.Logger) *SqlitePatientsRepository {
	return &SqlitePatientsRepository{db: db, logger: logger}
}

var _ PatientsRepository = (*SqlitePatientsRepository)(nil)

func (r *SqlitePatientsRepository) GetAll(ctx context.Context) ([]domain.Patient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT patient_id, name FROM patient ORDER BY patient_id`)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	var patients []domain.Patient
	for rows.Next() {
		var p domain.Patient
		if err := rows.Scan(&p.PatientID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *SqlitePatientsRepository) GetByID(ctx context.Context, patientID string) (*domain.Patient, error) {
	var p domain.Patient
	err := r.db.QueryRowContext(ctx,
		`SELECT patient_id, name FROM patient WHERE patient_id = ?`, patientID).
		Scan(&p.PatientID, &p.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query patient %s: %w", patientID, err)
	}
	return &p, nil
}

func (r *SqlitePatientsRepository) GetFirst(ctx context.Context) (*domain.Patient, error) {
	var p domain.Patient
	err := r.db.QueryRowContext(ctx,
		`SELECT patient_id, name FROM patient ORDER BY patient_id LIMIT 1`).
		Scan(&p.PatientID, &p.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query first patient: %w", err)
	}
	return &p, nil
}

func (r *SqlitePatientsRepository) Insert(ctx context.Context, p domain.Patient) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO patient (patient_id, name) VALUES (?, ?)`, p.PatientID, p.Name)
	if err != nil {
		return fmt.Errorf("insert patient %s: %w", p.PatientID, err)
	}
	return nil
}

func (r *SqlitePatientsRepository) InsertBatch(ctx context.Context, tx *sql.Tx, patients []domain.Patient) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO patient (patient_id, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare patient batch: %w", err)
	}
	defer stmt.Close()

	for _, p := range patients {
		if _, err := stmt.ExecContext(ctx, p.PatientID, p.Name); err != nil {
			return fmt.Errorf("insert patient %s: %w", p.PatientID, err)
		}
	}
	return nil
}

func (r *SqlitePatientsRepository) Update(ctx context.Context, p domain.Patient) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE patient SET name = ? WHERE patient_id = ?`, p.Name, p.PatientID)
	if err != nil {
		return fmt.Errorf("update patient %s: %w", p.PatientID, err)
	}
	return nil
}

func (r *SqlitePatientsRepository) Delete(ctx context.Context, patientID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM patient WHERE patient_id = ?`, patientID)
	if err != nil {
		return fmt.Errorf("delete patient %s: %w", patientID, err)
	}
	return nil
}

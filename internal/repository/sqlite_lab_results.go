package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"jdm-dashboard/internal/domain"
)

// SqliteLabResultsRepository LabResultsRepository 实现 (embedded SQLite).
type SqliteLabResultsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSqliteLabResultsRepository(db *sql.DB, logger *zap.Logger) *SqliteLabResultsRepository {
	return &SqliteLabResultsRepository{db: db, logger: logger}
}

var _ LabResultsRepository = (*SqliteLabResultsRepository)(nil)

const labResultColumns = "lab_result_id, lab_result_group_id, patient_id, result_name, unit, result_name_english"

// nullIfEmpty keeps optional columns NULL instead of empty strings.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanLabResult(scanner interface{ Scan(...any) error }) (domain.LabResult, error) {
	var lr domain.LabResult
	var unit, english sql.NullString
	if err := scanner.Scan(&lr.LabResultID, &lr.GroupID, &lr.PatientID, &lr.ResultName, &unit, &english); err != nil {
		return lr, err
	}
	lr.Unit = unit.String
	lr.EnglishName = english.String
	return lr, nil
}

func (r *SqliteLabResultsRepository) queryLabResults(ctx context.Context, query string, args ...any) ([]domain.LabResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lab results: %w", err)
	}
	defer rows.Close()

	var results []domain.LabResult
	for rows.Next() {
		lr, err := scanLabResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lab result: %w", err)
		}
		results = append(results, lr)
	}
	return results, rows.Err()
}

func (r *SqliteLabResultsRepository) GetAllForPatient(ctx context.Context, patientID string) ([]domain.LabResult, error) {
	return r.queryLabResults(ctx,
		`SELECT `+labResultColumns+` FROM lab_result WHERE patient_id = ? ORDER BY result_name`,
		patientID)
}

func (r *SqliteLabResultsRepository) GetByID(ctx context.Context, labResultID string) (*domain.LabResult, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+labResultColumns+` FROM lab_result WHERE lab_result_id = ?`, labResultID)
	lr, err := scanLabResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query lab result %s: %w", labResultID, err)
	}
	return &lr, nil
}

func (r *SqliteLabResultsRepository) GetByGroup(ctx context.Context, patientID, groupID string) ([]domain.LabResult, error) {
	return r.queryLabResults(ctx,
		`SELECT `+labResultColumns+` FROM lab_result
		 WHERE patient_id = ? AND lab_result_group_id = ? ORDER BY result_name`,
		patientID, groupID)
}

func (r *SqliteLabResultsRepository) GetGroupedByGroup(ctx context.Context, patientID string) (map[string][]domain.LabResult, error) {
	results, err := r.queryLabResults(ctx,
		`SELECT `+labResultColumns+` FROM lab_result
		 WHERE patient_id = ? ORDER BY lab_result_group_id, result_name`,
		patientID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]domain.LabResult)
	for _, lr := range results {
		grouped[lr.GroupID] = append(grouped[lr.GroupID], lr)
	}
	return grouped, nil
}

func (r *SqliteLabResultsRepository) Insert(ctx context.Context, lr domain.LabResult) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lab_result (`+labResultColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		lr.LabResultID, lr.GroupID, lr.PatientID, lr.ResultName,
		nullIfEmpty(lr.Unit), nullIfEmpty(lr.EnglishName))
	if err != nil {
		return fmt.Errorf("insert lab result %s: %w", lr.LabResultID, err)
	}
	return nil
}

func (r *SqliteLabResultsRepository) InsertBatch(ctx context.Context, tx *sql.Tx, results []domain.LabResult) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO lab_result (`+labResultColumns+`) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare lab result batch: %w", err)
	}
	defer stmt.Close()

	for _, lr := range results {
		if _, err := stmt.ExecContext(ctx,
			lr.LabResultID, lr.GroupID, lr.PatientID, lr.ResultName,
			nullIfEmpty(lr.Unit), nullIfEmpty(lr.EnglishName)); err != nil {
			return fmt.Errorf("insert lab result %s: %w", lr.LabResultID, err)
		}
	}
	return nil
}

func (r *SqliteLabResultsRepository) Update(ctx context.Context, lr domain.LabResult) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE lab_result SET lab_result_group_id = ?, patient_id = ?, result_name = ?,
		 unit = ?, result_name_english = ? WHERE lab_result_id = ?`,
		lr.GroupID, lr.PatientID, lr.ResultName,
		nullIfEmpty(lr.Unit), nullIfEmpty(lr.EnglishName), lr.LabResultID)
	if err != nil {
		return fmt.Errorf("update lab result %s: %w", lr.LabResultID, err)
	}
	return nil
}

func (r *SqliteLabResultsRepository) Delete(ctx context.Context, labResultID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM lab_result WHERE lab_result_id = ?`, labResultID)
	if err != nil {
		return fmt.Errorf("delete lab result %s: %w", labResultID, err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"jdm-dashboard/internal/domain"
)

// SqliteMeasurementsRepository MeasurementsRepository 实现 (embedded SQLite).
type SqliteMeasurementsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSqliteMeasurementsRepository(db *sql.DB, logger *zap.Logger) *SqliteMeasurementsRepository {
	return &SqliteMeasurementsRepository{db: db, logger: logger}
}

var _ MeasurementsRepository = (*SqliteMeasurementsRepository)(nil)

const measurementColumns = "measurement_id, lab_result_id, date_time, value"

func scanMeasurement(scanner interface{ Scan(...any) error }) (domain.Measurement, error) {
	var m domain.Measurement
	var dtStr string
	if err := scanner.Scan(&m.MeasurementID, &m.LabResultID, &dtStr, &m.RawValue); err != nil {
		return m, err
	}
	dt, err := parseDateTime(dtStr)
	if err != nil {
		return m, err
	}
	m.DateTime = dt
	return m, nil
}

func (r *SqliteMeasurementsRepository) queryMeasurements(ctx context.Context, query string, args ...any) ([]domain.Measurement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()

	var measurements []domain.Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		measurements = append(measurements, m)
	}
	return measurements, rows.Err()
}

func (r *SqliteMeasurementsRepository) GetAllForLabResult(ctx context.Context, labResultID string) ([]domain.Measurement, error) {
	return r.queryMeasurements(ctx,
		`SELECT `+measurementColumns+` FROM measurement WHERE lab_result_id = ? ORDER BY date_time`,
		labResultID)
}

func (r *SqliteMeasurementsRepository) GetByID(ctx context.Context, measurementID string) (*domain.Measurement, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+measurementColumns+` FROM measurement WHERE measurement_id = ?`, measurementID)
	m, err := scanMeasurement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query measurement %s: %w", measurementID, err)
	}
	return &m, nil
}

func (r *SqliteMeasurementsRepository) GetLatestForPatient(ctx context.Context, patientID string) (map[string]domain.Measurement, error) {
	// Window over each lab result of the patient; ties on date_time
	// break on measurement_id so the pick is deterministic.
	measurements, err := r.queryMeasurements(ctx,
		`SELECT m.measurement_id, m.lab_result_id, m.date_time, m.value
		 FROM measurement m
		 JOIN lab_result lr ON m.lab_result_id = lr.lab_result_id
		 WHERE lr.patient_id = ?
		 ORDER BY m.lab_result_id, m.date_time DESC, m.measurement_id DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	latest := make(map[string]domain.Measurement)
	for _, m := range measurements {
		if _, seen := latest[m.LabResultID]; !seen {
			latest[m.LabResultID] = m
		}
	}
	return latest, nil
}

func (r *SqliteMeasurementsRepository) GetTrend(ctx context.Context, labResultID string, limit int) ([]domain.Measurement, error) {
	// Fetch the newest limit rows, then reverse to chronological order.
	newest, err := r.queryMeasurements(ctx,
		`SELECT `+measurementColumns+` FROM measurement
		 WHERE lab_result_id = ? ORDER BY date_time DESC, measurement_id DESC LIMIT ?`,
		labResultID, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(newest)-1; i < j; i, j = i+1, j-1 {
		newest[i], newest[j] = newest[j], newest[i]
	}
	return newest, nil
}

func (r *SqliteMeasurementsRepository) CountForPatient(ctx context.Context, patientID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM measurement m
		 JOIN lab_result lr ON m.lab_result_id = lr.lab_result_id
		 WHERE lr.patient_id = ?`, patientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count measurements: %w", err)
	}
	return count, nil
}

func (r *SqliteMeasurementsRepository) Insert(ctx context.Context, m domain.Measurement) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO measurement (`+measurementColumns+`) VALUES (?, ?, ?, ?)`,
		m.MeasurementID, m.LabResultID, formatDateTime(m.DateTime), m.RawValue)
	if err != nil {
		return fmt.Errorf("insert measurement %s: %w", m.MeasurementID, err)
	}
	return nil
}

func (r *SqliteMeasurementsRepository) InsertBatch(ctx context.Context, tx *sql.Tx, measurements []domain.Measurement) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO measurement (`+measurementColumns+`) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare measurement batch: %w", err)
	}
	defer stmt.Close()

	for _, m := range measurements {
		if _, err := stmt.ExecContext(ctx,
			m.MeasurementID, m.LabResultID, formatDateTime(m.DateTime), m.RawValue); err != nil {
			return fmt.Errorf("insert measurement %s: %w", m.MeasurementID, err)
		}
	}
	return nil
}

func (r *SqliteMeasurementsRepository) Update(ctx context.Context, m domain.Measurement) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE measurement SET lab_result_id = ?, date_time = ?, value = ? WHERE measurement_id = ?`,
		m.LabResultID, formatDateTime(m.DateTime), m.RawValue, m.MeasurementID)
	if err != nil {
		return fmt.Errorf("update measurement %s: %w", m.MeasurementID, err)
	}
	return nil
}

func (r *SqliteMeasurementsRepository) Delete(ctx context.Context, measurementID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM measurement WHERE measurement_id = ?`, measurementID)
	if err != nil {
		return fmt.Errorf("delete measurement %s: %w", measurementID, err)
	}
	return nil
}

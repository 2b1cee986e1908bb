package repository

import (
	"context"
	"database/sql"

	"jdm-dashboard/internal/domain"
)

// MeasurementsRepository data access for timestamped measurements.
// Raw values are stored verbatim; numeric interpretation is a domain
// concern (domain.Measurement.NumericValue) and always fails soft.
type MeasurementsRepository interface {
	GetAllForLabResult(ctx context.Context, labResultID string) ([]domain.Measurement, error)

	// GetByID returns (nil, nil) when the measurement does not exist.
	GetByID(ctx context.Context, measurementID string) (*domain.Measurement, error)

	// GetLatestForPatient picks, for every lab result owned by the
	// patient, the single measurement with the maximum timestamp.
	// Timestamp ties break on measurement_id descending.
	GetLatestForPatient(ctx context.Context, patientID string) (map[string]domain.Measurement, error)

	// GetTrend returns the most recent limit measurements in
	// chronological (ascending) order.
	GetTrend(ctx context.Context, labResultID string, limit int) ([]domain.Measurement, error)

	CountForPatient(ctx context.Context, patientID string) (int, error)

	Insert(ctx context.Context, m domain.Measurement) error
	InsertBatch(ctx context.Context, tx *sql.Tx, measurements []domain.Measurement) error
	Update(ctx context.Context, m domain.Measurement) error
	Delete(ctx context.Context, measurementID string) error
}

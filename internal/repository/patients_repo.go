package repository

import (
	"context"
	"database/sql"

	"jdm-dashboard/internal/domain"
)

// PatientsRepository data access for patients. Read methods return nil
// (not an error) when nothing matches; write errors propagate verbatim.
type PatientsRepository interface {
	GetAll(ctx context.Context) ([]domain.Patient, error)

	// GetByID returns (nil, nil) when the patient does not exist.
	GetByID(ctx context.Context, patientID string) (*domain.Patient, error)

	// GetFirst returns the patient with the lowest patient_id, used as
	// the fallback import scope when no patient is configured.
	// (nil, nil) on an empty store.
	GetFirst(ctx context.Context) (*domain.Patient, error)

	Insert(ctx context.Context, p domain.Patient) error

	// InsertBatch reuses the caller-supplied transaction so all import
	// batches commit or roll back together.
	InsertBatch(ctx context.Context, tx *sql.Tx, patients []domain.Patient) error

	Update(ctx context.Context, p domain.Patient) error
	Delete(ctx context.Context, patientID string) error
}

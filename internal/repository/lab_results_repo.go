package repository

import (
	"context"
	"database/sql"

	"jdm-dashboard/internal/domain"
)

// LabResultsRepository data access for lab result definitions.
type LabResultsRepository interface {
	GetAllForPatient(ctx context.Context, patientID string) ([]domain.LabResult, error)

	// GetByID returns (nil, nil) when the result definition does not exist.
	GetByID(ctx context.Context, labResultID string) (*domain.LabResult, error)

	GetByGroup(ctx context.Context, patientID, groupID string) ([]domain.LabResult, error)

	// GetGroupedByGroup maps group id to name-ordered result definitions.
	// Groups with zero matches are absent from the map.
	GetGroupedByGroup(ctx context.Context, patientID string) (map[string][]domain.LabResult, error)

	Insert(ctx context.Context, lr domain.LabResult) error
	InsertBatch(ctx context.Context, tx *sql.Tx, results []domain.LabResult) error
	Update(ctx context.Context, lr domain.LabResult) error
	Delete(ctx context.Context, labResultID string) error
}

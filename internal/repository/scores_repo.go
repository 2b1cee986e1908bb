package repository

import (
	"context"
	"database/sql"

	"jdm-dashboard/internal/domain"
)

// ScoreStatistics min/max/average over a patient+category selection.
type ScoreStatistics struct {
	Min     int
	Max     int
	Average float64
}

// MonthAverage one month bucket of the trend aggregation.
// Month is a "2006-01" year-month key.
type MonthAverage struct {
	Month   string
	Average float64
}

// ScoresRepository data access for CMAS score entries. The surrogate key
// is auto-increment; Insert returns the generated id.
type ScoresRepository interface {
	GetAll(ctx context.Context) ([]domain.ScoreEntry, error)
	GetAllForPatient(ctx context.Context, patientID string) ([]domain.ScoreEntry, error)

	// GetByID returns (nil, nil) when no entry has that id.
	GetByID(ctx context.Context, id int64) (*domain.ScoreEntry, error)

	GetByCategory(ctx context.Context, patientID, category string) ([]domain.ScoreEntry, error)

	// GetGroupedByCategory maps category to date-ordered entries.
	// Categories with zero matches are absent from the map, never nil
	// entries under a key.
	GetGroupedByCategory(ctx context.Context, patientID string) (map[string][]domain.ScoreEntry, error)
	GetAllGroupedByCategory(ctx context.Context) (map[string][]domain.ScoreEntry, error)

	// GetTrendsByMonth buckets by calendar month, averages the values in
	// each bucket and returns buckets ascending by month key.
	GetTrendsByMonth(ctx context.Context, patientID, category string) ([]MonthAverage, error)

	// GetStatistics returns ok=false when no rows match, so callers
	// never see a divided-by-zero average.
	GetStatistics(ctx context.Context, patientID, category string) (ScoreStatistics, bool, error)

	Insert(ctx context.Context, entry domain.ScoreEntry) (int64, error)
	InsertBatch(ctx context.Context, tx *sql.Tx, entries []domain.ScoreEntry) error
	Update(ctx context.Context, entry domain.ScoreEntry) error
	Delete(ctx context.Context, id int64) error
}

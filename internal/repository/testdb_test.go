package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jdm-dashboard/internal/domain"
	"jdm-dashboard/internal/store"
)

// setupTestDB opens a throwaway store file with the full schema. The
// embedded driver needs no external server, so these run everywhere.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Initialize(context.Background()))
	return s.DB()
}

func seedPatient(t *testing.T, db *sql.DB, patientID, name string) {
	t.Helper()
	repo := NewSqlitePatientsRepository(db, zap.NewNop())
	require.NoError(t, repo.Insert(context.Background(), domain.Patient{PatientID: patientID, Name: name}))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

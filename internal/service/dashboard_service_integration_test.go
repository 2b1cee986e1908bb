package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jdm-dashboard/internal/domain"
	"jdm-dashboard/internal/repository"
	"jdm-dashboard/internal/stats"
	"jdm-dashboard/internal/store"
)

func setupService(t *testing.T) (DashboardService, context.Context) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	logger := zap.NewNop()
	db := s.DB()
	patients := repository.NewSqlitePatientsRepository(db, logger)
	scores := repository.NewSqliteScoresRepository(db, logger)
	groups := repository.NewSqliteGroupsRepository(db, logger)
	labResults := repository.NewSqliteLabResultsRepository(db, logger)
	measurements := repository.NewSqliteMeasurementsRepository(db, logger)

	require.NoError(t, patients.Insert(ctx, domain.Patient{PatientID: "p-1", Name: "Test Patient"}))
	require.NoError(t, groups.Insert(ctx, domain.ResultGroup{GroupID: "g-1", GroupName: "Hematology"}))
	require.NoError(t, labResults.Insert(ctx, domain.LabResult{
		LabResultID: "lr-1", GroupID: "g-1", PatientID: "p-1",
		ResultName: "Hemoglobine", Unit: "mmol/L", EnglishName: "Hemoglobin",
	}))

	return NewDashboardService(patients, scores, groups, labResults, measurements, logger), ctx
}

func TestScoreOverview(t *testing.T) {
	svc, ctx := setupService(t)

	for _, e := range []struct {
		d time.Time
		v int
	}{
		{time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 50},
		{time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), 60},
	} {
		_, err := svc.AddScoreEntry(ctx, domain.ScoreEntry{
			Date: e.d, Category: "CMAS Score 10-52", Value: e.v, PatientID: "p-1",
		})
		require.NoError(t, err)
	}

	overview, err := svc.ScoreOverview(ctx, "p-1", "CMAS Score 10-52")
	require.NoError(t, err)
	require.Len(t, overview.Entries, 2)
	require.NotNil(t, overview.Statistics)
	assert.Equal(t, 50, overview.Statistics.Min)
	assert.Equal(t, 60, overview.Statistics.Max)
	assert.Equal(t, stats.TrendUp, overview.Summary.Direction)
	require.Len(t, overview.Trend, 2)
	assert.Equal(t, "2024-01", overview.Trend[0].Month)
}

func TestScoreOverview_NoEntries(t *testing.T) {
	svc, ctx := setupService(t)

	overview, err := svc.ScoreOverview(ctx, "p-1", "CMAS Score 10-52")
	require.NoError(t, err)
	assert.Empty(t, overview.Entries)
	assert.Nil(t, overview.Statistics)
	assert.Equal(t, stats.TrendUndetermined, overview.Summary.Direction)
}

func TestLabOverview(t *testing.T) {
	svc, ctx := setupService(t)

	id, err := svc.AddMeasurement(ctx, "lr-1",
		time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC), " 7,1 ")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	overview, err := svc.LabOverview(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, overview.Groups, 1)
	require.Len(t, overview.Latest, 1)

	latest := overview.Latest[0]
	assert.Equal(t, "Hemoglobin", latest.LabResult.DisplayName())
	// Stored trimmed, parsed with comma as decimal separator.
	assert.Equal(t, "7,1", latest.Measurement.RawValue)
	assert.True(t, latest.HasNumeric)
	assert.Equal(t, 7.1, latest.NumericValue)
}

func TestAddMeasurement_UnknownLabResult(t *testing.T) {
	svc, ctx := setupService(t)

	_, err := svc.AddMeasurement(ctx, "lr-404", time.Now(), "1.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMeasurementHistory_Limit(t *testing.T) {
	svc, ctx := setupService(t)

	for month := 1; month <= 4; month++ {
		_, err := svc.AddMeasurement(ctx, "lr-1",
			time.Date(2024, time.Month(month), 1, 8, 0, 0, 0, time.UTC), "1.0")
		require.NoError(t, err)
	}

	history, err := svc.MeasurementHistory(ctx, "lr-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Most recent two, chronological order.
	assert.True(t, history[0].DateTime.Before(history[1].DateTime))
	assert.Equal(t, time.March, history[0].DateTime.Month())

	all, err := svc.MeasurementHistory(ctx, "lr-1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

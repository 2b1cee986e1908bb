package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jdm-dashboard/internal/domain"
	"jdm-dashboard/internal/repository"
	"jdm-dashboard/internal/stats"
)

// DashboardService 仪表盘服务接口 — the read/write surface the UI layer
// (an external collaborator) consumes.
type DashboardService interface {
	ScoreOverview(ctx context.Context, patientID, category string) (*ScoreOverviewResponse, error)
	ScoreCategories(ctx context.Context, patientID string) ([]string, error)
	AddScoreEntry(ctx context.Context, entry domain.ScoreEntry) (int64, error)
	UpdateScoreEntry(ctx context.Context, entry domain.ScoreEntry) error
	DeleteScoreEntry(ctx context.Context, id int64) error

	LabOverview(ctx context.Context, patientID string) (*LabOverviewResponse, error)
	MeasurementHistory(ctx context.Context, labResultID string, limit int) ([]domain.Measurement, error)
	AddMeasurement(ctx context.Context, labResultID string, at time.Time, rawValue string) (string, error)
}

type dashboardService struct {
	patients     repository.PatientsRepository
	scores       repository.ScoresRepository
	groups       repository.GroupsRepository
	labResults   repository.LabResultsRepository
	measurements repository.MeasurementsRepository
	logger       *zap.Logger
}

func NewDashboardService(
	patients repository.PatientsRepository,
	scores repository.ScoresRepository,
	groups repository.GroupsRepository,
	labResults repository.LabResultsRepository,
	measurements repository.MeasurementsRepository,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{
		patients:     patients,
		scores:       scores,
		groups:       groups,
		labResults:   labResults,
		measurements: measurements,
		logger:       logger,
	}
}

// ScoreOverviewResponse everything a score trend chart renders.
type ScoreOverviewResponse struct {
	Entries    []domain.ScoreEntry
	Statistics *stats.ScoreStatistics // nil when no entries match
	Trend      []stats.MonthAverage
	Summary    stats.ChartSummary
}

// LatestMeasurement one lab result with its most recent measurement.
type LatestMeasurement struct {
	LabResult    domain.LabResult
	Measurement  domain.Measurement
	NumericValue float64
	HasNumeric   bool
}

// LabOverviewResponse the lab panel: groups, their result definitions
// and the latest measurement per definition.
type LabOverviewResponse struct {
	Groups         []domain.ResultGroup
	ResultsByGroup map[string][]domain.LabResult
	Latest         []LatestMeasurement
}

func (s *dashboardService) ScoreOverview(ctx context.Context, patientID, category string) (*ScoreOverviewResponse, error) {
	entries, err := s.scores.GetByCategory(ctx, patientID, category)
	if err != nil {
		return nil, err
	}

	resp := &ScoreOverviewResponse{
		Entries: entries,
		Trend:   stats.MonthlyTrend(entries),
		Summary: stats.Summarize(entries),
	}
	if st, ok := stats.Statistics(entries); ok {
		resp.Statistics = &st
	}
	return resp, nil
}

func (s *dashboardService) ScoreCategories(ctx context.Context, patientID string) ([]string, error) {
	grouped, err := s.scores.GetGroupedByCategory(ctx, patientID)
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(grouped))
	for category := range grouped {
		categories = append(categories, category)
	}
	return categories, nil
}

func (s *dashboardService) AddScoreEntry(ctx context.Context, entry domain.ScoreEntry) (int64, error) {
	id, err := s.scores.Insert(ctx, entry)
	if err != nil {
		return 0, err
	}
	s.logger.Info("score entry added",
		zap.Int64("id", id),
		zap.String("category", entry.Category),
		zap.String("patient_id", entry.PatientID))
	return id, nil
}

func (s *dashboardService) UpdateScoreEntry(ctx context.Context, entry domain.ScoreEntry) error {
	return s.scores.Update(ctx, entry)
}

func (s *dashboardService) DeleteScoreEntry(ctx context.Context, id int64) error {
	return s.scores.Delete(ctx, id)
}

func (s *dashboardService) LabOverview(ctx context.Context, patientID string) (*LabOverviewResponse, error) {
	groups, err := s.groups.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	resultsByGroup, err := s.labResults.GetGroupedByGroup(ctx, patientID)
	if err != nil {
		return nil, err
	}
	latestByResult, err := s.measurements.GetLatestForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	resp := &LabOverviewResponse{
		Groups:         groups,
		ResultsByGroup: resultsByGroup,
	}
	for _, g := range groups {
		for _, lr := range resultsByGroup[g.GroupID] {
			m, ok := latestByResult[lr.LabResultID]
			if !ok {
				continue
			}
			latest := LatestMeasurement{LabResult: lr, Measurement: m}
			// Numeric conversion is fallible; qualitative results stay
			// display-only.
			latest.NumericValue, latest.HasNumeric = m.NumericValue()
			resp.Latest = append(resp.Latest, latest)
		}
	}
	return resp, nil
}

func (s *dashboardService) MeasurementHistory(ctx context.Context, labResultID string, limit int) ([]domain.Measurement, error) {
	if limit <= 0 {
		return s.measurements.GetAllForLabResult(ctx, labResultID)
	}
	return s.measurements.GetTrend(ctx, labResultID, limit)
}

func (s *dashboardService) AddMeasurement(ctx context.Context, labResultID string, at time.Time, rawValue string) (string, error) {
	lr, err := s.labResults.GetByID(ctx, labResultID)
	if err != nil {
		return "", err
	}
	if lr == nil {
		return "", fmt.Errorf("lab result %s not found", labResultID)
	}

	m := domain.Measurement{
		MeasurementID: uuid.NewString(),
		LabResultID:   labResultID,
		DateTime:      at,
		RawValue:      strings.TrimSpace(rawValue),
	}
	if err := s.measurements.Insert(ctx, m); err != nil {
		return "", err
	}
	s.logger.Info("measurement added",
		zap.String("measurement_id", m.MeasurementID),
		zap.String("lab_result_id", labResultID))
	return m.MeasurementID, nil
}

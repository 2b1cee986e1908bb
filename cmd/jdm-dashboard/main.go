package main

import (
	"context"

	"go.uber.org/zap"

	"jdm-dashboard/internal/config"
	"jdm-dashboard/internal/importer"
	"jdm-dashboard/internal/logger"
	"jdm-dashboard/internal/repository"
	"jdm-dashboard/internal/service"
	"jdm-dashboard/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "jdm-dashboard")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	// First launch is detected by file absence; deleting the store file
	// forces a full re-import on next start.
	firstLaunch := !store.Exists(cfg.Store.Path)

	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatal("failed to open store", zap.String("path", cfg.Store.Path), zap.Error(err))
	}
	defer s.Close()

	if err := s.Initialize(ctx); err != nil {
		log.Fatal("failed to initialize schema", zap.Error(err))
	}

	db := s.DB()
	patients := repository.NewSqlitePatientsRepository(db, log)
	scores := repository.NewSqliteScoresRepository(db, log)
	groups := repository.NewSqliteGroupsRepository(db, log)
	labResults := repository.NewSqliteLabResultsRepository(db, log)
	measurements := repository.NewSqliteMeasurementsRepository(db, log)

	if firstLaunch {
		log.Info("store absent, importing CSV sources",
			zap.String("data_dir", cfg.Import.DataDir))

		imp := importer.New(s, patients, scores, groups, labResults, measurements, log)
		result, err := imp.ImportAll(ctx, importer.Files{
			Patients:     cfg.Import.PatientFile,
			Scores:       cfg.Import.ScoresFile,
			Groups:       cfg.Import.GroupsFile,
			LabResults:   cfg.Import.LabResultsFile,
			LabResultsEN: cfg.Import.LabResultsEN,
			Measurements: cfg.Import.MeasurementFile,
		}, cfg.PatientID)
		if err != nil {
			log.Fatal("import failed, store rolled back", zap.Error(err))
		}
		for _, w := range result.Warnings {
			log.Warn("import anomaly",
				zap.String("file", w.File), zap.Int("line", w.Line),
				zap.String("field", w.Field), zap.String("raw", w.Raw))
		}
	}

	svc := service.NewDashboardService(patients, scores, groups, labResults, measurements, log)

	patient, err := patients.GetFirst(ctx)
	if err != nil {
		log.Fatal("failed to read patient", zap.Error(err))
	}
	if patient == nil {
		log.Warn("store contains no patient")
		return
	}

	categories, err := svc.ScoreCategories(ctx, patient.PatientID)
	if err != nil {
		log.Fatal("failed to read score categories", zap.Error(err))
	}
	labs, err := svc.LabOverview(ctx, patient.PatientID)
	if err != nil {
		log.Fatal("failed to read lab overview", zap.Error(err))
	}

	log.Info("dashboard data ready",
		zap.String("patient_id", patient.PatientID),
		zap.String("patient_name", patient.Name),
		zap.Int("score_categories", len(categories)),
		zap.Int("result_groups", len(labs.Groups)),
		zap.Int("latest_measurements", len(labs.Latest)))
}

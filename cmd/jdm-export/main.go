// jdm-export writes a snapshot of the stored data to a delimited text
// file or an xlsx workbook.
//
// Usage:
//
//	jdm-export -format csv -data scores -out scores.csv
//	jdm-export -format xlsx -out snapshot.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"jdm-dashboard/internal/config"
	"jdm-dashboard/internal/domain"
	"jdm-dashboard/internal/export"
	"jdm-dashboard/internal/logger"
	"jdm-dashboard/internal/repository"
	"jdm-dashboard/internal/store"
)

func main() {
	format := flag.String("format", "csv", "output format: csv or xlsx")
	dataType := flag.String("data", "", "data to export for csv: scores or labs")
	out := flag.String("out", "", "output file path")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "jdm-export")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *out == "" {
		// Operator error, not a crash.
		fmt.Fprintln(os.Stderr, "no output file selected: pass -out PATH")
		os.Exit(2)
	}
	if *format == "csv" && *dataType == "" {
		fmt.Fprintln(os.Stderr, "no data type selected: pass -data scores or -data labs")
		os.Exit(2)
	}

	if !store.Exists(cfg.Store.Path) {
		fmt.Fprintf(os.Stderr, "store %s does not exist; run jdm-dashboard first\n", cfg.Store.Path)
		os.Exit(1)
	}

	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer s.Close()

	ctx := context.Background()
	if err := run(ctx, s, log, *format, *dataType, *out); err != nil {
		// Fail-fast: a partial file may exist on disk and is not
		// cleaned up.
		log.Fatal("export failed", zap.String("out", *out), zap.Error(err))
	}

	log.Info("export complete", zap.String("out", *out), zap.String("format", *format))
}

func run(ctx context.Context, s *store.Store, log *zap.Logger, format, dataType, out string) error {
	db := s.DB()
	patients := repository.NewSqlitePatientsRepository(db, log)
	scores := repository.NewSqliteScoresRepository(db, log)
	groups := repository.NewSqliteGroupsRepository(db, log)
	labResults := repository.NewSqliteLabResultsRepository(db, log)
	measurements := repository.NewSqliteMeasurementsRepository(db, log)

	patient, err := patients.GetFirst(ctx)
	if err != nil {
		return err
	}
	if patient == nil {
		return fmt.Errorf("store contains no patient")
	}

	switch format {
	case "csv":
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()

		switch dataType {
		case "scores":
			entries, err := scores.GetAllForPatient(ctx, patient.PatientID)
			if err != nil {
				return err
			}
			return export.WriteScoresCSV(f, entries)
		case "labs":
			results, err := labResults.GetAllForPatient(ctx, patient.PatientID)
			if err != nil {
				return err
			}
			groupList, err := groups.GetAll(ctx)
			if err != nil {
				return err
			}
			groupNames := make(map[string]string, len(groupList))
			for _, g := range groupList {
				groupNames[g.GroupID] = g.GroupName
			}
			byResult, err := collectMeasurements(ctx, measurements, results)
			if err != nil {
				return err
			}
			return export.WriteLabResultsCSV(f, results, byResult, groupNames)
		default:
			return fmt.Errorf("unknown data type %q", dataType)
		}

	case "xlsx":
		entries, err := scores.GetAllForPatient(ctx, patient.PatientID)
		if err != nil {
			return err
		}
		groupList, err := groups.GetAll(ctx)
		if err != nil {
			return err
		}
		resultsByGroup, err := labResults.GetGroupedByGroup(ctx, patient.PatientID)
		if err != nil {
			return err
		}
		results, err := labResults.GetAllForPatient(ctx, patient.PatientID)
		if err != nil {
			return err
		}
		byResult, err := collectMeasurements(ctx, measurements, results)
		if err != nil {
			return err
		}

		wb, err := export.BuildWorkbook(export.WorkbookData{
			Patient:              patient,
			Scores:               entries,
			Groups:               groupList,
			ResultsByGroup:       resultsByGroup,
			MeasurementsByResult: byResult,
		})
		if err != nil {
			return err
		}
		defer wb.Close()
		return wb.SaveAs(out)

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// collectMeasurements fetches the chronological series per result
// definition. Results with no measurements stay absent from the map.
func collectMeasurements(
	ctx context.Context,
	repo repository.MeasurementsRepository,
	results []domain.LabResult,
) (map[string][]domain.Measurement, error) {
	byResult := make(map[string][]domain.Measurement)
	for _, lr := range results {
		ms, err := repo.GetAllForLabResult(ctx, lr.LabResultID)
		if err != nil {
			return nil, err
		}
		if len(ms) > 0 {
			byResult[lr.LabResultID] = ms
		}
	}
	return byResult, nil
}

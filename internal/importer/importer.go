package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"jdm-dashboard/internal/domain"
	"jdm-dashboard/internal/repository"
	"jdm-dashboard/internal/store"
)

// Files names the six fixed-layout CSV sources.
type Files struct {
	Patients     string
	Scores       string
	Groups       string
	LabResults   string
	LabResultsEN string
	Measurements string
}

// Warning records a per-row anomaly that was degraded rather than fatal
// (bad date or datetime with the current time substituted).
type Warning struct {
	File   string
	Line   int
	Field  string
	Raw    string
	Reason string
}

// Result reports what one import run loaded.
type Result struct {
	Patients     int
	Scores       int
	Groups       int
	LabResults   int
	Measurements int
	Warnings     []Warning
}

// Importer performs the one-shot, all-or-nothing population of an empty
// store. Re-running it against a populated store is undefined behavior
// and deliberately not guarded; the entry point gates on store-file
// existence instead.
type Importer struct {
	store        *store.Store
	patients     repository.PatientsRepository
	scores       repository.ScoresRepository
	groups       repository.GroupsRepository
	labResults   repository.LabResultsRepository
	measurements repository.MeasurementsRepository
	logger       *zap.Logger

	// now supplies the substitute for unparseable dates; injectable so
	// tests get deterministic rows.
	now func() time.Time
}

func New(
	s *store.Store,
	patients repository.PatientsRepository,
	scores repository.ScoresRepository,
	groups repository.GroupsRepository,
	labResults repository.LabResultsRepository,
	measurements repository.MeasurementsRepository,
	logger *zap.Logger,
) *Importer {
	return &Importer{
		store:        s,
		patients:     patients,
		scores:       scores,
		groups:       groups,
		labResults:   labResults,
		measurements: measurements,
		logger:       logger,
		now:          time.Now,
	}
}

// ImportAll creates the schema if missing, reads the six sources in
// foreign-key order and loads all batches inside one transaction. Any
// error rolls the whole transaction back and propagates; no partial
// import is ever left in the store.
//
// patientID scopes every score and lab-result row. When empty or not
// present in the patient file, the first patient in the file is used and
// the fallback is logged.
func (i *Importer) ImportAll(ctx context.Context, files Files, patientID string) (*Result, error) {
	if err := i.store.Initialize(ctx); err != nil {
		return nil, err
	}

	result := &Result{}

	patients, err := i.readPatients(files.Patients)
	if err != nil {
		return nil, err
	}

	scopeID, err := i.resolvePatientScope(patients, patientID)
	if err != nil {
		return nil, err
	}

	scores, err := i.readScores(files.Scores, scopeID, result)
	if err != nil {
		return nil, err
	}

	groups, err := i.readGroups(files.Groups)
	if err != nil {
		return nil, err
	}

	labResults, err := i.readLabResults(files.LabResults, files.LabResultsEN, scopeID)
	if err != nil {
		return nil, err
	}

	measurements, err := i.readMeasurements(files.Measurements, result)
	if err != nil {
		return nil, err
	}

	tx, err := i.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import transaction: %w", err)
	}

	if err := i.patients.InsertBatch(ctx, tx, patients); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := i.scores.InsertBatch(ctx, tx, scores); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := i.groups.InsertBatch(ctx, tx, groups); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := i.labResults.InsertBatch(ctx, tx, labResults); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := i.measurements.InsertBatch(ctx, tx, measurements); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import transaction: %w", err)
	}

	result.Patients = len(patients)
	result.Scores = len(scores)
	result.Groups = len(groups)
	result.LabResults = len(labResults)
	result.Measurements = len(measurements)

	i.logger.Info("data import completed",
		zap.Int("patients", result.Patients),
		zap.Int("scores", result.Scores),
		zap.Int("groups", result.Groups),
		zap.Int("lab_results", result.LabResults),
		zap.Int("measurements", result.Measurements),
		zap.Int("warnings", len(result.Warnings)))

	return result, nil
}

// resolvePatientScope picks the patient every score and lab-result row
// attaches to. The single-patient assumption is an explicit parameter
// here, not an implicit LIMIT 1 per row.
func (i *Importer) resolvePatientScope(patients []domain.Patient, patientID string) (string, error) {
	if len(patients) == 0 {
		return "", fmt.Errorf("no patient found in patient file")
	}
	if patientID != "" {
		for _, p := range patients {
			if p.PatientID == patientID {
				return patientID, nil
			}
		}
		i.logger.Warn("configured patient not in patient file, falling back to first",
			zap.String("configured", patientID),
			zap.String("fallback", patients[0].PatientID))
	}
	return patients[0].PatientID, nil
}

// csvFile is one parsed source: header name -> column index plus the
// data rows. Line numbers in warnings are 1-based file lines.
type csvFile struct {
	path   string
	header map[string]int
	rows   [][]string
}

func readCSVFile(path string) (*csvFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: missing header row", path)
	}

	header := make(map[string]int, len(records[0]))
	for idx, name := range records[0] {
		header[strings.TrimSpace(name)] = idx
	}
	return &csvFile{path: path, header: header, rows: records[1:]}, nil
}

func (c *csvFile) get(row []string, column string) (string, error) {
	idx, ok := c.header[column]
	if !ok || idx >= len(row) {
		return "", fmt.Errorf("%s: missing column %q", c.path, column)
	}
	return row[idx], nil
}

func (i *Importer) readPatients(path string) ([]domain.Patient, error) {
	file, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}

	var patients []domain.Patient
	for _, row := range file.rows {
		id, err := file.get(row, "PatientID")
		if err != nil {
			return nil, err
		}
		name, err := file.get(row, "Name")
		if err != nil {
			return nil, err
		}
		patients = append(patients, domain.Patient{PatientID: id, Name: name})
	}
	return patients, nil
}

func (i *Importer) readScores(path, patientID string, result *Result) ([]domain.ScoreEntry, error) {
	file, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}

	var entries []domain.ScoreEntry
	for n, row := range file.rows {
		line := n + 2 // 1-based, after the header

		rawDate, err := file.get(row, "Date")
		if err != nil {
			return nil, err
		}
		date, err := ParseDate(CleanDateString(rawDate))
		if err != nil {
			// Known low-rigor fallback: substitute today and surface the
			// anomaly instead of aborting the batch.
			date = i.now()
			result.Warnings = append(result.Warnings, Warning{
				File: path, Line: line, Field: "Date", Raw: rawDate, Reason: err.Error(),
			})
			i.logger.Warn("score date unparseable, substituting current date",
				zap.String("file", path), zap.Int("line", line), zap.String("raw", rawDate))
		}

		rawCategory, err := file.get(row, "Category")
		if err != nil {
			return nil, err
		}

		rawValue, err := file.get(row, "Value")
		if err != nil {
			return nil, err
		}
		value, err := strconv.Atoi(strings.TrimSpace(rawValue))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: score value %q is not an integer: %w", path, line, rawValue, err)
		}

		entries = append(entries, domain.ScoreEntry{
			Date:      date,
			Category:  CleanCategory(rawCategory),
			Value:     value,
			PatientID: patientID,
		})
	}
	return entries, nil
}

func (i *Importer) readGroups(path string) ([]domain.ResultGroup, error) {
	file, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}

	var groups []domain.ResultGroup
	for _, row := range file.rows {
		id, err := file.get(row, "LabResultGroupID")
		if err != nil {
			return nil, err
		}
		name, err := file.get(row, "GroupName")
		if err != nil {
			return nil, err
		}
		groups = append(groups, domain.ResultGroup{GroupID: id, GroupName: strings.TrimSpace(name)})
	}
	return groups, nil
}

func (i *Importer) readLabResults(path, overlayPath, patientID string) ([]domain.LabResult, error) {
	// The English overlay is read fully first so the primary file can be
	// joined against it in one pass.
	overlay, err := readCSVFile(overlayPath)
	if err != nil {
		return nil, err
	}
	englishNames := make(map[string]string, len(overlay.rows))
	for _, row := range overlay.rows {
		id, err := overlay.get(row, "LabResultID")
		if err != nil {
			return nil, err
		}
		name, err := overlay.get(row, "ResultName_English")
		if err != nil {
			return nil, err
		}
		englishNames[id] = name
	}

	file, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}

	var results []domain.LabResult
	for _, row := range file.rows {
		id, err := file.get(row, "LabResultID")
		if err != nil {
			return nil, err
		}
		groupID, err := file.get(row, "LabResultGroupID")
		if err != nil {
			return nil, err
		}
		name, err := file.get(row, "ResultName")
		if err != nil {
			return nil, err
		}
		unit, err := file.get(row, "Unit")
		if err != nil {
			return nil, err
		}

		results = append(results, domain.LabResult{
			LabResultID: id,
			GroupID:     groupID,
			PatientID:   patientID,
			ResultName:  name,
			Unit:        unit,
			EnglishName: englishNames[id],
		})
	}
	return results, nil
}

func (i *Importer) readMeasurements(path string, result *Result) ([]domain.Measurement, error) {
	file, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}

	var measurements []domain.Measurement
	for n, row := range file.rows {
		line := n + 2

		id, err := file.get(row, "MeasurementID")
		if err != nil {
			return nil, err
		}
		labResultID, err := file.get(row, "LabResultID")
		if err != nil {
			return nil, err
		}

		rawDT, err := file.get(row, "DateTime")
		if err != nil {
			return nil, err
		}
		dt, err := ParseDateTime(rawDT)
		if err != nil {
			dt = i.now()
			result.Warnings = append(result.Warnings, Warning{
				File: path, Line: line, Field: "DateTime", Raw: rawDT, Reason: err.Error(),
			})
			i.logger.Warn("measurement datetime unparseable, substituting current time",
				zap.String("file", path), zap.Int("line", line), zap.String("raw", rawDT))
		}

		value, err := file.get(row, "Value")
		if err != nil {
			return nil, err
		}

		measurements = append(measurements, domain.Measurement{
			MeasurementID: id,
			LabResultID:   labResultID,
			DateTime:      dt,
			RawValue:      strings.TrimSpace(value),
		})
	}
	return measurements, nil
}

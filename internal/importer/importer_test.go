package importer

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jdm-dashboard/internal/repository"
	"jdm-dashboard/internal/store"
)

type fixture struct {
	store    *store.Store
	importer *Importer
	files    Files
	dir      string
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newFixture builds an importer over a fresh store plus a well-formed
// six-file CSV set mirroring the real source layout.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	s, err := store.Open(filepath.Join(dir, "jdm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger := zap.NewNop()
	db := s.DB()
	imp := New(s,
		repository.NewSqlitePatientsRepository(db, logger),
		repository.NewSqliteScoresRepository(db, logger),
		repository.NewSqliteGroupsRepository(db, logger),
		repository.NewSqliteLabResultsRepository(db, logger),
		repository.NewSqliteMeasurementsRepository(db, logger),
		logger)
	imp.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	files := Files{
		Patients: writeFile(t, dir, "Patient.csv",
			"PatientID,Name\np-1,Test Patient\n"),
		Scores: writeFile(t, dir, "CMAS.csv",
			"Date,Category,Value\n"+
				"05+AC0-01+AC0-2024,CMAS+AD4-Score+AD4-10+AC0-52,35\n"+
				"20-01-2024,CMAS+AD4-Score+AD4-10+AC0-52,40\n"+
				"01-02-2024,CMAS+AD4-Score+AD4-4+AC0-9,8\n"),
		Groups: writeFile(t, dir, "LabResultGroup.csv",
			"LabResultGroupID,GroupName\ng-1, Hematology \ng-2,Chemistry\n"),
		LabResults: writeFile(t, dir, "LabResult.csv",
			"LabResultID,LabResultGroupID,ResultName,Unit\n"+
				"lr-1,g-1,Hemoglobine,mmol/L\n"+
				"lr-2,g-2,CRP,mg/L\n"),
		LabResultsEN: writeFile(t, dir, "LabResultsEN.csv",
			"LabResultID,ResultName_English\nlr-1,Hemoglobin\n"),
		Measurements: writeFile(t, dir, "Measurement.csv",
			"MeasurementID,LabResultID,DateTime,Value\n"+
				"m-1,lr-1,05-01-2024 09:30, 7.1 \n"+
				"m-2,lr-1,05-02-2024 10:00,\"7,4\"\n"+
				"m-3,lr-2,05-02-2024 10:00,negative\n"),
	}

	return &fixture{store: s, importer: imp, files: files, dir: dir}
}

func tableCount(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&count))
	return count
}

func TestImportAll_RowCountsMatchInput(t *testing.T) {
	fx := newFixture(t)

	result, err := fx.importer.ImportAll(context.Background(), fx.files, "p-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Patients)
	assert.Equal(t, 3, result.Scores)
	assert.Equal(t, 2, result.Groups)
	assert.Equal(t, 2, result.LabResults)
	assert.Equal(t, 3, result.Measurements)
	assert.Empty(t, result.Warnings)

	db := fx.store.DB()
	assert.Equal(t, 1, tableCount(t, db, "patient"))
	assert.Equal(t, 3, tableCount(t, db, "cmas"))
	assert.Equal(t, 2, tableCount(t, db, "lab_result_group"))
	assert.Equal(t, 2, tableCount(t, db, "lab_result"))
	assert.Equal(t, 3, tableCount(t, db, "measurement"))
}

func TestImportAll_ForeignKeysResolve(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.importer.ImportAll(context.Background(), fx.files, "p-1")
	require.NoError(t, err)

	db := fx.store.DB()
	var orphans int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM cmas c LEFT JOIN patient p ON c.patient_id = p.patient_id
		 WHERE p.patient_id IS NULL`).Scan(&orphans))
	assert.Equal(t, 0, orphans, "score entries with unresolved patient")

	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM lab_result lr
		 LEFT JOIN lab_result_group g ON lr.lab_result_group_id = g.lab_result_group_id
		 LEFT JOIN patient p ON lr.patient_id = p.patient_id
		 WHERE g.lab_result_group_id IS NULL OR p.patient_id IS NULL`).Scan(&orphans))
	assert.Equal(t, 0, orphans, "lab results with unresolved group or patient")

	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM measurement m
		 LEFT JOIN lab_result lr ON m.lab_result_id = lr.lab_result_id
		 WHERE lr.lab_result_id IS NULL`).Scan(&orphans))
	assert.Equal(t, 0, orphans, "measurements with unresolved lab result")
}

func TestImportAll_CleaningRules(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.importer.ImportAll(ctx, fx.files, "p-1")
	require.NoError(t, err)

	db := fx.store.DB()

	// Encoded artifacts rewritten in categories and dates.
	var category, dateStr string
	require.NoError(t, db.QueryRow(
		`SELECT category, date FROM cmas ORDER BY date LIMIT 1`).Scan(&category, &dateStr))
	assert.Equal(t, "CMAS Score 10-52", category)
	assert.Equal(t, "2024-01-05", dateStr)

	// Group names trimmed of surrounding whitespace.
	var groupName string
	require.NoError(t, db.QueryRow(
		`SELECT group_name FROM lab_result_group WHERE lab_result_group_id = 'g-1'`).Scan(&groupName))
	assert.Equal(t, "Hematology", groupName)

	// Measurement values whitespace-trimmed but otherwise verbatim.
	var raw string
	require.NoError(t, db.QueryRow(
		`SELECT value FROM measurement WHERE measurement_id = 'm-1'`).Scan(&raw))
	assert.Equal(t, "7.1", raw)
	require.NoError(t, db.QueryRow(
		`SELECT value FROM measurement WHERE measurement_id = 'm-3'`).Scan(&raw))
	assert.Equal(t, "negative", raw)

	// English overlay attached where present, NULL elsewhere.
	var english sql.NullString
	require.NoError(t, db.QueryRow(
		`SELECT result_name_english FROM lab_result WHERE lab_result_id = 'lr-1'`).Scan(&english))
	assert.Equal(t, "Hemoglobin", english.String)
	require.NoError(t, db.QueryRow(
		`SELECT result_name_english FROM lab_result WHERE lab_result_id = 'lr-2'`).Scan(&english))
	assert.False(t, english.Valid)
}

func TestImportAll_BadDateSubstitutedWithWarning(t *testing.T) {
	fx := newFixture(t)
	fx.files.Scores = writeFile(t, fx.dir, "CMAS_bad.csv",
		"Date,Category,Value\nnot-a-date,CMAS+AD4-Score,35\n")

	result, err := fx.importer.ImportAll(context.Background(), fx.files, "p-1")
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	w := result.Warnings[0]
	assert.Equal(t, 2, w.Line)
	assert.Equal(t, "Date", w.Field)
	assert.Equal(t, "not-a-date", w.Raw)

	// The stored row carries the substituted (injected) current date.
	var dateStr string
	require.NoError(t, fx.store.DB().QueryRow(`SELECT date FROM cmas`).Scan(&dateStr))
	assert.Equal(t, "2025-06-01", dateStr)
}

func TestImportAll_BadScoreValueAborts(t *testing.T) {
	fx := newFixture(t)
	fx.files.Scores = writeFile(t, fx.dir, "CMAS_bad.csv",
		"Date,Category,Value\n05-01-2024,CMAS+AD4-Score,forty\n")

	_, err := fx.importer.ImportAll(context.Background(), fx.files, "p-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an integer")
}

func TestImportAll_FailedMeasurementBatchRollsBackEverything(t *testing.T) {
	fx := newFixture(t)
	// Duplicate primary key in the final batch forces the failure.
	fx.files.Measurements = writeFile(t, fx.dir, "Measurement_dup.csv",
		"MeasurementID,LabResultID,DateTime,Value\n"+
			"m-1,lr-1,05-01-2024 09:30,7.1\n"+
			"m-1,lr-1,05-02-2024 10:00,7.4\n")

	_, err := fx.importer.ImportAll(context.Background(), fx.files, "p-1")
	require.Error(t, err)

	// Full rollback: zero rows in every one of the five tables.
	db := fx.store.DB()
	for _, table := range []string{"patient", "cmas", "lab_result_group", "lab_result", "measurement"} {
		assert.Equal(t, 0, tableCount(t, db, table), "table %s not rolled back", table)
	}
}

func TestImportAll_UnknownPatientFallsBackToFirst(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.importer.ImportAll(context.Background(), fx.files, "p-does-not-exist")
	require.NoError(t, err)

	var patientID string
	require.NoError(t, fx.store.DB().QueryRow(
		`SELECT DISTINCT patient_id FROM cmas`).Scan(&patientID))
	assert.Equal(t, "p-1", patientID)
}

func TestImportAll_EmptyPatientFileFails(t *testing.T) {
	fx := newFixture(t)
	fx.files.Patients = writeFile(t, fx.dir, "Patient_empty.csv", "PatientID,Name\n")

	_, err := fx.importer.ImportAll(context.Background(), fx.files, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no patient found")
}

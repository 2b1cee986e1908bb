package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jdm-dashboard/internal/domain"
)

func TestSanitizeSheetName_Truncation(t *testing.T) {
	long := strings.Repeat("a", 40)
	sanitized := SanitizeSheetName(long)
	assert.Len(t, sanitized, 31)
}

func TestSanitizeSheetName_IllegalCharacters(t *testing.T) {
	assert.Equal(t, "Liver_Kidney", SanitizeSheetName("Liver/Kidney"))
	assert.Equal(t, "What_", SanitizeSheetName("What?"))
	assert.Equal(t, "a_b_c_d_e_f_g", SanitizeSheetName(`a:b\c/d?e*f[g]`))
}

func TestSanitizeSheetName_EmptyAndPlain(t *testing.T) {
	assert.Equal(t, "Sheet", SanitizeSheetName(""))
	assert.Equal(t, "Hematology", SanitizeSheetName("Hematology"))
}

func TestWriteScoresCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteScoresCSV(&buf, []domain.ScoreEntry{
		{
			Date:     time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Category: "CMAS Score 10-52",
			Value:    35,
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Category,Value", lines[0])
	assert.Equal(t, `"Jan 5, 2024",CMAS Score 10-52,35`, lines[1])
}

func TestWriteLabResultsCSV(t *testing.T) {
	results := []domain.LabResult{
		{LabResultID: "lr-1", GroupID: "g-1", ResultName: "Hemoglobine", EnglishName: "Hemoglobin", Unit: "mmol/L"},
		{LabResultID: "lr-2", GroupID: "g-1", ResultName: "Leukocyten", Unit: "x10^9/L"},
	}
	measurements := map[string][]domain.Measurement{
		"lr-1": {{
			MeasurementID: "m-1",
			LabResultID:   "lr-1",
			DateTime:      time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC),
			RawValue:      "7,1",
		}},
	}
	groupNames := map[string]string{"g-1": "Hematology"}

	var buf bytes.Buffer
	err := WriteLabResultsCSV(&buf, results, measurements, groupNames)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// Header plus one row: lr-2 has no measurements and produces none.
	require.Len(t, lines, 2)
	assert.Equal(t, "Result Name,Group,Date,Value,Unit", lines[0])
	assert.Contains(t, lines[1], "Hemoglobin")
	assert.Contains(t, lines[1], "Hematology")
	assert.Contains(t, lines[1], `"7,1"`)
}

func TestBuildWorkbook_Sheets(t *testing.T) {
	data := WorkbookData{
		Patient: &domain.Patient{PatientID: "p-1", Name: "Test Patient"},
		Scores: []domain.ScoreEntry{{
			Date:     time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Category: "CMAS Score 10-52",
			Value:    35,
		}},
		Groups: []domain.ResultGroup{
			{GroupID: "g-1", GroupName: "Hematology"},
			{GroupID: "g-2", GroupName: "Liver/Kidney Panel With A Very Long Name"},
		},
		ResultsByGroup: map[string][]domain.LabResult{
			"g-1": {{LabResultID: "lr-1", GroupID: "g-1", ResultName: "Hemoglobine", Unit: "mmol/L"}},
		},
		MeasurementsByResult: map[string][]domain.Measurement{
			"lr-1": {{
				MeasurementID: "m-1",
				LabResultID:   "lr-1",
				DateTime:      time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC),
				RawValue:      "7,1",
			}},
		},
	}

	f, err := BuildWorkbook(data)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Patient Info")
	assert.Contains(t, sheets, "CMAS Scores")
	assert.Contains(t, sheets, "Hematology")
	assert.Contains(t, sheets, SanitizeSheetName("Liver/Kidney Panel With A Very Long Name"))
	assert.NotContains(t, sheets, "Sheet1")

	value, err := f.GetCellValue("Hematology", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Hemoglobine", value)

	score, err := f.GetCellValue("CMAS Scores", "C2")
	require.NoError(t, err)
	assert.Equal(t, "35", score)
}

package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"jdm-dashboard/internal/domain"
)

// Characters excel refuses in worksheet names.
const illegalSheetChars = `:\/?*[]`

// Worksheet name limit imposed by the xlsx format.
const maxSheetNameLength = 31

// SanitizeSheetName truncates to 31 characters and replaces characters
// illegal in sheet names with an underscore.
func SanitizeSheetName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(illegalSheetChars, r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}
	sanitized := b.String()
	runes := []rune(sanitized)
	if len(runes) > maxSheetNameLength {
		sanitized = string(runes[:maxSheetNameLength])
	}
	if sanitized == "" {
		return "Sheet"
	}
	return sanitized
}

// WorkbookData is everything one snapshot export needs, already fetched
// through the repositories.
type WorkbookData struct {
	Patient              *domain.Patient
	Scores               []domain.ScoreEntry
	Groups               []domain.ResultGroup
	ResultsByGroup       map[string][]domain.LabResult
	MeasurementsByResult map[string][]domain.Measurement
}

// BuildWorkbook assembles the snapshot workbook: a patient-info sheet, a
// scores sheet and one sheet per result group. The caller owns saving
// and closing the returned file. Fail-fast: the first error aborts.
func BuildWorkbook(data WorkbookData) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writePatientSheet(f, data.Patient); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeScoresSheet(f, data.Scores); err != nil {
		f.Close()
		return nil, err
	}
	for _, g := range data.Groups {
		if err := writeGroupSheet(f, g, data.ResultsByGroup[g.GroupID], data.MeasurementsByResult); err != nil {
			f.Close()
			return nil, err
		}
	}

	// Drop the default sheet after the real ones exist.
	f.DeleteSheet("Sheet1")
	return f, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

// newSheet creates a sheet, writes its styled header row and sets the
// column widths.
func newSheet(f *excelize.File, name string, headers []string, widths []float64) (string, error) {
	sheetName := SanitizeSheetName(name)
	if _, err := f.NewSheet(sheetName); err != nil {
		return "", fmt.Errorf("create sheet %s: %w", sheetName, err)
	}

	style, err := headerStyle(f)
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return "", fmt.Errorf("set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return "", fmt.Errorf("set header style: %w", err)
		}
	}

	for col, width := range widths {
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return "", fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, colName, colName, width); err != nil {
			return "", fmt.Errorf("set column width: %w", err)
		}
	}

	return sheetName, nil
}

func setRow(f *excelize.File, sheet string, rowIdx int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}

func writePatientSheet(f *excelize.File, patient *domain.Patient) error {
	sheet, err := newSheet(f, "Patient Info",
		[]string{"Patient ID", "Name"}, []float64{20, 30})
	if err != nil {
		return err
	}
	if patient == nil {
		return nil
	}
	return setRow(f, sheet, 2, []any{patient.PatientID, patient.Name})
}

func writeScoresSheet(f *excelize.File, scores []domain.ScoreEntry) error {
	sheet, err := newSheet(f, "CMAS Scores",
		[]string{"Date", "Category", "Value"}, []float64{16, 24, 10})
	if err != nil {
		return err
	}
	for i, e := range scores {
		row := []any{e.Date.Format(displayDateLayout), e.Category, e.Value}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeGroupSheet(
	f *excelize.File,
	group domain.ResultGroup,
	results []domain.LabResult,
	measurementsByResult map[string][]domain.Measurement,
) error {
	sheet, err := newSheet(f, group.GroupName,
		[]string{"Result Name", "Date", "Value", "Unit"}, []float64{30, 20, 14, 12})
	if err != nil {
		return err
	}

	rowIdx := 2
	for _, lr := range results {
		for _, m := range measurementsByResult[lr.LabResultID] {
			row := []any{
				lr.DisplayName(),
				m.DateTime.Format(displayDateTimeLayout),
				m.RawValue,
				lr.Unit,
			}
			if err := setRow(f, sheet, rowIdx, row); err != nil {
				return err
			}
			rowIdx++
		}
	}
	return nil
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"jdm-dashboard/internal/domain"
)

// Human-readable layouts used in exported rows.
const (
	displayDateLayout     = "Jan 2, 2006"
	displayDateTimeLayout = "Jan 2, 2006 15:04"
)

// ScoresCSVHeader delimited-text header for score exports.
var ScoresCSVHeader = []string{"Date", "Category", "Value"}

// LabResultsCSVHeader delimited-text header for lab exports.
var LabResultsCSVHeader = []string{"Result Name", "Group", "Date", "Value", "Unit"}

// WriteScoresCSV serializes score entries as delimited text, one row per
// entry. Fail-fast: the first write error aborts the export.
func WriteScoresCSV(w io.Writer, entries []domain.ScoreEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ScoresCSVHeader); err != nil {
		return fmt.Errorf("write scores header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.Date.Format(displayDateLayout),
			e.Category,
			fmt.Sprintf("%d", e.Value),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write score row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLabResultsCSV serializes one row per measurement, joined with its
// result definition and group name. Results without measurements produce
// no rows.
func WriteLabResultsCSV(
	w io.Writer,
	results []domain.LabResult,
	measurementsByResult map[string][]domain.Measurement,
	groupNames map[string]string,
) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LabResultsCSVHeader); err != nil {
		return fmt.Errorf("write lab results header: %w", err)
	}
	for _, lr := range results {
		for _, m := range measurementsByResult[lr.LabResultID] {
			row := []string{
				lr.DisplayName(),
				groupNames[lr.GroupID],
				m.DateTime.Format(displayDateTimeLayout),
				m.RawValue,
				lr.Unit,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write lab result row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatDisplayDate renders a date the way exported rows do.
func FormatDisplayDate(t time.Time) string {
	return t.Format(displayDateLayout)
}

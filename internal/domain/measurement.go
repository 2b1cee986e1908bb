package domain

import (
	"strconv"
	"strings"
	"time"
)

// Measurement 对应 measurement 表.
// RawValue is stored verbatim after whitespace trimming and is not
// guaranteed numeric (qualitative results like "negative" occur).
type Measurement struct {
	MeasurementID string    `db:"measurement_id"` // TEXT, PRIMARY KEY
	LabResultID   string    `db:"lab_result_id"`  // TEXT, NOT NULL, FK to lab_result
	DateTime      time.Time `db:"date_time"`      // TEXT (ISO datetime), NOT NULL
	RawValue      string    `db:"value"`          // TEXT, NOT NULL
}

// NumericValue reports the measurement value as a float64 when it has
// one. Both comma and dot are accepted as the decimal separator; a value
// that still fails to parse simply has no numeric representation and
// ok is false.
func (m Measurement) NumericValue() (float64, bool) {
	return ParseNumeric(m.RawValue)
}

// ParseNumeric converts a raw measurement string to a float64, accepting
// "100,5" and "100.5" alike. Soft failure: (0, false) for anything that
// is not a number.
func ParseNumeric(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

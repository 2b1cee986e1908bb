package importer

import (
	"fmt"
	"strings"
	"time"
)

// Source CSV layouts: day-month-year, with a year-month-day fallback for
// rows the external preprocessing already normalized.
const (
	csvDateLayout     = "02-01-2006"
	csvDateAltLayout  = "2006-01-02"
	csvDateTimeLayout = "02-01-2006 15:04"
)

// Encoding artifacts left behind by a prior character-encoding bug in the
// source files. They are rewritten before parsing; round-trip fidelity
// with the cleaned files depends on these exact tokens.
const (
	encodedHyphen      = "+AC0-"
	encodedGreaterThan = "+AD4-"
)

// CleanDateString rewrites the encoded hyphen artifact to a literal
// hyphen.
func CleanDateString(s string) string {
	return strings.ReplaceAll(s, encodedHyphen, "-")
}

// CleanCategory rewrites the encoded greater-than artifact to a space and
// the encoded hyphen artifact to a hyphen.
func CleanCategory(s string) string {
	s = strings.ReplaceAll(s, encodedGreaterThan, " ")
	return strings.ReplaceAll(s, encodedHyphen, "-")
}

// ParseDate parses a cleaned score date, trying the canonical
// day-month-year layout first and year-month-day second.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(csvDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(csvDateAltLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %q", s)
	}
	return t, nil
}

// ParseDateTime parses a measurement timestamp in the canonical
// day-month-year hour:minute layout.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(csvDateTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable datetime %q", s)
	}
	return t, nil
}

// FormatDate renders a date back into the canonical CSV layout.
func FormatDate(t time.Time) string {
	return t.Format(csvDateLayout)
}

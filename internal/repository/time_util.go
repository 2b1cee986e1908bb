package repository

import (
	"fmt"
	"time"
)

// Storage layouts for date columns. The store keeps dates as ISO text so
// lexicographic index order equals chronological order.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return t, nil
}

func formatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

func parseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored datetime %q: %w", s, err)
	}
	return t, nil
}

// Package stats derives chart summaries from collections already
// fetched through the repositories. Everything here is a pure function:
// no storage access, no side effects.
package stats

import (
	"sort"

	"jdm-dashboard/internal/domain"
)

// Trend direction thresholds in percent. Fixed design constants.
const (
	UpThresholdPercent   = 5.0
	DownThresholdPercent = -5.0
)

// Direction classifies the first-to-current change of a series.
type Direction string

const (
	TrendUp           Direction = "up"
	TrendDown         Direction = "down"
	TrendStable       Direction = "stable"
	TrendUndetermined Direction = "undetermined"
)

// MonthAverage one month bucket, Month is a "2006-01" key.
type MonthAverage struct {
	Month   string
	Average float64
}

// ScoreStatistics min/max/average over a score selection.
type ScoreStatistics struct {
	Min     int
	Max     int
	Average float64
}

// ChartSummary is what a trend chart header shows: the latest value, the
// series mean and the first-to-current change.
type ChartSummary struct {
	Current       int
	Average       float64
	PercentChange float64
	Direction     Direction
}

// MonthlyTrend buckets entries by calendar month, averages each bucket
// and returns the buckets ascending by month key.
func MonthlyTrend(entries []domain.ScoreEntry) []MonthAverage {
	if len(entries) == 0 {
		return nil
	}
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, e := range entries {
		key := e.Date.Format("2006-01")
		sums[key] += e.Value
		counts[key]++
	}

	months := make([]string, 0, len(sums))
	for m := range sums {
		months = append(months, m)
	}
	sort.Strings(months)

	trend := make([]MonthAverage, 0, len(months))
	for _, m := range months {
		trend = append(trend, MonthAverage{
			Month:   m,
			Average: float64(sums[m]) / float64(counts[m]),
		})
	}
	return trend
}

// Statistics returns min/max/average over the entries. ok is false on an
// empty slice so callers never divide by zero.
func Statistics(entries []domain.ScoreEntry) (ScoreStatistics, bool) {
	if len(entries) == 0 {
		return ScoreStatistics{}, false
	}
	stats := ScoreStatistics{Min: entries[0].Value, Max: entries[0].Value}
	sum := 0
	for _, e := range entries {
		if e.Value < stats.Min {
			stats.Min = e.Value
		}
		if e.Value > stats.Max {
			stats.Max = e.Value
		}
		sum += e.Value
	}
	stats.Average = float64(sum) / float64(len(entries))
	return stats, true
}

// Summarize computes the chart header for a chronologically ordered
// series. Percent change is (current-first)/first*100, computed only
// when more than one entry exists and the first value is non-zero;
// otherwise the direction is undetermined.
func Summarize(entries []domain.ScoreEntry) ChartSummary {
	summary := ChartSummary{Direction: TrendUndetermined}
	if len(entries) == 0 {
		return summary
	}

	ordered := make([]domain.ScoreEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	summary.Current = ordered[len(ordered)-1].Value
	sum := 0
	for _, e := range ordered {
		sum += e.Value
	}
	summary.Average = float64(sum) / float64(len(ordered))

	first := ordered[0].Value
	if len(ordered) < 2 || first == 0 {
		return summary
	}

	summary.PercentChange = float64(summary.Current-first) / float64(first) * 100
	switch {
	case summary.PercentChange > UpThresholdPercent:
		summary.Direction = TrendUp
	case summary.PercentChange < DownThresholdPercent:
		summary.Direction = TrendDown
	default:
		summary.Direction = TrendStable
	}
	return summary
}

// GroupMeasurementsByResult partitions measurements per lab result,
// keeping each slice's incoming (chronological) order. Results with no
// measurements are simply absent from the map.
func GroupMeasurementsByResult(measurements []domain.Measurement) map[string][]domain.Measurement {
	grouped := make(map[string][]domain.Measurement)
	for _, m := range measurements {
		grouped[m.LabResultID] = append(grouped[m.LabResultID], m)
	}
	return grouped
}

// NumericSeries extracts the parseable values of a measurement series in
// order, skipping values with no numeric representation.
func NumericSeries(measurements []domain.Measurement) []float64 {
	var series []float64
	for _, m := range measurements {
		if v, ok := m.NumericValue(); ok {
			series = append(series, v)
		}
	}
	return series
}

package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanDateString(t *testing.T) {
	assert.Equal(t, "05-01-2024", CleanDateString("05+AC0-01+AC0-2024"))
	assert.Equal(t, "05-01-2024", CleanDateString("05-01-2024"))
}

func TestCleanCategory(t *testing.T) {
	assert.Equal(t, "CMAS Score 10", CleanCategory("CMAS+AD4-Score+AD4-10"))
	assert.Equal(t, "CMAS Score 10-52", CleanCategory("CMAS+AD4-Score+AD4-10+AC0-52"))
	assert.Equal(t, "plain", CleanCategory("plain"))
}

func TestParseDate_PrimaryAndFallback(t *testing.T) {
	d, err := ParseDate("05-01-2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("garbage")
	assert.Error(t, err)
}

func TestParseDate_FormatRoundTrip(t *testing.T) {
	// parse then format round-trips to the same calendar date.
	for _, s := range []string{"01-01-2020", "29-02-2024", "31-12-1999", "05-07-2023"} {
		d, err := ParseDate(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatDate(d))
	}
}

func TestParseDateTime(t *testing.T) {
	dt, err := ParseDateTime("05-01-2024 09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC), dt)

	_, err = ParseDateTime("2024-01-05")
	assert.Error(t, err)
}

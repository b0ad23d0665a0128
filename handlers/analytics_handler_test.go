package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySalesFillsMissingDays(t *testing.T) {
	start := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	rows := []dailySalesRow{
		{Date: "2026-08-25", Sales: 3, Revenue: 120.50},
		{Date: "2026-08-29", Sales: 1, Revenue: 45.00},
	}

	series := buildDailySales(rows, start, end)
	require.Len(t, series, 8)

	assert.Equal(t, "2026-08-23", series[0]["date"])
	assert.Equal(t, "2026-08-30", series[7]["date"])

	assert.Equal(t, int64(3), series[2]["sales"])
	assert.Equal(t, 120.50, series[2]["revenue"])
	assert.Equal(t, int64(1), series[6]["sales"])

	// Days without orders are present as zeros, not gaps.
	assert.Equal(t, int64(0), series[1]["sales"])
	assert.Equal(t, 0.0, series[1]["revenue"])
}

// The aggregation keys rows by UTC date, the fill loop has to land on the
// same dates even when the window endpoints carry a non-UTC zone.
func TestBuildDailySalesUsesUTCDates(t *testing.T) {
	zone := time.FixedZone("UTC+13", 13*60*60)

	// Local date 2026-08-31, but still 2026-08-30 in UTC.
	end := time.Date(2026, 8, 31, 10, 0, 0, 0, zone)
	start := end.AddDate(0, 0, -7)

	rows := []dailySalesRow{
		{Date: "2026-08-30", Sales: 2, Revenue: 90.00},
	}

	series := buildDailySales(rows, start, end)
	require.Len(t, series, 8)

	last := series[len(series)-1]
	assert.Equal(t, "2026-08-30", last["date"])
	assert.Equal(t, int64(2), last["sales"])
	assert.Equal(t, 90.00, last["revenue"])
}

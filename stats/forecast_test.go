package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-stats/domain/timerecord"
)

func TestAccumulateForecastSplitsAtReference(t *testing.T) {
	records := []timerecord.Record{
		rec("2026-01-10", "C1", "P1", "Alice", 100, 100),
		rec("2026-02-10", "C1", "P1", "Alice", 80, 80),
		rec("2026-03-10", "C1", "P1", "Alice", 10, 10),
	}
	months := EnrichMonths(AggregateByMonth(records), timerecord.SchemaHoursOnly)

	planned := AggregatePlannedByMonth([]timerecord.PlannedRecord{
		plan("2026-02-01", "P1", "Alice", 90, 0),
		plan("2026-03-01", "P1", "Alice", 120, 0),
		plan("2026-04-01", "P1", "Alice", 110, 0),
	}, false)

	merged := MergePlannedByMonth(months, planned, false)
	points, total := AccumulateForecast(merged, day("2026-03-15"))
	require.Len(t, points, 4)

	// Months before the reference month carry actual hours.
	assert.Equal(t, PeriodActual, points[0].Period)
	assert.Equal(t, 100.0, points[0].MonthValue)
	assert.Equal(t, PeriodActual, points[1].Period)
	assert.Equal(t, 80.0, points[1].MonthValue)

	// The reference month itself and everything after carry planned hours.
	assert.Equal(t, PeriodPlanned, points[2].Period)
	assert.Equal(t, 120.0, points[2].MonthValue)
	assert.Equal(t, PeriodPlanned, points[3].Period)
	assert.Equal(t, 110.0, points[3].MonthValue)

	assert.Equal(t, 100.0, points[0].Accumulated)
	assert.Equal(t, 180.0, points[1].Accumulated)
	assert.Equal(t, 300.0, points[2].Accumulated)
	assert.Equal(t, 410.0, points[3].Accumulated)
	assert.Equal(t, 410.0, total)
}

func TestAccumulateForecastTotalMatchesLastPoint(t *testing.T) {
	merged := []MergedMonthRow{
		{Bucket: timerecord.YearMonth{Year: 2026, Month: 2}, SortKey: "2026-02", HoursWorked: 40, PlannedHours: 50},
		{Bucket: timerecord.YearMonth{Year: 2026, Month: 1}, SortKey: "2026-01", HoursWorked: 30, PlannedHours: 20},
	}

	points, total := AccumulateForecast(merged, day("2026-02-01"))
	require.Len(t, points, 2)
	// Input order does not matter, the series comes back chronological.
	assert.Equal(t, "2026-01", points[0].SortKey)
	assert.Equal(t, points[len(points)-1].Accumulated, total)
	assert.Equal(t, 80.0, total) // Jan actual 30 + Feb planned 50
}

func TestAccumulateForecastEmpty(t *testing.T) {
	points, total := AccumulateForecast(nil, day("2026-01-01"))
	assert.Empty(t, points)
	assert.Equal(t, 0.0, total)
}

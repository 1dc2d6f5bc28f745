package stats

import (
	"sort"
	"time"

	"agency-stats/domain/timerecord"
)

// Period tags a forecast bucket as realized or still planned.
type Period string

const (
	PeriodActual  Period = "Actual"
	PeriodPlanned Period = "Planned"
)

// ForecastPoint is one month of the accumulated hours forecast.
type ForecastPoint struct {
	Bucket      timerecord.YearMonth
	MonthName   string
	SortKey     string
	Period      Period
	MonthValue  float64
	Accumulated float64
}

// AccumulateForecast splices a merged monthly series into a chronological
// forecast: buckets strictly before the reference month contribute their
// actual hours, the reference month and everything after contribute planned
// hours. The running cumulative sum is exposed per bucket, and the final
// total is returned alongside the series. The reference date is always a
// caller decision; the engine never reads the clock.
func AccumulateForecast(rows []MergedMonthRow, reference time.Time) ([]ForecastPoint, float64) {
	ref := timerecord.BucketOf(reference)

	points := make([]ForecastPoint, 0, len(rows))
	for _, m := range rows {
		p := ForecastPoint{
			Bucket:    m.Bucket,
			MonthName: m.MonthName,
			SortKey:   m.SortKey,
		}
		if m.Bucket.Before(ref) {
			p.Period = PeriodActual
			p.MonthValue = m.HoursWorked
		} else {
			p.Period = PeriodPlanned
			p.MonthValue = m.PlannedHours
		}
		points = append(points, p)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].SortKey < points[j].SortKey })

	var total float64
	for i := range points {
		total += points[i].MonthValue
		points[i].Accumulated = total
	}
	return points, total
}

package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-stats/domain/timerecord"
)

func plan(date, project, person string, hours, rate float64) timerecord.PlannedRecord {
	return timerecord.PlannedRecord{
		Date:          day(date),
		Person:        person,
		ProjectNumber: project,
		ProjectName:   "Project " + project,
		PlannedHours:  hours,
		PlannedRate:   rate,
	}
}

func TestAggregatePlannedByProjectWeightedRate(t *testing.T) {
	planned := []timerecord.PlannedRecord{
		plan("2026-01-05", "P1", "Alice", 10, 100),
		plan("2026-01-12", "P1", "Bob", 30, 120),
	}

	rows := AggregatePlannedByProject(planned, true)
	require.Len(t, rows, 1)

	p := rows[0]
	assert.Equal(t, 40.0, p.PlannedHours)
	assert.Equal(t, 2, p.NumberOfPeople)
	assert.Equal(t, 115.0, p.PlannedRate) // (10*100 + 30*120) / 40
	assert.Equal(t, 4600.0, p.PlannedRevenue)
}

func TestAggregatePlannedWithoutRates(t *testing.T) {
	planned := []timerecord.PlannedRecord{
		plan("2026-01-05", "P1", "Alice", 10, 0),
	}
	rows := AggregatePlannedByProject(planned, false)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].PlannedRate)
	assert.Equal(t, 0.0, rows[0].PlannedRevenue)
}

func TestMergePlannedByProjectOuterJoin(t *testing.T) {
	r1 := rec("2026-01-05", "C1", "P1", "Alice", 50, 50)
	r1.HourlyRate = 110
	r2 := rec("2026-01-06", "C1", "P2", "Bob", 20, 20)
	r2.HourlyRate = 100
	actual := EnrichFinancials(Aggregate([]timerecord.Record{r1, r2}, Project), timerecord.SchemaRateOnly)

	planned := AggregatePlannedByProject([]timerecord.PlannedRecord{
		plan("2026-01-05", "P1", "Alice", 40, 100),
		plan("2026-02-02", "P3", "Carol", 16, 90),
	}, true)

	merged := MergePlannedByProject(actual, planned, true)
	require.Len(t, merged, 3)

	p1 := merged[0]
	assert.Equal(t, "P1", p1.ProjectNumber)
	assert.Equal(t, 10.0, p1.HoursVariance) // 50 worked vs 40 planned
	assert.Equal(t, 25.0, p1.VariancePct)
	assert.Equal(t, 10.0, p1.RateVariance) // effective 110 vs planned 100
	assert.Equal(t, 1500.0, p1.RevenueVariance)

	// Worked but never planned: variance equals the hours, pct guarded to 0.
	p2 := merged[1]
	assert.Equal(t, "P2", p2.ProjectNumber)
	assert.Equal(t, 0.0, p2.PlannedHours)
	assert.Equal(t, 20.0, p2.HoursVariance)
	assert.Equal(t, 0.0, p2.VariancePct)

	// Planned but never worked still surfaces, with zero actuals.
	p3 := merged[2]
	assert.Equal(t, "P3", p3.ProjectNumber)
	assert.Equal(t, "Project P3", p3.ProjectName)
	assert.Equal(t, 0.0, p3.HoursWorked)
	assert.Equal(t, 16.0, p3.PlannedHours)
	assert.Equal(t, -16.0, p3.HoursVariance)
	assert.Equal(t, -100.0, p3.VariancePct)
}

func TestMergePlannedByMonthChronological(t *testing.T) {
	records := []timerecord.Record{
		rec("2026-02-10", "C1", "P1", "Alice", 30, 30),
	}
	months := EnrichMonths(AggregateByMonth(records), timerecord.SchemaHoursOnly)

	planned := AggregatePlannedByMonth([]timerecord.PlannedRecord{
		plan("2026-01-05", "P1", "Alice", 20, 0),
		plan("2026-02-02", "P1", "Alice", 25, 0),
	}, false)

	merged := MergePlannedByMonth(months, planned, false)
	require.Len(t, merged, 2)

	assert.Equal(t, "2026-01", merged[0].SortKey)
	assert.Equal(t, 0.0, merged[0].HoursWorked)
	assert.Equal(t, 20.0, merged[0].PlannedHours)
	assert.Equal(t, -20.0, merged[0].HoursVariance)

	assert.Equal(t, "2026-02", merged[1].SortKey)
	assert.Equal(t, 30.0, merged[1].HoursWorked)
	assert.Equal(t, 25.0, merged[1].PlannedHours)
	assert.Equal(t, 5.0, merged[1].HoursVariance)
	assert.Equal(t, 20.0, merged[1].VariancePct)
}

func TestSummarizePlanned(t *testing.T) {
	planned := []timerecord.PlannedRecord{
		plan("2026-01-05", "P1", "Alice", 10, 100),
		plan("2026-01-15", "P2", "Bob", 30, 120),
	}

	m := SummarizePlanned(planned, true)
	assert.Equal(t, 2, m.TotalEntries)
	assert.Equal(t, 2, m.UniqueProjects)
	assert.Equal(t, 2, m.UniquePeople)
	assert.Equal(t, 40.0, m.TotalPlannedHours)
	assert.Equal(t, 10, m.DaysSpan)
	assert.Equal(t, 115.0, m.AveragePlannedRate)
	assert.Equal(t, 4600.0, m.TotalPlannedRevenue)
}

func TestComparePlanned(t *testing.T) {
	records := []timerecord.Record{
		rec("2026-01-05", "C1", "P1", "Alice", 50, 50),
		rec("2026-01-06", "C1", "P2", "Bob", 30, 30),
	}
	planned := []timerecord.PlannedRecord{
		plan("2026-01-05", "P1", "Alice", 60, 0),
		plan("2026-01-05", "P3", "Carol", 40, 0),
	}

	c := ComparePlanned(records, timerecord.SchemaHoursOnly, planned, false)
	assert.Equal(t, 80.0, c.TotalActualHours)
	assert.Equal(t, 100.0, c.TotalPlannedHours)
	assert.Equal(t, -20.0, c.HoursVariance)
	assert.Equal(t, -20.0, c.VariancePct)
	assert.Equal(t, 2, c.ActualProjects)
	assert.Equal(t, 2, c.PlannedProjects)
	assert.Equal(t, 1, c.CommonProjects)
	assert.Equal(t, 1, c.OnlyActualProjects)
	assert.Equal(t, 1, c.OnlyPlannedProjects)
	// Hours-only batches never produce a rate comparison.
	assert.Equal(t, 0.0, c.AvgEffectiveRate)
	assert.Equal(t, 0.0, c.RateVariance)
}

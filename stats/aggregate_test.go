package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-stats/domain/timerecord"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func rec(date, customer, project, person string, worked, billable float64) timerecord.Record {
	return timerecord.Record{
		Date:           day(date),
		CustomerNumber: customer,
		CustomerName:   "Customer " + customer,
		ProjectNumber:  project,
		ProjectName:    "Project " + project,
		ProjectType:    "Fixed",
		Person:         person,
		HoursWorked:    worked,
		BillableHours:  billable,
	}
}

func TestAggregateGroupsByProject(t *testing.T) {
	records := []timerecord.Record{
		rec("2026-01-05", "C1", "P1", "Alice", 10, 8),
		rec("2026-01-06", "C1", "P1", "Bob", 5, 0),
		rec("2026-01-07", "C2", "P2", "Alice", 4, 4),
	}

	rows := Aggregate(records, Project)
	require.Len(t, rows, 2)

	p1 := rows[0]
	assert.Equal(t, "P1", p1.Values["Project number"])
	assert.Equal(t, "Project P1", p1.Values["Project"])
	assert.Equal(t, 15.0, p1.HoursWorked)
	assert.Equal(t, 8.0, p1.BillableHours)
	assert.Equal(t, 7.0, p1.NonBillableHours)
	assert.InDelta(t, 53.33, p1.BillabilityPct, 0.01)
	assert.Equal(t, 2, p1.Counts["Number of people"])

	p2 := rows[1]
	assert.Equal(t, "P2", p2.Values["Project number"])
	assert.Equal(t, 4.0, p2.HoursWorked)
	assert.Equal(t, 1, p2.Counts["Number of people"])
}

func TestAggregateEmptyInput(t *testing.T) {
	rows := Aggregate(nil, Customer)
	assert.Empty(t, rows)
}

func TestAggregateKeepsZeroBillableGroups(t *testing.T) {
	records := []timerecord.Record{
		rec("2026-02-02", "C1", "P1", "Alice", 6, 0),
	}
	rows := Aggregate(records, Project)
	require.Len(t, rows, 1)
	assert.Equal(t, 6.0, rows[0].HoursWorked)
	assert.Equal(t, 0.0, rows[0].BillableHours)
	assert.Equal(t, 0.0, rows[0].BillabilityPct)
}

func TestAggregateFirstSeenOrder(t *testing.T) {
	records := []timerecord.Record{
		rec("2026-01-05", "C2", "P9", "Alice", 1, 1),
		rec("2026-01-05", "C1", "P1", "Alice", 1, 1),
		rec("2026-01-06", "C2", "P9", "Bob", 1, 1),
	}
	rows := Aggregate(records, Customer)
	require.Len(t, rows, 2)
	assert.Equal(t, "C2", rows[0].Values["Customer number"])
	assert.Equal(t, "C1", rows[1].Values["Customer number"])
}

func TestAggregateByMonthChronological(t *testing.T) {
	records := []timerecord.Record{
		rec("2026-03-10", "C1", "P1", "Alice", 4, 4),
		rec("2026-01-15", "C1", "P1", "Alice", 8, 8),
		rec("2026-01-20", "C2", "P2", "Bob", 2, 0),
	}

	rows := AggregateByMonth(records)
	require.Len(t, rows, 2)

	jan := rows[0]
	assert.Equal(t, "2026-01", jan.SortKey)
	assert.Equal(t, "Jan", jan.MonthName)
	assert.Equal(t, 10.0, jan.HoursWorked)
	assert.Equal(t, 2, jan.Counts["Number of projects"])
	assert.Equal(t, 2, jan.Counts["Number of customers"])
	assert.Equal(t, 2, jan.Counts["Number of people"])

	mar := rows[1]
	assert.Equal(t, "2026-03", mar.SortKey)
	assert.Equal(t, 4.0, mar.HoursWorked)
}

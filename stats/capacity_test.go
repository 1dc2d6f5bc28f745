package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-stats/domain/capacity"
	"agency-stats/domain/timerecord"
)

func week(date, person string, scheduled float64, absence map[string]float64) capacity.WeeklyRow {
	return capacity.WeeklyRow{
		WeekStart:      day(date),
		Person:         person,
		ScheduledHours: scheduled,
		AbsenceHours:   absence,
	}
}

func policyConfig() capacity.Config {
	cfg := capacity.Config{
		AbsenceTypes: map[string]string{
			"vacation": "Vacation",
			"training": "Training",
		},
		BillableTarget: 0.80,
	}
	cfg.AbsenceRules.IncludeInCapacityReduction = []string{"vacation"}
	cfg.AbsenceRules.ExcludeFromCapacityReduction = []string{"training"}
	return cfg
}

func TestNormalizeCapacityIncludeExclude(t *testing.T) {
	rows := []capacity.WeeklyRow{
		week("2026-01-05", "Alice", 40, map[string]float64{"vacation": 8, "training": 4}),
	}

	records, warnings := NormalizeCapacity(rows, policyConfig())
	require.Len(t, records, 1)
	assert.Empty(t, warnings)

	r := records[0]
	assert.Equal(t, 8.0, r.AbsenceHours) // training tracked but never subtracted
	assert.Equal(t, 32.0, r.AvailableCapacity)
	assert.Equal(t, 0.80, r.BillableTarget)
	assert.InDelta(t, 25.6, r.TargetBillableHours, 0.001)
	assert.Equal(t, "Included: Vacation | Excluded: Training", r.AbsenceTypes)
}

func TestNormalizeCapacityFloorsAtZero(t *testing.T) {
	rows := []capacity.WeeklyRow{
		week("2026-01-05", "Alice", 40, map[string]float64{"vacation": 48}),
	}

	records, _ := NormalizeCapacity(rows, policyConfig())
	require.Len(t, records, 1)
	assert.Equal(t, 48.0, records[0].AbsenceHours)
	assert.Equal(t, 0.0, records[0].AvailableCapacity)
	assert.Equal(t, 0.0, records[0].TargetBillableHours)
}

func TestNormalizeCapacityNoAbsence(t *testing.T) {
	rows := []capacity.WeeklyRow{
		week("2026-01-05", "Alice", 40, nil),
	}
	records, _ := NormalizeCapacity(rows, policyConfig())
	require.Len(t, records, 1)
	assert.Equal(t, 40.0, records[0].AvailableCapacity)
	assert.Equal(t, "No absence affecting capacity", records[0].AbsenceTypes)
}

func TestNormalizeCapacityUnknownTypeDefaultsToIncluded(t *testing.T) {
	rows := []capacity.WeeklyRow{
		week("2026-01-05", "Alice", 40, map[string]float64{"parental": 16}),
	}

	records, warnings := NormalizeCapacity(rows, policyConfig())
	require.Len(t, records, 1)
	assert.Equal(t, 16.0, records[0].AbsenceHours)
	assert.Equal(t, 24.0, records[0].AvailableCapacity)

	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], `"training"`)
	assert.Contains(t, warnings[1], `"vacation"`)
	assert.Contains(t, warnings[2], `"parental"`)

	// Explicit default of false flips unknown types to tracked-only.
	cfg := policyConfig()
	exclude := false
	cfg.DefaultInclude = &exclude
	records, _ = NormalizeCapacity(rows, cfg)
	assert.Equal(t, 0.0, records[0].AbsenceHours)
	assert.Equal(t, 40.0, records[0].AvailableCapacity)
}

func TestPersonCapacity(t *testing.T) {
	rows := []capacity.WeeklyRow{
		week("2026-01-05", "Alice", 40, map[string]float64{"vacation": 8}),
		week("2026-01-12", "Alice", 40, nil),
		week("2026-01-05", "Bob", 32, nil),
	}
	records, _ := NormalizeCapacity(rows, policyConfig())

	people := PersonCapacity(records)
	require.Len(t, people, 2)

	alice := people[0]
	assert.Equal(t, "Alice", alice.Person)
	assert.Equal(t, 80.0, alice.ScheduledHours)
	assert.Equal(t, 8.0, alice.AbsenceHours)
	assert.Equal(t, 72.0, alice.AvailableCapacity)
	assert.Equal(t, 2, alice.PeriodCount)
	assert.Equal(t, day("2026-01-05"), alice.PeriodStart)
	assert.Equal(t, day("2026-01-12"), alice.PeriodEnd)
	assert.Equal(t, 10.0, alice.AbsenceRate)
	assert.Equal(t, 90.0, alice.CapacityUtilizationRate)
}

func TestSummarizeCapacity(t *testing.T) {
	rows := []capacity.WeeklyRow{
		week("2026-01-05", "Alice", 40, map[string]float64{"vacation": 8}),
		week("2026-01-12", "Bob", 40, nil),
	}
	records, _ := NormalizeCapacity(rows, policyConfig())

	s := SummarizeCapacity(records)
	assert.Equal(t, 2, s.People)
	assert.Equal(t, 2, s.Periods)
	assert.Equal(t, 80.0, s.ScheduledHours)
	assert.Equal(t, 8.0, s.AbsenceHours)
	assert.Equal(t, 72.0, s.AvailableCapacity)
	assert.Equal(t, 10.0, s.OverallAbsenceRate)
	assert.Equal(t, day("2026-01-05"), s.PeriodStart)
	assert.Equal(t, day("2026-01-12"), s.PeriodEnd)
}

func TestAggregateWeekly(t *testing.T) {
	records := []timerecord.Record{
		rec("2026-01-06", "C1", "P1", "Alice", 8, 8), // Tue
		rec("2026-01-08", "C1", "P2", "Alice", 6, 0), // Thu, same week
		rec("2026-01-13", "C1", "P1", "Alice", 8, 8), // next week
		rec("2026-01-06", "C1", "P1", "Bob", 4, 4),
	}

	weeks := AggregateWeekly(records)
	require.Len(t, weeks, 3)

	assert.Equal(t, "Alice", weeks[0].Person)
	assert.Equal(t, day("2026-01-05"), weeks[0].WeekStart)
	assert.Equal(t, 14.0, weeks[0].HoursWorked)
	assert.Equal(t, 8.0, weeks[0].BillableHours)

	assert.Equal(t, day("2026-01-12"), weeks[1].WeekStart)
	assert.Equal(t, "Bob", weeks[2].Person)
}

func TestUtilizationRates(t *testing.T) {
	records := []timerecord.Record{
		rec("2026-01-05", "C1", "P1", "Alice", 6, 6),
		rec("2026-01-05", "C1", "P2", "Alice", 2, 0),
		rec("2026-01-06", "C1", "P1", "Alice", 4, 4),
	}

	rows := UtilizationRates(records, timerecord.SchemaHoursOnly, 8)
	require.Len(t, rows, 1)

	u := rows[0]
	assert.Equal(t, "Alice", u.Person)
	assert.Equal(t, 2, u.DaysWorked)
	assert.Equal(t, 16.0, u.PotentialHours)
	assert.Equal(t, 12.0, u.ActualHours)
	assert.Equal(t, 10.0, u.BillableHours)
	assert.Equal(t, 75.0, u.UtilizationPct)
	assert.Equal(t, 62.5, u.BillableUtilizationPct)
}

package stats

import (
	"sort"
	"time"

	lo "github.com/samber/lo"

	"agency-stats/domain/timerecord"
)

// PlannedProjectRow is one project of the planned-hours rollup. The rate is a
// duration-weighted average over the project's planned entries, since a plan
// may carry different rates per person.
type PlannedProjectRow struct {
	ProjectNumber  string
	ProjectName    string
	PlannedHours   float64
	NumberOfPeople int
	PlannedRate    float64
	PlannedRevenue float64
}

// PlannedMonthRow is one calendar-month bucket of the planned rollup,
// chronologically sortable via SortKey.
type PlannedMonthRow struct {
	Bucket         timerecord.YearMonth
	MonthName      string
	SortKey        string
	PlannedHours   float64
	NumberOfPeople int
	PlannedRate    float64
	PlannedRevenue float64
}

type plannedAccum struct {
	hours    float64
	weighted float64 // Σ rate × hours
	people   map[string]struct{}
}

func (a *plannedAccum) add(r timerecord.PlannedRecord) {
	a.hours += r.PlannedHours
	a.weighted += r.PlannedRate * r.PlannedHours
	a.people[r.Person] = struct{}{}
}

func (a *plannedAccum) rate(hasRates bool) float64 {
	if !hasRates {
		return 0
	}
	return safeDiv(a.weighted, a.hours)
}

// AggregatePlannedByProject rolls planned records up per project. hasRates
// tells whether the batch carried a planned rate column; without it rate and
// revenue stay 0.
func AggregatePlannedByProject(records []timerecord.PlannedRecord, hasRates bool) []PlannedProjectRow {
	var order []string
	names := make(map[string]string)
	groups := make(map[string]*plannedAccum)

	for _, r := range records {
		a, ok := groups[r.ProjectNumber]
		if !ok {
			a = &plannedAccum{people: make(map[string]struct{})}
			groups[r.ProjectNumber] = a
			order = append(order, r.ProjectNumber)
		}
		if r.ProjectName != "" {
			names[r.ProjectNumber] = r.ProjectName
		}
		a.add(r)
	}

	rows := make([]PlannedProjectRow, 0, len(order))
	for _, num := range order {
		a := groups[num]
		rate := a.rate(hasRates)
		rows = append(rows, PlannedProjectRow{
			ProjectNumber:  num,
			ProjectName:    names[num],
			PlannedHours:   a.hours,
			NumberOfPeople: len(a.people),
			PlannedRate:    rate,
			PlannedRevenue: a.hours * rate,
		})
	}
	return rows
}

// AggregatePlannedByMonth rolls planned records up per calendar month, in
// chronological order.
func AggregatePlannedByMonth(records []timerecord.PlannedRecord, hasRates bool) []PlannedMonthRow {
	var order []timerecord.YearMonth
	groups := make(map[timerecord.YearMonth]*plannedAccum)

	for _, r := range records {
		b := timerecord.BucketOf(r.Date)
		a, ok := groups[b]
		if !ok {
			a = &plannedAccum{people: make(map[string]struct{})}
			groups[b] = a
			order = append(order, b)
		}
		a.add(r)
	}

	rows := make([]PlannedMonthRow, 0, len(order))
	for _, b := range order {
		a := groups[b]
		rate := a.rate(hasRates)
		rows = append(rows, PlannedMonthRow{
			Bucket:         b,
			MonthName:      b.MonthName(),
			SortKey:        b.SortKey(),
			PlannedHours:   a.hours,
			NumberOfPeople: len(a.people),
			PlannedRate:    rate,
			PlannedRevenue: a.hours * rate,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SortKey < rows[j].SortKey })
	return rows
}

// MergedProjectRow joins a project's actual metrics with its planned
// counterpart and the signed variances between them.
type MergedProjectRow struct {
	ProjectNumber string
	ProjectName   string
	ProjectType   string

	HoursWorked      float64
	BillableHours    float64
	NonBillableHours float64
	BillabilityPct   float64
	NumberOfPeople   int
	Revenue          float64
	TotalCost        float64
	TotalProfit      float64
	ProfitMarginPct  float64
	BillableRate     float64
	EffectiveRate    float64

	PlannedHours   float64
	PlannedRate    float64
	PlannedRevenue float64

	HoursVariance      float64
	VariancePct        float64
	RateVariance       float64
	RateVariancePct    float64
	RevenueVariance    float64
	RevenueVariancePct float64
}

// MergePlannedByProject outer-joins actual project rows (the Project
// dimension, financially enriched) with planned project rows. A project
// present on only one side still appears, with the other side zero-filled:
// budgeted-but-not-yet-worked projects must surface. hasRates gates the rate
// and revenue variances.
func MergePlannedByProject(actual []Row, planned []PlannedProjectRow, hasRates bool) []MergedProjectRow {
	plannedByNum := lo.SliceToMap(planned, func(p PlannedProjectRow) (string, PlannedProjectRow) {
		return p.ProjectNumber, p
	})

	var out []MergedProjectRow
	seen := make(map[string]struct{}, len(actual))
	for _, a := range actual {
		num := a.Values["Project number"]
		seen[num] = struct{}{}
		m := MergedProjectRow{
			ProjectNumber:    num,
			ProjectName:      a.Values["Project"],
			ProjectType:      a.Values["Project type"],
			HoursWorked:      a.HoursWorked,
			BillableHours:    a.BillableHours,
			NonBillableHours: a.NonBillableHours,
			BillabilityPct:   a.BillabilityPct,
			NumberOfPeople:   a.Counts["Number of people"],
			Revenue:          a.Revenue,
			TotalCost:        a.TotalCost,
			TotalProfit:      a.TotalProfit,
			ProfitMarginPct:  a.ProfitMarginPct,
			BillableRate:     a.BillableRate,
			EffectiveRate:    a.EffectiveRate,
		}
		if p, ok := plannedByNum[num]; ok {
			m.PlannedHours = p.PlannedHours
			m.PlannedRate = p.PlannedRate
			m.PlannedRevenue = p.PlannedRevenue
			if m.ProjectName == "" {
				m.ProjectName = p.ProjectName
			}
		}
		out = append(out, finishVariances(m, hasRates))
	}
	for _, p := range planned {
		if _, ok := seen[p.ProjectNumber]; ok {
			continue
		}
		m := MergedProjectRow{
			ProjectNumber:  p.ProjectNumber,
			ProjectName:    p.ProjectName,
			PlannedHours:   p.PlannedHours,
			PlannedRate:    p.PlannedRate,
			PlannedRevenue: p.PlannedRevenue,
		}
		out = append(out, finishVariances(m, hasRates))
	}
	return out
}

func finishVariances(m MergedProjectRow, hasRates bool) MergedProjectRow {
	m.HoursVariance = m.HoursWorked - m.PlannedHours
	m.VariancePct = safePct(m.HoursVariance, m.PlannedHours)
	if hasRates {
		m.RateVariance = m.EffectiveRate - m.PlannedRate
		m.RateVariancePct = safePct(m.RateVariance, m.PlannedRate)
		m.RevenueVariance = m.Revenue - m.PlannedRevenue
		m.RevenueVariancePct = safePct(m.RevenueVariance, m.PlannedRevenue)
	}
	return m
}

// MergedMonthRow joins one calendar month's actual and planned metrics.
type MergedMonthRow struct {
	Bucket    timerecord.YearMonth
	MonthName string
	SortKey   string

	HoursWorked      float64
	BillableHours    float64
	NonBillableHours float64
	BillabilityPct   float64
	NumberOfPeople   int
	Revenue          float64
	BillableRate     float64
	EffectiveRate    float64

	PlannedHours   float64
	PlannedRate    float64
	PlannedRevenue float64

	HoursVariance      float64
	VariancePct        float64
	RateVariance       float64
	RateVariancePct    float64
	RevenueVariance    float64
	RevenueVariancePct float64
}

// MergePlannedByMonth outer-joins monthly actual and planned rollups on the
// calendar bucket and returns the merged series in chronological order.
func MergePlannedByMonth(actual []MonthRow, planned []PlannedMonthRow, hasRates bool) []MergedMonthRow {
	plannedByBucket := lo.SliceToMap(planned, func(p PlannedMonthRow) (timerecord.YearMonth, PlannedMonthRow) {
		return p.Bucket, p
	})

	var out []MergedMonthRow
	seen := make(map[timerecord.YearMonth]struct{}, len(actual))
	for _, a := range actual {
		seen[a.Bucket] = struct{}{}
		m := MergedMonthRow{
			Bucket:           a.Bucket,
			MonthName:        a.MonthName,
			SortKey:          a.SortKey,
			HoursWorked:      a.HoursWorked,
			BillableHours:    a.BillableHours,
			NonBillableHours: a.NonBillableHours,
			BillabilityPct:   a.BillabilityPct,
			NumberOfPeople:   a.Counts["Number of people"],
			Revenue:          a.Revenue,
			BillableRate:     a.BillableRate,
			EffectiveRate:    a.EffectiveRate,
		}
		if p, ok := plannedByBucket[a.Bucket]; ok {
			m.PlannedHours = p.PlannedHours
			m.PlannedRate = p.PlannedRate
			m.PlannedRevenue = p.PlannedRevenue
		}
		out = append(out, finishMonthVariances(m, hasRates))
	}
	for _, p := range planned {
		if _, ok := seen[p.Bucket]; ok {
			continue
		}
		m := MergedMonthRow{
			Bucket:         p.Bucket,
			MonthName:      p.MonthName,
			SortKey:        p.SortKey,
			PlannedHours:   p.PlannedHours,
			PlannedRate:    p.PlannedRate,
			PlannedRevenue: p.PlannedRevenue,
		}
		out = append(out, finishMonthVariances(m, hasRates))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortKey < out[j].SortKey })
	return out
}

func finishMonthVariances(m MergedMonthRow, hasRates bool) MergedMonthRow {
	m.HoursVariance = m.HoursWorked - m.PlannedHours
	m.VariancePct = safePct(m.HoursVariance, m.PlannedHours)
	if hasRates {
		m.RateVariance = m.EffectiveRate - m.PlannedRate
		m.RateVariancePct = safePct(m.RateVariance, m.PlannedRate)
		m.RevenueVariance = m.Revenue - m.PlannedRevenue
		m.RevenueVariancePct = safePct(m.RevenueVariance, m.PlannedRevenue)
	}
	return m
}

// PlannedSummaryMetrics is the headline block over a planned record batch.
type PlannedSummaryMetrics struct {
	TotalEntries   int
	UniqueProjects int
	UniquePeople   int

	TotalPlannedHours float64
	FirstRecord       time.Time
	LastRecord        time.Time
	DaysSpan          int

	AveragePlannedRate  float64
	TotalPlannedRevenue float64
}

// SummarizePlanned computes the headline metrics for a planned batch.
func SummarizePlanned(records []timerecord.PlannedRecord, hasRates bool) PlannedSummaryMetrics {
	m := PlannedSummaryMetrics{
		TotalEntries:      len(records),
		UniqueProjects:    distinctCount(records, func(r timerecord.PlannedRecord) string { return r.ProjectNumber }),
		UniquePeople:      distinctCount(records, func(r timerecord.PlannedRecord) string { return r.Person }),
		TotalPlannedHours: lo.SumBy(records, func(r timerecord.PlannedRecord) float64 { return r.PlannedHours }),
	}
	if len(records) > 0 {
		m.FirstRecord = records[0].Date
		m.LastRecord = records[0].Date
		for _, r := range records {
			if r.Date.Before(m.FirstRecord) {
				m.FirstRecord = r.Date
			}
			if r.Date.After(m.LastRecord) {
				m.LastRecord = r.Date
			}
		}
		m.DaysSpan = int(m.LastRecord.Sub(m.FirstRecord).Hours() / 24)
	}
	if hasRates {
		weighted := lo.SumBy(records, func(r timerecord.PlannedRecord) float64 { return r.PlannedRate * r.PlannedHours })
		m.AveragePlannedRate = safeDiv(weighted, m.TotalPlannedHours)
		m.TotalPlannedRevenue = weighted
	}
	return m
}

// PlannedComparison compares actual and planned totals at summary level.
type PlannedComparison struct {
	TotalActualHours  float64
	TotalPlannedHours float64
	HoursVariance     float64
	VariancePct       float64

	ActualProjects      int
	PlannedProjects     int
	CommonProjects      int
	OnlyActualProjects  int
	OnlyPlannedProjects int

	AvgEffectiveRate float64
	AvgPlannedRate   float64
	RateVariance     float64
	RateVariancePct  float64
}

// ComparePlanned computes the summary-level actual-vs-planned comparison.
// Rates are duration-weighted averages over each batch, not means of means.
func ComparePlanned(records []timerecord.Record, schema timerecord.Schema, planned []timerecord.PlannedRecord, hasRates bool) PlannedComparison {
	actualSummary := Summarize(records, schema)
	plannedSummary := SummarizePlanned(planned, hasRates)

	c := PlannedComparison{
		TotalActualHours:  actualSummary.TotalHours,
		TotalPlannedHours: plannedSummary.TotalPlannedHours,
	}
	c.HoursVariance = c.TotalActualHours - c.TotalPlannedHours
	c.VariancePct = safePct(c.HoursVariance, c.TotalPlannedHours)

	actualProjects := lo.Uniq(lo.Map(records, func(r timerecord.Record, _ int) string { return r.ProjectNumber }))
	plannedProjects := lo.Uniq(lo.Map(planned, func(r timerecord.PlannedRecord, _ int) string { return r.ProjectNumber }))
	c.ActualProjects = len(actualProjects)
	c.PlannedProjects = len(plannedProjects)
	inActual := lo.SliceToMap(actualProjects, func(p string) (string, struct{}) { return p, struct{}{} })
	for _, p := range plannedProjects {
		if _, ok := inActual[p]; ok {
			c.CommonProjects++
		}
	}
	c.OnlyActualProjects = c.ActualProjects - c.CommonProjects
	c.OnlyPlannedProjects = c.PlannedProjects - c.CommonProjects

	if schema != timerecord.SchemaHoursOnly && hasRates {
		c.AvgEffectiveRate = actualSummary.EffectiveRate
		c.AvgPlannedRate = plannedSummary.AveragePlannedRate
		c.RateVariance = c.AvgEffectiveRate - c.AvgPlannedRate
		c.RateVariancePct = safePct(c.RateVariance, c.AvgPlannedRate)
	}
	return c
}

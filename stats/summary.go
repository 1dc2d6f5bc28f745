package stats

import (
	"time"

	lo "github.com/samber/lo"

	"agency-stats/domain/timerecord"
)

// SummaryMetrics is the headline block computed over a whole record set.
type SummaryMetrics struct {
	TotalEntries    int
	UniqueCustomers int
	UniqueProjects  int
	UniquePeople    int

	TotalHours         float64
	TotalBillableHours float64
	BillabilityPct     float64

	FirstRecord  time.Time
	LastRecord   time.Time
	YearsBetween float64

	TotalRevenue         float64
	TotalCost            float64
	TotalProfit          float64
	ProfitMarginPct      float64
	AvgRevenuePerProject float64
	BillableRate         float64
	EffectiveRate        float64
}

// Summarize computes the headline metrics for a record batch.
func Summarize(records []timerecord.Record, schema timerecord.Schema) SummaryMetrics {
	m := SummaryMetrics{
		TotalEntries:    len(records),
		UniqueCustomers: distinctCount(records, func(r timerecord.Record) string { return r.CustomerNumber }),
		UniqueProjects:  distinctCount(records, func(r timerecord.Record) string { return r.ProjectNumber }),
		UniquePeople:    distinctCount(records, func(r timerecord.Record) string { return r.Person }),

		TotalHours:         lo.SumBy(records, func(r timerecord.Record) float64 { return r.HoursWorked }),
		TotalBillableHours: lo.SumBy(records, func(r timerecord.Record) float64 { return r.BillableHours }),
	}
	m.BillabilityPct = safePct(m.TotalBillableHours, m.TotalHours)

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
		m.YearsBetween = m.LastRecord.Sub(m.FirstRecord).Hours() / 24 / 365.25
	}

	switch schema {
	case timerecord.SchemaFullFinancials:
		m.TotalRevenue = lo.SumBy(records, func(r timerecord.Record) float64 { return r.Fee })
		m.TotalCost = lo.SumBy(records, func(r timerecord.Record) float64 { return r.Cost })
		m.TotalProfit = lo.SumBy(records, func(r timerecord.Record) float64 { return r.Profit })
	case timerecord.SchemaRateOnly:
		m.TotalRevenue = lo.SumBy(records, func(r timerecord.Record) float64 {
			if r.BillableHours > 0 {
				return r.BillableHours * r.HourlyRate
			}
			return 0
		})
	}
	m.ProfitMarginPct = safePct(m.TotalProfit, m.TotalRevenue)
	m.AvgRevenuePerProject = safeDiv(m.TotalRevenue, float64(m.UniqueProjects))
	m.BillableRate = safeDiv(m.TotalRevenue, m.TotalBillableHours)
	m.EffectiveRate = safeDiv(m.TotalRevenue, m.TotalHours)
	return m
}

func distinctCount[T any](items []T, key func(T) string) int {
	return len(lo.Uniq(lo.Map(items, func(it T, _ int) string { return key(it) })))
}

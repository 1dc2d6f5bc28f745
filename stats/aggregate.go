package stats

import (
	"sort"
	"strings"

	"agency-stats/domain/timerecord"
)

// Row is one line of a dimensional rollup: the grouping values, the distinct
// counts the dimension asked for, and the metric set shared by every report
// table. Financial fields are zero until EnrichFinancials runs.
type Row struct {
	Values map[string]string
	Counts map[string]int

	HoursWorked      float64
	BillableHours    float64
	NonBillableHours float64
	BillabilityPct   float64

	Revenue         float64
	TotalCost       float64
	TotalProfit     float64
	ProfitMarginPct float64
	BillableRate    float64
	EffectiveRate   float64

	fin finSums
}

// finSums carries the per-group financial source sums so EnrichFinancials can
// be re-applied without touching the records again.
type finSums struct {
	fee         float64
	cost        float64
	profit      float64
	rateRevenue float64
}

type accum struct {
	hours    float64
	billable float64
	fin      finSums
	distinct map[string]map[string]struct{}
}

func newAccum(counts []Field) *accum {
	a := &accum{distinct: make(map[string]map[string]struct{}, len(counts))}
	for _, c := range counts {
		a.distinct[c.Name] = make(map[string]struct{})
	}
	return a
}

func (a *accum) add(r timerecord.Record, counts []Field) {
	a.hours += r.HoursWorked
	a.billable += r.BillableHours
	a.fin.fee += r.Fee
	a.fin.cost += r.Cost
	a.fin.profit += r.Profit
	if r.BillableHours > 0 {
		// Rate on a non-billable record never produces revenue.
		a.fin.rateRevenue += r.BillableHours * r.HourlyRate
	}
	for _, c := range counts {
		a.distinct[c.Name][c.Value(r)] = struct{}{}
	}
}

func (a *accum) row(values map[string]string) Row {
	counts := make(map[string]int, len(a.distinct))
	for name, set := range a.distinct {
		counts[name] = len(set)
	}
	return Row{
		Values:           values,
		Counts:           counts,
		HoursWorked:      a.hours,
		BillableHours:    a.billable,
		NonBillableHours: a.hours - a.billable,
		BillabilityPct:   safePct(a.billable, a.hours),
		fin:              a.fin,
	}
}

// Aggregate groups records by the dimension's key fields and produces one row
// per distinct key combination. A group is never dropped for having zero
// billable hours; filtering is the caller's business. Empty input yields an
// empty result. Rows come back in first-seen key order, which downstream
// sorting uses as its tie-break.
func Aggregate(records []timerecord.Record, dim Dimension) []Row {
	var order []string
	groups := make(map[string]*accum)
	values := make(map[string]map[string]string)

	keyParts := make([]string, len(dim.Keys))
	for _, r := range records {
		for i, k := range dim.Keys {
			keyParts[i] = k.Value(r)
		}
		key := strings.Join(keyParts, "\x1f")
		a, ok := groups[key]
		if !ok {
			a = newAccum(dim.Counts)
			groups[key] = a
			order = append(order, key)
			vals := make(map[string]string, len(dim.Keys))
			for i, k := range dim.Keys {
				vals[k.Name] = keyParts[i]
			}
			values[key] = vals
		}
		a.add(r, dim.Counts)
	}

	rows := make([]Row, 0, len(order))
	for _, key := range order {
		rows = append(rows, groups[key].row(values[key]))
	}
	return rows
}

// MonthRow is one calendar-month bucket of the monthly rollup.
type MonthRow struct {
	Bucket    timerecord.YearMonth
	MonthName string
	SortKey   string
	Row
}

var monthCounts = []Field{cntProjects, cntCustomers, cntPeople}

// AggregateByMonth buckets records by calendar year+month and returns the
// rollup in chronological order.
func AggregateByMonth(records []timerecord.Record) []MonthRow {
	var order []timerecord.YearMonth
	groups := make(map[timerecord.YearMonth]*accum)

	for _, r := range records {
		b := timerecord.BucketOf(r.Date)
		a, ok := groups[b]
		if !ok {
			a = newAccum(monthCounts)
			groups[b] = a
			order = append(order, b)
		}
		a.add(r, monthCounts)
	}

	rows := make([]MonthRow, 0, len(order))
	for _, b := range order {
		rows = append(rows, MonthRow{
			Bucket:    b,
			MonthName: b.MonthName(),
			SortKey:   b.SortKey(),
			Row:       groups[b].row(map[string]string{"Year": b.SortKey()[:4], "Month": b.MonthName()}),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SortKey < rows[j].SortKey })
	return rows
}

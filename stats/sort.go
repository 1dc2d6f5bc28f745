package stats

import "sort"

// Metric names a sortable report column.
type Metric string

const (
	MetricHours    Metric = "Hours worked"
	MetricBillable Metric = "Billable hours"
	MetricRevenue  Metric = "Revenue"
	MetricCost     Metric = "Total cost"
	MetricProfit   Metric = "Total profit"
)

// ParseMetric maps a short metric name (hours, billable, revenue, cost,
// profit) to its Metric. Unknown names fall back to hours worked.
func ParseMetric(s string) Metric {
	switch s {
	case "billable":
		return MetricBillable
	case "revenue":
		return MetricRevenue
	case "cost":
		return MetricCost
	case "profit":
		return MetricProfit
	default:
		return MetricHours
	}
}

func metricValue(r Row, m Metric) float64 {
	switch m {
	case MetricBillable:
		return r.BillableHours
	case MetricRevenue:
		return r.Revenue
	case MetricCost:
		return r.TotalCost
	case MetricProfit:
		return r.TotalProfit
	default:
		return r.HoursWorked
	}
}

// SortRows orders rows by the chosen metric descending. The sort is stable,
// so ties keep the aggregator's first-seen key order.
func SortRows(rows []Row, m Metric) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return metricValue(out[i], m) > metricValue(out[j], m)
	})
	return out
}

// TopN returns the n largest rows by the chosen metric.
func TopN(rows []Row, m Metric, n int) []Row {
	sorted := SortRows(rows, m)
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

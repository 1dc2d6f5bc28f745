package csv

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"agency-stats/domain/capacity"
	"agency-stats/stats"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// slug turns a display column name into a csv header, e.g.
// "Number of projects" -> "number_of_projects".
func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

var metricHeaders = []string{
	"hours_worked", "billable_hours", "non_billable_hours", "billability_pct",
	"revenue", "total_cost", "total_profit", "profit_margin_pct",
	"billable_rate", "effective_rate",
}

func metricFields(r stats.Row) []string {
	return []string{
		formatFloat(r.HoursWorked),
		formatFloat(r.BillableHours),
		formatFloat(r.NonBillableHours),
		formatFloat(r.BillabilityPct),
		formatFloat(r.Revenue),
		formatFloat(r.TotalCost),
		formatFloat(r.TotalProfit),
		formatFloat(r.ProfitMarginPct),
		formatFloat(r.BillableRate),
		formatFloat(r.EffectiveRate),
	}
}

func writeCSV(path string, headers []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteDimensionCSV writes one dimensional rollup: key columns, distinct
// counts and the shared metric set.
func WriteDimensionCSV(path string, dim stats.Dimension, rows []stats.Row) error {
	headers := make([]string, 0, len(dim.Keys)+len(dim.Counts)+len(metricHeaders))
	for _, k := range dim.Keys {
		headers = append(headers, slug(k.Name))
	}
	for _, c := range dim.Counts {
		headers = append(headers, slug(c.Name))
	}
	headers = append(headers, metricHeaders...)

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, 0, len(headers))
		for _, k := range dim.Keys {
			row = append(row, r.Values[k.Name])
		}
		for _, c := range dim.Counts {
			row = append(row, strconv.Itoa(r.Counts[c.Name]))
		}
		row = append(row, metricFields(r)...)
		out = append(out, row)
	}
	return writeCSV(path, headers, out)
}

// WriteMonthsCSV writes the monthly rollup in chronological order.
func WriteMonthsCSV(path string, rows []stats.MonthRow) error {
	headers := append([]string{"year", "month", "month_name", "sort_key",
		"number_of_projects", "number_of_customers", "number_of_people"}, metricHeaders...)
	out := make([][]string, 0, len(rows))
	for _, m := range rows {
		row := []string{
			strconv.Itoa(m.Bucket.Year),
			strconv.Itoa(m.Bucket.Month),
			m.MonthName,
			m.SortKey,
			strconv.Itoa(m.Counts["Number of projects"]),
			strconv.Itoa(m.Counts["Number of customers"]),
			strconv.Itoa(m.Counts["Number of people"]),
		}
		row = append(row, metricFields(m.Row)...)
		out = append(out, row)
	}
	return writeCSV(path, headers, out)
}

var varianceHeaders = []string{
	"planned_hours", "planned_rate", "planned_revenue",
	"hours_variance", "variance_pct",
	"rate_variance", "rate_variance_pct",
	"revenue_variance", "revenue_variance_pct",
}

// WriteMergedProjectsCSV writes the planned-vs-actual project table.
func WriteMergedProjectsCSV(path string, rows []stats.MergedProjectRow) error {
	headers := append([]string{"project_number", "project", "project_type",
		"hours_worked", "billable_hours", "non_billable_hours", "billability_pct",
		"number_of_people", "revenue", "effective_rate", "billable_rate"}, varianceHeaders...)
	out := make([][]string, 0, len(rows))
	for _, m := range rows {
		out = append(out, []string{
			m.ProjectNumber, m.ProjectName, m.ProjectType,
			formatFloat(m.HoursWorked), formatFloat(m.BillableHours),
			formatFloat(m.NonBillableHours), formatFloat(m.BillabilityPct),
			strconv.Itoa(m.NumberOfPeople),
			formatFloat(m.Revenue), formatFloat(m.EffectiveRate), formatFloat(m.BillableRate),
			formatFloat(m.PlannedHours), formatFloat(m.PlannedRate), formatFloat(m.PlannedRevenue),
			formatFloat(m.HoursVariance), formatFloat(m.VariancePct),
			formatFloat(m.RateVariance), formatFloat(m.RateVariancePct),
			formatFloat(m.RevenueVariance), formatFloat(m.RevenueVariancePct),
		})
	}
	return writeCSV(path, headers, out)
}

// WriteMergedMonthsCSV writes the planned-vs-actual monthly table.
func WriteMergedMonthsCSV(path string, rows []stats.MergedMonthRow) error {
	headers := append([]string{"year", "month", "month_name", "sort_key",
		"hours_worked", "billable_hours", "number_of_people",
		"revenue", "effective_rate", "billable_rate"}, varianceHeaders...)
	out := make([][]string, 0, len(rows))
	for _, m := range rows {
		out = append(out, []string{
			strconv.Itoa(m.Bucket.Year), strconv.Itoa(m.Bucket.Month), m.MonthName, m.SortKey,
			formatFloat(m.HoursWorked), formatFloat(m.BillableHours),
			strconv.Itoa(m.NumberOfPeople),
			formatFloat(m.Revenue), formatFloat(m.EffectiveRate), formatFloat(m.BillableRate),
			formatFloat(m.PlannedHours), formatFloat(m.PlannedRate), formatFloat(m.PlannedRevenue),
			formatFloat(m.HoursVariance), formatFloat(m.VariancePct),
			formatFloat(m.RateVariance), formatFloat(m.RateVariancePct),
			formatFloat(m.RevenueVariance), formatFloat(m.RevenueVariancePct),
		})
	}
	return writeCSV(path, headers, out)
}

// WriteForecastCSV writes the accumulated hours forecast series.
func WriteForecastCSV(path string, points []stats.ForecastPoint) error {
	headers := []string{"year", "month", "month_name", "sort_key", "time_period", "month_value", "accumulated_forecast"}
	out := make([][]string, 0, len(points))
	for _, p := range points {
		out = append(out, []string{
			strconv.Itoa(p.Bucket.Year), strconv.Itoa(p.Bucket.Month), p.MonthName, p.SortKey,
			string(p.Period), formatFloat(p.MonthValue), formatFloat(p.Accumulated),
		})
	}
	return writeCSV(path, headers, out)
}

// WriteCapacityCSV writes per-person weekly capacity records.
func WriteCapacityCSV(path string, records []capacity.Record) error {
	headers := []string{"week_start", "person", "scheduled_hours", "absence_hours",
		"absence_types", "available_capacity", "billable_target", "target_billable_hours"}
	out := make([][]string, 0, len(records))
	for _, r := range records {
		out = append(out, []string{
			formatDate(r.WeekStart), r.Person,
			formatFloat(r.ScheduledHours), formatFloat(r.AbsenceHours), r.AbsenceTypes,
			formatFloat(r.AvailableCapacity), formatFloat(r.BillableTarget), formatFloat(r.TargetBillableHours),
		})
	}
	return writeCSV(path, headers, out)
}

// WriteCapacityPeopleCSV writes person-level capacity summaries.
func WriteCapacityPeopleCSV(path string, rows []capacity.PersonSummary) error {
	headers := []string{"person", "scheduled_hours", "absence_hours", "available_capacity",
		"target_billable_hours", "period_start", "period_end", "period_count",
		"absence_rate", "capacity_utilization_rate"}
	out := make([][]string, 0, len(rows))
	for _, s := range rows {
		out = append(out, []string{
			s.Person,
			formatFloat(s.ScheduledHours), formatFloat(s.AbsenceHours),
			formatFloat(s.AvailableCapacity), formatFloat(s.TargetBillableHours),
			formatDate(s.PeriodStart), formatDate(s.PeriodEnd), strconv.Itoa(s.PeriodCount),
			formatFloat(s.AbsenceRate), formatFloat(s.CapacityUtilizationRate),
		})
	}
	return writeCSV(path, headers, out)
}

// WriteWeeklyActualsCSV writes logged hours rolled up per person and week.
func WriteWeeklyActualsCSV(path string, rows []stats.WeeklyActual) error {
	headers := []string{"person", "week_start", "hours_worked", "billable_hours"}
	out := make([][]string, 0, len(rows))
	for _, w := range rows {
		out = append(out, []string{
			w.Person, formatDate(w.WeekStart), formatFloat(w.HoursWorked), formatFloat(w.BillableHours),
		})
	}
	return writeCSV(path, headers, out)
}

// WriteUtilizationCSV writes per-person utilization rates.
func WriteUtilizationCSV(path string, rows []stats.UtilizationRow) error {
	headers := []string{"person", "days_worked", "potential_hours", "actual_hours",
		"billable_hours", "utilization_pct", "billable_utilization_pct",
		"revenue", "total_cost", "total_profit", "billable_rate", "effective_rate"}
	out := make([][]string, 0, len(rows))
	for _, u := range rows {
		out = append(out, []string{
			u.Person, strconv.Itoa(u.DaysWorked),
			formatFloat(u.PotentialHours), formatFloat(u.ActualHours), formatFloat(u.BillableHours),
			formatFloat(u.UtilizationPct), formatFloat(u.BillableUtilizationPct),
			formatFloat(u.Revenue), formatFloat(u.TotalCost), formatFloat(u.TotalProfit),
			formatFloat(u.BillableRate), formatFloat(u.EffectiveRate),
		})
	}
	return writeCSV(path, headers, out)
}

// WriteHierarchyCSV writes the two-level customer→project rollup.
func WriteHierarchyCSV(path string, rows []stats.HierarchyRow) error {
	headers := []string{"id", "parent", "level", "customer_number", "customer_name",
		"project_number", "project",
		"hours_worked", "billable_hours", "non_billable_hours", "billability_pct",
		"number_of_projects", "number_of_people",
		"revenue", "total_cost", "total_profit", "profit_margin_pct",
		"billable_rate", "effective_rate"}
	out := make([][]string, 0, len(rows))
	for _, h := range rows {
		out = append(out, []string{
			h.ID, h.Parent, h.Level, h.CustomerNumber, h.CustomerName,
			h.ProjectNumber, h.ProjectName,
			formatFloat(h.HoursWorked), formatFloat(h.BillableHours),
			formatFloat(h.NonBillableHours), formatFloat(h.BillabilityPct),
			strconv.Itoa(h.NumberOfProjects), strconv.Itoa(h.NumberOfPeople),
			formatFloat(h.Revenue), formatFloat(h.TotalCost), formatFloat(h.TotalProfit),
			formatFloat(h.ProfitMarginPct), formatFloat(h.BillableRate), formatFloat(h.EffectiveRate),
		})
	}
	return writeCSV(path, headers, out)
}

// WriteSummaryCSV writes the headline metrics as key/value rows.
func WriteSummaryCSV(path string, m stats.SummaryMetrics) error {
	rows := [][]string{
		{"total_entries", strconv.Itoa(m.TotalEntries)},
		{"unique_customers", strconv.Itoa(m.UniqueCustomers)},
		{"unique_projects", strconv.Itoa(m.UniqueProjects)},
		{"unique_people", strconv.Itoa(m.UniquePeople)},
		{"total_hours", formatFloat(m.TotalHours)},
		{"total_billable_hours", formatFloat(m.TotalBillableHours)},
		{"billability_pct", formatFloat(m.BillabilityPct)},
		{"first_record", formatDate(m.FirstRecord)},
		{"last_record", formatDate(m.LastRecord)},
		{"years_between", formatFloat(m.YearsBetween)},
		{"total_revenue", formatFloat(m.TotalRevenue)},
		{"total_cost", formatFloat(m.TotalCost)},
		{"total_profit", formatFloat(m.TotalProfit)},
		{"profit_margin_pct", formatFloat(m.ProfitMarginPct)},
		{"avg_revenue_per_project", formatFloat(m.AvgRevenuePerProject)},
		{"billable_rate", formatFloat(m.BillableRate)},
		{"effective_rate", formatFloat(m.EffectiveRate)},
	}
	return writeCSV(path, []string{"metric", "value"}, rows)
}

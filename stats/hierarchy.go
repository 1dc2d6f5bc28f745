package stats

import "agency-stats/domain/timerecord"

// Hierarchy levels for the customer→project rollup.
const (
	LevelCustomer = "Customer"
	LevelProject  = "Project"
)

// HierarchyRow is one node of the two-level customer→project rollup. Customer
// rows are roots (Parent empty); project rows point at their customer.
type HierarchyRow struct {
	ID     string
	Parent string
	Level  string

	CustomerNumber string
	CustomerName   string
	ProjectNumber  string
	ProjectName    string

	HoursWorked      float64
	BillableHours    float64
	NonBillableHours float64
	BillabilityPct   float64
	NumberOfProjects int
	NumberOfPeople   int
	Revenue          float64
	TotalCost        float64
	TotalProfit      float64
	ProfitMarginPct  float64
	BillableRate     float64
	EffectiveRate    float64
}

// CustomerProjectHierarchy builds the two-level rollup consumed by
// hierarchical views: every customer with its totals, then every project
// keyed under its customer.
func CustomerProjectHierarchy(records []timerecord.Record, schema timerecord.Schema) []HierarchyRow {
	customers := EnrichFinancials(Aggregate(records, Customer), schema)
	projects := EnrichFinancials(Aggregate(records, CustomerProject), schema)

	peopleByCustomer := make(map[string]map[string]struct{})
	for _, r := range records {
		if peopleByCustomer[r.CustomerNumber] == nil {
			peopleByCustomer[r.CustomerNumber] = make(map[string]struct{})
		}
		peopleByCustomer[r.CustomerNumber][r.Person] = struct{}{}
	}

	rows := make([]HierarchyRow, 0, len(customers)+len(projects))
	for _, c := range customers {
		num := c.Values["Customer number"]
		rows = append(rows, HierarchyRow{
			ID:               num,
			Level:            LevelCustomer,
			CustomerNumber:   num,
			CustomerName:     c.Values["Customer name"],
			HoursWorked:      c.HoursWorked,
			BillableHours:    c.BillableHours,
			NonBillableHours: c.NonBillableHours,
			BillabilityPct:   c.BillabilityPct,
			NumberOfProjects: c.Counts["Number of projects"],
			NumberOfPeople:   len(peopleByCustomer[num]),
			Revenue:          c.Revenue,
			TotalCost:        c.TotalCost,
			TotalProfit:      c.TotalProfit,
			ProfitMarginPct:  c.ProfitMarginPct,
			BillableRate:     c.BillableRate,
			EffectiveRate:    c.EffectiveRate,
		})
	}
	for _, p := range projects {
		custNum := p.Values["Customer number"]
		projNum := p.Values["Project number"]
		rows = append(rows, HierarchyRow{
			ID:               custNum + "-" + projNum,
			Parent:           custNum,
			Level:            LevelProject,
			CustomerNumber:   custNum,
			CustomerName:     p.Values["Customer name"],
			ProjectNumber:    projNum,
			ProjectName:      p.Values["Project"],
			HoursWorked:      p.HoursWorked,
			BillableHours:    p.BillableHours,
			NonBillableHours: p.NonBillableHours,
			BillabilityPct:   p.BillabilityPct,
			NumberOfPeople:   p.Counts["Number of people"],
			Revenue:          p.Revenue,
			TotalCost:        p.TotalCost,
			TotalProfit:      p.TotalProfit,
			ProfitMarginPct:  p.ProfitMarginPct,
			BillableRate:     p.BillableRate,
			EffectiveRate:    p.EffectiveRate,
		})
	}
	return rows
}

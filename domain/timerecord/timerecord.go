package timerecord

import "time"

// Record represents one logged work entry (one person/project/day).
// Inputs are read-only: the engine never mutates records, only derives from them.
type Record struct {
	Date           time.Time
	CustomerNumber string
	CustomerName   string
	ProjectNumber  string
	ProjectName    string
	ProjectType    string
	PriceModel     string
	Phase          string
	Activity       string
	Person         string
	PersonType     string // "Internal" or "External"

	HoursWorked   float64
	BillableHours float64

	// Financial source fields. Which of these are meaningful depends on the
	// Schema resolved at ingestion; the rest stay zero.
	HourlyRate float64
	Fee        float64
	Cost       float64
	Profit     float64
}

// PlannedRecord represents one forward-looking budget entry. It is loaded from
// a separate source than actual records and may extend past their last date.
type PlannedRecord struct {
	Date          time.Time
	Person        string
	PersonType    string
	ProjectNumber string
	ProjectName   string
	PlannedHours  float64
	PlannedRate   float64 // only meaningful when the batch carries rates
}

// Schema tags which financial source fields a record batch carries.
// Resolved once when the batch is read, then dispatched on everywhere,
// instead of re-probing field presence per computation.
type Schema int

const (
	// SchemaHoursOnly carries no financial data; all monetary metrics are 0.
	SchemaHoursOnly Schema = iota
	// SchemaRateOnly carries an hourly rate per record; revenue is derived
	// from billable hours, cost and profit are unknown.
	SchemaRateOnly
	// SchemaFullFinancials carries precomputed fee, cost and profit per record.
	SchemaFullFinancials
)

func (s Schema) String() string {
	switch s {
	case SchemaRateOnly:
		return "rate-only"
	case SchemaFullFinancials:
		return "full-financials"
	default:
		return "hours-only"
	}
}

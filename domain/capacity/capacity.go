package capacity

import (
	"sort"
	"time"
)

// Config is a client-specific absence policy: which absence types reduce
// capacity and which are only tracked for display. Loaded once, read-only.
type Config struct {
	// AbsenceTypes maps absence-type-id -> human readable label.
	AbsenceTypes map[string]string `yaml:"absence_types"`

	AbsenceRules struct {
		IncludeInCapacityReduction   []string `yaml:"include_in_capacity_reduction"`
		ExcludeFromCapacityReduction []string `yaml:"exclude_from_capacity_reduction"`
	} `yaml:"absence_rules"`

	// BillableTarget is the share of available capacity expected to be
	// billable, e.g. 0.80. Zero means use the default.
	BillableTarget float64 `yaml:"billable_target"`

	// DefaultInclude decides what happens to absence-type-ids that appear in
	// the data but in neither rule set. Unset means true: unknown absences
	// reduce capacity.
	DefaultInclude *bool `yaml:"default_include"`
}

// DefaultBillableTarget is applied when the config does not set one.
const DefaultBillableTarget = 0.80

// Target returns the billable target ratio to apply.
func (c Config) Target() float64 {
	if c.BillableTarget > 0 {
		return c.BillableTarget
	}
	return DefaultBillableTarget
}

// IncludesByDefault reports how an absence-type-id unmentioned in either rule
// set is treated.
func (c Config) IncludesByDefault() bool {
	if c.DefaultInclude == nil {
		return true
	}
	return *c.DefaultInclude
}

// Label returns the human readable name for an absence-type-id, falling back
// to the id itself.
func (c Config) Label(id string) string {
	if name, ok := c.AbsenceTypes[id]; ok && name != "" {
		return name
	}
	return id
}

// Includes reports whether the absence type reduces capacity under this policy.
func (c Config) Includes(id string) bool {
	for _, inc := range c.AbsenceRules.IncludeInCapacityReduction {
		if inc == id {
			return true
		}
	}
	for _, exc := range c.AbsenceRules.ExcludeFromCapacityReduction {
		if exc == id {
			return false
		}
	}
	return c.IncludesByDefault()
}

// RuleIDs returns every absence-type-id the config mentions, deduplicated,
// in a stable order.
func (c Config) RuleIDs() []string {
	seen := map[string]struct{}{}
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	typeIDs := make([]string, 0, len(c.AbsenceTypes))
	for id := range c.AbsenceTypes {
		typeIDs = append(typeIDs, id)
	}
	sort.Strings(typeIDs)
	for _, id := range typeIDs {
		add(id)
	}
	for _, id := range c.AbsenceRules.IncludeInCapacityReduction {
		add(id)
	}
	for _, id := range c.AbsenceRules.ExcludeFromCapacityReduction {
		add(id)
	}
	return ids
}

// WeeklyRow is one raw person/week source row: the agreed schedule plus
// absence hours keyed by absence-type-id. Which ids occur is data driven.
type WeeklyRow struct {
	WeekStart      time.Time
	Person         string
	ScheduledHours float64
	AbsenceHours   map[string]float64
}

// Record is one normalized person/week capacity entry.
type Record struct {
	WeekStart           time.Time
	Person              string
	ScheduledHours      float64
	AbsenceHours        float64 // included types only
	AbsenceTypes        string  // display description of what was counted
	AvailableCapacity   float64 // max(0, scheduled - absence)
	BillableTarget      float64
	TargetBillableHours float64
}

// PersonSummary aggregates capacity records per person over all weeks.
type PersonSummary struct {
	Person                  string
	ScheduledHours          float64
	AbsenceHours            float64
	AvailableCapacity       float64
	TargetBillableHours     float64
	PeriodStart             time.Time
	PeriodEnd               time.Time
	PeriodCount             int
	AbsenceRate             float64 // absence / scheduled * 100
	CapacityUtilizationRate float64 // available / scheduled * 100
}

// Summary holds totals over a set of capacity records.
type Summary struct {
	People             int
	Periods            int
	ScheduledHours     float64
	AbsenceHours       float64
	AvailableCapacity  float64
	OverallAbsenceRate float64
	PeriodStart        time.Time
	PeriodEnd          time.Time
}

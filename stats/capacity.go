package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	lo "github.com/samber/lo"

	"agency-stats/domain/capacity"
	"agency-stats/domain/timerecord"
)

// NormalizeCapacity converts raw weekly schedule/absence rows into per-person
// weekly capacity records under the given policy. Only absence types the
// policy includes reduce capacity; excluded types are kept in the display
// description but never subtracted. Ids mentioned in neither rule set follow
// the policy's default (include, unless configured otherwise).
//
// Data-quality mismatches between config and data are never fatal: they come
// back as a warnings list next to the result.
func NormalizeCapacity(rows []capacity.WeeklyRow, cfg capacity.Config) ([]capacity.Record, []string) {
	target := cfg.Target()

	seenIDs := make(map[string]struct{})
	records := make([]capacity.Record, 0, len(rows))
	for _, w := range rows {
		var absence float64
		var included, excluded []string
		for _, id := range sortedKeys(w.AbsenceHours) {
			seenIDs[id] = struct{}{}
			if cfg.Includes(id) {
				absence += w.AbsenceHours[id]
				included = append(included, cfg.Label(id))
			} else {
				excluded = append(excluded, cfg.Label(id))
			}
		}

		available := w.ScheduledHours - absence
		if available < 0 {
			available = 0
		}
		records = append(records, capacity.Record{
			WeekStart:           w.WeekStart,
			Person:              w.Person,
			ScheduledHours:      w.ScheduledHours,
			AbsenceHours:        absence,
			AbsenceTypes:        describeAbsence(included, excluded),
			AvailableCapacity:   available,
			BillableTarget:      target,
			TargetBillableHours: available * target,
		})
	}

	return records, capacityWarnings(cfg, seenIDs)
}

func describeAbsence(included, excluded []string) string {
	if len(included) == 0 {
		return "No absence affecting capacity"
	}
	desc := "Included: " + strings.Join(lo.Uniq(included), ", ")
	if len(excluded) > 0 {
		desc += " | Excluded: " + strings.Join(lo.Uniq(excluded), ", ")
	}
	return desc
}

func capacityWarnings(cfg capacity.Config, seenIDs map[string]struct{}) []string {
	var warnings []string
	for _, id := range cfg.RuleIDs() {
		if _, ok := seenIDs[id]; !ok {
			warnings = append(warnings, fmt.Sprintf("configuration references absence type %q not found in weekly data", id))
		}
	}
	configured := lo.SliceToMap(cfg.RuleIDs(), func(id string) (string, struct{}) { return id, struct{}{} })
	for _, id := range sortedKeys(seenIDs) {
		if _, ok := configured[id]; !ok {
			warnings = append(warnings, fmt.Sprintf("weekly data contains absence type %q not in configuration", id))
		}
	}
	return warnings
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

// PersonCapacity aggregates capacity records per person over all their weeks.
func PersonCapacity(records []capacity.Record) []capacity.PersonSummary {
	var order []string
	byPerson := make(map[string]*capacity.PersonSummary)

	for _, r := range records {
		s, ok := byPerson[r.Person]
		if !ok {
			s = &capacity.PersonSummary{
				Person:      r.Person,
				PeriodStart: r.WeekStart,
				PeriodEnd:   r.WeekStart,
			}
			byPerson[r.Person] = s
			order = append(order, r.Person)
		}
		s.ScheduledHours += r.ScheduledHours
		s.AbsenceHours += r.AbsenceHours
		s.AvailableCapacity += r.AvailableCapacity
		s.TargetBillableHours += r.TargetBillableHours
		s.PeriodCount++
		if r.WeekStart.Before(s.PeriodStart) {
			s.PeriodStart = r.WeekStart
		}
		if r.WeekStart.After(s.PeriodEnd) {
			s.PeriodEnd = r.WeekStart
		}
	}

	out := make([]capacity.PersonSummary, 0, len(order))
	for _, person := range order {
		s := byPerson[person]
		s.AbsenceRate = safePct(s.AbsenceHours, s.ScheduledHours)
		s.CapacityUtilizationRate = safePct(s.AvailableCapacity, s.ScheduledHours)
		out = append(out, *s)
	}
	return out
}

// SummarizeCapacity computes totals over a set of capacity records.
func SummarizeCapacity(records []capacity.Record) capacity.Summary {
	s := capacity.Summary{
		People:            distinctCount(records, func(r capacity.Record) string { return r.Person }),
		Periods:           len(records),
		ScheduledHours:    lo.SumBy(records, func(r capacity.Record) float64 { return r.ScheduledHours }),
		AbsenceHours:      lo.SumBy(records, func(r capacity.Record) float64 { return r.AbsenceHours }),
		AvailableCapacity: lo.SumBy(records, func(r capacity.Record) float64 { return r.AvailableCapacity }),
	}
	s.OverallAbsenceRate = safePct(s.AbsenceHours, s.ScheduledHours)
	if len(records) > 0 {
		s.PeriodStart = records[0].WeekStart
		s.PeriodEnd = records[0].WeekStart
		for _, r := range records {
			if r.WeekStart.Before(s.PeriodStart) {
				s.PeriodStart = r.WeekStart
			}
			if r.WeekStart.After(s.PeriodEnd) {
				s.PeriodEnd = r.WeekStart
			}
		}
	}
	return s
}

// WeeklyActual is a person's logged hours rolled up to a Monday-keyed week,
// so actuals line up against weekly capacity records.
type WeeklyActual struct {
	Person        string
	WeekStart     time.Time
	HoursWorked   float64
	BillableHours float64
}

// AggregateWeekly rolls time records up per person and week.
func AggregateWeekly(records []timerecord.Record) []WeeklyActual {
	type key struct {
		person string
		week   time.Time
	}
	var order []key
	groups := make(map[key]*WeeklyActual)

	for _, r := range records {
		k := key{person: r.Person, week: timerecord.WeekStart(r.Date)}
		w, ok := groups[k]
		if !ok {
			w = &WeeklyActual{Person: k.person, WeekStart: k.week}
			groups[k] = w
			order = append(order, k)
		}
		w.HoursWorked += r.HoursWorked
		w.BillableHours += r.BillableHours
	}

	out := make([]WeeklyActual, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Person != out[j].Person {
			return out[i].Person < out[j].Person
		}
		return out[i].WeekStart.Before(out[j].WeekStart)
	})
	return out
}

// DefaultWorkHoursPerDay is the standard working day used when no override
// is given.
const DefaultWorkHoursPerDay = 8.0

// UtilizationRow holds a person's logged hours against their potential hours
// at a standard working day.
type UtilizationRow struct {
	Person                 string
	DaysWorked             int
	PotentialHours         float64
	ActualHours            float64
	BillableHours          float64
	UtilizationPct         float64
	BillableUtilizationPct float64
	Revenue                float64
	TotalCost              float64
	TotalProfit            float64
	BillableRate           float64
	EffectiveRate          float64
}

// UtilizationRates computes per-person utilization. Potential hours are the
// person's distinct worked days times workHoursPerDay.
func UtilizationRates(records []timerecord.Record, schema timerecord.Schema, workHoursPerDay float64) []UtilizationRow {
	personRows := EnrichFinancials(Aggregate(records, Person), schema)

	days := make(map[string]map[string]struct{})
	for _, r := range records {
		if days[r.Person] == nil {
			days[r.Person] = make(map[string]struct{})
		}
		days[r.Person][r.Date.Format("2006-01-02")] = struct{}{}
	}

	out := make([]UtilizationRow, 0, len(personRows))
	for _, p := range personRows {
		person := p.Values["Person"]
		u := UtilizationRow{
			Person:        person,
			DaysWorked:    len(days[person]),
			ActualHours:   p.HoursWorked,
			BillableHours: p.BillableHours,
			Revenue:       p.Revenue,
			TotalCost:     p.TotalCost,
			TotalProfit:   p.TotalProfit,
			BillableRate:  p.BillableRate,
			EffectiveRate: p.EffectiveRate,
		}
		u.PotentialHours = float64(u.DaysWorked) * workHoursPerDay
		u.UtilizationPct = safePct(u.ActualHours, u.PotentialHours)
		u.BillableUtilizationPct = safePct(u.BillableHours, u.PotentialHours)
		out = append(out, u)
	}
	return out
}

package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"agency-stats/domain/capacity"
	"agency-stats/domain/timerecord"
)

// ColumnError reports a required column missing from an input file. It is
// returned before any aggregation starts so the caller can fix the input.
type ColumnError struct {
	File   string
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column %s", e.File, e.Column)
}

// absencePrefix marks dynamic absence columns in weekly source files, e.g.
// "absence_illness_676657139" carries hours for absence type illness_676657139.
const absencePrefix = "absence_"

func indexMap(headers []string) map[string]int {
	m := map[string]int{}
	for i, h := range headers {
		m[strings.TrimSpace(strings.ToLower(h))] = i
	}
	return m
}

func requireColumns(file string, idx map[string]int, required []string) error {
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return &ColumnError{File: file, Column: col}
		}
	}
	return nil
}

func field(rec []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func floatField(rec []string, idx map[string]int, col string) float64 {
	s := field(rec, idx, col)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func dateField(rec []string, idx map[string]int, col string) (time.Time, error) {
	s := field(rec, idx, col)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ReadTimeRecords loads normalized time records and resolves the financial
// schema of the batch from the headers, once, so downstream computation can
// dispatch on the tag instead of re-probing column presence.
func ReadTimeRecords(path string) ([]timerecord.Record, timerecord.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, timerecord.SchemaHoursOnly, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	head, err := r.Read()
	if err != nil {
		return nil, timerecord.SchemaHoursOnly, fmt.Errorf("read %s header: %w", path, err)
	}
	idx := indexMap(head)
	required := []string{"date", "project_number", "project", "person", "hours_worked", "billable_hours"}
	if err := requireColumns(path, idx, required); err != nil {
		return nil, timerecord.SchemaHoursOnly, err
	}

	schema := timerecord.SchemaHoursOnly
	if _, ok := idx["fee"]; ok {
		schema = timerecord.SchemaFullFinancials
	} else if _, ok := idx["hourly_rate"]; ok {
		schema = timerecord.SchemaRateOnly
	}
	_, hasProjectType := idx["project_type"]

	var records []timerecord.Record
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				continue
			}
			return nil, schema, err
		}
		date, err := dateField(rec, idx, "date")
		if err != nil {
			return nil, schema, fmt.Errorf("%s: bad date %q: %w", path, field(rec, idx, "date"), err)
		}
		row := timerecord.Record{
			Date:           date,
			CustomerNumber: field(rec, idx, "customer_number"),
			CustomerName:   field(rec, idx, "customer_name"),
			ProjectNumber:  field(rec, idx, "project_number"),
			ProjectName:    field(rec, idx, "project"),
			ProjectType:    field(rec, idx, "project_type"),
			PriceModel:     field(rec, idx, "price_model"),
			Phase:          field(rec, idx, "phase"),
			Activity:       field(rec, idx, "activity"),
			Person:         field(rec, idx, "person"),
			PersonType:     field(rec, idx, "person_type"),
			HoursWorked:    floatField(rec, idx, "hours_worked"),
			BillableHours:  floatField(rec, idx, "billable_hours"),
			HourlyRate:     floatField(rec, idx, "hourly_rate"),
			Fee:            floatField(rec, idx, "fee"),
			Cost:           floatField(rec, idx, "cost"),
			Profit:         floatField(rec, idx, "profit"),
		}
		if !hasProjectType {
			row.ProjectType = "Unknown"
		}
		records = append(records, row)
	}
	return records, schema, nil
}

// ReadPlannedRecords loads planned-hours records. The second result reports
// whether the batch carried a planned rate column.
func ReadPlannedRecords(path string) ([]timerecord.PlannedRecord, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	head, err := r.Read()
	if err != nil {
		return nil, false, fmt.Errorf("read %s header: %w", path, err)
	}
	idx := indexMap(head)
	if err := requireColumns(path, idx, []string{"date", "person", "project_number", "planned_hours"}); err != nil {
		return nil, false, err
	}
	_, hasRates := idx["planned_rate"]

	var records []timerecord.PlannedRecord
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				continue
			}
			return nil, hasRates, err
		}
		date, err := dateField(rec, idx, "date")
		if err != nil {
			return nil, hasRates, fmt.Errorf("%s: bad date %q: %w", path, field(rec, idx, "date"), err)
		}
		records = append(records, timerecord.PlannedRecord{
			Date:          date,
			Person:        field(rec, idx, "person"),
			PersonType:    field(rec, idx, "person_type"),
			ProjectNumber: field(rec, idx, "project_number"),
			ProjectName:   field(rec, idx, "project"),
			PlannedHours:  floatField(rec, idx, "planned_hours"),
			PlannedRate:   floatField(rec, idx, "planned_rate"),
		})
	}
	return records, hasRates, nil
}

// ReadWeeklyRows loads raw weekly schedule rows. Absence columns are dynamic:
// any header starting with "absence_" is collected under its absence-type-id.
func ReadWeeklyRows(path string) ([]capacity.WeeklyRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", path, err)
	}
	idx := indexMap(head)
	if err := requireColumns(path, idx, []string{"period_from", "person", "scheduled_hours"}); err != nil {
		return nil, err
	}

	absenceIDs := map[string]int{}
	for col, i := range idx {
		if strings.HasPrefix(col, absencePrefix) {
			id := strings.TrimPrefix(col, absencePrefix)
			if id != "" {
				absenceIDs[id] = i
			}
		}
	}

	var rows []capacity.WeeklyRow
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				continue
			}
			return nil, err
		}
		week, err := dateField(rec, idx, "period_from")
		if err != nil {
			return nil, fmt.Errorf("%s: bad period_from %q: %w", path, field(rec, idx, "period_from"), err)
		}
		absence := make(map[string]float64, len(absenceIDs))
		for id, i := range absenceIDs {
			if i < len(rec) {
				if v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); err == nil {
					absence[id] = v
				}
			}
		}
		rows = append(rows, capacity.WeeklyRow{
			WeekStart:      week,
			Person:         field(rec, idx, "person"),
			ScheduledHours: floatField(rec, idx, "scheduled_hours"),
			AbsenceHours:   absence,
		})
	}
	return rows, nil
}

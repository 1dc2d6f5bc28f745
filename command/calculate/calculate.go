package calculate

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"agency-stats/connectors/config"
	csvconn "agency-stats/connectors/csv"
	"agency-stats/domain/capacity"
	"agency-stats/stats"
)

// capacityDefaults is used when no capacity config file exists: every absence
// type reduces capacity and the billable target stays at its default.
var capacityDefaults = capacity.Config{}

// Run executes the calculate command: it reads the raw CSVs under the data
// directory, computes every derived table and writes them back alongside the
// inputs. Planned records and capacity inputs are optional; the matching
// outputs are simply skipped when the files are absent.
func Run(args []string) error {
	flags := flag.NewFlagSet("calculate", flag.ContinueOnError)
	dataDir := flags.String("data", "data", "directory holding input CSVs and receiving outputs")
	configPath := flags.String("config", "", "capacity config YAML (defaults to <data>/capacity_config.yaml)")
	refFlag := flags.String("reference", "", "reference date for the forecast split, YYYY-MM-DD (defaults to today)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	reference := time.Now()
	if *refFlag != "" {
		var err error
		reference, err = time.Parse("2006-01-02", *refFlag)
		if err != nil {
			return fmt.Errorf("calculate: invalid -reference date %q: %w", *refFlag, err)
		}
	}

	records, schema, err := csvconn.ReadTimeRecords(filepath.Join(*dataDir, "time_records.csv"))
	if err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("Loaded %d time records (schema: %s)", len(records), schema))

	for _, dim := range stats.Dimensions {
		rows := stats.EnrichFinancials(stats.Aggregate(records, dim), schema)
		path := filepath.Join(*dataDir, "by_"+dim.Name+".csv")
		if err := csvconn.WriteDimensionCSV(path, dim, rows); err != nil {
			return err
		}
	}

	months := stats.EnrichMonths(stats.AggregateByMonth(records), schema)
	if err := csvconn.WriteMonthsCSV(filepath.Join(*dataDir, "by_month.csv"), months); err != nil {
		return err
	}

	summary := stats.Summarize(records, schema)
	if err := csvconn.WriteSummaryCSV(filepath.Join(*dataDir, "summary.csv"), summary); err != nil {
		return err
	}

	hierarchy := stats.CustomerProjectHierarchy(records, schema)
	if err := csvconn.WriteHierarchyCSV(filepath.Join(*dataDir, "customer_project_hierarchy.csv"), hierarchy); err != nil {
		return err
	}

	utilization := stats.UtilizationRates(records, schema, stats.DefaultWorkHoursPerDay)
	if err := csvconn.WriteUtilizationCSV(filepath.Join(*dataDir, "utilization.csv"), utilization); err != nil {
		return err
	}

	weekly := stats.AggregateWeekly(records)
	if err := csvconn.WriteWeeklyActualsCSV(filepath.Join(*dataDir, "weekly_actuals.csv"), weekly); err != nil {
		return err
	}

	planned, hasRates, err := csvconn.ReadPlannedRecords(filepath.Join(*dataDir, "planned_records.csv"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("No planned records, skipping planned-vs-actual tables")
	case err != nil:
		return err
	default:
		slog.Info(fmt.Sprintf("Loaded %d planned records (rates: %t)", len(planned), hasRates))
		actualProjects := stats.EnrichFinancials(stats.Aggregate(records, stats.Project), schema)
		merged := stats.MergePlannedByProject(actualProjects, stats.AggregatePlannedByProject(planned, hasRates), hasRates)
		if err := csvconn.WriteMergedProjectsCSV(filepath.Join(*dataDir, "planned_vs_actual_projects.csv"), merged); err != nil {
			return err
		}

		mergedMonths := stats.MergePlannedByMonth(months, stats.AggregatePlannedByMonth(planned, hasRates), hasRates)
		if err := csvconn.WriteMergedMonthsCSV(filepath.Join(*dataDir, "planned_vs_actual_months.csv"), mergedMonths); err != nil {
			return err
		}

		points, total := stats.AccumulateForecast(mergedMonths, reference)
		slog.Info(fmt.Sprintf("Forecast total at %s: %.2f hours", reference.Format("2006-01-02"), total))
		if err := csvconn.WriteForecastCSV(filepath.Join(*dataDir, "forecast.csv"), points); err != nil {
			return err
		}
	}

	if err := runCapacity(*dataDir, *configPath); err != nil {
		return err
	}

	slog.Info("Calculation done")
	return nil
}

func runCapacity(dataDir, configPath string) error {
	weekly, err := csvconn.ReadWeeklyRows(filepath.Join(dataDir, "weekly_schedule.csv"))
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("No weekly schedule, skipping capacity tables")
		return nil
	}
	if err != nil {
		return err
	}

	if configPath == "" {
		configPath = filepath.Join(dataDir, "capacity_config.yaml")
	}
	cfg, err := config.LoadCapacity(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info(fmt.Sprintf("No capacity config at %s, using defaults", configPath))
		cfg = &capacityDefaults
	} else if err != nil {
		return err
	}

	normalized, warnings := stats.NormalizeCapacity(weekly, *cfg)
	for _, w := range warnings {
		slog.Warn(w)
	}
	if err := csvconn.WriteCapacityCSV(filepath.Join(dataDir, "capacity.csv"), normalized); err != nil {
		return err
	}
	people := stats.PersonCapacity(normalized)
	return csvconn.WriteCapacityPeopleCSV(filepath.Join(dataDir, "capacity_people.csv"), people)
}

package web

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/singleflight"

	"agency-stats/connectors/config"
	csvconn "agency-stats/connectors/csv"
	"agency-stats/domain/capacity"
	"agency-stats/domain/timerecord"
	"agency-stats/stats"
)

// Run starts an Echo web server exposing the derived report tables as JSON.
// Inputs are loaded from the data directory at startup; reports are computed
// on first request and cached.
//
// Usage:
//
//	agency-stats web [-addr :8080] [-data ./data] [-config capacity.yaml]
//
// Endpoints:
//
//	GET /api/summary
//	GET /api/months
//	GET /api/by/:dimension            (customer, project, project_type, phase,
//	                                   activity, person, price_model, year)
//	GET /api/top/:dimension           ?metric=revenue&n=10
//	GET /api/hierarchy
//	GET /api/utilization
//	GET /api/weekly_actuals
//	GET /api/planned/projects         (404 without planned records)
//	GET /api/planned/months
//	GET /api/planned/summary
//	GET /api/planned/compare
//	GET /api/forecast                 ?reference=YYYY-MM-DD
//	GET /api/capacity                 (404 without a weekly schedule)
//	GET /api/capacity/people
//	GET /api/capacity/summary
func Run(args []string) error {
	flags := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := flags.String("addr", ":8080", "http listen address (host:port)")
	dataDir := flags.String("data", "./data", "directory containing input CSV files")
	configPath := flags.String("config", "", "capacity config YAML (defaults to <data>/capacity_config.yaml)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	srv, err := newServer(*dataDir, *configPath)
	if err != nil {
		return err
	}

	e := echo.New()
	e.GET("/api/summary", srv.summary)
	e.GET("/api/months", srv.months)
	e.GET("/api/by/:dimension", srv.byDimension)
	e.GET("/api/top/:dimension", srv.topDimension)
	e.GET("/api/hierarchy", srv.hierarchy)
	e.GET("/api/utilization", srv.utilization)
	e.GET("/api/weekly_actuals", srv.weeklyActuals)
	e.GET("/api/planned/projects", srv.plannedProjects)
	e.GET("/api/planned/months", srv.plannedMonths)
	e.GET("/api/planned/summary", srv.plannedSummary)
	e.GET("/api/planned/compare", srv.plannedCompare)
	e.GET("/api/forecast", srv.forecast)
	e.GET("/api/capacity", srv.capacityRecords)
	e.GET("/api/capacity/people", srv.capacityPeople)
	e.GET("/api/capacity/summary", srv.capacitySummary)

	return e.Start(*addr)
}

// reportCache memoizes computed reports by key, collapsing concurrent
// requests for the same key into a single computation.
type reportCache struct {
	mu    sync.RWMutex
	done  map[string]any
	group singleflight.Group
}

func newReportCache() *reportCache {
	return &reportCache{done: map[string]any{}}
}

func (c *reportCache) get(key string, compute func() (any, error)) (any, error) {
	c.mu.RLock()
	v, ok := c.done[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		out, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.done[key] = out
		c.mu.Unlock()
		return out, nil
	})
	return v, err
}

type server struct {
	records []timerecord.Record
	schema  timerecord.Schema

	planned  []timerecord.PlannedRecord
	hasRates bool
	hasPlan  bool

	weekly      []capacity.WeeklyRow
	capacityCfg capacity.Config
	hasWeekly   bool

	cache *reportCache
}

func newServer(dataDir, configPath string) (*server, error) {
	records, schema, err := csvconn.ReadTimeRecords(filepath.Join(dataDir, "time_records.csv"))
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("Loaded %d time records (schema: %s)", len(records), schema))

	s := &server{records: records, schema: schema, cache: newReportCache()}

	planned, hasRates, err := csvconn.ReadPlannedRecords(filepath.Join(dataDir, "planned_records.csv"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("No planned records, planned endpoints disabled")
	case err != nil:
		return nil, err
	default:
		s.planned, s.hasRates, s.hasPlan = planned, hasRates, true
	}

	weekly, err := csvconn.ReadWeeklyRows(filepath.Join(dataDir, "weekly_schedule.csv"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("No weekly schedule, capacity endpoints disabled")
	case err != nil:
		return nil, err
	default:
		s.weekly, s.hasWeekly = weekly, true
		if configPath == "" {
			configPath = filepath.Join(dataDir, "capacity_config.yaml")
		}
		cfg, err := config.LoadCapacity(configPath)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info(fmt.Sprintf("No capacity config at %s, using defaults", configPath))
			cfg = &capacity.Config{}
		} else if err != nil {
			return nil, err
		}
		s.capacityCfg = *cfg
	}

	return s, nil
}

func (s *server) report(c echo.Context, key string, compute func() (any, error)) error {
	v, err := s.cache.get(key, compute)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, v)
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, map[string]any{"error": msg})
}

func (s *server) summary(c echo.Context) error {
	return s.report(c, "summary", func() (any, error) {
		return stats.Summarize(s.records, s.schema), nil
	})
}

func (s *server) months(c echo.Context) error {
	return s.report(c, "months", func() (any, error) {
		return stats.EnrichMonths(stats.AggregateByMonth(s.records), s.schema), nil
	})
}

func (s *server) dimension(name string) (stats.Dimension, bool) {
	for _, d := range stats.Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return stats.Dimension{}, false
}

func (s *server) byDimension(c echo.Context) error {
	name := c.Param("dimension")
	dim, ok := s.dimension(name)
	if !ok {
		return notFound(c, "unknown dimension "+name)
	}
	return s.report(c, "by/"+name, func() (any, error) {
		return stats.EnrichFinancials(stats.Aggregate(s.records, dim), s.schema), nil
	})
}

func (s *server) topDimension(c echo.Context) error {
	name := c.Param("dimension")
	dim, ok := s.dimension(name)
	if !ok {
		return notFound(c, "unknown dimension "+name)
	}
	metric := stats.ParseMetric(c.QueryParam("metric"))
	n := 10
	if q := c.QueryParam("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid n " + q})
		}
		n = v
	}
	key := fmt.Sprintf("top/%s/%s/%d", name, metric, n)
	return s.report(c, key, func() (any, error) {
		rows := stats.EnrichFinancials(stats.Aggregate(s.records, dim), s.schema)
		return stats.TopN(rows, metric, n), nil
	})
}

func (s *server) hierarchy(c echo.Context) error {
	return s.report(c, "hierarchy", func() (any, error) {
		return stats.CustomerProjectHierarchy(s.records, s.schema), nil
	})
}

func (s *server) utilization(c echo.Context) error {
	return s.report(c, "utilization", func() (any, error) {
		return stats.UtilizationRates(s.records, s.schema, stats.DefaultWorkHoursPerDay), nil
	})
}

func (s *server) weeklyActuals(c echo.Context) error {
	return s.report(c, "weekly_actuals", func() (any, error) {
		return stats.AggregateWeekly(s.records), nil
	})
}

func (s *server) plannedProjects(c echo.Context) error {
	if !s.hasPlan {
		return notFound(c, "no planned records loaded")
	}
	return s.report(c, "planned/projects", func() (any, error) {
		actual := stats.EnrichFinancials(stats.Aggregate(s.records, stats.Project), s.schema)
		return stats.MergePlannedByProject(actual, stats.AggregatePlannedByProject(s.planned, s.hasRates), s.hasRates), nil
	})
}

func (s *server) mergedMonths() ([]stats.MergedMonthRow, error) {
	v, err := s.cache.get("planned/months", func() (any, error) {
		months := stats.EnrichMonths(stats.AggregateByMonth(s.records), s.schema)
		return stats.MergePlannedByMonth(months, stats.AggregatePlannedByMonth(s.planned, s.hasRates), s.hasRates), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]stats.MergedMonthRow), nil
}

func (s *server) plannedMonths(c echo.Context) error {
	if !s.hasPlan {
		return notFound(c, "no planned records loaded")
	}
	rows, err := s.mergedMonths()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *server) plannedSummary(c echo.Context) error {
	if !s.hasPlan {
		return notFound(c, "no planned records loaded")
	}
	return s.report(c, "planned/summary", func() (any, error) {
		return stats.SummarizePlanned(s.planned, s.hasRates), nil
	})
}

func (s *server) plannedCompare(c echo.Context) error {
	if !s.hasPlan {
		return notFound(c, "no planned records loaded")
	}
	return s.report(c, "planned/compare", func() (any, error) {
		return stats.ComparePlanned(s.records, s.schema, s.planned, s.hasRates), nil
	})
}

type forecastResponse struct {
	Reference string                `json:"reference"`
	Total     float64               `json:"total"`
	Points    []stats.ForecastPoint `json:"points"`
}

func (s *server) forecast(c echo.Context) error {
	if !s.hasPlan {
		return notFound(c, "no planned records loaded")
	}
	reference := time.Now()
	if q := c.QueryParam("reference"); q != "" {
		var err error
		reference, err = time.Parse("2006-01-02", q)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid reference date " + q})
		}
	}
	// Cache per reference month; days within a month split identically.
	bucket := timerecord.BucketOf(reference)
	return s.report(c, "forecast/"+bucket.SortKey(), func() (any, error) {
		rows, err := s.mergedMonths()
		if err != nil {
			return nil, err
		}
		points, total := stats.AccumulateForecast(rows, reference)
		return forecastResponse{
			Reference: reference.Format("2006-01-02"),
			Total:     total,
			Points:    points,
		}, nil
	})
}

func (s *server) normalized() ([]capacity.Record, error) {
	v, err := s.cache.get("capacity", func() (any, error) {
		records, warnings := stats.NormalizeCapacity(s.weekly, s.capacityCfg)
		for _, w := range warnings {
			slog.Warn(w)
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]capacity.Record), nil
}

func (s *server) capacityRecords(c echo.Context) error {
	if !s.hasWeekly {
		return notFound(c, "no weekly schedule loaded")
	}
	records, err := s.normalized()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, records)
}

func (s *server) capacityPeople(c echo.Context) error {
	if !s.hasWeekly {
		return notFound(c, "no weekly schedule loaded")
	}
	return s.report(c, "capacity/people", func() (any, error) {
		records, err := s.normalized()
		if err != nil {
			return nil, err
		}
		return stats.PersonCapacity(records), nil
	})
}

func (s *server) capacitySummary(c echo.Context) error {
	if !s.hasWeekly {
		return notFound(c, "no weekly schedule loaded")
	}
	return s.report(c, "capacity/summary", func() (any, error) {
		records, err := s.normalized()
		if err != nil {
			return nil, err
		}
		return stats.SummarizeCapacity(records), nil
	})
}

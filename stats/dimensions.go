package stats

import (
	"strconv"

	"agency-stats/domain/timerecord"
)

// Field names one output column of a grouping and knows how to read its value
// off a record.
type Field struct {
	Name  string
	Value func(r timerecord.Record) string
}

// Dimension declares one rollup: the key fields records are grouped on and
// the secondary fields whose distinct values are counted per group. Adding a
// rollup means adding an entry to the table below, not another aggregation
// function.
type Dimension struct {
	Name   string
	Keys   []Field
	Counts []Field
}

var (
	fCustomerNumber = Field{"Customer number", func(r timerecord.Record) string { return r.CustomerNumber }}
	fCustomerName   = Field{"Customer name", func(r timerecord.Record) string { return r.CustomerName }}
	fProjectNumber  = Field{"Project number", func(r timerecord.Record) string { return r.ProjectNumber }}
	fProjectName    = Field{"Project", func(r timerecord.Record) string { return r.ProjectName }}
	fProjectType    = Field{"Project type", func(r timerecord.Record) string { return r.ProjectType }}
	fPriceModel     = Field{"Price model", func(r timerecord.Record) string { return r.PriceModel }}
	fPhase          = Field{"Phase", func(r timerecord.Record) string { return r.Phase }}
	fActivity       = Field{"Activity", func(r timerecord.Record) string { return r.Activity }}
	fPerson         = Field{"Person", func(r timerecord.Record) string { return r.Person }}
	fYear           = Field{"Year", func(r timerecord.Record) string { return strconv.Itoa(r.Date.Year()) }}
)

// Distinct-counted secondaries, named as they appear in output tables.
var (
	cntProjects  = Field{"Number of projects", fProjectNumber.Value}
	cntCustomers = Field{"Number of customers", fCustomerNumber.Value}
	cntPeople    = Field{"Number of people", fPerson.Value}
)

var (
	Customer = Dimension{
		Name:   "customer",
		Keys:   []Field{fCustomerNumber, fCustomerName},
		Counts: []Field{cntProjects},
	}
	Project = Dimension{
		Name:   "project",
		Keys:   []Field{fProjectNumber, fProjectName, fProjectType},
		Counts: []Field{cntPeople},
	}
	ProjectType = Dimension{
		Name:   "project_type",
		Keys:   []Field{fProjectType},
		Counts: []Field{cntProjects, cntPeople},
	}
	Phase = Dimension{
		Name:   "phase",
		Keys:   []Field{fPhase},
		Counts: []Field{cntProjects, cntPeople},
	}
	Activity = Dimension{
		Name:   "activity",
		Keys:   []Field{fActivity},
		Counts: []Field{cntProjects, cntPeople},
	}
	Person = Dimension{
		Name:   "person",
		Keys:   []Field{fPerson},
		Counts: []Field{cntProjects},
	}
	PriceModel = Dimension{
		Name:   "price_model",
		Keys:   []Field{fPriceModel},
		Counts: []Field{cntProjects, cntPeople},
	}
	Year = Dimension{
		Name:   "year",
		Keys:   []Field{fYear},
		Counts: []Field{cntProjects, cntCustomers, cntPeople},
	}
	CustomerProject = Dimension{
		Name:   "customer_project",
		Keys:   []Field{fCustomerNumber, fCustomerName, fProjectNumber, fProjectName},
		Counts: []Field{cntPeople},
	}
)

// Dimensions lists every rollup the reporting surface exposes.
var Dimensions = []Dimension{
	Customer, Project, ProjectType, Phase, Activity, Person, PriceModel, Year,
}

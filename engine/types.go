package engine

import (
	"errors"
	"fmt"
)

// ============================================================================
// ENGINE TYPES — Trip Statistics
// ============================================================================
// Dependency: engine has ZERO external dependencies (schema only supplies
// column names).
// ============================================================================

// ============================================================================
// ERRORS
// ============================================================================

var (
	// ErrNoData is returned when an operation needs at least one row or one
	// non-null value and the view has none.
	ErrNoData = errors.New("no data")

	// ErrMissingColumn matches every *MissingColumnError via errors.Is.
	ErrMissingColumn = errors.New("missing column")
)

// MissingColumnError reports a column referenced by a statistic that the
// loaded dataset does not have (Gender and Birth Year for washington).
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found in dataset", e.Column)
}

// Is makes errors.Is(err, ErrMissingColumn) true.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// requireColumns returns a MissingColumnError for the first absent column.
func requireColumns(view View, columns ...string) error {
	for _, c := range columns {
		if !view.HasColumn(c) {
			return &MissingColumnError{Column: c}
		}
	}
	return nil
}

// ============================================================================
// FILTERS
// ============================================================================

// Filters restrict a view to one month and/or one weekday of Start Time.
// Values are lowercase English names; "" and "all" mean no restriction.
type Filters struct {
	Month string `json:"month"`
	Day   string `json:"day"`
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	return isAll(f.Month) && isAll(f.Day)
}

func isAll(v string) bool { return v == "" || v == All }

// All is the selection value meaning "no restriction".
const All = "all"

// Months lists the accepted month names in calendar order.
var Months = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// Weekdays lists the accepted day names, Monday first.
var Weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group is one distinct value (or value pair) with its occurrence count.
// Builders convert these into ChartConfig or TableData.
type Group struct {
	Key   string   `json:"key"`
	Keys  []string `json:"keys,omitempty"` // pair members for multi-column groups
	Label string   `json:"label"`
	Count int      `json:"count"`
}

// ============================================================================
// STATISTICS RESULTS
// ============================================================================

// TravelTimes is the time-of-travel report.
type TravelTimes struct {
	Month     string `json:"month"`     // "Jan" style abbreviation
	Weekday   string `json:"weekday"`   // "Mon" style abbreviation
	StartHour int    `json:"startHour"` // 0-23
}

// StationUsage is the stations report.
type StationUsage struct {
	StartStation string    `json:"startStation"`
	EndStation   string    `json:"endStation"`
	Trip         [2]string `json:"trip"`      // most frequent (start, end) pair
	TripCount    int       `json:"tripCount"` // occurrences of Trip
}

// TripDurations is the trip-duration report. Durations are whole seconds.
type TripDurations struct {
	Total int64 `json:"totalSeconds"`
	Mean  int64 `json:"meanSeconds"`
	Trips int   `json:"trips"`
}

// BirthYears summarizes the non-null Birth Year values.
type BirthYears struct {
	Earliest   int64 `json:"earliest"`
	MostRecent int64 `json:"mostRecent"`
	MostCommon int64 `json:"mostCommon"`
}

// UserProfile is the user-demographics report.
type UserProfile struct {
	UserTypes  []Group     `json:"userTypes"`
	Genders    []Group     `json:"genders"`
	BirthYears *BirthYears `json:"birthYears"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

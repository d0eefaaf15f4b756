package domain

import (
	"strings"
	"time"
)

// SeriesType identifies the indicator family an observation belongs to
type SeriesType string

const (
	SeriesTypeCPI          SeriesType = "CPI"
	SeriesTypeEarnings     SeriesType = "Earnings"
	SeriesTypeUnemployment SeriesType = "Unemployment"
	SeriesTypeStocks       SeriesType = "Stocks"
	SeriesTypeInterest     SeriesType = "Interest"
)

// SeriesTypes lists every indicator family in selection order
var SeriesTypes = []SeriesType{
	SeriesTypeCPI,
	SeriesTypeEarnings,
	SeriesTypeUnemployment,
	SeriesTypeStocks,
	SeriesTypeInterest,
}

// ParseSeriesType converts a raw type label to a SeriesType
func ParseSeriesType(s string) (SeriesType, bool) {
	for _, t := range SeriesTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Observation is one row of the raw long-format table
type Observation struct {
	SeriesID       string     `json:"series_id" validate:"required"`
	Date           time.Time  `json:"date" validate:"required"`
	Value          float64    `json:"value"`
	Category       string     `json:"category" validate:"required"`
	ParentSeriesID string     `json:"parent_series_id,omitempty"`
	Type           SeriesType `json:"type" validate:"required"`
	Bucket         string     `json:"bucket,omitempty"`
	Leaf           bool       `json:"leaf"`
	PeriodName     string     `json:"period_name,omitempty"`
	Year           int        `json:"year"`
}

// HasParent reports whether the observation's series hangs under another series
func (o Observation) HasParent() bool {
	return o.ParentSeriesID != ""
}

// DerivedRow is an observation enriched with baseline and change fields
type DerivedRow struct {
	Observation

	Href         string    `json:"href"`
	Baseline     float64   `json:"baseline"`
	BaselineDate time.Time `json:"baseline_date"`
	Change       float64   `json:"change"`
	BaselineYear int       `json:"baseline_year"`
	PartialData  string    `json:"partial_data,omitempty"`
	YoYChange    *float64  `json:"yoy_change"`
}

// ChartType selects how the derived table is windowed for display
type ChartType string

const (
	ChartTypeLine ChartType = "Line Chart"
	ChartTypeBar  ChartType = "Bar Chart"
)

// InflationMode selects which CPI series are included
type InflationMode string

const (
	InflationExclude    InflationMode = "Exclude"
	InflationByCategory InflationMode = "By Category"
	InflationTotal      InflationMode = "Total"
)

// BucketExclude is the bucket sentinel meaning the indicator is not selected
const BucketExclude = "Exclude"

// FilterParams holds the validated, request-scoped selection for one chart
type FilterParams struct {
	ChartType    ChartType     `json:"chart_type"`
	StartYear    int           `json:"start_year"`
	EndYear      int           `json:"end_year"`
	Inflation    InflationMode `json:"inflation"`
	Parent       string        `json:"parent,omitempty"`
	Earnings     string        `json:"earnings"`
	Unemployment string        `json:"unemployment"`
	Stocks       bool          `json:"stocks"`
	Interest     bool          `json:"interest"`
}

// DefaultFilterParams returns the selection the chart form starts with
func DefaultFilterParams() FilterParams {
	return FilterParams{
		ChartType:    ChartTypeLine,
		StartYear:    2000,
		EndYear:      2021,
		Inflation:    InflationByCategory,
		Earnings:     BucketExclude,
		Unemployment: BucketExclude,
	}
}

// NothingSelected reports whether every indicator is excluded
func (p FilterParams) NothingSelected() bool {
	return p.Inflation == InflationExclude &&
		BucketExcluded(p.Earnings) &&
		BucketExcluded(p.Unemployment) &&
		!p.Stocks &&
		!p.Interest
}

// BucketExcluded reports whether a bucket token deselects its indicator
func BucketExcluded(bucket string) bool {
	bucket = strings.TrimSpace(strings.ReplaceAll(bucket, "+", " "))
	return bucket == "" || bucket == BucketExclude
}

// StartDate returns January 1st of the start year
func (p FilterParams) StartDate() time.Time {
	return time.Date(p.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// ChartMeta carries the labels a renderer needs for the derived table
type ChartMeta struct {
	ChartType   ChartType `json:"chart_type"`
	Title       string    `json:"title"`
	YAxisTitle  string    `json:"y_axis_title"`
	ColorScheme string    `json:"color_scheme"`
}

// ChartData is the chart-ready output of the pipeline
type ChartData struct {
	Rows       []DerivedRow `json:"rows"`
	BaseHref   string       `json:"base_href"`
	Meta       ChartMeta    `json:"meta"`
	Categories []string     `json:"categories"`
	Omitted    []string     `json:"omitted,omitempty"`
}

// SeriesInfo describes one series in the catalog
type SeriesInfo struct {
	SeriesID       string     `json:"series_id"`
	Category       string     `json:"category"`
	ParentSeriesID string     `json:"parent_series_id,omitempty"`
	Type           SeriesType `json:"type"`
	Bucket         string     `json:"bucket,omitempty"`
	Leaf           bool       `json:"leaf"`
	FirstDate      time.Time  `json:"first_date"`
	LastDate       time.Time  `json:"last_date"`
	Observations   int        `json:"observations"`
}

// HasParentSeries reports whether the series hangs under another series
func (s SeriesInfo) HasParentSeries() bool {
	return s.ParentSeriesID != ""
}

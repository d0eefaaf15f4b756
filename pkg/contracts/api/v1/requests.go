// Package api contains API contract definitions for the econviz chart service.
// Version v1 represents the current stable API version.
package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"econviz/pkg/contracts/domain"
)

// Query parameter names shared by the chart endpoints and the canonical href
const (
	ParamChartType    = "chart_type"
	ParamStartYear    = "start_year"
	ParamEndYear      = "end_year"
	ParamInflation    = "inflation"
	ParamParent       = "parent"
	ParamEarnings     = "earnings"
	ParamUnemployment = "unemployment"
	ParamStocks       = "stocks"
	ParamInterest     = "interest"
	ParamFormat       = "format"
)

// Toggle values for the stocks and interest indicators
const (
	ToggleExclude = "Exclude"
	ToggleInclude = "Include"
)

// Chart API Requests

// ChartRequest is the raw chart selection as submitted by a client.
// Enumerated fields are checked by the custom validators registered in
// internal/validation.
type ChartRequest struct {
	ChartType    string `json:"chart_type" query:"chart_type" validate:"required,chart_type"`
	StartYear    int    `json:"start_year" query:"start_year" validate:"required,min=1900,max=2100"`
	EndYear      int    `json:"end_year" query:"end_year" validate:"required,min=1900,max=2100"`
	Inflation    string `json:"inflation" query:"inflation" validate:"required,inflation"`
	Parent       string `json:"parent,omitempty" query:"parent" validate:"omitempty,series_id"`
	Earnings     string `json:"earnings" query:"earnings" validate:"required,earnings_bucket"`
	Unemployment string `json:"unemployment" query:"unemployment" validate:"required,unemployment_bucket"`
	Stocks       string `json:"stocks" query:"stocks" validate:"required,toggle"`
	Interest     string `json:"interest" query:"interest" validate:"required,toggle"`
}

// DefaultChartRequest mirrors the initial state of the chart form
func DefaultChartRequest() ChartRequest {
	return ChartRequest{
		ChartType:    string(domain.ChartTypeLine),
		StartYear:    2000,
		EndYear:      2021,
		Inflation:    string(domain.InflationByCategory),
		Earnings:     domain.BucketExclude,
		Unemployment: domain.BucketExclude,
		Stocks:       ToggleExclude,
		Interest:     ToggleExclude,
	}
}

// ChartRequestFromQuery builds a request from query values, falling back to
// the form defaults for absent parameters. Only malformed years fail here;
// enumerated values are left to the validator.
func ChartRequestFromQuery(q url.Values) (ChartRequest, error) {
	return ParseChartRequest(q, DefaultChartRequest())
}

// ParseChartRequest overlays the query values present in q onto defaults
func ParseChartRequest(q url.Values, defaults ChartRequest) (ChartRequest, error) {
	req := defaults

	setString := func(param string, dst *string) {
		if v := strings.TrimSpace(q.Get(param)); v != "" {
			*dst = NormalizeToken(v)
		}
	}
	setInt := func(param string, dst *int) error {
		v := strings.TrimSpace(q.Get(param))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a year, got %q", param, v)
		}
		*dst = n
		return nil
	}

	setString(ParamChartType, &req.ChartType)
	setString(ParamInflation, &req.Inflation)
	setString(ParamEarnings, &req.Earnings)
	setString(ParamUnemployment, &req.Unemployment)
	setString(ParamStocks, &req.Stocks)
	setString(ParamInterest, &req.Interest)
	req.Parent = strings.TrimSpace(q.Get(ParamParent))

	if err := setInt(ParamStartYear, &req.StartYear); err != nil {
		return req, err
	}
	if err := setInt(ParamEndYear, &req.EndYear); err != nil {
		return req, err
	}
	return req, nil
}

// NormalizeToken converts a form token such as "By+Race" back to "By Race"
func NormalizeToken(s string) string {
	return strings.ReplaceAll(s, "+", " ")
}

// ToFilterParams converts a validated request into pipeline parameters
func (r ChartRequest) ToFilterParams() domain.FilterParams {
	return domain.FilterParams{
		ChartType:    domain.ChartType(NormalizeToken(r.ChartType)),
		StartYear:    r.StartYear,
		EndYear:      r.EndYear,
		Inflation:    domain.InflationMode(NormalizeToken(r.Inflation)),
		Parent:       r.Parent,
		Earnings:     NormalizeToken(r.Earnings),
		Unemployment: NormalizeToken(r.Unemployment),
		Stocks:       NormalizeToken(r.Stocks) == ToggleInclude,
		Interest:     NormalizeToken(r.Interest) == ToggleInclude,
	}
}

// ExportRequest selects the file format of a chart export
type ExportRequest struct {
	Format string `json:"format" query:"format" validate:"required,oneof=csv xlsx json"`
}

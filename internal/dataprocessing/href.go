package dataprocessing

import (
	"net/url"
	"strconv"
	"strings"

	"econviz/pkg/contracts/domain"
)

const (
	toggleInclude = "Include"
	toggleExclude = "Exclude"
)

// BuildBaseHref reconstructs the chart request as a link back to chartURL.
// The parent filter is left out so drill-down links can append their own.
func BuildBaseHref(chartURL string, p domain.FilterParams) string {
	var b strings.Builder
	b.WriteString(chartURL)
	b.WriteString("?chart_type=")
	b.WriteString(url.QueryEscape(string(p.ChartType)))
	b.WriteString("&start_year=")
	b.WriteString(strconv.Itoa(p.StartYear))
	b.WriteString("&end_year=")
	b.WriteString(strconv.Itoa(p.EndYear))
	b.WriteString("&inflation=")
	b.WriteString(url.QueryEscape(string(p.Inflation)))
	b.WriteString("&earnings=")
	b.WriteString(url.QueryEscape(p.Earnings))
	b.WriteString("&unemployment=")
	b.WriteString(url.QueryEscape(p.Unemployment))
	b.WriteString("&stocks=")
	b.WriteString(toggle(p.Stocks))
	b.WriteString("&interest=")
	b.WriteString(toggle(p.Interest))
	return b.String()
}

// DrillDownHref appends the parent filter for seriesID to a base href
func DrillDownHref(baseHref, seriesID string) string {
	return baseHref + "&parent=" + url.QueryEscape(seriesID)
}

func toggle(on bool) string {
	if on {
		return toggleInclude
	}
	return toggleExclude
}

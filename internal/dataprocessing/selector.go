package dataprocessing

import (
	"fmt"
	"strings"

	"econviz/pkg/contracts/domain"
)

// DefaultRootSeriesID is the all-items CPI aggregate
const DefaultRootSeriesID = "CUSR0000SA0"

// Select returns the union of rows requested by p, each tagged with an href.
// Rows come out grouped CPI, Earnings, Unemployment, Stocks, Interest.
func Select(table *Table, p domain.FilterParams, rootSeriesID, baseHref string) ([]domain.DerivedRow, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil table", ErrInvalidParameter)
	}
	if rootSeriesID == "" {
		rootSeriesID = DefaultRootSeriesID
	}

	var out []domain.DerivedRow

	cpi := selectCPI(table, p, rootSeriesID)
	linkCPI := p.Inflation != domain.InflationExclude
	for _, obs := range cpi {
		href := baseHref
		if linkCPI && !obs.Leaf {
			href = DrillDownHref(baseHref, obs.SeriesID)
		}
		out = append(out, domain.DerivedRow{Observation: obs, Href: href})
	}

	if bucket := normalizeBucket(p.Earnings); bucket != domain.BucketExclude {
		out = appendTagged(out, table.rowsForType(domain.SeriesTypeEarnings, bucketIs(bucket)), baseHref)
	}
	if bucket := normalizeBucket(p.Unemployment); bucket != domain.BucketExclude {
		out = appendTagged(out, table.rowsForType(domain.SeriesTypeUnemployment, bucketIs(bucket)), baseHref)
	}
	if p.Stocks {
		out = appendTagged(out, table.rowsForType(domain.SeriesTypeStocks, nil), baseHref)
	}
	if p.Interest {
		out = appendTagged(out, table.rowsForType(domain.SeriesTypeInterest, nil), baseHref)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResult, describeSelection(p))
	}
	return out, nil
}

func selectCPI(table *Table, p domain.FilterParams, rootSeriesID string) []domain.Observation {
	if p.Parent != "" {
		return table.rowsForParent(p.Parent)
	}
	switch p.Inflation {
	case domain.InflationByCategory:
		return table.rowsForParent(rootSeriesID)
	case domain.InflationTotal:
		return table.Observations(rootSeriesID)
	default:
		return nil
	}
}

func appendTagged(out []domain.DerivedRow, rows []domain.Observation, href string) []domain.DerivedRow {
	for _, obs := range rows {
		out = append(out, domain.DerivedRow{Observation: obs, Href: href})
	}
	return out
}

func bucketIs(bucket string) func(domain.Observation) bool {
	return func(o domain.Observation) bool {
		return o.Bucket == bucket
	}
}

// normalizeBucket turns form tokens like "By+Race" into bucket labels.
// An empty bucket counts as excluded.
func normalizeBucket(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "+", " "))
	if s == "" {
		return domain.BucketExclude
	}
	return s
}

func describeSelection(p domain.FilterParams) string {
	parts := []string{"inflation=" + string(p.Inflation)}
	if p.Parent != "" {
		parts = append(parts, "parent="+p.Parent)
	}
	parts = append(parts,
		"earnings="+p.Earnings,
		"unemployment="+p.Unemployment,
		fmt.Sprintf("stocks=%t", p.Stocks),
		fmt.Sprintf("interest=%t", p.Interest),
	)
	return strings.Join(parts, " ")
}

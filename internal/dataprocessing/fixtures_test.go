package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"econviz/pkg/contracts/domain"
)

const testChartURL = "https://example.test/chart"

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

type seriesSpec struct {
	id        string
	category  string
	parent    string
	typ       domain.SeriesType
	bucket    string
	leaf      bool
	from      time.Time
	to        time.Time
	quarterly bool
	value     func(i int) float64
}

func linear(start, step float64) func(int) float64 {
	return func(i int) float64 { return start + step*float64(i) }
}

func (s seriesSpec) rows() []domain.Observation {
	stepMonths := 1
	if s.quarterly {
		stepMonths = 3
	}
	var out []domain.Observation
	i := 0
	for d := s.from; !d.After(s.to); d = d.AddDate(0, stepMonths, 0) {
		period := d.Month().String()
		if s.quarterly {
			period = [...]string{"1st Quarter", "2nd Quarter", "3rd Quarter", "4th Quarter"}[(int(d.Month())-1)/3]
		}
		out = append(out, domain.Observation{
			SeriesID:       s.id,
			Date:           d,
			Value:          s.value(i),
			Category:       s.category,
			ParentSeriesID: s.parent,
			Type:           s.typ,
			Bucket:         s.bucket,
			Leaf:           s.leaf,
			PeriodName:     period,
			Year:           d.Year(),
		})
		i++
	}
	return out
}

func fixtureSpecs() []seriesSpec {
	return []seriesSpec{
		{id: DefaultRootSeriesID, category: "All items", typ: domain.SeriesTypeCPI,
			from: month(1995, time.January), to: month(2021, time.December), value: linear(150, 0.5)},
		{id: "CUSR0000SAF", category: "Food", parent: DefaultRootSeriesID, typ: domain.SeriesTypeCPI,
			from: month(1995, time.January), to: month(2021, time.December), value: linear(140, 0.4)},
		{id: "CUSR0000SAF11", category: "Food at home", parent: "CUSR0000SAF", typ: domain.SeriesTypeCPI, leaf: true,
			from: month(1995, time.January), to: month(2021, time.December), value: linear(130, 0.3)},
		{id: "CUSR0000SEFV", category: "Food away from home", parent: "CUSR0000SAF", typ: domain.SeriesTypeCPI, leaf: true,
			from: month(1995, time.January), to: month(2021, time.December), value: linear(160, 0.6)},
		{id: "CUSR0000SA0E", category: "Energy", parent: DefaultRootSeriesID, typ: domain.SeriesTypeCPI, leaf: true,
			from: month(2005, time.January), to: month(2021, time.December), value: linear(180, 1)},
		{id: "LEU0252881500", category: "Earnings - Total", typ: domain.SeriesTypeEarnings, bucket: "Total",
			from: month(1995, time.January), to: month(2021, time.October), quarterly: true, value: linear(500, 5)},
		{id: "LEU0252883800", category: "Earnings - White", typ: domain.SeriesTypeEarnings, bucket: "By Race",
			from: month(1995, time.January), to: month(2021, time.October), quarterly: true, value: linear(520, 5)},
		{id: "LEU0252884700", category: "Earnings - Black", typ: domain.SeriesTypeEarnings, bucket: "By Race",
			from: month(1995, time.January), to: month(2021, time.October), quarterly: true, value: linear(420, 4)},
		{id: "LNS14000000", category: "Unemployment - Total", typ: domain.SeriesTypeUnemployment, bucket: "Total",
			from: month(1995, time.January), to: month(2021, time.December), value: linear(5, 0.01)},
		{id: "SP500", category: "S&P 500", typ: domain.SeriesTypeStocks,
			from: month(1995, time.January), to: month(2021, time.December), value: linear(500, 10)},
		{id: "DGS10", category: "10-Year Treasury", typ: domain.SeriesTypeInterest,
			from: month(1995, time.January), to: month(2021, time.December), value: linear(6, -0.01)},
	}
}

func fixtureObservations() []domain.Observation {
	var out []domain.Observation
	for _, spec := range fixtureSpecs() {
		out = append(out, spec.rows()...)
	}
	return out
}

func fixtureTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(fixtureObservations())
	require.NoError(t, err)
	return table
}

func paramsWith(mutate func(*domain.FilterParams)) domain.FilterParams {
	p := domain.DefaultFilterParams()
	if mutate != nil {
		mutate(&p)
	}
	return p
}

func rowsByDate(rows []domain.DerivedRow, category string) map[time.Time]domain.DerivedRow {
	out := make(map[time.Time]domain.DerivedRow)
	for _, r := range rows {
		if r.Category == category {
			out[r.Date] = r
		}
	}
	return out
}

package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econviz/pkg/contracts/domain"
)

func derived(category string, date time.Time, value float64) domain.DerivedRow {
	return domain.DerivedRow{Observation: domain.Observation{
		SeriesID: category,
		Category: category,
		Date:     date,
		Value:    value,
		Type:     domain.SeriesTypeCPI,
		Year:     date.Year(),
	}}
}

func foodRows() []domain.DerivedRow {
	var rows []domain.DerivedRow
	for d := month(1995, time.January); !d.After(month(2012, time.December)); d = d.AddDate(0, 1, 0) {
		v := 90.0
		switch {
		case d.Equal(month(2000, time.January)):
			v = 100
		case d.Equal(month(2010, time.January)):
			v = 150
		case d.After(month(2000, time.January)):
			v = 120
		}
		rows = append(rows, derived("Food", d, v))
	}
	return rows
}

func TestNormalize_FoodExample(t *testing.T) {
	out, omitted, err := Normalize(foodRows(), 2000)
	require.NoError(t, err)
	assert.Empty(t, omitted)

	byDate := rowsByDate(out, "Food")
	start := byDate[month(2000, time.January)]
	assert.Equal(t, 0.0, start.Change)
	assert.Equal(t, 100.0, start.Baseline)
	assert.Equal(t, month(2000, time.January), start.BaselineDate)

	later := byDate[month(2010, time.January)]
	assert.InDelta(t, 0.5, later.Change, 1e-12)
	assert.Equal(t, 1995, later.BaselineYear)
	assert.Empty(t, later.PartialData)
}

func TestNormalize_BaselineRowHasZeroChange(t *testing.T) {
	table := fixtureTable(t)
	for _, startYear := range []int{1995, 2000, 2007, 2021} {
		p := paramsWith(func(p *domain.FilterParams) {
			p.StartYear = startYear
			p.Earnings = "By Race"
			p.Stocks = true
		})
		rows, err := Select(table, p, DefaultRootSeriesID, "base")
		require.NoError(t, err)

		out, _, err := Normalize(rows, startYear)
		require.NoError(t, err)
		require.NotEmpty(t, out)

		for _, r := range out {
			if r.Date.Equal(r.BaselineDate) {
				assert.Equal(t, 0.0, r.Change, "category %s start %d", r.Category, startYear)
			}
			assert.False(t, r.BaselineDate.Before(time.Date(startYear, 1, 1, 0, 0, 0, 0, time.UTC)))
		}
	}
}

func TestNormalize_ScaleInvariance(t *testing.T) {
	rows := foodRows()
	scaled := make([]domain.DerivedRow, len(rows))
	for i, r := range rows {
		r.Value *= 3.7
		scaled[i] = r
	}

	a, _, err := Normalize(rows, 2000)
	require.NoError(t, err)
	b, _, err := Normalize(scaled, 2000)
	require.NoError(t, err)

	require.Len(t, b, len(a))
	for i := range a {
		assert.InDelta(t, a[i].Change, b[i].Change, 1e-12)
		if a[i].YoYChange != nil {
			require.NotNil(t, b[i].YoYChange)
			assert.InDelta(t, *a[i].YoYChange, *b[i].YoYChange, 1e-12)
		}
	}
}

func TestNormalize_PartialData(t *testing.T) {
	table := fixtureTable(t)
	rows, err := Select(table, domain.DefaultFilterParams(), DefaultRootSeriesID, "base")
	require.NoError(t, err)

	out, _, err := Normalize(rows, 2000)
	require.NoError(t, err)

	for _, r := range out {
		switch r.Category {
		case "Energy":
			assert.Equal(t, 2005, r.BaselineYear)
			assert.Equal(t, "Since 2005", r.PartialData)
			assert.Equal(t, month(2005, time.January), r.BaselineDate)
		case "Food":
			assert.Equal(t, 1995, r.BaselineYear)
			assert.Empty(t, r.PartialData)
		}
	}
}

func TestNormalize_BaselineAfterGap(t *testing.T) {
	rows := []domain.DerivedRow{
		derived("Gold", month(1999, time.June), 50),
		derived("Gold", month(2000, time.March), 80),
		derived("Gold", month(2000, time.June), 100),
	}

	out, omitted, err := Normalize(rows, 2000)
	require.NoError(t, err)
	assert.Empty(t, omitted)
	require.Len(t, out, 3)
	for _, r := range out {
		assert.Equal(t, month(2000, time.March), r.BaselineDate)
		assert.Equal(t, 80.0, r.Baseline)
	}
	assert.InDelta(t, 0.25, out[2].Change, 1e-12)
}

func TestNormalize_OmitsCategoryWithoutBaseline(t *testing.T) {
	rows := []domain.DerivedRow{
		derived("Old", month(1990, time.January), 10),
		derived("Old", month(1995, time.January), 20),
		derived("Zero", month(2001, time.January), 0),
		derived("Zero", month(2002, time.January), 5),
		derived("New", month(2001, time.January), 40),
	}

	out, omitted, err := Normalize(rows, 2000)
	require.NoError(t, err)
	assert.Equal(t, []string{"Old", "Zero"}, omitted)
	require.Len(t, out, 1)
	assert.Equal(t, "New", out[0].Category)
}

func TestNormalize_AmbiguousBaseline(t *testing.T) {
	rows := []domain.DerivedRow{
		derived("Food", month(2000, time.January), 100),
		derived("Food", month(2000, time.January), 101),
		derived("Food", month(2000, time.February), 102),
	}

	out, _, err := Normalize(rows, 2000)
	assert.ErrorIs(t, err, ErrAmbiguousBaseline)
	assert.Equal(t, KindAmbiguousBaseline, Classify(err))
	assert.Nil(t, out)
}

func TestNormalize_YearOverYear(t *testing.T) {
	t.Run("predecessor present", func(t *testing.T) {
		rows := []domain.DerivedRow{
			derived("Rent", month(2019, time.June), 100),
			derived("Rent", month(2020, time.June), 110),
		}
		out, _, err := Normalize(rows, 2019)
		require.NoError(t, err)

		byDate := rowsByDate(out, "Rent")
		require.NotNil(t, byDate[month(2020, time.June)].YoYChange)
		assert.InDelta(t, 0.1, *byDate[month(2020, time.June)].YoYChange, 1e-12)
		assert.Nil(t, byDate[month(2019, time.June)].YoYChange)
	})

	t.Run("predecessor missing", func(t *testing.T) {
		rows := []domain.DerivedRow{
			derived("Rent", month(2019, time.May), 100),
			derived("Rent", month(2020, time.June), 110),
		}
		out, _, err := Normalize(rows, 2019)
		require.NoError(t, err)

		byDate := rowsByDate(out, "Rent")
		assert.Nil(t, byDate[month(2020, time.June)].YoYChange)
	})

	t.Run("other category does not count", func(t *testing.T) {
		rows := []domain.DerivedRow{
			derived("Fuel", month(2019, time.June), 100),
			derived("Rent", month(2020, time.June), 110),
		}
		out, _, err := Normalize(rows, 2019)
		require.NoError(t, err)

		byDate := rowsByDate(out, "Rent")
		assert.Nil(t, byDate[month(2020, time.June)].YoYChange)
	})
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	rows := foodRows()
	_, _, err := Normalize(rows, 2000)
	require.NoError(t, err)

	for _, r := range rows {
		assert.Zero(t, r.Baseline)
		assert.Zero(t, r.Change)
		assert.Nil(t, r.YoYChange)
	}
}

func TestOneYearBefore(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{month(2020, time.June), month(2019, time.June)},
		{time.Date(2020, time.February, 29, 0, 0, 0, 0, time.UTC), time.Date(2019, time.February, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2021, time.March, 31, 0, 0, 0, 0, time.UTC), time.Date(2020, time.March, 31, 0, 0, 0, 0, time.UTC)},
		{month(2000, time.January), month(1999, time.January)},
	}

	for _, tt := range tests {
		t.Run(tt.in.Format(time.DateOnly), func(t *testing.T) {
			assert.Equal(t, tt.want, OneYearBefore(tt.in))
		})
	}
}

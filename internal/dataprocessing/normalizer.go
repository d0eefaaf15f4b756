package dataprocessing

import (
	"fmt"
	"sort"
	"time"

	"econviz/pkg/contracts/domain"
)

type categoryDate struct {
	category string
	date     time.Time
}

type categoryStats struct {
	earliest     time.Time
	baselineDate time.Time
	hasBaseline  bool
	baseline     float64
}

// Normalize fills the baseline, change and year-over-year fields of rows.
//
// A category's baseline is its first observation on or after January 1st of
// startYear. Categories with no such observation, or with a zero baseline,
// are dropped and their names returned as omitted. The input slice is not
// modified.
func Normalize(rows []domain.DerivedRow, startYear int) ([]domain.DerivedRow, []string, error) {
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)

	stats := make(map[string]*categoryStats)
	values := make(map[categoryDate][]float64, len(rows))
	for _, row := range rows {
		st, ok := stats[row.Category]
		if !ok {
			st = &categoryStats{earliest: row.Date}
			stats[row.Category] = st
		}
		if row.Date.Before(st.earliest) {
			st.earliest = row.Date
		}
		if !row.Date.Before(start) && (!st.hasBaseline || row.Date.Before(st.baselineDate)) {
			st.baselineDate = row.Date
			st.hasBaseline = true
		}
		key := categoryDate{category: row.Category, date: row.Date}
		values[key] = append(values[key], row.Value)
	}

	var omitted []string
	for category, st := range stats {
		if !st.hasBaseline {
			omitted = append(omitted, category)
			continue
		}
		candidates := values[categoryDate{category: category, date: st.baselineDate}]
		if len(candidates) > 1 {
			return nil, nil, fmt.Errorf("%w: %d rows for %q on %s",
				ErrAmbiguousBaseline, len(candidates), category, st.baselineDate.Format(time.DateOnly))
		}
		if candidates[0] == 0 {
			st.hasBaseline = false
			omitted = append(omitted, category)
			continue
		}
		st.baseline = candidates[0]
	}
	sort.Strings(omitted)

	out := make([]domain.DerivedRow, 0, len(rows))
	for _, row := range rows {
		st := stats[row.Category]
		if !st.hasBaseline {
			continue
		}
		row.Baseline = st.baseline
		row.BaselineDate = st.baselineDate
		row.Change = row.Value/st.baseline - 1
		row.BaselineYear = st.earliest.Year()
		row.PartialData = ""
		if row.BaselineYear > startYear {
			row.PartialData = fmt.Sprintf("Since %d", row.BaselineYear)
		}
		row.YoYChange = yearOverYear(values, row)
		out = append(out, row)
	}

	return out, omitted, nil
}

func yearOverYear(values map[categoryDate][]float64, row domain.DerivedRow) *float64 {
	prior := values[categoryDate{category: row.Category, date: OneYearBefore(row.Date)}]
	if len(prior) != 1 || prior[0] == 0 {
		return nil
	}
	yoy := row.Value/prior[0] - 1
	return &yoy
}

// OneYearBefore subtracts twelve calendar months, clamping the day to the
// length of the target month so that Feb 29 maps to Feb 28.
func OneYearBefore(d time.Time) time.Time {
	year, month, day := d.Date()
	last := time.Date(year-1, month+1, 0, 0, 0, 0, 0, d.Location()).Day()
	if day > last {
		day = last
	}
	h, m, s := d.Clock()
	return time.Date(year-1, month, day, h, m, s, d.Nanosecond(), d.Location())
}

package dataprocessing

import (
	"strconv"
	"time"

	"econviz/pkg/contracts/domain"
)

// FourthQuarter is the period name carried by quarterly year-end rows
const FourthQuarter = "4th Quarter"

// View restricts normalized rows to what the chart type displays.
// Line charts keep the inclusive [start-01-01, end-12-31] window; bar charts
// keep the end-of-window snapshot: December of the end year, or the fourth
// quarter row of the end year for quarterly series.
func View(rows []domain.DerivedRow, p domain.FilterParams) []domain.DerivedRow {
	out := make([]domain.DerivedRow, 0, len(rows))
	switch p.ChartType {
	case domain.ChartTypeBar:
		anchor := time.Date(p.EndYear, time.December, 1, 0, 0, 0, 0, time.UTC)
		for _, row := range rows {
			if row.Date.Equal(anchor) || (row.PeriodName == FourthQuarter && row.Year == p.EndYear) {
				out = append(out, row)
			}
		}
	default:
		from := p.StartDate()
		to := time.Date(p.EndYear, time.December, 31, 0, 0, 0, 0, time.UTC)
		for _, row := range rows {
			if !row.Date.Before(from) && !row.Date.After(to) {
				out = append(out, row)
			}
		}
	}
	return out
}

// Categories lists the distinct categories of rows in first-seen order
func Categories(rows []domain.DerivedRow) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		if _, ok := seen[row.Category]; ok {
			continue
		}
		seen[row.Category] = struct{}{}
		out = append(out, row.Category)
	}
	return out
}

// BuildMeta derives the chart labels for a set of categories
func BuildMeta(p domain.FilterParams, categoryCount int) domain.ChartMeta {
	scheme := "category10"
	if categoryCount > 10 {
		scheme = "category20"
	}
	return domain.ChartMeta{
		ChartType:   p.ChartType,
		Title:       "Change Since " + strconv.Itoa(p.StartYear) + " by Category",
		YAxisTitle:  "Change Since " + strconv.Itoa(p.StartYear),
		ColorScheme: scheme,
	}
}

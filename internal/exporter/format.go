package exporter

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ChangePlaces is the number of decimals written for change ratios
const ChangePlaces = 6

// formatRatio rounds a ratio to ChangePlaces and trims trailing zeros
func formatRatio(f float64) string {
	return decimal.NewFromFloat(f).Round(ChangePlaces).String()
}

// formatOptionalRatio writes an empty cell for a missing ratio
func formatOptionalRatio(f *float64) string {
	if f == nil {
		return ""
	}
	return formatRatio(*f)
}

// roundRatio returns the rounded ratio as a float for typed spreadsheet cells
func roundRatio(f float64) float64 {
	v, _ := decimal.NewFromFloat(f).Round(ChangePlaces).Float64()
	return v
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

// formatDate writes dates as ISO calendar days; zero dates become empty cells
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

// formatValue writes the shortest decimal form of an observation value
func formatValue(f float64) string {
	return decimal.NewFromFloat(f).String()
}

package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"econviz/pkg/contracts/domain"
)

// SnapshotHeader is the column layout written by WriteSnapshotCSV
var SnapshotHeader = []string{
	"series", "date", "value", "Category", "Parent Series ID", "Type", "Bucket", "Leaf", "periodName", "year",
}

// MonthlySeries builds one observation per month from start, with values
// from value(i) for the i-th month.
func MonthlySeries(info domain.SeriesInfo, start time.Time, months int, value func(i int) float64) []domain.Observation {
	obs := make([]domain.Observation, 0, months)
	for i := 0; i < months; i++ {
		date := start.AddDate(0, i, 0)
		obs = append(obs, domain.Observation{
			SeriesID:       info.SeriesID,
			Date:           date,
			Value:          value(i),
			Category:       info.Category,
			ParentSeriesID: info.ParentSeriesID,
			Type:           info.Type,
			Bucket:         info.Bucket,
			Leaf:           info.Leaf,
			PeriodName:     date.Month().String(),
			Year:           date.Year(),
		})
	}
	return obs
}

// WriteSnapshotCSV writes observations to dir/name in the snapshot layout and returns the path
func WriteSnapshotCSV(t *testing.T, dir, name string, rows []domain.Observation) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create snapshot: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(SnapshotHeader); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, o := range rows {
		leaf := "0"
		if o.Leaf {
			leaf = "1"
		}
		record := []string{
			o.SeriesID,
			o.Date.Format("2006-01-02"),
			strconv.FormatFloat(o.Value, 'f', -1, 64),
			o.Category,
			o.ParentSeriesID,
			string(o.Type),
			o.Bucket,
			leaf,
			o.PeriodName,
			strconv.Itoa(o.Year),
		}
		if err := w.Write(record); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush snapshot: %v", err)
	}
	return path
}

// SmallSnapshot is a CPI tree with two leaves under Food plus a total unemployment series.
func SmallSnapshot() []domain.Observation {
	start := time.Date(1998, time.January, 1, 0, 0, 0, 0, time.UTC)
	months := 12 * 25

	specs := []struct {
		info  domain.SeriesInfo
		value func(int) float64
	}{
		{domain.SeriesInfo{SeriesID: "CUSR0000SA0", Category: "All items", Type: domain.SeriesTypeCPI},
			func(i int) float64 { return 160 + float64(i)*0.3 }},
		{domain.SeriesInfo{SeriesID: "CUSR0000SAF", Category: "Food", ParentSeriesID: "CUSR0000SA0", Type: domain.SeriesTypeCPI},
			func(i int) float64 { return 150 + float64(i)*0.25 }},
		{domain.SeriesInfo{SeriesID: "CUSR0000SAF11", Category: "Food at home", ParentSeriesID: "CUSR0000SAF", Type: domain.SeriesTypeCPI, Leaf: true},
			func(i int) float64 { return 140 + float64(i)*0.2 }},
		{domain.SeriesInfo{SeriesID: "CUSR0000SEFV", Category: "Food away from home", ParentSeriesID: "CUSR0000SAF", Type: domain.SeriesTypeCPI, Leaf: true},
			func(i int) float64 { return 170 + float64(i)*0.3 }},
		{domain.SeriesInfo{SeriesID: "LNS14000000", Category: "Unemployment - Total", Type: domain.SeriesTypeUnemployment, Bucket: "Total", Leaf: true},
			func(i int) float64 { return 4 + float64(i%24)*0.1 }},
	}

	var rows []domain.Observation
	for _, s := range specs {
		rows = append(rows, MonthlySeries(s.info, start, months, s.value)...)
	}
	return rows
}

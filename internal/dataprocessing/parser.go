package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"econviz/pkg/contracts/domain"
)

// headerScanRows bounds how far down a sheet the header row is searched for
const headerScanRows = 10

// ParseWorkbook reads a snapshot workbook. The first sheet whose header row
// carries the series, date and value columns is used.
func ParseWorkbook(filePath string) ([]domain.Observation, LoadStats, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, LoadStats{}, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		headerRow := findHeaderRow(rows)
		if headerRow < 0 {
			continue
		}
		slog.Debug("snapshot sheet found",
			slog.String("file", filePath),
			slog.String("sheet", sheet),
			slog.Int("header_row", headerRow+1),
			slog.Int("total_rows", len(rows)),
		)
		return decodeRows(rows[headerRow], rows[headerRow+1:], headerRow+2)
	}

	return nil, LoadStats{}, fmt.Errorf("%w: no sheet with series, date and value columns", ErrInvalidSnapshot)
}

func findHeaderRow(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		cols := make(map[string]bool, len(rows[i]))
		for _, cell := range rows[i] {
			cols[normalizeHeader(cell)] = true
		}
		if (cols[colSeries] || cols["seriesid"]) && cols[colDate] && cols[colValue] {
			return i
		}
	}
	return -1
}

func decodeRows(header []string, body [][]string, firstLine int) ([]domain.Observation, LoadStats, error) {
	dec, err := newRowDecoder(header)
	if err != nil {
		return nil, LoadStats{}, err
	}

	var stats LoadStats
	out := make([]domain.Observation, 0, len(body))
	for i, record := range body {
		if blank(record) {
			continue
		}
		stats.Rows++
		obs, ok, err := dec.decode(record)
		if err != nil {
			return nil, stats, fmt.Errorf("row %d: %w", firstLine+i, err)
		}
		if !ok {
			stats.Dropped++
			continue
		}
		out = append(out, obs)
	}
	stats.Kept = len(out)
	return out, stats, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

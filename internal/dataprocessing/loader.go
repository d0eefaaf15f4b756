package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"econviz/pkg/contracts/domain"
)

// Snapshot column keys after header normalization
const (
	colSeries   = "series"
	colDate     = "date"
	colValue    = "value"
	colCategory = "category"
	colParent   = "parentseriesid"
	colType     = "type"
	colBucket   = "bucket"
	colLeaf     = "leaf"
	colPeriod   = "periodname"
	colYear     = "year"
)

var requiredColumns = []string{colSeries, colDate, colValue, colCategory, colType}

var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"2006/01/02",
}

// LoadStats summarizes one snapshot file
type LoadStats struct {
	Path    string
	Rows    int
	Kept    int
	Dropped int
}

// rowDecoder maps header positions to observation fields
type rowDecoder struct {
	index map[string]int
}

func newRowDecoder(header []string) (*rowDecoder, error) {
	d := &rowDecoder{index: make(map[string]int, len(header))}
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "seriesid" {
			key = colSeries
		}
		if _, dup := d.index[key]; !dup {
			d.index[key] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := d.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrInvalidSnapshot, strings.Join(missing, ", "))
	}
	return d, nil
}

func (d *rowDecoder) field(record []string, col string) string {
	i, ok := d.index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// decode converts one record. ok is false for rows without a usable value.
func (d *rowDecoder) decode(record []string) (obs domain.Observation, ok bool, err error) {
	raw := d.field(record, colValue)
	if raw == "" || strings.EqualFold(raw, "nan") || strings.EqualFold(raw, "null") {
		return obs, false, nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return obs, false, fmt.Errorf("%w: value %q: %v", ErrInvalidSnapshot, raw, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return obs, false, nil
	}

	date, err := parseDate(d.field(record, colDate))
	if err != nil {
		return obs, false, err
	}

	typ, known := domain.ParseSeriesType(d.field(record, colType))
	if !known {
		return obs, false, fmt.Errorf("%w: unknown type %q", ErrInvalidSnapshot, d.field(record, colType))
	}

	year := date.Year()
	if y := d.field(record, colYear); y != "" {
		f, err := strconv.ParseFloat(y, 64)
		if err != nil {
			return obs, false, fmt.Errorf("%w: year %q", ErrInvalidSnapshot, y)
		}
		year = int(f)
	}

	return domain.Observation{
		SeriesID:       d.field(record, colSeries),
		Date:           date,
		Value:          value,
		Category:       d.field(record, colCategory),
		ParentSeriesID: nullable(d.field(record, colParent)),
		Type:           typ,
		Bucket:         nullable(d.field(record, colBucket)),
		Leaf:           parseLeaf(d.field(record, colLeaf)),
		PeriodName:     d.field(record, colPeriod),
		Year:           year,
	}, true, nil
}

// ReadCSV decodes a snapshot in CSV form. Rows without a value are dropped.
func ReadCSV(r io.Reader) ([]domain.Observation, LoadStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, LoadStats{}, fmt.Errorf("%w: empty file", ErrInvalidSnapshot)
		}
		return nil, LoadStats{}, fmt.Errorf("failed to read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	dec, err := newRowDecoder(header)
	if err != nil {
		return nil, LoadStats{}, err
	}

	var stats LoadStats
	var out []domain.Observation
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		stats.Rows++
		obs, ok, err := dec.decode(record)
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", line, err)
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

// LoadFile reads one snapshot file, choosing the decoder by extension
func LoadFile(path string) ([]domain.Observation, LoadStats, error) {
	var (
		obs   []domain.Observation
		stats LoadStats
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		obs, stats, err = ParseWorkbook(path)
	case ".csv", ".txt":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, LoadStats{Path: path}, fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer f.Close()
		obs, stats, err = ReadCSV(f)
	default:
		return nil, LoadStats{Path: path}, fmt.Errorf("%w: unsupported file type %s", ErrInvalidSnapshot, filepath.Ext(path))
	}
	stats.Path = path
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return obs, stats, nil
}

// LoadSources reads all snapshot files in parallel and merges their rows in
// path order. The first failure cancels the remaining reads.
func LoadSources(ctx context.Context, paths []string, logger *slog.Logger) ([]domain.Observation, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no snapshot files configured", ErrInvalidSnapshot)
	}
	if logger == nil {
		logger = slog.Default()
	}

	results := make([][]domain.Observation, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			obs, stats, err := LoadFile(path)
			if err != nil {
				return err
			}
			logger.InfoContext(ctx, "snapshot loaded",
				slog.String("path", stats.Path),
				slog.Int("rows", stats.Rows),
				slog.Int("kept", stats.Kept),
				slog.Int("dropped", stats.Dropped),
			)
			results[i] = obs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	merged := make([]domain.Observation, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

// LoadTable loads snapshot files and builds the shared table
func LoadTable(ctx context.Context, paths []string, logger *slog.Logger) (*Table, error) {
	obs, err := LoadSources(ctx, paths, logger)
	if err != nil {
		return nil, err
	}
	return NewTable(obs)
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
	h = strings.ToLower(h)
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrInvalidSnapshot, s)
}

func parseLeaf(s string) bool {
	switch strings.ToLower(s) {
	case "1", "1.0", "true", "yes", "y":
		return true
	default:
		return false
	}
}

func nullable(s string) string {
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return ""
	default:
		return s
	}
}

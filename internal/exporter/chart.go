package exporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"econviz/internal/config"
	"econviz/pkg/contracts/domain"
)

// Format is a chart export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for formats outside config.ExportFormats
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts a case-insensitive format name
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range config.ExportFormats {
		if s == f {
			return Format(s), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	default:
		return "text/csv; charset=utf-8"
	}
}

// FileName joins a base name and the format extension
func FileName(base string, f Format) string {
	if base == "" {
		base = config.DefaultExportBaseName
	}
	return base + "." + string(f)
}

// ChartHeaders are the column names of an exported derived table
var ChartHeaders = []string{
	"date", "series_id", "category", "type", "bucket", "value",
	"baseline", "baseline_date", "baseline_year", "change", "yoy_change",
	"partial_data", "href", "leaf",
}

// ChartRecords flattens the derived rows in chart order
func ChartRecords(data *domain.ChartData) [][]string {
	records := make([][]string, 0, len(data.Rows))
	for _, r := range data.Rows {
		records = append(records, []string{
			formatDate(r.Date),
			r.SeriesID,
			r.Category,
			string(r.Type),
			r.Bucket,
			formatValue(r.Value),
			formatValue(r.Baseline),
			formatDate(r.BaselineDate),
			formatInt(int64(r.BaselineYear)),
			formatRatio(r.Change),
			formatOptionalRatio(r.YoYChange),
			r.PartialData,
			r.Href,
			formatBool(r.Leaf),
		})
	}
	return records
}

// ChartExporter writes chart data as CSV, XLSX or JSON
type ChartExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
	logger    *slog.Logger
}

// NewChartExporter creates an exporter writing files under paths.ExportsDir
func NewChartExporter(paths *config.Paths, logger *slog.Logger) *ChartExporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &ChartExporter{
		csvWriter: NewCSVWriter(paths, logger),
		paths:     paths,
		logger:    logger,
	}
}

// Write encodes data onto out in the requested format
func (e *ChartExporter) Write(out io.Writer, format Format, data *domain.ChartData) error {
	if data == nil {
		return errors.New("no chart data to export")
	}

	switch format {
	case FormatCSV:
		return WriteCSVTo(out, WriteOptions{
			Headers:   ChartHeaders,
			Records:   ChartRecords(data),
			BOMPrefix: true,
		})
	case FormatXLSX:
		return writeXLSX(out, data)
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ExportFile writes data to filePath and returns the resolved location.
// Relative paths land in the exports directory.
func (e *ChartExporter) ExportFile(filePath string, format Format, data *domain.ChartData) (string, error) {
	if data == nil {
		return "", errors.New("no chart data to export")
	}
	fullPath := e.csvWriter.resolvePath(filePath)
	if format == FormatCSV {
		if err := e.csvWriter.WriteSimpleCSV(fullPath, ChartHeaders, ChartRecords(data)); err != nil {
			return "", err
		}
	} else if err := e.writeFile(fullPath, format, data); err != nil {
		return "", err
	}

	e.logger.Info("chart exported",
		slog.String("path", fullPath),
		slog.String("format", string(format)),
		slog.Int("rows", len(data.Rows)))
	return fullPath, nil
}

func (e *ChartExporter) writeFile(fullPath string, format Format, data *domain.ChartData) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, config.ExportFilePerms)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	if err := e.Write(file, format, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

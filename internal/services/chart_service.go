package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"econviz/internal/dataprocessing"
	apierrors "econviz/internal/errors"
	"econviz/internal/exporter"
	"econviz/internal/infrastructure"
	"econviz/pkg/contracts/domain"
)

// ExportResult is a rendered chart export ready to be served or saved
type ExportResult struct {
	FileName    string
	ContentType string
	Format      exporter.Format
	Rows        int
	Body        []byte
}

// ChartService runs the chart pipeline and exposes the series catalog
type ChartService struct {
	pipeline *dataprocessing.Pipeline
	exporter *exporter.ChartExporter
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
}

// NewChartService creates a chart service over a loaded pipeline
func NewChartService(pipeline *dataprocessing.Pipeline, exp *exporter.ChartExporter, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ChartService {
	if logger == nil {
		logger = slog.Default()
	}
	if exp == nil {
		exp = exporter.NewChartExporter(nil, logger)
	}
	return &ChartService{
		pipeline: pipeline,
		exporter: exp,
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "chart_service"),
	}
}

func (s *ChartService) table() (*dataprocessing.Table, error) {
	if s.pipeline == nil || s.pipeline.Table() == nil {
		return nil, ErrNoTableLoaded
	}
	return s.pipeline.Table(), nil
}

// Chart returns the chart data for one validated selection
func (s *ChartService) Chart(ctx context.Context, params domain.FilterParams) (*domain.ChartData, error) {
	if _, err := s.table(); err != nil {
		return nil, err
	}

	data, err := s.pipeline.Run(ctx, params)
	if err != nil {
		s.logger.DebugContext(ctx, "chart request rejected",
			slog.String("kind", dataprocessing.Classify(err).String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.DebugContext(ctx, "chart built",
		slog.Int("rows", len(data.Rows)),
		slog.Int("categories", len(data.Categories)),
		slog.Int("omitted", len(data.Omitted)))
	return data, nil
}

// Export runs the pipeline and renders the result in format.
// Pipeline errors are returned unchanged so callers can classify them.
func (s *ChartService) Export(ctx context.Context, params domain.FilterParams, format exporter.Format) (*ExportResult, error) {
	data, err := s.Chart(ctx, params)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.exporter.Write(&buf, format, data); err != nil {
		s.logger.ErrorContext(ctx, "chart export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return nil, apierrors.ExportError(string(format), err)
	}
	infrastructure.RecordExport(ctx, s.metrics, string(format))

	return &ExportResult{
		FileName:    exporter.FileName(ExportBaseName(params), format),
		ContentType: format.ContentType(),
		Format:      format,
		Rows:        len(data.Rows),
		Body:        buf.Bytes(),
	}, nil
}

// ExportBaseName derives a file name stem from the selection
func ExportBaseName(params domain.FilterParams) string {
	parts := []string{"chart", strconv.Itoa(params.StartYear), strconv.Itoa(params.EndYear)}
	if params.Parent != "" {
		parts = append(parts, params.Parent)
	}
	if params.ChartType == domain.ChartTypeBar {
		parts = append(parts, "bar")
	}
	return strings.Join(parts, "_")
}

// Catalog lists every series, optionally restricted to one indicator type
func (s *ChartService) Catalog(ctx context.Context, seriesType string) ([]domain.SeriesInfo, error) {
	table, err := s.table()
	if err != nil {
		return nil, err
	}

	catalog := table.Catalog()
	if seriesType == "" {
		return catalog, nil
	}

	typ, ok := domain.ParseSeriesType(seriesType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeriesType, seriesType)
	}
	filtered := make([]domain.SeriesInfo, 0, len(catalog))
	for _, info := range catalog {
		if info.Type == typ {
			filtered = append(filtered, info)
		}
	}
	return filtered, nil
}

// Series returns the catalog entry for one series id
func (s *ChartService) Series(ctx context.Context, id string) (domain.SeriesInfo, error) {
	table, err := s.table()
	if err != nil {
		return domain.SeriesInfo{}, err
	}
	info, ok := table.Series(id)
	if !ok {
		return domain.SeriesInfo{}, apierrors.SeriesNotFoundError(id)
	}
	return info, nil
}

// Children returns the drill-down targets under a series
func (s *ChartService) Children(ctx context.Context, id string) ([]domain.SeriesInfo, error) {
	if _, err := s.Series(ctx, id); err != nil {
		return nil, err
	}
	table, _ := s.table()
	return table.Children(id), nil
}

// TableSummary describes the loaded observation table
type TableSummary struct {
	Observations int    `json:"observations"`
	Series       int    `json:"series"`
	FirstDate    string `json:"first_date,omitempty"`
	LastDate     string `json:"last_date,omitempty"`
}

// Summary reports the size and date span of the loaded table
func (s *ChartService) Summary() (TableSummary, error) {
	table, err := s.table()
	if err != nil {
		return TableSummary{}, err
	}
	first, last := table.DateRange()
	summary := TableSummary{
		Observations: table.Len(),
		Series:       table.SeriesCount(),
	}
	if !first.IsZero() {
		summary.FirstDate = first.Format("2006-01-02")
		summary.LastDate = last.Format("2006-01-02")
	}
	return summary, nil
}

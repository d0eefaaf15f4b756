package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics holds the chart service instruments
type BusinessMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	PipelineRunsTotal     metric.Int64Counter
	PipelineDuration      metric.Float64Histogram
	PipelineStageDuration metric.Float64Histogram
	PipelineRowsProduced  metric.Int64Histogram
	PipelineErrors        metric.Int64Counter
	PipelineOmittedSeries metric.Int64Counter
	SnapshotRowsLoaded    metric.Int64Counter
	ExportsTotal          metric.Int64Counter
}

// CreateBusinessMetrics registers every instrument on meter
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m   BusinessMetrics
		err error
	)

	if m.HTTPRequestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, fmt.Errorf("http_requests_total: %w", err)
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("http_request_duration_seconds: %w", err)
	}
	if m.PipelineRunsTotal, err = meter.Int64Counter("chart_pipeline_runs_total",
		metric.WithDescription("Chart pipeline runs by chart type and outcome")); err != nil {
		return nil, fmt.Errorf("chart_pipeline_runs_total: %w", err)
	}
	if m.PipelineDuration, err = meter.Float64Histogram("chart_pipeline_duration_seconds",
		metric.WithDescription("End to end chart pipeline duration"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("chart_pipeline_duration_seconds: %w", err)
	}
	if m.PipelineStageDuration, err = meter.Float64Histogram("chart_pipeline_stage_duration_seconds",
		metric.WithDescription("Duration of each pipeline stage"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("chart_pipeline_stage_duration_seconds: %w", err)
	}
	if m.PipelineRowsProduced, err = meter.Int64Histogram("chart_pipeline_rows",
		metric.WithDescription("Rows returned per chart")); err != nil {
		return nil, fmt.Errorf("chart_pipeline_rows: %w", err)
	}
	if m.PipelineErrors, err = meter.Int64Counter("chart_pipeline_errors_total",
		metric.WithDescription("Chart pipeline failures by kind")); err != nil {
		return nil, fmt.Errorf("chart_pipeline_errors_total: %w", err)
	}
	if m.PipelineOmittedSeries, err = meter.Int64Counter("chart_pipeline_omitted_categories_total",
		metric.WithDescription("Categories dropped for lack of a baseline")); err != nil {
		return nil, fmt.Errorf("chart_pipeline_omitted_categories_total: %w", err)
	}
	if m.SnapshotRowsLoaded, err = meter.Int64Counter("snapshot_rows_loaded_total",
		metric.WithDescription("Observations loaded from snapshot files")); err != nil {
		return nil, fmt.Errorf("snapshot_rows_loaded_total: %w", err)
	}
	if m.ExportsTotal, err = meter.Int64Counter("chart_exports_total",
		metric.WithDescription("Chart exports by format")); err != nil {
		return nil, fmt.Errorf("chart_exports_total: %w", err)
	}

	return &m, nil
}

// RecordPipelineRun records one pipeline invocation. errKind is empty on success.
func RecordPipelineRun(ctx context.Context, m *BusinessMetrics, chartType string, duration time.Duration, rows, omitted int, errKind string) {
	if m == nil {
		return
	}

	outcome := "success"
	if errKind != "" {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("chart.type", chartType),
		attribute.String("outcome", outcome),
	)
	m.PipelineRunsTotal.Add(ctx, 1, attrs)
	m.PipelineDuration.Record(ctx, duration.Seconds(), attrs)

	if errKind != "" {
		m.PipelineErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("error.kind", errKind)))
		return
	}
	m.PipelineRowsProduced.Record(ctx, int64(rows), metric.WithAttributes(attribute.String("chart.type", chartType)))
	if omitted > 0 {
		m.PipelineOmittedSeries.Add(ctx, int64(omitted))
	}
}

// RecordPipelineStage records the duration of one pipeline stage
func RecordPipelineStage(ctx context.Context, m *BusinessMetrics, stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.PipelineStageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordSnapshotLoad records the number of observations loaded at startup
func RecordSnapshotLoad(ctx context.Context, m *BusinessMetrics, rows int) {
	if m == nil {
		return
	}
	m.SnapshotRowsLoaded.Add(ctx, int64(rows))
}

// RecordExport records a chart export in the given format
func RecordExport(ctx context.Context, m *BusinessMetrics, format string) {
	if m == nil {
		return
	}
	m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// RecordHTTPRequest records one served HTTP request
func RecordHTTPRequest(ctx context.Context, m *BusinessMetrics, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

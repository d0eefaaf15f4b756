package http

import (
	"context"

	"econviz/internal/exporter"
	"econviz/internal/services"
	"econviz/pkg/contracts/domain"
)

// ChartServiceInterface defines the chart operations used by ChartHandler
type ChartServiceInterface interface {
	Chart(ctx context.Context, params domain.FilterParams) (*domain.ChartData, error)
	Export(ctx context.Context, params domain.FilterParams, format exporter.Format) (*services.ExportResult, error)
}

// SeriesServiceInterface defines the catalog operations used by SeriesHandler
type SeriesServiceInterface interface {
	Catalog(ctx context.Context, seriesType string) ([]domain.SeriesInfo, error)
	Series(ctx context.Context, id string) (domain.SeriesInfo, error)
	Children(ctx context.Context, id string) ([]domain.SeriesInfo, error)
	Summary() (services.TableSummary, error)
}

// HealthServiceInterface defines the probes used by HealthHandler
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

var (
	_ ChartServiceInterface  = (*services.ChartService)(nil)
	_ SeriesServiceInterface = (*services.ChartService)(nil)
	_ HealthServiceInterface = (*services.HealthService)(nil)
)

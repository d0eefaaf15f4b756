package http

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"

	apierrors "econviz/internal/errors"
	"econviz/internal/exporter"
	"econviz/internal/services"
	"econviz/internal/shared/testutil"
	"econviz/internal/validation"
	"econviz/pkg/contracts/domain"
)

type MockChartService struct {
	mock.Mock
}

func (m *MockChartService) Chart(ctx context.Context, params domain.FilterParams) (*domain.ChartData, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChartData), args.Error(1)
}

func (m *MockChartService) Export(ctx context.Context, params domain.FilterParams, format exporter.Format) (*services.ExportResult, error) {
	args := m.Called(ctx, params, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportResult), args.Error(1)
}

type MockSeriesService struct {
	mock.Mock
}

func (m *MockSeriesService) Catalog(ctx context.Context, seriesType string) ([]domain.SeriesInfo, error) {
	args := m.Called(ctx, seriesType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeriesInfo), args.Error(1)
}

func (m *MockSeriesService) Series(ctx context.Context, id string) (domain.SeriesInfo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.SeriesInfo), args.Error(1)
}

func (m *MockSeriesService) Children(ctx context.Context, id string) ([]domain.SeriesInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeriesInfo), args.Error(1)
}

func (m *MockSeriesService) Summary() (services.TableSummary, error) {
	args := m.Called()
	return args.Get(0).(services.TableSummary), args.Error(1)
}

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

func testDeps(t *testing.T) (*slog.Logger, *validation.RequestValidator, *apierrors.ErrorHandler) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return logger, validation.NewRequestValidator(logger), apierrors.NewErrorHandler(logger, false)
}

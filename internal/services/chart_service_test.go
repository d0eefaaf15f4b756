package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"econviz/internal/dataprocessing"
	apierrors "econviz/internal/errors"
	"econviz/internal/exporter"
	"econviz/internal/infrastructure"
	"econviz/internal/shared/testutil"
	"econviz/pkg/contracts/domain"
)

func newChartService(t *testing.T, metrics *infrastructure.BusinessMetrics) *ChartService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	table, err := dataprocessing.NewTable(testutil.SmallSnapshot())
	require.NoError(t, err)

	pipeline := dataprocessing.NewPipeline(table,
		dataprocessing.WithChartURL("/chart"),
		dataprocessing.WithLogger(logger),
		dataprocessing.WithMetrics(metrics))
	return NewChartService(pipeline, exporter.NewChartExporter(nil, logger), metrics, logger)
}

func TestChartService_Chart(t *testing.T) {
	svc := newChartService(t, nil)

	data, err := svc.Chart(context.Background(), domain.DefaultFilterParams())
	require.NoError(t, err)
	assert.Equal(t, []string{"Food"}, data.Categories)
	assert.NotEmpty(t, data.Rows)
}

func TestChartService_ChartErrorsPassThrough(t *testing.T) {
	svc := newChartService(t, nil)

	params := domain.DefaultFilterParams()
	params.Inflation = domain.InflationExclude

	_, err := svc.Chart(context.Background(), params)
	assert.ErrorIs(t, err, dataprocessing.ErrNoSelection)
	assert.Equal(t, dataprocessing.KindNoSelection, dataprocessing.Classify(err))
}

func TestChartService_NoTable(t *testing.T) {
	svc := NewChartService(nil, nil, nil, nil)

	_, err := svc.Chart(context.Background(), domain.DefaultFilterParams())
	assert.ErrorIs(t, err, ErrNoTableLoaded)
	_, err = svc.Catalog(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoTableLoaded)
	_, err = svc.Summary()
	assert.ErrorIs(t, err, ErrNoTableLoaded)
}

func TestChartService_Export(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	svc := newChartService(t, metrics)
	params := domain.DefaultFilterParams()
	params.Parent = "CUSR0000SAF"

	result, err := svc.Export(context.Background(), params, exporter.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "chart_2000_2021_CUSR0000SAF.csv", result.FileName)
	assert.Contains(t, result.ContentType, "text/csv")

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(result.Body, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, exporter.ChartHeaders, records[0])
	assert.Len(t, records, result.Rows+1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["chart_exports_total"])
	assert.True(t, names["chart_pipeline_runs_total"])
}

func TestChartService_ExportErrors(t *testing.T) {
	svc := newChartService(t, nil)

	params := domain.DefaultFilterParams()
	params.StartYear, params.EndYear = 2010, 2000
	_, err := svc.Export(context.Background(), params, exporter.FormatCSV)
	assert.ErrorIs(t, err, dataprocessing.ErrInvalidRange)

	_, err = svc.Export(context.Background(), domain.DefaultFilterParams(), exporter.Format("pdf"))
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestExportBaseName(t *testing.T) {
	params := domain.DefaultFilterParams()
	assert.Equal(t, "chart_2000_2021", ExportBaseName(params))

	params.ChartType = domain.ChartTypeBar
	params.Parent = "CUSR0000SAF"
	assert.Equal(t, "chart_2000_2021_CUSR0000SAF_bar", ExportBaseName(params))
}

func TestChartService_Catalog(t *testing.T) {
	svc := newChartService(t, nil)
	ctx := context.Background()

	all, err := svc.Catalog(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	unemployment, err := svc.Catalog(ctx, "Unemployment")
	require.NoError(t, err)
	require.Len(t, unemployment, 1)
	assert.Equal(t, "LNS14000000", unemployment[0].SeriesID)

	_, err = svc.Catalog(ctx, "Housing")
	assert.ErrorIs(t, err, ErrUnknownSeriesType)
}

func TestChartService_SeriesAndChildren(t *testing.T) {
	svc := newChartService(t, nil)
	ctx := context.Background()

	info, err := svc.Series(ctx, "CUSR0000SAF")
	require.NoError(t, err)
	assert.Equal(t, "Food", info.Category)

	children, err := svc.Children(ctx, "CUSR0000SAF")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "CUSR0000SAF11", children[0].SeriesID)

	leafChildren, err := svc.Children(ctx, "CUSR0000SEFV")
	require.NoError(t, err)
	assert.Empty(t, leafChildren)

	_, err = svc.Children(ctx, "NOPE")
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "SERIES_NOT_FOUND", apiErr.ErrorCode)
}

func TestChartService_Summary(t *testing.T) {
	svc := newChartService(t, nil)

	summary, err := svc.Summary()
	require.NoError(t, err)
	assert.Equal(t, 5*300, summary.Observations)
	assert.Equal(t, 5, summary.Series)
	assert.Equal(t, "1998-01-01", summary.FirstDate)
	assert.Equal(t, "2022-12-01", summary.LastDate)
}

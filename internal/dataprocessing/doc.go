// Package dataprocessing turns a long-format table of economic indicator
// observations into chart-ready rows of cumulative percentage change.
//
// # Architecture
//
// The package is organized around one read-only store and four stages:
//
//  1. Table: validated, indexed observations loaded once at startup
//  2. Select: picks the rows a request asked for and tags drill-down links
//  3. Normalize: anchors each category at a baseline and computes change
//  4. View: restricts rows to the window the chart type displays
//
// Pipeline chains the stages behind a single Run call.
//
// # Usage
//
//	table, err := dataprocessing.LoadTable(ctx, []string{"combined_data.csv"}, logger)
//	if err != nil {
//	    return err
//	}
//	pipeline := dataprocessing.NewPipeline(table, dataprocessing.WithChartURL(chartURL))
//	data, err := pipeline.Run(ctx, params)
//
// # Data Flow
//
//	CSV/XLSX snapshots → LoadSources → NewTable → Select → Normalize → View → ChartData
//
// # Error Handling
//
// Terminal conditions are sentinel errors wrapped with context. Use Classify
// or errors.Is to tell them apart:
//
//   - ErrNoSelection and ErrInvalidRange are raised before any row is read
//   - ErrEmptyResult is raised when the selection has no rows
//   - ErrAmbiguousBaseline indicates duplicate rows for a category and date
//
// # Concurrency
//
// A Table is never written after NewTable returns. Every Run copies the rows
// it needs, so concurrent requests share the table without locks.
package dataprocessing

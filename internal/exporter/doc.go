// Package exporter writes chart data to files and HTTP responses.
//
// CSVWriter is the low-level CSV writer. It adds a UTF-8 BOM so Excel opens
// the files correctly and resolves relative paths against the exports
// directory. ChartExporter builds on it and flattens a derived table into
// one of three formats:
//
//	csv   ChartHeaders plus one record per derived row
//	xlsx  a Chart sheet with typed cells and a Meta sheet with the labels
//	json  the ChartData document as served by the API
//
// Change ratios are rounded to ChangePlaces decimals with shopspring/decimal,
// so exported numbers do not show binary float noise.
//
// Example usage:
//
//	exp := exporter.NewChartExporter(paths, logger)
//	path, err := exp.ExportFile("food.xlsx", exporter.FormatXLSX, data)
package exporter

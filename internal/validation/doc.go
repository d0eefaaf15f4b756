// Package validation checks chart requests and snapshot files before they
// reach the pipeline. Request checks use go-playground/validator struct tags
// with chart-specific tags (chart_type, inflation, earnings_bucket,
// unemployment_bucket, toggle, series_id); year ordering is left to the
// pipeline so its error precedence is preserved.
package validation

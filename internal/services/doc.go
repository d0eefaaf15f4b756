// Package services implements the business logic between the HTTP handlers
// and the chart pipeline.
//
// ChartService owns the shared Pipeline. It builds chart data for validated
// selections, renders exports, and answers catalog questions (every series,
// one series, the children of a series) from the loaded Table.
//
// HealthService reports liveness, readiness (table loaded and data
// directory reachable) and build information.
//
// Services take their collaborators and a *slog.Logger through their
// constructors and tag log records with a component attribute. Pipeline
// errors pass through unchanged so the HTTP layer can classify them with
// dataprocessing.Classify.
package services

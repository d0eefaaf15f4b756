// Package http implements the HTTP handlers of the chart service.
// Handlers stay thin: they parse and validate the request, call a service
// and render the result. Each handler depends on a small service interface
// so tests can substitute testify mocks.
//
// # Routes
//
//	GET /api/chart                   chart data for the query's selection
//	GET /api/chart/export?format=    csv, xlsx or json attachment
//	GET /api/series?type=            series catalog
//	GET /api/series/summary          table size and date span
//	GET /api/series/{id}             one catalog entry
//	GET /api/series/{id}/children    drill-down targets
//	GET /api/health[/ready|/live]    probes
//	GET /api/version                 build information
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details and are produced by
// errors.ErrorHandler:
//
//	{
//	  "type": "/errors/chart/no-selection",
//	  "title": "No Indicator Selected",
//	  "status": 422,
//	  "detail": "no indicator selected",
//	  "instance": "/api/chart",
//	  "error_kind": "no_selection",
//	  "trace_id": "..."
//	}
//
// Query parameters are checked by validation.RequestValidator before the
// pipeline runs, so unknown enumeration values answer 400 with the failing
// fields listed under "details".
package http

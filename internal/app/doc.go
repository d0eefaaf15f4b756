// Package app wires configuration, logging, telemetry, the snapshot table,
// the chart services and the HTTP router into one Application.
//
// # Initialization Flow
//
//	1. Load configuration from ECONVIZ_* variables and the optional YAML file
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Validate and load the indicator snapshot into an immutable table
//	4. Build the chart pipeline, the chart service and the health service
//	5. Mount the chi router and create the HTTP server
//
// A snapshot that cannot be loaded fails New with a SNAPSHOT AppError; the
// server never starts without data.
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM, then shuts the server down within
// Server.ShutdownTimeout, flushes telemetry and closes the log file.
package app

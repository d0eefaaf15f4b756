// Package config provides configuration management for econviz.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML file (config.yaml, configs/config.yaml or ECONVIZ_CONFIG_FILE)
//	3. Default values from struct tags (lowest priority)
//
// # Environment Variables
//
// All environment variables are namespaced ECONVIZ_<SECTION>_<FIELD>:
//
//	ECONVIZ_SERVER_PORT=8080
//	ECONVIZ_LOGGING_LEVEL=debug
//	ECONVIZ_DATA_SOURCES=cpi.csv,labor.xlsx
//	ECONVIZ_TELEMETRY_ENABLE_TRACING=true
//
// # Path Management
//
// Relative directories and snapshot sources are resolved against the
// executable directory, never the working directory:
//
//	cfg, _ := config.Load()
//	table, err := dataprocessing.LoadTable(ctx, cfg.SourcePaths(), logger)
//
// # Testing
//
// Default returns a configuration that needs neither environment variables
// nor a config file. LoadFrom accepts an explicit YAML path.
package config

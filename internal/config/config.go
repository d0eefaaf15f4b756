package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "ECONVIZ"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"10s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level     string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format    string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output    string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath  string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/econviz.log"`
	AddSource bool   `yaml:"add_source" envconfig:"ADD_SOURCE" default:"false"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ExportsDir    string `yaml:"exports_dir" envconfig:"EXPORTS_DIR" default:"exports"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// DataConfig describes the indicator snapshot and how charts link back to themselves
type DataConfig struct {
	Sources          []string `yaml:"sources" envconfig:"SOURCES" default:"combined_data.csv"`
	ChartURL         string   `yaml:"chart_url" envconfig:"CHART_URL" default:"/chart"`
	RootSeriesID     string   `yaml:"root_series_id" envconfig:"ROOT_SERIES_ID" default:"CUSR0000SA0"`
	DefaultStartYear int      `yaml:"default_start_year" envconfig:"DEFAULT_START_YEAR" default:"2000"`
	DefaultEndYear   int      `yaml:"default_end_year" envconfig:"DEFAULT_END_YEAR" default:"2021"`
}

// TelemetryConfig controls tracing and metrics export
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" default:"econviz"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING" default:"false"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS" default:"true"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileConfig, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileConfig, cfg, Default())
		}
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs overlays file values onto env values. A field set in the
// environment wins; a field still at its default takes the file's value.
func mergeConfigs(fileConfig, envConfig Config, defaults *Config) Config {
	pick := func(env, file, def string) string {
		if env == def && file != "" {
			return file
		}
		return env
	}
	pickInt := func(env, file, def int) int {
		if env == def && file != 0 {
			return file
		}
		return env
	}
	pickDur := func(env, file, def time.Duration) time.Duration {
		if env == def && file != 0 {
			return file
		}
		return env
	}

	s, fs, ds := &envConfig.Server, fileConfig.Server, defaults.Server
	s.Port = pickInt(s.Port, fs.Port, ds.Port)
	s.ReadTimeout = pickDur(s.ReadTimeout, fs.ReadTimeout, ds.ReadTimeout)
	s.WriteTimeout = pickDur(s.WriteTimeout, fs.WriteTimeout, ds.WriteTimeout)
	s.IdleTimeout = pickDur(s.IdleTimeout, fs.IdleTimeout, ds.IdleTimeout)
	s.MaxHeaderBytes = pickInt(s.MaxHeaderBytes, fs.MaxHeaderBytes, ds.MaxHeaderBytes)
	s.ShutdownTimeout = pickDur(s.ShutdownTimeout, fs.ShutdownTimeout, ds.ShutdownTimeout)
	s.RequestTimeout = pickDur(s.RequestTimeout, fs.RequestTimeout, ds.RequestTimeout)

	if len(fileConfig.Security.AllowedOrigins) > 0 && equalStrings(envConfig.Security.AllowedOrigins, defaults.Security.AllowedOrigins) {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if fileConfig.Security.RateLimit.RPS != 0 && envConfig.Security.RateLimit.RPS == defaults.Security.RateLimit.RPS {
		envConfig.Security.RateLimit.RPS = fileConfig.Security.RateLimit.RPS
	}
	envConfig.Security.RateLimit.Burst = pickInt(envConfig.Security.RateLimit.Burst,
		fileConfig.Security.RateLimit.Burst, defaults.Security.RateLimit.Burst)

	l, fl, dl := &envConfig.Logging, fileConfig.Logging, defaults.Logging
	l.Level = pick(l.Level, fl.Level, dl.Level)
	l.Format = pick(l.Format, fl.Format, dl.Format)
	l.Output = pick(l.Output, fl.Output, dl.Output)
	l.FilePath = pick(l.FilePath, fl.FilePath, dl.FilePath)
	l.AddSource = l.AddSource || fl.AddSource

	p, fp, dp := &envConfig.Paths, fileConfig.Paths, defaults.Paths
	p.DataDir = pick(p.DataDir, fp.DataDir, dp.DataDir)
	p.ExportsDir = pick(p.ExportsDir, fp.ExportsDir, dp.ExportsDir)
	p.LogsDir = pick(p.LogsDir, fp.LogsDir, dp.LogsDir)

	d, fd, dd := &envConfig.Data, fileConfig.Data, defaults.Data
	if len(fd.Sources) > 0 && equalStrings(d.Sources, dd.Sources) {
		d.Sources = fd.Sources
	}
	d.ChartURL = pick(d.ChartURL, fd.ChartURL, dd.ChartURL)
	d.RootSeriesID = pick(d.RootSeriesID, fd.RootSeriesID, dd.RootSeriesID)
	d.DefaultStartYear = pickInt(d.DefaultStartYear, fd.DefaultStartYear, dd.DefaultStartYear)
	d.DefaultEndYear = pickInt(d.DefaultEndYear, fd.DefaultEndYear, dd.DefaultEndYear)

	t, ft, dt := &envConfig.Telemetry, fileConfig.Telemetry, defaults.Telemetry
	t.ServiceName = pick(t.ServiceName, ft.ServiceName, dt.ServiceName)
	t.Environment = pick(t.Environment, ft.Environment, dt.Environment)
	t.TraceExporter = pick(t.TraceExporter, ft.TraceExporter, dt.TraceExporter)
	t.MetricExporter = pick(t.MetricExporter, ft.MetricExporter, dt.MetricExporter)
	t.EnableTracing = t.EnableTracing || ft.EnableTracing
	if ft.SampleRatio != 0 && t.SampleRatio == dt.SampleRatio {
		t.SampleRatio = ft.SampleRatio
	}

	return envConfig
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// resolvePaths anchors relative directories and sources at the executable directory
func (c *Config) resolvePaths() error {
	if c.Paths.ExecutableDir == "" {
		paths, err := GetPaths()
		if err != nil {
			return fmt.Errorf("failed to get paths: %w", err)
		}
		c.Paths.ExecutableDir = paths.ExecutableDir
	}
	return nil
}

// GetDataDir returns the resolved data directory path
func (c *Config) GetDataDir() string {
	return c.resolve(c.Paths.DataDir)
}

// GetExportsDir returns the resolved exports directory path
func (c *Config) GetExportsDir() string {
	return c.resolve(c.Paths.ExportsDir)
}

// GetLogsDir returns the resolved logs directory path
func (c *Config) GetLogsDir() string {
	return c.resolve(c.Paths.LogsDir)
}

// SourcePaths returns the snapshot files with relative entries placed under the data directory
func (c *Config) SourcePaths() []string {
	out := make([]string, 0, len(c.Data.Sources))
	for _, src := range c.Data.Sources {
		if filepath.IsAbs(src) {
			out = append(out, src)
			continue
		}
		out = append(out, filepath.Join(c.GetDataDir(), src))
	}
	return out
}

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.Paths.ExecutableDir, dir)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}

	switch c.Logging.Output {
	case "stdout", "stderr", "file", "both":
	default:
		return fmt.Errorf("unsupported log output: %s", c.Logging.Output)
	}

	if len(c.Data.Sources) == 0 {
		return fmt.Errorf("at least one data source must be specified")
	}

	if c.Data.RootSeriesID == "" {
		return fmt.Errorf("root series id must be set")
	}

	if c.Data.DefaultStartYear > c.Data.DefaultEndYear {
		return fmt.Errorf("default start year %d is after default end year %d",
			c.Data.DefaultStartYear, c.Data.DefaultEndYear)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("sample ratio must be within [0, 1], got %v", c.Telemetry.SampleRatio)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
		"../../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  10 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/econviz.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ExportsDir: "exports",
			LogsDir:    "logs",
		},
		Data: DataConfig{
			Sources:          []string{DefaultSnapshotName},
			ChartURL:         "/chart",
			RootSeriesID:     "CUSR0000SA0",
			DefaultStartYear: 2000,
			DefaultEndYear:   2021,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "econviz",
			Environment:    "development",
			TraceExporter:  "none",
			EnableMetrics:  true,
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}

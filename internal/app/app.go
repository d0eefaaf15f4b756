package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"econviz/internal/config"
	"econviz/internal/dataprocessing"
	apierrors "econviz/internal/errors"
	"econviz/internal/exporter"
	"econviz/internal/infrastructure"
	customMiddleware "econviz/internal/middleware"
	"econviz/internal/services"
	handlers "econviz/internal/transport/http"
	"econviz/internal/validation"
	"econviz/pkg/contracts"
)

// AppName is the display name used in startup logs
const AppName = "econviz - Economic Indicator Charts"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Table         *dataprocessing.Table
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Chart  *services.ChartService
	Health *services.HealthService
}

// NewApplication loads configuration from the environment and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err)
	}

	if cfg.Logging.FilePath != "" && !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = filepath.Join(cfg.Paths.ExecutableDir, cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component from an already loaded configuration.
// The snapshot is loaded eagerly; a missing or corrupt snapshot fails startup.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, apierrors.NewConfigError("configuration is required", nil)
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.GetFullVersionString()))

	paths := &config.Paths{
		ExecutableDir: cfg.Paths.ExecutableDir,
		DataDir:       cfg.GetDataDir(),
		ExportsDir:    cfg.GetExportsDir(),
		LogsDir:       cfg.GetLogsDir(),
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: contracts.Version,
		Environment:    cfg.Telemetry.Environment,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		MetricExporter: cfg.Telemetry.MetricExporter,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	if err := app.loadSnapshot(context.Background()); err != nil {
		return nil, err
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// loadSnapshot validates the configured sources and builds the in-memory table
func (a *Application) loadSnapshot(ctx context.Context) error {
	validator := validation.NewFileValidator(a.Logger)
	sources, err := validator.ExpandSources(a.Config.SourcePaths())
	if err != nil {
		return apierrors.NewSnapshotError("failed to discover snapshot files", err)
	}
	if err := validator.ValidateSnapshotSources(sources); err != nil {
		return apierrors.NewSnapshotError("snapshot sources are not usable", err)
	}

	start := time.Now()
	table, err := dataprocessing.LoadTable(ctx, sources, a.Logger)
	if err != nil {
		return apierrors.NewSnapshotError("failed to load snapshot", err)
	}
	infrastructure.RecordSnapshotLoad(ctx, a.Metrics, table.Len())

	a.Logger.InfoContext(ctx, "snapshot loaded",
		slog.Int("files", len(sources)),
		slog.Int("observations", table.Len()),
		slog.Duration("duration", time.Since(start)))

	a.Table = table
	return nil
}

// initializeServices builds the pipeline and the services on top of the loaded table
func (a *Application) initializeServices() {
	pipeline := dataprocessing.NewPipeline(a.Table,
		dataprocessing.WithRootSeries(a.Config.Data.RootSeriesID),
		dataprocessing.WithChartURL(a.Config.Data.ChartURL),
		dataprocessing.WithLogger(a.Logger),
		dataprocessing.WithTracer(a.OTelProviders.Tracer),
		dataprocessing.WithMetrics(a.Metrics),
	)

	chartService := services.NewChartService(pipeline,
		exporter.NewChartExporter(a.Paths, a.Logger), a.Metrics, a.Logger)
	healthService := services.NewHealthService(a.Paths.DataDir, chartService, a.Logger)

	a.Services = &ServiceContainer{
		Chart:  chartService,
		Health: healthService,
	}
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID → RealIP → OTel → Logger → Recoverer → security → limits.
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.isDevelopmentMode())

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(errorHandler.Recoverer)
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}
	r.Use(customMiddleware.Compress(5))

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	validator := validation.NewRequestValidator(a.Logger)
	chartHandler := handlers.NewChartHandler(a.Services.Chart, validator, a.Logger, errorHandler).
		WithDefaultYears(a.Config.Data.DefaultStartYear, a.Config.Data.DefaultEndYear)
	seriesHandler := handlers.NewSeriesHandler(a.Services.Chart, validator, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		r.With(render.SetContentType(render.ContentTypeJSON)).Group(func(r chi.Router) {
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/version", healthHandler.Version)
		})

		r.Mount("/chart", chartHandler.Routes())
		r.Mount("/series", seriesHandler.Routes())
	})

	// Drill-down hrefs point at the configured chart URL
	if chartURL := a.chartRoute(); chartURL != "" && chartURL != "/api/chart" {
		r.With(
			customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger),
			customMiddleware.TraceMiddleware("chart.drilldown"),
		).Get(chartURL, chartHandler.GetChart)
	}

	// Kubernetes-style probes at the root
	r.Get("/ready", healthHandler.ReadinessCheck)
	r.Get("/live", healthHandler.LivenessCheck)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// chartRoute returns the path component of the configured chart URL
func (a *Application) chartRoute() string {
	u := a.Config.Data.ChartURL
	if i := strings.Index(u, "://"); i >= 0 {
		rest := u[i+3:]
		slash := strings.Index(rest, "/")
		if slash < 0 {
			return ""
		}
		u = rest[slash:]
	}
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimSuffix(u, "/")
	if !strings.HasPrefix(u, "/") {
		return ""
	}
	return u
}

// getCORSConfig returns the CORS configuration for the read-only API
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

func (a *Application) isDevelopmentMode() bool {
	return a.Config.Telemetry.Environment == "development"
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts serving in the background. A listener failure cancels ctx via cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "startup health check warnings", slog.String("warnings", err.Error()))
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)),
		slog.Int("observations", a.Table.Len()))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx, stop); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("received shutdown signal")

	return a.Stop(context.Background())
}

// performStartupHealthCheck checks that the working directories are writable
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	validator := validation.NewFileValidator(a.Logger)

	var warnings []string
	directories := map[string]string{
		"Exports": a.Paths.ExportsDir,
		"Logs":    a.Paths.LogsDir,
	}
	for name, dir := range directories {
		if err := validator.ValidateOutputDirectory(dir); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "startup health check passed")
	return nil
}

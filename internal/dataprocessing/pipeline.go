package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"econviz/internal/infrastructure"
	"econviz/pkg/contracts/domain"
)

const tracerName = "econviz/dataprocessing"

// Pipeline turns filter parameters into chart data over a shared Table.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	table        *Table
	rootSeriesID string
	chartURL     string
	logger       *slog.Logger
	tracer       trace.Tracer
	metrics      *infrastructure.BusinessMetrics
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithRootSeries overrides the CPI aggregate series id
func WithRootSeries(id string) Option {
	return func(p *Pipeline) {
		if id != "" {
			p.rootSeriesID = id
		}
	}
}

// WithChartURL sets the endpoint used in drill-down links
func WithChartURL(u string) Option {
	return func(p *Pipeline) {
		p.chartURL = u
	}
}

// WithLogger sets the pipeline logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTracer sets the tracer used for stage spans
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithMetrics enables pipeline metric recording
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// NewPipeline creates a pipeline bound to table
func NewPipeline(table *Table, opts ...Option) *Pipeline {
	p := &Pipeline{
		table:        table,
		rootSeriesID: DefaultRootSeriesID,
		chartURL:     "/chart",
		logger:       slog.Default(),
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "pipeline"))
	return p
}

// Table returns the table the pipeline reads from
func (p *Pipeline) Table() *Table {
	return p.table
}

// CheckParams rejects parameter sets that cannot produce a chart.
// Nothing-selected is reported before an inverted year range.
func CheckParams(params domain.FilterParams) error {
	if params.NothingSelected() {
		return ErrNoSelection
	}
	if params.StartYear > params.EndYear {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRange, params.StartYear, params.EndYear)
	}
	switch params.ChartType {
	case domain.ChartTypeLine, domain.ChartTypeBar:
	default:
		return fmt.Errorf("%w: chart type %q", ErrInvalidParameter, params.ChartType)
	}
	switch params.Inflation {
	case domain.InflationExclude, domain.InflationByCategory, domain.InflationTotal:
	default:
		return fmt.Errorf("%w: inflation %q", ErrInvalidParameter, params.Inflation)
	}
	return nil
}

// Run executes check, select, normalize and view for one request
func (p *Pipeline) Run(ctx context.Context, params domain.FilterParams) (*domain.ChartData, error) {
	started := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("chart.type", string(params.ChartType)),
		attribute.Int("chart.start_year", params.StartYear),
		attribute.Int("chart.end_year", params.EndYear),
		attribute.String("chart.inflation", string(params.Inflation)),
	))
	defer span.End()

	data, err := p.run(ctx, params)

	kind := ""
	rows, omitted := 0, 0
	if err != nil {
		kind = Classify(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		rows, omitted = len(data.Rows), len(data.Omitted)
		span.SetAttributes(
			attribute.Int("chart.rows", rows),
			attribute.Int("chart.categories", len(data.Categories)),
		)
	}
	infrastructure.RecordPipelineRun(ctx, p.metrics, string(params.ChartType), time.Since(started), rows, omitted, kind)

	if err != nil {
		return nil, err
	}
	return data, nil
}

func (p *Pipeline) run(ctx context.Context, params domain.FilterParams) (*domain.ChartData, error) {
	if err := p.stage(ctx, "check", func(context.Context) error {
		return CheckParams(params)
	}); err != nil {
		return nil, err
	}
	if p.table == nil {
		return nil, fmt.Errorf("%w: no table loaded", ErrInvalidParameter)
	}

	baseHref := BuildBaseHref(p.chartURL, params)

	var selected []domain.DerivedRow
	if err := p.stage(ctx, "select", func(context.Context) error {
		var err error
		selected, err = Select(p.table, params, p.rootSeriesID, baseHref)
		return err
	}); err != nil {
		return nil, err
	}

	var normalized []domain.DerivedRow
	var omitted []string
	if err := p.stage(ctx, "normalize", func(context.Context) error {
		var err error
		normalized, omitted, err = Normalize(selected, params.StartYear)
		return err
	}); err != nil {
		return nil, err
	}
	if len(omitted) > 0 {
		p.logger.WarnContext(ctx, "categories without baseline omitted",
			slog.Int("start_year", params.StartYear),
			slog.Any("categories", omitted),
		)
	}

	var viewed []domain.DerivedRow
	_ = p.stage(ctx, "view", func(context.Context) error {
		viewed = View(normalized, params)
		return nil
	})

	categories := Categories(viewed)
	return &domain.ChartData{
		Rows:       viewed,
		BaseHref:   baseHref,
		Meta:       BuildMeta(params, len(categories)),
		Categories: categories,
		Omitted:    omitted,
	}, nil
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	started := time.Now()
	err := fn(ctx)
	infrastructure.RecordPipelineStage(ctx, p.metrics, name, time.Since(started))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

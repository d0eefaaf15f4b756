// Package main provides a command line exporter for indicator charts.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"econviz/internal/config"
	"econviz/internal/dataprocessing"
	apierrors "econviz/internal/errors"
	"econviz/internal/exporter"
	"econviz/internal/infrastructure"
	"econviz/internal/services"
	"econviz/internal/validation"
	"econviz/pkg/contracts"
	api "econviz/pkg/contracts/api/v1"
)

// chartFlags maps flag names to the query parameters they set
var chartFlags = []struct {
	flag  string
	query string
	usage string
}{
	{"chart-type", "chart_type", "Line Chart or Bar Chart"},
	{"start-year", "start_year", "first year of the window and the baseline year"},
	{"end-year", "end_year", "last year of the window"},
	{"inflation", "inflation", "Exclude, Total or By Category"},
	{"parent", "parent", "drill into the children of this series"},
	{"earnings", "earnings", "earnings bucket or Exclude"},
	{"unemployment", "unemployment", "unemployment bucket or Exclude"},
	{"stocks", "stocks", "Include or Exclude"},
	{"interest", "interest", "Include or Exclude"},
}

type options struct {
	configFile string
	dataDir    string
	exportsDir string
	sources    []string
	format     string
	output     string
	logLevel   string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "chartexport",
		Short: "Export an indicator chart to CSV, XLSX or JSON",
		Long: `chartexport loads the indicator snapshot, runs the same selection and
normalization as the chart API and writes the result to a file.

Relative output paths are written to the exports directory. Use --output -
to write to stdout.`,
		Version:       contracts.GetFullVersionString(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	f.StringVar(&opts.dataDir, "data-dir", "", "directory holding the snapshot files")
	f.StringVar(&opts.exportsDir, "exports-dir", "", "directory for relative output paths")
	f.StringSliceVar(&opts.sources, "sources", nil, "snapshot files, relative to the data directory")
	f.StringVarP(&opts.format, "format", "f", string(exporter.FormatCSV), "output format: csv, xlsx or json")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: derived from the selection)")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	for _, cf := range chartFlags {
		f.String(cf.flag, "", cf.usage)
	}

	return cmd
}

func run(cmd *cobra.Command, opts *options, stdout, stderr io.Writer) error {
	ctx := infrastructure.EnsureTraceID(cmd.Context())

	cfg, err := config.LoadFrom(opts.configFile)
	if err != nil {
		return err
	}
	if opts.dataDir != "" {
		cfg.Paths.DataDir = opts.dataDir
	}
	if opts.exportsDir != "" {
		cfg.Paths.ExportsDir = opts.exportsDir
	}
	if len(opts.sources) > 0 {
		cfg.Data.Sources = opts.sources
	}

	logCfg := cfg.Logging
	logCfg.Level = opts.logLevel
	logCfg.Format = "text"
	logger := infrastructure.NewLoggerWithWriter(stderr, logCfg)

	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	req, err := chartRequest(cmd, cfg)
	if err != nil {
		return err
	}
	if err := validation.NewRequestValidator(logger).ValidateChartRequest(req); err != nil {
		return fmt.Errorf("invalid chart selection: %w", err)
	}
	params := req.ToFilterParams()

	fileValidator := validation.NewFileValidator(logger)
	sources, err := fileValidator.ExpandSources(cfg.SourcePaths())
	if err != nil {
		return err
	}
	if err := fileValidator.ValidateSnapshotSources(sources); err != nil {
		return err
	}
	table, err := dataprocessing.LoadTable(ctx, sources, logger)
	if err != nil {
		return err
	}

	pipeline := dataprocessing.NewPipeline(table,
		dataprocessing.WithRootSeries(cfg.Data.RootSeriesID),
		dataprocessing.WithChartURL(cfg.Data.ChartURL),
		dataprocessing.WithLogger(logger),
	)
	data, err := pipeline.Run(ctx, params)
	if err != nil {
		return fmt.Errorf("%s: %w", dataprocessing.Classify(err), err)
	}
	if len(data.Omitted) > 0 {
		logger.Warn("categories omitted for lack of a baseline",
			slog.String("categories", strings.Join(data.Omitted, ", ")))
	}

	paths := &config.Paths{
		ExecutableDir: cfg.Paths.ExecutableDir,
		DataDir:       cfg.GetDataDir(),
		ExportsDir:    cfg.GetExportsDir(),
		LogsDir:       cfg.GetLogsDir(),
	}
	exp := exporter.NewChartExporter(paths, logger)

	if opts.output == "-" {
		return exp.Write(stdout, format, data)
	}

	name := opts.output
	if name == "" {
		name = exporter.FileName(services.ExportBaseName(params), format)
	}
	fullPath, err := exp.ExportFile(name, format, data)
	if err != nil {
		return apierrors.NewExportError("failed to write "+name, err)
	}
	fmt.Fprintln(stdout, fullPath)
	return nil
}

// chartRequest parses the chart flags the same way the API parses its query string
func chartRequest(cmd *cobra.Command, cfg *config.Config) (api.ChartRequest, error) {
	defaults := api.DefaultChartRequest()
	defaults.StartYear = cfg.Data.DefaultStartYear
	defaults.EndYear = cfg.Data.DefaultEndYear

	q := url.Values{}
	for _, cf := range chartFlags {
		if !cmd.Flags().Changed(cf.flag) {
			continue
		}
		v, err := cmd.Flags().GetString(cf.flag)
		if err != nil {
			return api.ChartRequest{}, err
		}
		q.Set(cf.query, v)
	}
	return api.ParseChartRequest(q, defaults)
}

// Command babynames loads yearly baby-name files into a single dataset,
// prints per-year births for a name or the most popular names, and exports
// the dataset to CSV or XLSX.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/toshiakit/string-vs-cell/internal/config"
	"github.com/toshiakit/string-vs-cell/internal/dataprocessing"
	apperrors "github.com/toshiakit/string-vs-cell/internal/errors"
	"github.com/toshiakit/string-vs-cell/internal/exporter"
	"github.com/toshiakit/string-vs-cell/internal/infrastructure"
	"github.com/toshiakit/string-vs-cell/internal/loader"
	"github.com/toshiakit/string-vs-cell/internal/validation"
	"github.com/toshiakit/string-vs-cell/pkg/contracts"
	"github.com/toshiakit/string-vs-cell/pkg/contracts/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cliFlags holds the parsed command line
type cliFlags struct {
	configPath   string
	dir          string
	from         int
	to           int
	glob         bool
	pattern      string
	delimiter    string
	skipFailures bool
	workers      int
	name         string
	sex          string
	top          int
	csvPath      string
	xlsxPath     string
	manifestPath string
	metricsPath  string
	bom          bool
	logLevel     string
	version      bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, map[string]bool, error) {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &cliFlags{}
	fs.StringVar(&f.configPath, "config", "", "YAML configuration file (defaults to babynames.yaml if present)")
	fs.StringVar(&f.dir, "dir", "", "directory containing yob<year>.txt files")
	fs.IntVar(&f.from, "from", 0, "first year to load (range mode)")
	fs.IntVar(&f.to, "to", 0, "last year to load (range mode)")
	fs.BoolVar(&f.glob, "glob", false, "discover files by wildcard instead of a year range")
	fs.StringVar(&f.pattern, "pattern", "", "file naming convention with %d (range mode) or wildcard (glob mode)")
	fs.StringVar(&f.delimiter, "delimiter", "", "field delimiter: comma | whitespace")
	fs.BoolVar(&f.skipFailures, "skip-failures", false, "log and skip files that fail instead of aborting")
	fs.IntVar(&f.workers, "workers", 0, "number of files parsed concurrently")
	fs.StringVar(&f.name, "name", "", "print births per year for this name")
	fs.StringVar(&f.sex, "sex", "", "restrict -name and -top to M or F")
	fs.IntVar(&f.top, "top", 0, "print the N most popular names")
	fs.StringVar(&f.csvPath, "csv", "", "export the dataset to this CSV file")
	fs.StringVar(&f.xlsxPath, "xlsx", "", "export the dataset to this XLSX workbook")
	fs.StringVar(&f.manifestPath, "manifest", "", "write the load manifest to this JSON file")
	fs.StringVar(&f.metricsPath, "metrics", "", "write Prometheus metrics to this textfile")
	fs.BoolVar(&f.bom, "bom", false, "prefix CSV exports with a UTF-8 BOM")
	fs.StringVar(&f.logLevel, "log-level", "", "debug | info | warn | error")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

// applyFlags overrides configuration values with explicitly set flags
func applyFlags(cfg *config.Config, f *cliFlags, set map[string]bool) {
	if set["dir"] {
		cfg.Loader.Dir = f.dir
	}
	if set["from"] {
		cfg.Loader.StartYear = f.from
		if !set["to"] && cfg.Loader.EndYear < f.from {
			cfg.Loader.EndYear = f.from
		}
	}
	if set["to"] {
		cfg.Loader.EndYear = f.to
	}
	if set["glob"] {
		cfg.Loader.Mode = config.ModeRange
		if f.glob {
			cfg.Loader.Mode = config.ModeGlob
		}
	}
	if set["pattern"] {
		if cfg.Loader.Mode == config.ModeGlob {
			cfg.Loader.GlobPattern = f.pattern
		} else {
			cfg.Loader.FilePattern = f.pattern
		}
	}
	if set["delimiter"] {
		cfg.Loader.Delimiter = f.delimiter
	}
	if set["skip-failures"] {
		cfg.Loader.SkipFailures = f.skipFailures
	}
	if set["workers"] {
		cfg.Loader.Workers = f.workers
	}
	if set["csv"] {
		cfg.Export.CSV = f.csvPath
	}
	if set["xlsx"] {
		cfg.Export.XLSX = f.xlsxPath
	}
	if set["manifest"] {
		cfg.Export.Manifest = f.manifestPath
	}
	if set["metrics"] {
		cfg.Telemetry.MetricsFile = f.metricsPath
	}
	if set["bom"] {
		cfg.Export.BOM = f.bom
	}
	if set["log-level"] {
		cfg.Logging.Level = f.logLevel
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, set, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return apperrors.ExitOK
	}
	if err != nil {
		return apperrors.ExitUsage
	}
	if f.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return apperrors.ExitOK
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return apperrors.NewErrorHandler(nil).Handle(ctx, apperrors.NewConfigError("failed to load configuration", err))
	}
	applyFlags(cfg, f, set)
	if err := cfg.Validate(); err != nil {
		return apperrors.NewErrorHandler(nil).Handle(ctx, apperrors.NewConfigError("invalid configuration", err))
	}

	sex := domain.Sex(strings.ToUpper(f.sex))
	if sex != "" && !sex.Valid() {
		return apperrors.NewErrorHandler(nil).Handle(ctx,
			apperrors.NewAppValidationError(fmt.Sprintf("-sex must be M or F, got %q", f.sex)))
	}

	paths, err := config.NewPaths(cfg.Export.BaseDir)
	if err != nil {
		return apperrors.NewErrorHandler(nil).Handle(ctx, apperrors.NewConfigError("invalid export base directory", err))
	}
	cfg.Loader.Dir = paths.ResolveInput(cfg.Loader.Dir)
	if cfg.Logging.Output != config.OutputConsole && !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = filepath.Join(paths.BaseDir, cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return apperrors.NewErrorHandler(nil).Handle(ctx, apperrors.NewConfigError("failed to initialize logger", err))
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.EnsureTraceID(ctx)
	handler := apperrors.NewErrorHandler(logger)
	paths.LogPathResolution(logger)

	app := &app{cfg: cfg, paths: paths, logger: logger, stdout: stdout, stderr: stderr}
	if err := app.execute(ctx, f, sex); err != nil {
		return handler.Handle(ctx, err)
	}
	return apperrors.ExitOK
}

// app is one configured invocation of the command
type app struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func (a *app) execute(ctx context.Context, f *cliFlags, sex domain.Sex) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultLoadTimeout)
	defer cancel()

	providers, err := a.initTelemetry()
	if err != nil {
		return err
	}
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.NewIngestMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	if err := a.preflight(); err != nil {
		return err
	}

	opts := loader.OptionsFromConfig(a.cfg.Loader)
	opts.Logger = a.logger
	opts.Tracer = providers.Tracer
	opts.Metrics = metrics
	l := loader.New(opts)

	var res *loader.Result
	if a.cfg.Loader.Mode == config.ModeGlob {
		res, err = l.LoadGlob(ctx, a.cfg.Loader.Dir, a.cfg.Loader.GlobPattern)
	} else {
		res, err = l.Load(ctx, a.cfg.Loader.Dir, a.cfg.Loader.Years())
	}
	if err != nil {
		return err
	}

	a.printSummary(res)
	if f.name != "" {
		a.printName(res.Dataset, f.name, sex)
	}
	if f.top > 0 {
		a.printTop(res.Dataset, sex, f.top)
	}

	if err := a.export(res); err != nil {
		return err
	}

	if a.cfg.Telemetry.MetricsFile != "" && providers.Registry == nil {
		a.logger.WarnContext(ctx, "Metrics file requested but telemetry is disabled",
			slog.String("path", a.cfg.Telemetry.MetricsFile))
	}
	if a.cfg.Telemetry.MetricsFile != "" && providers.Registry != nil {
		path := a.paths.Resolve(a.cfg.Telemetry.MetricsFile)
		if err := providers.WriteMetricsFile(path); err != nil {
			return apperrors.NewStorageError("failed to write metrics file", err).
				WithContext(apperrors.ContextPath, path)
		}
		a.logger.InfoContext(ctx, "Metrics written", slog.String("path", path))
	}

	return nil
}

func (a *app) initTelemetry() (*infrastructure.OTelProviders, error) {
	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.Environment = a.cfg.Telemetry.Environment
	otelCfg.TraceExporter = a.cfg.Telemetry.TraceExporter
	otelCfg.TraceWriter = a.stderr
	otelCfg.EnableTracing = a.cfg.Telemetry.Enabled
	otelCfg.EnableMetrics = a.cfg.Telemetry.Enabled

	providers, err := infrastructure.InitializeOTel(otelCfg, a.logger)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize telemetry", err)
	}
	return providers, nil
}

// preflight checks the input directory and export targets before any file is read
func (a *app) preflight() error {
	v := validation.NewFileValidator(a.logger)

	if err := v.ValidateInputDirectory(a.cfg.Loader.Dir, a.cfg.Loader.GlobPattern); err != nil {
		return err
	}

	exp := a.cfg.Export
	if exp.CSV != "" {
		if err := v.ValidateExtension(exp.CSV, ".csv"); err != nil {
			return err
		}
	}
	if exp.XLSX != "" {
		if err := v.ValidateExtension(exp.XLSX, ".xlsx"); err != nil {
			return err
		}
	}
	if exp.Manifest != "" {
		if err := v.ValidateExtension(exp.Manifest, ".json"); err != nil {
			return err
		}
	}

	for _, p := range []string{exp.CSV, exp.XLSX, exp.Manifest, a.cfg.Telemetry.MetricsFile} {
		if p == "" {
			continue
		}
		if err := v.ValidateOutputDirectory(filepath.Dir(a.paths.Resolve(p))); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) export(res *loader.Result) error {
	exp := a.cfg.Export

	if exp.CSV != "" {
		out, err := exporter.NewCSVWriter(a.paths).WriteDataset(exp.CSV, res.Dataset, exp.BOM)
		if err != nil {
			return apperrors.NewStorageError("CSV export failed", err).WithContext(apperrors.ContextPath, exp.CSV)
		}
		fmt.Fprintf(a.stdout, "wrote %s\n", out)
	}

	if exp.XLSX != "" {
		out, err := exporter.NewExcelWriter(a.paths).WriteDataset(exp.XLSX, res.Dataset)
		if err != nil {
			return apperrors.NewStorageError("XLSX export failed", err).WithContext(apperrors.ContextPath, exp.XLSX)
		}
		fmt.Fprintf(a.stdout, "wrote %s\n", out)
	}

	if exp.Manifest != "" {
		out, err := exporter.WriteManifest(a.paths, exp.Manifest, res.Manifest)
		if err != nil {
			return apperrors.NewStorageError("manifest export failed", err).WithContext(apperrors.ContextPath, exp.Manifest)
		}
		fmt.Fprintf(a.stdout, "wrote %s\n", out)
	}

	return nil
}

func (a *app) printSummary(res *loader.Result) {
	m := res.Manifest
	fmt.Fprintf(a.stdout, "loaded %d rows from %d files", m.TotalRows, len(m.Files))
	if years := res.Dataset.Years(); len(years) > 0 {
		fmt.Fprintf(a.stdout, " (%d-%d)", years[0], years[len(years)-1])
	}
	if len(m.Skipped) > 0 {
		fmt.Fprintf(a.stdout, ", skipped %d", len(m.Skipped))
	}
	fmt.Fprintln(a.stdout)
}

func (a *app) printName(ds domain.Dataset, name string, sex domain.Sex) {
	preds := []dataprocessing.Predicate{dataprocessing.NameIs(name)}
	if sex != "" {
		preds = append(preds, dataprocessing.SexIs(sex))
	}
	groups := dataprocessing.GroupByNameSexYear(dataprocessing.Filter(ds, preds...))

	if len(groups) == 0 {
		fmt.Fprintf(a.stdout, "no rows for %s\n", name)
		return
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tSEX\tBIRTHS")
	for _, g := range groups {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", g.Year, g.Sex, g.Births)
	}
	tw.Flush()
}

func (a *app) printTop(ds domain.Dataset, sex domain.Sex, n int) {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tBIRTHS")
	for i, t := range dataprocessing.TopNames(ds, sex, n) {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, t.Name, t.Births)
	}
	tw.Flush()
}

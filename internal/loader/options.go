package loader

import (
	"log/slog"
	"runtime"

	"go.opentelemetry.io/otel/trace"

	"github.com/toshiakit/string-vs-cell/internal/config"
	"github.com/toshiakit/string-vs-cell/internal/dataprocessing"
	"github.com/toshiakit/string-vs-cell/internal/infrastructure"
)

// Options configures a Loader. The zero value loads comma separated
// yob<year>.txt files sequentially and aborts on the first failure.
type Options struct {
	// FilePattern names the file for a year in range mode, e.g. "yob%d.txt"
	FilePattern string
	// GlobPattern is the wildcard used by LoadGlob when none is given
	GlobPattern string
	// FilePrefix and FileSuffix are stripped to recover the year in glob mode
	// when the glob itself is not a simple prefix*suffix
	FilePrefix string
	FileSuffix string

	Parse dataprocessing.ParseOptions

	// SkipFailures logs and records failed files instead of aborting the load
	SkipFailures bool
	// Concurrency bounds the number of files parsed at once; 1 is sequential
	Concurrency int

	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *infrastructure.IngestMetrics
}

// OptionsFromConfig maps the loader section of the configuration onto Options
func OptionsFromConfig(cfg config.LoaderConfig) Options {
	return Options{
		FilePattern:  cfg.FilePattern,
		GlobPattern:  cfg.GlobPattern,
		Parse:        dataprocessing.ParseOptions{Whitespace: cfg.Delimiter == config.DelimiterWhitespace},
		SkipFailures: cfg.SkipFailures,
		Concurrency:  cfg.Workers,
	}
}

func (o Options) withDefaults() Options {
	if o.FilePattern == "" {
		o.FilePattern = config.DefaultFilePattern
	}
	if o.GlobPattern == "" {
		o.GlobPattern = config.DefaultGlobPattern
	}
	if o.FilePrefix == "" && o.FileSuffix == "" {
		o.FilePrefix = config.DefaultFilePrefix
		o.FileSuffix = config.DefaultFileSuffix
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.Concurrency > runtime.GOMAXPROCS(0)*4 {
		o.Concurrency = runtime.GOMAXPROCS(0) * 4
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

package loader

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/toshiakit/string-vs-cell/internal/dataprocessing"
	apperrors "github.com/toshiakit/string-vs-cell/internal/errors"
	"github.com/toshiakit/string-vs-cell/internal/files"
	"github.com/toshiakit/string-vs-cell/internal/infrastructure"
	"github.com/toshiakit/string-vs-cell/pkg/contracts/domain"
)

// Result is the outcome of a successful load
type Result struct {
	Dataset  domain.Dataset
	Manifest *domain.LoadManifest
}

// Loader discovers per-year files, parses them, stamps each row with the
// year taken from the filename and concatenates everything in year order.
// A Loader holds no state between loads and is safe for concurrent use.
type Loader struct {
	opts      Options
	parser    *dataprocessing.Parser
	discovery *files.Discovery
	tracer    *loadTracer
	logger    *slog.Logger
}

// New creates a loader
func New(opts Options) *Loader {
	opts = opts.withDefaults()
	logger := infrastructure.WithComponent(opts.Logger, "loader")

	return &Loader{
		opts:      opts,
		parser:    dataprocessing.NewParser(opts.Parse, logger),
		discovery: files.NewDiscovery("", logger),
		tracer:    newLoadTracer(opts.Tracer, opts.Metrics),
		logger:    logger,
	}
}

// Load reads dir/yob<year>.txt for every year in ascending order.
// years is treated as a set: it is sorted and duplicates are dropped.
// Any missing or malformed file aborts the load unless SkipFailures is set.
func Load(ctx context.Context, dir string, years []int) (domain.Dataset, error) {
	res, err := New(Options{}).Load(ctx, dir, years)
	if err != nil {
		return nil, err
	}
	return res.Dataset, nil
}

// Load reads the conventional file for every year in ascending order
func (l *Loader) Load(ctx context.Context, dir string, years []int) (*Result, error) {
	if !strings.Contains(l.opts.FilePattern, "%d") {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("file pattern %q has no %%d year placeholder", l.opts.FilePattern), nil)
	}

	years = files.NormalizeYears(years)
	candidates := l.discovery.YearFiles(dir, l.opts.FilePattern, years)

	return l.run(ctx, dir, domain.DiscoveryRange, l.opts.FilePattern, candidates)
}

// LoadGlob reads every file in dir matching pattern, ordered by year.
// An empty pattern uses the configured glob.
func (l *Loader) LoadGlob(ctx context.Context, dir, pattern string) (*Result, error) {
	if pattern == "" {
		pattern = l.opts.GlobPattern
	}
	prefix, suffix, ok := files.PatternAffixes(pattern)
	if !ok {
		prefix, suffix = l.opts.FilePrefix, l.opts.FileSuffix
	}

	candidates, err := l.discovery.FindYearFiles(dir, pattern, prefix, suffix)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewFileNotFoundError(dir, err)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to discover files in %s", dir), err).
			WithContext(apperrors.ContextPath, dir)
	}

	return l.run(ctx, dir, domain.DiscoveryGlob, pattern, candidates)
}

// fileResult is the outcome of one source file
type fileResult struct {
	source  domain.SourceFile
	records []domain.Record
	err     error
}

func (l *Loader) run(ctx context.Context, dir string, mode domain.DiscoveryMode, pattern string, candidates []files.FileInfo) (*Result, error) {
	start := time.Now()

	manifest := &domain.LoadManifest{
		ID:        uuid.NewString(),
		Directory: dir,
		Mode:      mode,
		Pattern:   pattern,
		Years:     make([]int, 0, len(candidates)),
		Files:     []domain.SourceFile{},
		StartTime: start,
	}
	for _, c := range candidates {
		manifest.Years = append(manifest.Years, c.Year)
	}

	ctx, span := l.tracer.traceLoad(ctx, manifest, len(candidates))
	defer span.End()

	logger := l.logger.With(slog.String("load_id", manifest.ID))
	logger.InfoContext(ctx, "Loading dataset",
		slog.String("directory", dir),
		slog.String("mode", string(mode)),
		slog.String("pattern", pattern),
		slog.Int("files", len(candidates)))

	results, err := l.loadAll(ctx, candidates)
	if err != nil {
		manifest.Duration = time.Since(start).String()
		l.tracer.recordLoad(ctx, span, manifest, time.Since(start), err)
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r.records)
	}
	ds := make(domain.Dataset, 0, total)

	for _, r := range results {
		if r.err != nil {
			infrastructure.WithError(logger, r.err).WarnContext(ctx, "Skipping source file",
				slog.String("path", r.source.Path),
				slog.Int("year", r.source.Year))
			manifest.Skipped = append(manifest.Skipped, domain.SkippedFile{
				Path:   r.source.Path,
				Year:   r.source.Year,
				Reason: r.err.Error(),
			})
			continue
		}
		ds = append(ds, r.records...)
		manifest.Files = append(manifest.Files, r.source)
	}

	duration := time.Since(start)
	manifest.TotalRows = len(ds)
	manifest.Duration = duration.String()
	l.tracer.recordLoad(ctx, span, manifest, duration, nil)

	logger.InfoContext(ctx, "Dataset loaded",
		slog.Int("rows", len(ds)),
		slog.Int("files", len(manifest.Files)),
		slog.Int("skipped", len(manifest.Skipped)),
		slog.Duration("duration", duration))

	return &Result{Dataset: ds, Manifest: manifest}, nil
}

// loadAll loads every candidate into its own slot so the concatenation order
// never depends on completion order. In abort mode the returned error belongs
// to the earliest year that failed: a failure only stops files after it, so
// every earlier file is still read and may replace it as the reported error.
func (l *Loader) loadAll(ctx context.Context, candidates []files.FileInfo) ([]fileResult, error) {
	results := make([]fileResult, len(candidates))

	if l.opts.Concurrency <= 1 || len(candidates) <= 1 {
		for i, c := range candidates {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("load cancelled before %s: %w", c.Name, err)
			}
			results[i] = l.loadFile(ctx, c)
			if results[i].err != nil && !l.opts.SkipFailures {
				return nil, results[i].err
			}
		}
		return results, nil
	}

	// firstFailed is the lowest index that failed so far; only slots after it
	// are abandoned
	var firstFailed atomic.Int64
	firstFailed.Store(int64(len(candidates)))
	markFailed := func(i int) {
		for {
			cur := firstFailed.Load()
			if int64(i) >= cur || firstFailed.CompareAndSwap(cur, int64(i)) {
				return
			}
		}
	}

	var g errgroup.Group
	g.SetLimit(l.opts.Concurrency)
	for i, c := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = fileResult{source: sourceFile(c), err: err}
				return err
			}
			if int64(i) > firstFailed.Load() {
				return nil
			}
			results[i] = l.loadFile(ctx, c)
			if results[i].err != nil && !l.opts.SkipFailures {
				markFailed(i)
				return results[i].err
			}
			return nil
		})
	}
	waitErr := g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load cancelled: %w", err)
	}
	if waitErr != nil {
		if i := firstFailed.Load(); i < int64(len(results)) {
			return nil, results[i].err
		}
		return nil, waitErr
	}
	return results, nil
}

// loadFile reads, checksums, parses and stamps one file
func (l *Loader) loadFile(ctx context.Context, c files.FileInfo) fileResult {
	start := time.Now()
	ctx, span := l.tracer.traceFile(ctx, c.Path, c.Year)
	defer span.End()

	res := fileResult{source: sourceFile(c)}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			res.err = apperrors.NewFileNotFoundError(c.Path, err).
				WithContext(apperrors.ContextYear, c.Year)
		} else {
			res.err = apperrors.NewStorageError(fmt.Sprintf("failed to read %s", c.Path), err).
				WithContext(apperrors.ContextPath, c.Path).
				WithContext(apperrors.ContextYear, c.Year)
		}
		l.finishFile(ctx, span, res, time.Since(start))
		return res
	}

	sum := blake2b.Sum256(data)
	res.source.Size = int64(len(data))
	res.source.Checksum = hex.EncodeToString(sum[:])

	records, err := l.parser.ParseReader(bytes.NewReader(data), c.Path)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext(apperrors.ContextYear, c.Year)
		}
		res.err = err
		l.finishFile(ctx, span, res, time.Since(start))
		return res
	}

	for i := range records {
		records[i].Year = c.Year
	}
	res.records = records
	res.source.Rows = len(records)

	l.finishFile(ctx, span, res, time.Since(start))
	return res
}

func (l *Loader) finishFile(ctx context.Context, span trace.Span, res fileResult, duration time.Duration) {
	status := infrastructure.FileStatusLoaded
	switch {
	case res.err != nil && l.opts.SkipFailures:
		status = infrastructure.FileStatusSkipped
	case res.err != nil:
		status = infrastructure.FileStatusFailed
		infrastructure.WithError(l.logger, res.err).ErrorContext(ctx, "Source file failed",
			slog.String("path", res.source.Path),
			slog.Int("year", res.source.Year))
	default:
		l.logger.DebugContext(ctx, "Loaded source file",
			slog.String("path", res.source.Path),
			slog.Int("year", res.source.Year),
			slog.Int("rows", res.source.Rows))
	}

	l.tracer.recordFile(ctx, span, res.source.Year, res.source.Rows, duration, status, res.err)
}

func sourceFile(c files.FileInfo) domain.SourceFile {
	return domain.SourceFile{
		Path: c.Path,
		Name: c.Name,
		Year: c.Year,
		Size: c.Size,
	}
}

package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	apperrors "github.com/toshiakit/string-vs-cell/internal/errors"
)

const (
	ServiceName    = "babynames"
	ServiceVersion = "1.0.0"
	MeterName      = "github.com/toshiakit/string-vs-cell"
)

// File outcomes recorded on ingest_files_total
const (
	FileStatusLoaded  = "loaded"
	FileStatusSkipped = "skipped"
	FileStatusFailed  = "failed"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
	TraceWriter    io.Writer // stdout exporter destination, defaults to os.Stderr
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    "development",
		TraceExporter:  "none",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0,
	}
}

// InitializeOTel initializes tracing and metrics. Disabled signals fall back to no-op
// implementations so callers never need nil checks.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	logger.DebugContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := createResource(cfg)

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		w := cfg.TraceWriter
		if w == nil {
			w = os.Stderr
		}
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(w),
			stdouttrace.WithPrettyPrint(),
		)
	case "none", "":
		// Spans are still created and sampled so trace ids reach the logs
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	}
	if exporter != nil {
		// A CLI run is short; export synchronously so nothing is lost on exit.
		opts = append(opts, sdktrace.WithSyncer(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	otel.SetTracerProvider(tp)

	providers.Logger.DebugContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up OpenTelemetry metrics backed by a private Prometheus registry
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

	otel.SetMeterProvider(mp)

	providers.Logger.DebugContext(ctx, "Metrics initialized", slog.String("exporter", "prometheus"))

	return nil
}

// WriteMetricsFile dumps the Prometheus registry in text exposition format,
// suitable for the node_exporter textfile collector.
func (p *OTelProviders) WriteMetricsFile(path string) error {
	if p.Registry == nil {
		return fmt.Errorf("metrics are disabled")
	}
	return prometheus.WriteToTextfile(path, p.Registry)
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.DebugContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// IngestMetrics holds the instruments recorded by the dataset loader
type IngestMetrics struct {
	FilesTotal     metric.Int64Counter
	RowsTotal      metric.Int64Counter
	ErrorsTotal    metric.Int64Counter
	FileDuration   metric.Float64Histogram
	LoadDuration   metric.Float64Histogram
	DatasetRows    metric.Int64Gauge
	HeapAllocBytes metric.Int64Gauge
}

// NewIngestMetrics creates the loader instruments on meter
func NewIngestMetrics(meter metric.Meter) (*IngestMetrics, error) {
	filesTotal, err := meter.Int64Counter(
		"ingest_files_total",
		metric.WithDescription("Total number of source files processed, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	rowsTotal, err := meter.Int64Counter(
		"ingest_rows_total",
		metric.WithDescription("Total number of rows parsed from source files"),
	)
	if err != nil {
		return nil, err
	}

	errorsTotal, err := meter.Int64Counter(
		"ingest_errors_total",
		metric.WithDescription("Total number of ingestion errors, by error type"),
	)
	if err != nil {
		return nil, err
	}

	fileDuration, err := meter.Float64Histogram(
		"ingest_file_duration_seconds",
		metric.WithDescription("Time spent reading and parsing one source file"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	loadDuration, err := meter.Float64Histogram(
		"ingest_load_duration_seconds",
		metric.WithDescription("Time spent on a complete load"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	datasetRows, err := meter.Int64Gauge(
		"ingest_dataset_rows",
		metric.WithDescription("Number of rows in the most recently loaded dataset"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"ingest_heap_alloc_bytes",
		metric.WithDescription("Go heap bytes allocated right after the most recent load"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &IngestMetrics{
		FilesTotal:     filesTotal,
		RowsTotal:      rowsTotal,
		ErrorsTotal:    errorsTotal,
		FileDuration:   fileDuration,
		LoadDuration:   loadDuration,
		DatasetRows:    datasetRows,
		HeapAllocBytes: heapAlloc,
	}, nil
}

// RecordFileMetrics records the outcome of one source file
func RecordFileMetrics(ctx context.Context, metrics *IngestMetrics, year int, rows int, duration time.Duration, status string, err error) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Int("file.year", year),
		attribute.String("status", status),
	}

	metrics.FilesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	metrics.FileDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if rows > 0 {
		metrics.RowsTotal.Add(ctx, int64(rows))
	}

	if err != nil {
		metrics.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("error.type", errorTypeName(err))))
	}
}

// RecordLoadMetrics records a complete load
func RecordLoadMetrics(ctx context.Context, metrics *IngestMetrics, mode string, rows int, duration time.Duration, success bool) {
	if metrics == nil {
		return
	}

	status := "success"
	if !success {
		status = "failure"
	}
	metrics.LoadDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("discovery.mode", mode),
		attribute.String("status", status),
	))

	if success {
		metrics.DatasetRows.Record(ctx, int64(rows))

		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		metrics.HeapAllocBytes.Record(ctx, int64(ms.HeapAlloc))
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("ingest.metrics_recorded",
			trace.WithAttributes(
				attribute.Bool("success", success),
				attribute.Int("rows", rows),
				attribute.Float64("duration_seconds", duration.Seconds()),
			),
		)
	}
}

// errorTypeName prefers the application error type over the Go type name
func errorTypeName(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return string(appErr.Type)
	}
	return fmt.Sprintf("%T", err)
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

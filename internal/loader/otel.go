package loader

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/toshiakit/string-vs-cell/internal/infrastructure"
	"github.com/toshiakit/string-vs-cell/pkg/contracts/domain"
)

const (
	TracerName = "babynames.loader"
)

// loadTracer provides OpenTelemetry instrumentation for loads
type loadTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.IngestMetrics
}

func newLoadTracer(tracer trace.Tracer, metrics *infrastructure.IngestMetrics) *loadTracer {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &loadTracer{tracer: tracer, metrics: metrics}
}

// traceLoad creates a span for an entire load
func (lt *loadTracer) traceLoad(ctx context.Context, m *domain.LoadManifest, fileCount int) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("ingest.load.%s", m.Mode)
	return lt.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("load.id", m.ID),
			attribute.String("load.directory", m.Directory),
			attribute.String("load.mode", string(m.Mode)),
			attribute.String("load.pattern", m.Pattern),
			attribute.Int("load.files", fileCount),
		),
	)
}

// traceFile creates a span for one source file
func (lt *loadTracer) traceFile(ctx context.Context, path string, year int) (context.Context, trace.Span) {
	return lt.tracer.Start(ctx, "ingest.file",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("file.path", path),
			attribute.Int("file.year", year),
		),
	)
}

// recordFile closes out a file span and its metrics
func (lt *loadTracer) recordFile(ctx context.Context, span trace.Span, year, rows int, duration time.Duration, status string, err error) {
	span.SetAttributes(
		attribute.Int("file.rows", rows),
		attribute.String("file.status", status),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	infrastructure.RecordFileMetrics(ctx, lt.metrics, year, rows, duration, status, err)
}

// recordLoad closes out a load span and its metrics
func (lt *loadTracer) recordLoad(ctx context.Context, span trace.Span, m *domain.LoadManifest, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.Int("load.rows", m.TotalRows),
		attribute.Int("load.skipped", len(m.Skipped)),
		attribute.Float64("load.duration_seconds", duration.Seconds()),
	)

	infrastructure.RecordLoadMetrics(ctx, lt.metrics, string(m.Mode), m.TotalRows, duration, err == nil)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return
	}
	span.SetStatus(codes.Ok, "load completed")
}

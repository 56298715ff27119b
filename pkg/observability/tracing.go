package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the name of the tracer for extraction runs.
	TracerName = "contacts"
)

// Span attribute keys
const (
	AttrRunID      = "run_id"
	AttrMode       = "mode"
	AttrInput      = "input"
	AttrFile       = "file"
	AttrStage      = "stage"
	AttrBytes      = "bytes"
	AttrMatches    = "matches"
	AttrFiles      = "files"
	AttrRecords    = "records"
	AttrErrorCode  = "error_code"
	AttrRetryable  = "retryable"
	AttrDurationMs = "duration_ms"
)

// Span names
const (
	SpanRun  = "contacts.run"
	SpanFile = "contacts.file"
)

// Tracer provides spans for extraction runs. Without a configured provider
// the global no-op tracer is used and spans cost next to nothing.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global provider.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(TracerName),
	}
}

// NewTracerFrom creates a tracer from a specific provider.
func NewTracerFrom(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(TracerName)}
}

// StartRunSpan starts the root span of a run.
func (t *Tracer) StartRunSpan(ctx context.Context, runID, mode, input string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanRun,
		trace.WithAttributes(
			attribute.String(AttrRunID, runID),
			attribute.String(AttrMode, mode),
			attribute.String(AttrInput, input),
		),
	)
}

// StartFileSpan starts a span for one file.
func (t *Tracer) StartFileSpan(ctx context.Context, file string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanFile,
		trace.WithAttributes(
			attribute.String(AttrFile, file),
		),
	)
}

// StartStageSpan starts a span for one stage of a file.
func (t *Tracer) StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, fmt.Sprintf("contacts.stage.%s", stage),
		trace.WithAttributes(
			attribute.String(AttrStage, stage),
		),
	)
}

// SpanHelper provides convenient methods for working with the current span.
type SpanHelper struct {
	span trace.Span
}

// NewSpanHelper creates a new span helper for the given span.
func NewSpanHelper(span trace.Span) *SpanHelper {
	return &SpanHelper{span: span}
}

// SetFileResult sets the size of the file and the number of matches found
// in it.
func (h *SpanHelper) SetFileResult(bytes int, matches int) {
	h.span.SetAttributes(
		attribute.Int(AttrBytes, bytes),
		attribute.Int(AttrMatches, matches),
	)
}

// SetRunResult sets the totals of a run.
func (h *SpanHelper) SetRunResult(files, records int, durationMs int64) {
	h.span.SetAttributes(
		attribute.Int(AttrFiles, files),
		attribute.Int(AttrRecords, records),
		attribute.Int64(AttrDurationMs, durationMs),
	)
}

// SetError records an error on the span.
func (h *SpanHelper) SetError(err error, code string, retryable bool) {
	h.span.SetStatus(codes.Error, err.Error())
	h.span.SetAttributes(
		attribute.String(AttrErrorCode, code),
		attribute.Bool(AttrRetryable, retryable),
	)
	h.span.RecordError(err)
}

// SetSuccess marks the span as successful.
func (h *SpanHelper) SetSuccess() {
	h.span.SetStatus(codes.Ok, "")
}

// AddEvent adds an event to the span.
func (h *SpanHelper) AddEvent(name string, attrs ...attribute.KeyValue) {
	h.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

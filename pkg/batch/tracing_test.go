package batch

import (
	"context"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/otherjamesbrown/contacts-cli/pkg/observability"
)

// spanRecorder is a tracer provider that keeps the attributes of every span.
type spanRecorder struct {
	noop.TracerProvider

	mu    sync.Mutex
	spans []*recordedSpan
}

func (r *spanRecorder) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return recordingTracer{rec: r}
}

func (r *spanRecorder) named(name string) []*recordedSpan {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*recordedSpan
	for _, s := range r.spans {
		if s.name == name {
			out = append(out, s)
		}
	}
	return out
}

type recordingTracer struct {
	noop.Tracer
	rec *spanRecorder
}

func (t recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := &recordedSpan{name: name, attrs: make(map[attribute.Key]attribute.Value)}
	cfg := trace.NewSpanStartConfig(opts...)
	s.SetAttributes(cfg.Attributes()...)

	t.rec.mu.Lock()
	t.rec.spans = append(t.rec.spans, s)
	t.rec.mu.Unlock()
	return trace.ContextWithSpan(ctx, s), s
}

type recordedSpan struct {
	noop.Span
	name  string
	attrs map[attribute.Key]attribute.Value
}

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func TestProcess_FileSpans(t *testing.T) {
	rec := &spanRecorder{}
	p := newTestProcessor(t, fixture(), ProcessorConfig{Input: "docs"},
		WithTracer(observability.NewTracerFrom(rec)))

	if _, err := p.Process(context.Background()); err != nil {
		t.Fatalf("Process: %v", err)
	}

	spans := rec.named(observability.SpanFile)
	if len(spans) != 4 {
		t.Fatalf("expected 4 file spans, got %d", len(spans))
	}

	tests := []struct {
		file    string
		matches int64
	}{
		{"a.pdf.txt", 2},
		{"b.pdf.txt", 0},
		{"c.pdf.txt", 1},
	}
	for _, tt := range tests {
		var span *recordedSpan
		for _, s := range spans {
			if s.attrs[observability.AttrFile].AsString() == tt.file {
				span = s
			}
		}
		if span == nil {
			t.Errorf("no span for %s", tt.file)
			continue
		}
		if span.attrs[observability.AttrBytes].AsInt64() <= 0 {
			t.Errorf("%s: expected a byte count, got %v", tt.file, span.attrs[observability.AttrBytes])
		}
		if got := span.attrs[observability.AttrMatches].AsInt64(); got != tt.matches {
			t.Errorf("%s: matches = %d, want %d", tt.file, got, tt.matches)
		}
	}
}

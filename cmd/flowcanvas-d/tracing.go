package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// logExporter writes finished spans as JSON log lines.
type logExporter struct {
	mu sync.Mutex
	w  io.Writer
}

type spanLine struct {
	Level      string            `json:"level"`
	Msg        string            `json:"msg"`
	Span       string            `json:"span"`
	TraceID    string            `json:"trace_id"`
	SpanID     string            `json:"span_id"`
	DurationMS float64           `json:"duration_ms"`
	Status     string            `json:"status"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func newLogExporter(w io.Writer) *logExporter {
	return &logExporter{w: w}
}

func (e *logExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	enc := json.NewEncoder(e.w)
	for _, span := range spans {
		line := spanLine{
			Level:      "debug",
			Msg:        "span_finished",
			Span:       span.Name(),
			TraceID:    span.SpanContext().TraceID().String(),
			SpanID:     span.SpanContext().SpanID().String(),
			DurationMS: float64(span.EndTime().Sub(span.StartTime()).Microseconds()) / 1000,
			Status:     span.Status().Code.String(),
		}
		if attrs := span.Attributes(); len(attrs) > 0 {
			line.Attributes = make(map[string]string, len(attrs))
			for _, kv := range attrs {
				line.Attributes[string(kv.Key)] = kv.Value.Emit()
			}
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to write span: %w", err)
		}
	}
	return nil
}

func (e *logExporter) Shutdown(ctx context.Context) error {
	return nil
}

// setupTracing installs a global tracer provider that logs spans to w.
// The returned func flushes and stops it.
func setupTracing(w io.Writer) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(newLogExporter(w)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

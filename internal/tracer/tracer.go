// Package tracer wraps OpenTelemetry spans around statement execution.
package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies chainsql spans in an OpenTelemetry pipeline.
const InstrumentationName = "github.com/coregx/chainsql"

// Tracer starts spans.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

// Span is the subset of a tracing span chainsql uses.
type Span interface {
	SetAttributes(attrs ...attribute.KeyValue)
	RecordError(err error)
	SetStatus(code codes.Code, description string)
	End()
}

// Nop starts spans that record nothing.
type Nop struct{}

// Start returns ctx unchanged and a span that does nothing.
func (Nop) Start(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

type nopSpan struct{}

func (nopSpan) SetAttributes(...attribute.KeyValue) {}
func (nopSpan) RecordError(error)                   {}
func (nopSpan) SetStatus(codes.Code, string)        {}
func (nopSpan) End()                                {}

// Otel adapts an OpenTelemetry tracer.
type Otel struct {
	tracer trace.Tracer
}

// NewOtel wraps t.
func NewOtel(t trace.Tracer) *Otel {
	return &Otel{tracer: t}
}

// FromProvider returns a tracer named InstrumentationName from tp.
func FromProvider(tp trace.TracerProvider) *Otel {
	return NewOtel(tp.Tracer(InstrumentationName))
}

// Start starts an OpenTelemetry span of kind client.
func (t *Otel) Start(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) SetAttributes(attrs ...attribute.KeyValue) { s.span.SetAttributes(attrs...) }
func (s otelSpan) RecordError(err error)                     { s.span.RecordError(err) }
func (s otelSpan) SetStatus(code codes.Code, desc string)    { s.span.SetStatus(code, desc) }
func (s otelSpan) End()                                      { s.span.End() }

// Execution describes one statement handed to a database client.
// Attribute names follow the OpenTelemetry database conventions where one exists.
type Execution struct {
	System    string // db.system, e.g. "postgresql"
	Operation string // SELECT, INSERT, UPDATE, DELETE, BEGIN...
	Table     string
	SQL       string
	Params    int
	Rows      int
	Duration  time.Duration
	Err       error
}

// Annotate records e on span and sets the span status from e.Err.
func Annotate(span Span, e Execution) {
	attrs := []attribute.KeyValue{
		attribute.String("db.operation", e.Operation),
		attribute.String("db.statement", e.SQL),
		attribute.Int("db.chainsql.params", e.Params),
		attribute.Int("db.chainsql.rows", e.Rows),
		attribute.Float64("db.duration_ms", float64(e.Duration.Microseconds())/1000.0),
	}
	if e.System != "" {
		attrs = append(attrs, attribute.String("db.system", e.System))
	}
	if e.Table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", e.Table))
	}
	span.SetAttributes(attrs...)

	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

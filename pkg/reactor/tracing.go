package reactor

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vango-dev/reactor"

// getterSpan is an evaluation span plus the context to restore when it ends.
type getterSpan struct {
	span trace.Span
	end  func()
}

// startGetterSpan starts a span for one evaluation as a child of the
// current span, and makes it the parent of nested evaluations.
func (e *Engine) startGetterSpan(name string) getterSpan {
	prev := e.ctx
	ctx, span := e.tracer.Start(prev, "reactor.getter "+name,
		trace.WithAttributes(attribute.String("reactor.getter", name)))
	e.ctx = ctx
	return getterSpan{span: span, end: func() { e.ctx = prev }}
}

// endGetterSpan restores the parent context and ends the span.
func (e *Engine) endGetterSpan(s getterSpan, err error) {
	s.end()
	e.endSpan(s.span, err)
}

// endSpan records err on span and ends it.
func (e *Engine) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

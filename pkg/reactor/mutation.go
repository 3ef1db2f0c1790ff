package reactor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Context is what a mutation receives besides its payload.
type Context struct {
	// State is the live reactive root.
	State *Record

	// Getters is the live getter namespace.
	Getters *Getters

	// Externals is the resolved externals value.
	Externals any

	ctx    context.Context
	engine *Engine
}

// Context returns the context passed to CommitContext.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Commit runs another mutation from inside this one. Its event is emitted
// before the event of the enclosing mutation.
func (c *Context) Commit(name string, payload any) error {
	return c.engine.mutations.CommitContext(c.ctx, name, payload)
}

// PayloadFirstFunc is the mutation signature for PayloadFirst.
type PayloadFirstFunc func(payload any, ctx *Context) error

// ContextFirstFunc is the mutation signature for ContextFirst.
type ContextFirstFunc func(ctx *Context, payload any) error

type mutationRecord struct {
	name string
	fn   ContextFirstFunc
}

// Mutations is the mutation namespace of one engine.
type Mutations struct {
	engine *Engine
	byName map[string]*mutationRecord
}

func newMutations(e *Engine, fns map[string]any) (*Mutations, error) {
	ms := &Mutations{
		engine: e,
		byName: make(map[string]*mutationRecord, len(fns)),
	}
	for name, v := range fns {
		fn, err := normalizeMutation(name, v, e.config.MutationParamOrder)
		if err != nil {
			return nil, err
		}
		ms.byName[name] = &mutationRecord{name: name, fn: fn}
	}
	return ms, nil
}

// normalizeMutation adapts the shapes accepted for order to ContextFirstFunc.
func normalizeMutation(name string, v any, order ParamOrder) (ContextFirstFunc, error) {
	var fn ContextFirstFunc
	switch order {
	case PayloadFirst:
		switch f := v.(type) {
		case PayloadFirstFunc:
			if f != nil {
				fn = func(c *Context, p any) error { return f(p, c) }
			}
		case func(any, *Context) error:
			if f != nil {
				fn = func(c *Context, p any) error { return f(p, c) }
			}
		case func(any, *Context):
			if f != nil {
				fn = func(c *Context, p any) error { f(p, c); return nil }
			}
		}
	case ContextFirst:
		switch f := v.(type) {
		case ContextFirstFunc:
			fn = f
		case func(*Context, any) error:
			fn = f
		case func(*Context, any):
			if f != nil {
				fn = func(c *Context, p any) error { f(c, p); return nil }
			}
		}
	}
	if fn == nil {
		return nil, &InvalidMutationTypeError{Name: name, Kind: kindOf(v), Order: order}
	}
	return fn, nil
}

// Commit runs the named mutation with payload. See CommitContext.
func (ms *Mutations) Commit(name string, payload any) error {
	return ms.CommitContext(context.Background(), name, payload)
}

// CommitContext runs the named mutation with payload. Writes made by the
// mutation go through the reactive state like any other write. When the
// mutation returns nil, a MutationEvent is emitted to "mutation"
// subscribers; an error is returned unchanged and emits nothing.
func (ms *Mutations) CommitContext(ctx context.Context, name string, payload any) (err error) {
	rec, ok := ms.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMutation, name)
	}
	e := ms.engine

	ctx, span := e.tracer.Start(ctx, "reactor.mutation "+name,
		trace.WithAttributes(attribute.String("reactor.mutation", name)))
	prev := e.ctx
	e.ctx = ctx
	start := time.Now()
	defer func() {
		e.ctx = prev
		e.endSpan(span, err)
	}()

	mc := &Context{
		State:     e.root,
		Getters:   e.getters,
		Externals: e.Externals(),
		ctx:       ctx,
		engine:    e,
	}
	if err = rec.fn(mc, payload); err != nil {
		e.metrics.committed(name, time.Since(start), err)
		e.logger.Warn("reactor: mutation failed", "mutation", name, "err", err)
		return err
	}
	e.metrics.committed(name, time.Since(start), nil)

	ev := e.events.emitMutation(name, payload)
	e.logger.Debug("reactor: mutation committed", "mutation", name, "seq", ev.Seq)
	return nil
}

// Has reports whether a mutation with the given name exists.
func (ms *Mutations) Has(name string) bool {
	_, ok := ms.byName[name]
	return ok
}

// Names returns the mutation names in sorted order.
func (ms *Mutations) Names() []string {
	out := make([]string, 0, len(ms.byName))
	for name := range ms.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

package reactor

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Engine owns one reactive state tree together with its getters and
// mutations.
//
// An Engine is single-threaded: every read, write, evaluation and mutation
// runs to completion on the calling goroutine, and an Engine must not be used
// from several goroutines without external locking.
type Engine struct {
	config  Config
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	// ctx is the parent for spans started by getter evaluations. It is the
	// context of the running mutation, if any.
	ctx context.Context

	lastID    NodeID
	gettersID NodeID

	root      *Record
	getters   *Getters
	mutations *Mutations
	externals any

	// stack is the evaluation stack, innermost getter last.
	stack []*getterRecord

	events emitter
}

// New builds an engine from opts. It wraps opts.State and validates every
// getter and mutation; on any error no engine is returned.
func New(opts Options) (*Engine, error) {
	if opts.State == nil {
		return nil, ErrNoState
	}

	e := &Engine{
		config:    opts.Config,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
		ctx:       context.Background(),
		externals: opts.Externals,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	if e.externals == nil {
		e.externals = map[string]any{}
	}

	// The getters namespace takes the first index so each getter's cache
	// slot is an ordinary dependency entry.
	e.gettersID = e.alloc()

	rootValue, err := e.Wrap(opts.State)
	if err != nil {
		return nil, err
	}
	root, ok := rootValue.(*Record)
	if !ok {
		return nil, ErrInvalidState
	}
	root.root = true
	e.root = root

	if e.getters, err = newGetters(e, opts.Getters); err != nil {
		return nil, err
	}
	if e.mutations, err = newMutations(e, opts.Mutations); err != nil {
		return nil, err
	}

	e.logger.Debug("reactor: engine created",
		"getters", len(e.getters.order),
		"mutations", len(e.mutations.byName),
		"param_order", e.config.MutationParamOrder.String(),
		"key_set_policy", e.config.KeySetPolicy.String(),
	)
	return e, nil
}

// State returns the reactive root record.
func (e *Engine) State() *Record {
	return e.root
}

// Getters returns the getter namespace.
func (e *Engine) Getters() *Getters {
	return e.getters
}

// Mutations returns the mutation namespace.
func (e *Engine) Mutations() *Mutations {
	return e.mutations
}

// Commit is shorthand for e.Mutations().Commit(name, payload).
func (e *Engine) Commit(name string, payload any) error {
	return e.mutations.Commit(name, payload)
}

// Externals returns the externals value, calling it first when it was
// supplied as a func() any.
func (e *Engine) Externals() any {
	if fn, ok := e.externals.(func() any); ok {
		return fn()
	}
	return e.externals
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// IsReactive reports whether v is nil or a node owned by this engine.
func (e *Engine) IsReactive(v any) bool {
	if v == nil {
		return true
	}
	n, ok := v.(Node)
	return ok && IsReactive(v) && n.owner() == e
}

package reactor

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// ParamOrder selects the argument order of mutation functions.
type ParamOrder int

const (
	// PayloadFirst expects func(payload any, ctx *Context) error.
	// This is the default.
	PayloadFirst ParamOrder = iota

	// ContextFirst expects func(ctx *Context, payload any) error.
	ContextFirst
)

// String returns the order's name.
func (o ParamOrder) String() string {
	switch o {
	case PayloadFirst:
		return "payload-first"
	case ContextFirst:
		return "context-first"
	default:
		return "unknown"
	}
}

// KeySetPolicy controls whether keys may be added to or deleted from the
// root state record after construction.
type KeySetPolicy int

const (
	// KeySetStrictRoot forbids adding or deleting root state keys; such
	// writes fail with ErrKeySetForbidden. Nested records are unrestricted.
	// This is the default.
	KeySetStrictRoot KeySetPolicy = iota

	// KeySetPermissive allows key-set changes everywhere. Readers of the key
	// set are invalidated through the collection-wide key.
	KeySetPermissive
)

// String returns the policy's name.
func (p KeySetPolicy) String() string {
	switch p {
	case KeySetStrictRoot:
		return "strict-root"
	case KeySetPermissive:
		return "permissive"
	default:
		return "unknown"
	}
}

// Config holds engine behavior settings.
type Config struct {
	// MutationParamOrder selects the mutation function signature.
	// Default: PayloadFirst.
	MutationParamOrder ParamOrder

	// KeySetPolicy controls key additions and deletions on the root record.
	// Default: KeySetStrictRoot.
	KeySetPolicy KeySetPolicy
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MutationParamOrder: PayloadFirst,
		KeySetPolicy:       KeySetStrictRoot,
	}
}

// Options is the construction input of an engine.
type Options struct {
	// State is the initial raw data tree. It must be a string-keyed map.
	// Required.
	State any

	// Getters maps names to getter functions. See GetterFunc for the
	// accepted shapes.
	Getters map[string]any

	// Mutations maps names to mutation functions whose signature matches
	// Config.MutationParamOrder.
	Mutations map[string]any

	// Externals is a read-only value, or a func() any resolved on every
	// access. It is never wrapped or tracked.
	Externals any

	// Config holds behavior settings. The zero value is DefaultConfig().
	Config Config

	// Logger is the structured logger for the engine.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics receives engine counters. If nil, metrics are disabled.
	Metrics *Metrics

	// Tracer creates spans for mutations and getter evaluations.
	// If nil, the global OpenTelemetry tracer provider is used.
	Tracer trace.Tracer
}

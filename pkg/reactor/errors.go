package reactor

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNoState is returned by New when Options.State is nil.
var ErrNoState = errors.New("reactor: state is required")

// ErrInvalidState is returned by New when Options.State is not a
// string-keyed map (or a *Record of the same engine).
var ErrInvalidState = errors.New("reactor: state must be a record")

// ErrForeignNode is returned when a handle owned by one engine is written
// into another engine's tree. Each engine wraps its own nodes.
var ErrForeignNode = errors.New("reactor: node belongs to another engine")

// ErrIndexOutOfRange is returned by List writes past the end of the list.
var ErrIndexOutOfRange = errors.New("reactor: list index out of range")

// ErrUnknownGetter is returned when reading a getter name that was not
// supplied at construction.
var ErrUnknownGetter = errors.New("reactor: unknown getter")

// ErrUnknownMutation is returned when committing a mutation name that was
// not supplied at construction.
var ErrUnknownMutation = errors.New("reactor: unknown mutation")

// ErrCircularGetter is returned when a getter reads itself, directly or
// through other getters, while it is being evaluated.
var ErrCircularGetter = errors.New("reactor: circular getter dependency")

// ErrKeySetForbidden is returned when adding or deleting a key is not
// permitted by the configured KeySetPolicy.
var ErrKeySetForbidden = errors.New("reactor: mutation of key set forbidden")

// InvalidGetterTypeError is returned by New when a getter value is not a
// supported function.
type InvalidGetterTypeError struct {
	Name string // getter name
	Kind string // kind of the supplied value, e.g. "number"
}

// Error implements the error interface.
func (e *InvalidGetterTypeError) Error() string {
	return fmt.Sprintf("reactor: getter %q must be a function, got %s", e.Name, e.Kind)
}

// InvalidMutationTypeError is returned by New when a mutation value does not
// match the signature selected by Config.MutationParamOrder.
type InvalidMutationTypeError struct {
	Name  string
	Kind  string
	Order ParamOrder
}

// Error implements the error interface.
func (e *InvalidMutationTypeError) Error() string {
	return fmt.Sprintf("reactor: mutation %q must be a %s function, got %s", e.Name, e.Order, e.Kind)
}

// KeySetError reports a forbidden key addition or deletion.
type KeySetError struct {
	Op  string // "add" or "delete"
	Key string
}

// Error implements the error interface.
func (e *KeySetError) Error() string {
	return fmt.Sprintf("%s: %s key %q on root state", ErrKeySetForbidden, e.Op, e.Key)
}

// Unwrap returns ErrKeySetForbidden for errors.Is support.
func (e *KeySetError) Unwrap() error {
	return ErrKeySetForbidden
}

// kindOf names the kind of v for type errors.
func kindOf(v any) string {
	if v == nil {
		return "nil"
	}
	switch k := reflect.TypeOf(v).Kind(); k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return "number"
	case reflect.Array:
		return "slice"
	case reflect.Pointer:
		return "pointer"
	default:
		return k.String()
	}
}

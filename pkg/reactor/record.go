package reactor

import (
	"fmt"
	"slices"
)

// Record is a reactive string-keyed node. Keys keep insertion order.
//
// Reads through Get, Has, Keys, Len and Range are tracked against the
// getter currently being evaluated; Set and Delete invalidate the getters
// that read the affected keys. The Peek methods read without tracking.
type Record struct {
	id     NodeID
	engine *Engine
	root   bool

	keys   []string
	values map[string]any
}

// ID returns the record's identity tag.
func (r *Record) ID() NodeID { return r.id }

func (r *Record) owner() *Engine { return r.engine }

// Get returns the value stored under key, or nil. Function values are
// returned without tracking.
func (r *Record) Get(key string) any {
	v := r.values[key]
	if isFunc(v) {
		return v
	}
	r.engine.track(keyDep(r.id, key))
	return v
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	r.engine.track(keyDep(r.id, key))
	_, ok := r.values[key]
	return ok
}

// Keys returns the keys in insertion order. The key set is tracked as a
// whole, so adding or deleting any key invalidates the reader.
func (r *Record) Keys() []string {
	r.engine.track(wholeDep(r.id))
	return slices.Clone(r.keys)
}

// Len returns the number of keys, tracked like Keys.
func (r *Record) Len() int {
	r.engine.track(wholeDep(r.id))
	return len(r.keys)
}

// Range calls fn for each key in order until fn returns false. The key set
// and every visited key are tracked.
func (r *Record) Range(fn func(key string, value any) bool) {
	r.engine.track(wholeDep(r.id))
	for _, k := range slices.Clone(r.keys) {
		if !fn(k, r.Get(k)) {
			return
		}
	}
}

// GetRecord returns the child record under key, or nil.
func (r *Record) GetRecord(key string) *Record {
	child, _ := r.Get(key).(*Record)
	return child
}

// GetList returns the child list under key, or nil.
func (r *Record) GetList(key string) *List {
	child, _ := r.Get(key).(*List)
	return child
}

// GetString returns the string under key, or "".
func (r *Record) GetString(key string) string {
	s, _ := r.Get(key).(string)
	return s
}

// GetBool returns the bool under key, or false.
func (r *Record) GetBool(key string) bool {
	b, _ := r.Get(key).(bool)
	return b
}

// GetInt returns the integer under key. Floats are truncated.
func (r *Record) GetInt(key string) int {
	n, _ := toInt(r.Get(key))
	return n
}

// GetFloat returns the number under key as float64.
func (r *Record) GetFloat(key string) float64 {
	f, _ := toFloat(r.Get(key))
	return f
}

// Peek returns the value under key without tracking.
func (r *Record) Peek(key string) any {
	return r.values[key]
}

// PeekKeys returns the keys without tracking.
func (r *Record) PeekKeys() []string {
	return slices.Clone(r.keys)
}

// PeekLen returns the number of keys without tracking.
func (r *Record) PeekLen() int {
	return len(r.keys)
}

// Set stores value under key. Writing the identical value is a no-op.
// Composite values are wrapped before they are stored. Adding a key also
// invalidates readers of the key set.
func (r *Record) Set(key string, value any) error {
	old, exists := r.values[key]
	if exists && identical(old, value) {
		return nil
	}
	if !exists {
		if err := r.engine.checkKeySet(r, "add", key); err != nil {
			return err
		}
	}
	wrapped, err := r.engine.Wrap(value)
	if err != nil {
		return fmt.Errorf("reactor: set %q: %w", key, err)
	}
	if !exists {
		r.engine.trigger(wholeDep(r.id))
	}
	r.engine.trigger(keyDep(r.id, key))
	if !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = wrapped
	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (r *Record) Delete(key string) error {
	if _, ok := r.values[key]; !ok {
		return nil
	}
	if err := r.engine.checkKeySet(r, "delete", key); err != nil {
		return err
	}
	r.engine.trigger(keyDep(r.id, key))
	r.engine.trigger(wholeDep(r.id))
	delete(r.values, key)
	if i := slices.Index(r.keys, key); i >= 0 {
		r.keys = slices.Delete(r.keys, i, i+1)
	}
	return nil
}

// Update replaces the value under key with fn(current). The read of the
// current value is not tracked.
func (r *Record) Update(key string, fn func(any) any) error {
	return r.Set(key, fn(r.Peek(key)))
}

// checkKeySet enforces the key-set policy for r.
func (e *Engine) checkKeySet(r *Record, op, key string) error {
	if r.root && e.config.KeySetPolicy == KeySetStrictRoot {
		return &KeySetError{Op: op, Key: key}
	}
	return nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

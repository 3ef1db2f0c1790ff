package reactor

import (
	"fmt"
	"reflect"
	"sort"
)

// Wrap returns the reactive form of v.
//
// Scalars, functions, Frozen values and nil are returned unchanged, as are
// handles already owned by this engine. String-keyed maps become *Record and
// slices or arrays become *List, recursively. The raw input is copied, so
// later changes to it are not observed. Shared and cyclic references in v
// are preserved as shared and cyclic handles.
func (e *Engine) Wrap(v any) (any, error) {
	w := wrapper{engine: e}
	return w.wrap(v)
}

type seenKey struct {
	kind reflect.Kind
	ptr  uintptr
	len  int
}

// wrapper holds the per-call table of raw composites already converted,
// which is what terminates wrapping on cyclic input.
type wrapper struct {
	engine *Engine
	seen   map[seenKey]Node
}

func (w *wrapper) wrap(v any) (any, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case *Record:
		if n == nil {
			return nil, nil
		}
		if n.engine != w.engine {
			return nil, ErrForeignNode
		}
		return n, nil
	case *List:
		if n == nil {
			return nil, nil
		}
		if n.engine != w.engine {
			return nil, ErrForeignNode
		}
		return n, nil
	case Frozen, []byte, string, bool, int, int64, float64:
		return v, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return w.wrapMap(rv)
	case reflect.Slice:
		return w.wrapSlice(rv, true)
	case reflect.Array:
		return w.wrapSlice(rv, false)
	case reflect.Pointer:
		// A pointer to a map or slice is followed; any other pointer is a scalar.
		if rv.IsNil() {
			return v, nil
		}
		switch rv.Elem().Kind() {
		case reflect.Map, reflect.Slice:
			return w.wrap(rv.Elem().Interface())
		}
	}
	return v, nil
}

func (w *wrapper) remember(k seenKey, n Node) {
	if k.ptr == 0 {
		return
	}
	if w.seen == nil {
		w.seen = make(map[seenKey]Node)
	}
	w.seen[k] = n
}

func (w *wrapper) lookup(k seenKey) (Node, bool) {
	if k.ptr == 0 || w.seen == nil {
		return nil, false
	}
	n, ok := w.seen[k]
	return n, ok
}

func (w *wrapper) wrapMap(rv reflect.Value) (any, error) {
	k := seenKey{kind: reflect.Map, ptr: rv.Pointer()}
	if n, ok := w.lookup(k); ok {
		return n, nil
	}
	rec := w.engine.newRecord(rv.Len())
	w.remember(k, rec)

	keys := make([]string, 0, rv.Len())
	raw := make(map[string]reflect.Value, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := mapKey(iter.Key())
		keys = append(keys, key)
		raw[key] = iter.Value()
	}
	sort.Strings(keys)

	for _, key := range keys {
		child, err := w.wrap(raw[key].Interface())
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		rec.keys = append(rec.keys, key)
		rec.values[key] = child
	}
	return rec, nil
}

func (w *wrapper) wrapSlice(rv reflect.Value, addressable bool) (any, error) {
	var k seenKey
	if addressable && rv.Len() > 0 {
		k = seenKey{kind: reflect.Slice, ptr: rv.Pointer(), len: rv.Len()}
		if n, ok := w.lookup(k); ok {
			return n, nil
		}
	}
	list := w.engine.newList(rv.Len())
	w.remember(k, list)

	for i := 0; i < rv.Len(); i++ {
		child, err := w.wrap(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		list.items = append(list.items, child)
	}
	return list, nil
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

func (e *Engine) newRecord(capacity int) *Record {
	r := &Record{
		engine: e,
		keys:   make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
	r.id = e.alloc()
	return r
}

func (e *Engine) newList(capacity int) *List {
	l := &List{
		engine: e,
		items:  make([]any, 0, capacity),
	}
	l.id = e.alloc()
	return l
}

// alloc hands out the next node index. Indices are never reused.
func (e *Engine) alloc() NodeID {
	e.lastID++
	e.metrics.nodeAllocated()
	return e.lastID
}

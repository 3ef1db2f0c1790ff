package reactor

import (
	"fmt"
	"sort"
	"time"
)

// GetterFunc computes a derived value from the live state, the other
// getters, and the engine's externals. Getters should be pure: their
// result may only depend on what they read through the handles.
type GetterFunc func(state *Record, getters *Getters, externals any) (any, error)

// getterRecord is the cache entry of one getter. A zero-value record is
// UNCOMPUTED, which behaves exactly like INVALID.
type getterRecord struct {
	name string
	fn   GetterFunc

	// value is retained while invalid; it is only returned once valid again.
	value any
	valid bool

	// computing guards against a getter reading itself.
	computing bool

	// stale is set when a dependency is written while the getter is still
	// computing, so the result is not cached as valid.
	stale bool

	deps *registry

	// slot is the dependency entry representing this getter's cached value.
	slot dep

	evaluations uint64
}

// invalidate flips a valid record to invalid. It reports whether the record
// was valid.
func (g *getterRecord) invalidate() bool {
	if g.computing {
		g.stale = true
	}
	if !g.valid {
		return false
	}
	g.valid = false
	return true
}

// Getters is the namespace of derived values of one engine.
//
// Reading a getter returns its cached value when valid and evaluates it
// otherwise. Reads made while another getter is evaluating record a
// dependency on this getter's cached value.
type Getters struct {
	engine *Engine
	byName map[string]*getterRecord
	order  []*getterRecord
}

func newGetters(e *Engine, fns map[string]any) (*Getters, error) {
	gs := &Getters{
		engine: e,
		byName: make(map[string]*getterRecord, len(fns)),
	}
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fn, err := normalizeGetter(name, fns[name])
		if err != nil {
			return nil, err
		}
		g := &getterRecord{
			name: name,
			fn:   fn,
			deps: newRegistry(),
			slot: keyDep(e.gettersID, name),
		}
		gs.byName[name] = g
		gs.order = append(gs.order, g)
	}
	return gs, nil
}

// normalizeGetter adapts the accepted getter shapes to GetterFunc.
func normalizeGetter(name string, v any) (GetterFunc, error) {
	var fn GetterFunc
	switch f := v.(type) {
	case GetterFunc:
		fn = f
	case func(*Record, *Getters, any) (any, error):
		fn = f
	case func(*Record, *Getters, any) any:
		if f != nil {
			fn = func(s *Record, g *Getters, x any) (any, error) { return f(s, g, x), nil }
		}
	case func(*Record, *Getters) any:
		if f != nil {
			fn = func(s *Record, g *Getters, _ any) (any, error) { return f(s, g), nil }
		}
	case func(*Record) (any, error):
		if f != nil {
			fn = func(s *Record, _ *Getters, _ any) (any, error) { return f(s) }
		}
	case func(*Record) any:
		if f != nil {
			fn = func(s *Record, _ *Getters, _ any) (any, error) { return f(s), nil }
		}
	}
	if fn == nil {
		return nil, &InvalidGetterTypeError{Name: name, Kind: kindOf(v)}
	}
	return fn, nil
}

// Get returns the value of the named getter, evaluating it first if it is
// not valid. Errors returned by the getter body are returned unchanged and
// leave the getter invalid.
func (gs *Getters) Get(name string) (any, error) {
	g, ok := gs.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGetter, name)
	}
	e := gs.engine
	e.track(g.slot)

	if g.valid {
		e.metrics.hit(name)
		return g.value, nil
	}
	if g.computing {
		return nil, fmt.Errorf("%w: %q", ErrCircularGetter, name)
	}
	if err := e.evaluate(g); err != nil {
		return nil, err
	}
	return g.value, nil
}

// MustGet is like Get but panics on error.
func (gs *Getters) MustGet(name string) any {
	v, err := gs.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether a getter with the given name exists.
func (gs *Getters) Has(name string) bool {
	_, ok := gs.byName[name]
	return ok
}

// Names returns the getter names in sorted order.
func (gs *Getters) Names() []string {
	out := make([]string, len(gs.order))
	for i, g := range gs.order {
		out[i] = g.name
	}
	return out
}

// Valid reports whether the named getter currently holds a valid cached
// value. It neither evaluates nor tracks.
func (gs *Getters) Valid(name string) bool {
	g, ok := gs.byName[name]
	return ok && g.valid
}

// Evaluations returns how many times the named getter body completed
// successfully.
func (gs *Getters) Evaluations(name string) uint64 {
	if g, ok := gs.byName[name]; ok {
		return g.evaluations
	}
	return 0
}

// Deps returns the dependency entries recorded by the named getter's last
// evaluation, formatted as "#node.key" or "#node[*]".
func (gs *Getters) Deps(name string) []string {
	if g, ok := gs.byName[name]; ok {
		return g.deps.list()
	}
	return nil
}

// GetAs reads a getter and asserts its value to T.
func GetAs[T any](gs *Getters, name string) (T, error) {
	var zero T
	v, err := gs.Get(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("reactor: getter %q returned %T, not %T", name, v, zero)
	}
	return t, nil
}

// evaluate runs g against the live state. The frame is popped on every exit
// path, including panics in the getter body.
func (e *Engine) evaluate(g *getterRecord) (err error) {
	g.deps.reset()
	g.computing = true
	g.stale = false

	span := e.startGetterSpan(g.name)
	start := time.Now()
	e.pushFrame(g)
	defer func() {
		e.popFrame()
		g.computing = false
		e.endGetterSpan(span, err)
	}()

	v, err := g.fn(e.root, e.getters, e.Externals())
	if err != nil {
		e.logger.Debug("reactor: getter failed", "getter", g.name, "err", err)
		return err
	}
	g.value = v
	g.valid = !g.stale
	g.evaluations++
	e.metrics.evaluated(g.name, time.Since(start))
	e.logger.Debug("reactor: getter evaluated", "getter", g.name, "deps", g.deps.len())
	return nil
}

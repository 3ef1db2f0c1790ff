package reactor

import (
	"testing"
)

// counter counts getter evaluations.
type counter struct {
	n int
}

func (c *counter) wrap(fn func(s *Record, g *Getters) any) func(*Record, *Getters) any {
	return func(s *Record, g *Getters) any {
		c.n++
		return fn(s, g)
	}
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func mustGet(t *testing.T, e *Engine, name string) any {
	t.Helper()
	v, err := e.Getters().Get(name)
	if err != nil {
		t.Fatalf("getter %q: %v", name, err)
	}
	return v
}

func mustSet(t *testing.T, r *Record, key string, v any) {
	t.Helper()
	if err := r.Set(key, v); err != nil {
		t.Fatalf("Set(%q): %v", key, err)
	}
}

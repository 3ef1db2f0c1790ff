package scenario

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reactor/pkg/reactor"
)

func mustParse(t *testing.T, doc string) *Scenario {
	t.Helper()
	s, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func mustEngine(t *testing.T, s *Scenario) *reactor.Engine {
	t.Helper()
	eng, err := s.Engine(reactor.Options{})
	if err != nil {
		t.Fatalf("Engine: %v", err)
	}
	return eng
}

func evaluations(r StepResult) map[string]uint64 {
	out := make(map[string]uint64, len(r.Getters))
	for _, g := range r.Getters {
		out[g.Name] = g.Evaluations
	}
	return out
}

func TestRunTodoScenario(t *testing.T) {
	s, err := Load("testdata/todo.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if s.Path() != "testdata/todo.yaml" {
		t.Errorf("unexpected path %q", s.Path())
	}

	var out strings.Builder
	report, err := s.Run(mustEngine(t, s), &out)
	if err != nil {
		t.Fatalf("Run: %v\n%s", err, out.String())
	}
	if len(report.Steps) != 5 {
		t.Fatalf("expected initial plus 4 steps, got %d", len(report.Steps))
	}

	// Only getters that read what a step wrote are recomputed.
	want := map[string]uint64{
		"count":  3,
		"done":   4,
		"owner":  2,
		"report": 3,
		"titles": 3,
		"total":  3,
	}
	if diff := cmp.Diff(want, evaluations(report.Steps[4])); diff != "" {
		t.Errorf("evaluation counts (-want +got):\n%s", diff)
	}

	for _, line := range []string{"initial", "step 2: set", "owner = grace", "total = 20"} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("output missing %q:\n%s", line, out.String())
		}
	}
}

func TestRunStopsOnFailedExpectation(t *testing.T) {
	s := mustParse(t, `
state: {items: [1, 2]}
getters:
  total: {op: sum, path: items}
steps:
  - mutation: push
    payload: {path: items, value: 3}
    expect: {total: 7}
  - mutation: push
    payload: {path: items, value: 4}
`)
	report, err := s.Run(mustEngine(t, s), nil)
	if !errors.Is(err, ErrExpectation) {
		t.Fatalf("expected ErrExpectation, got %v", err)
	}
	if len(report.Steps) != 2 {
		t.Errorf("expected run to stop after step 1, got %d results", len(report.Steps))
	}
}

func TestRunStopsOnMutationError(t *testing.T) {
	s := mustParse(t, `
state: {n: 1}
steps:
  - mutation: set
    payload: {path: extra, value: 2}
`)
	_, err := s.Run(mustEngine(t, s), nil)
	if !errors.Is(err, reactor.ErrKeySetForbidden) {
		t.Errorf("expected ErrKeySetForbidden, got %v", err)
	}

	s.KeySet = "permissive"
	if _, err := s.Run(mustEngine(t, s), nil); err != nil {
		t.Errorf("permissive engine should allow new root keys: %v", err)
	}
}

func TestGetterOps(t *testing.T) {
	s := mustParse(t, `
state:
  tags: {b: beta, a: alpha}
  items:
    - {name: x, price: 1.5, active: true}
    - {name: y, price: 2, active: false}
    - {name: z, price: 3, active: true}
  word: hello
getters:
  keys: {op: keys, path: tags}
  tagCount: {op: len, path: tags}
  wordLen: {op: len, path: word}
  price: {op: sum, path: items, field: price}
  active: {op: count, path: items, field: active}
  names: {op: join, path: items, field: name}
  first: {op: get, path: items.0.name}
  missing: {op: get, path: items.9.name}
  tagValues: {op: join, path: tags, sep: "|"}
`)
	eng := mustEngine(t, s)

	want := map[string]any{
		"keys":      []string{"a", "b"},
		"tagCount":  2,
		"wordLen":   5,
		"price":     6.5,
		"active":    2,
		"names":     "x,y,z",
		"first":     "x",
		"missing":   nil,
		"tagValues": "alpha|beta",
	}
	got := make(map[string]any, len(want))
	for name := range want {
		v, err := eng.Getters().Get(name)
		if err != nil {
			t.Fatalf("getter %q: %v", name, err)
		}
		got[name] = v
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("getter values (-want +got):\n%s", diff)
	}
}

func TestBuiltinMutations(t *testing.T) {
	s := mustParse(t, `
keySet: permissive
state:
  list: [a, b, c, d]
  rec: {x: 1, y: 2}
`)
	eng := mustEngine(t, s)

	steps := []struct {
		mutation string
		payload  map[string]any
	}{
		{"delete", map[string]any{"path": "list.0"}},
		{"splice", map[string]any{"path": "list", "start": 1, "delete": 1, "items": []any{"X", "Y"}}},
		{"set", map[string]any{"path": "list.4", "value": "e"}},
		{"delete", map[string]any{"path": "rec.x"}},
		{"set", map[string]any{"path": "rec.z", "value": 3.0}},
		{"push", map[string]any{"path": "list", "value": "f"}},
	}
	for _, st := range steps {
		if err := eng.Commit(st.mutation, st.payload); err != nil {
			t.Fatalf("%s %v: %v", st.mutation, st.payload, err)
		}
	}

	want := map[string]any{
		"list": []any{"b", "X", "Y", "d", "e", "f"},
		"rec":  map[string]any{"y": 2, "z": 3.0},
	}
	if diff := cmp.Diff(want, reactor.Snapshot(eng.State())); diff != "" {
		t.Errorf("state (-want +got):\n%s", diff)
	}
}

func TestBuiltinMutationErrors(t *testing.T) {
	s := mustParse(t, `state: {list: [a], rec: {x: 1}}`)
	eng := mustEngine(t, s)

	tests := []struct {
		name     string
		mutation string
		payload  any
		target   error
	}{
		{"non-map payload", "set", "oops", nil},
		{"missing path", "push", map[string]any{"value": 1}, nil},
		{"push to record", "push", map[string]any{"path": "rec", "value": 1}, nil},
		{"bad index", "set", map[string]any{"path": "list.x", "value": 1}, nil},
		{"index out of range", "delete", map[string]any{"path": "list.5"}, reactor.ErrIndexOutOfRange},
		{"set past end", "set", map[string]any{"path": "list.3", "value": 1}, reactor.ErrIndexOutOfRange},
		{"missing parent", "set", map[string]any{"path": "nope.x", "value": 1}, nil},
		{"bad items", "splice", map[string]any{"path": "list", "items": "x"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eng.Commit(tt.mutation, tt.payload)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown op", `getters: {a: {op: median, path: x}}`},
		{"unknown getter reference", `getters: {a: {op: getter, of: b}}`},
		{"unknown mutation", `steps: [{mutation: explode}]`},
		{"unknown expectation", `steps: [{mutation: set, payload: {path: a}, expect: {ghost: 1}}]`},
		{"unknown key set policy", `keySet: loose`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}

	if _, err := Load("testdata/invalid_op.yaml"); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load: expected ErrInvalid, got %v", err)
	}
	if _, err := Parse([]byte("state: [")); err == nil {
		t.Error("expected YAML syntax error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("testdata/does-not-exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

package reactor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecordGetSet(t *testing.T) {
	e := newTestEngine(t, Options{State: map[string]any{"a": 1}})
	r := e.State()

	if r.Get("a") != 1 {
		t.Errorf("expected 1, got %v", r.Get("a"))
	}
	mustSet(t, r, "a", 2)
	if r.Get("a") != 2 {
		t.Errorf("expected 2, got %v", r.Get("a"))
	}
	if r.Get("missing") != nil {
		t.Errorf("expected nil for a missing key, got %v", r.Get("missing"))
	}
}

func TestRecordKeysKeepInsertionOrder(t *testing.T) {
	e := newTestEngine(t, Options{
		State:  map[string]any{"nested": map[string]any{}},
		Config: Config{KeySetPolicy: KeySetPermissive},
	})
	r := e.State().GetRecord("nested")
	mustSet(t, r, "z", 1)
	mustSet(t, r, "a", 2)
	mustSet(t, r, "m", 3)

	if diff := cmp.Diff([]string{"z", "a", "m"}, r.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if err := r.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"z", "m"}, r.PeekKeys()); diff != "" {
		t.Errorf("keys after delete mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordEnumerationInvalidatedByNewKey(t *testing.T) {
	calls := &counter{}
	e := newTestEngine(t, Options{
		State: map[string]any{"tags": map[string]any{"a": true}},
		Getters: map[string]any{
			"tagCount": calls.wrap(func(s *Record, _ *Getters) any {
				return len(s.GetRecord("tags").Keys())
			}),
		},
	})

	if v := mustGet(t, e, "tagCount"); v != 1 {
		t.Fatalf("expected 1, got %v", v)
	}
	tags := e.State().GetRecord("tags")

	// Overwriting an existing key does not change the key set.
	mustSet(t, tags, "a", false)
	_ = mustGet(t, e, "tagCount")
	if calls.n != 1 {
		t.Errorf("overwrite should not invalidate key enumeration, got %d computations", calls.n)
	}

	mustSet(t, tags, "b", true)
	if v := mustGet(t, e, "tagCount"); v != 2 {
		t.Errorf("expected 2, got %v", v)
	}

	if err := tags.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if v := mustGet(t, e, "tagCount"); v != 1 {
		t.Errorf("expected 1 after delete, got %v", v)
	}
}

func TestRecordHasInvalidatedByAdd(t *testing.T) {
	e := newTestEngine(t, Options{
		State: map[string]any{"flags": map[string]any{}},
		Getters: map[string]any{
			"hasBeta": func(s *Record) any { return s.GetRecord("flags").Has("beta") },
		},
	})

	if v := mustGet(t, e, "hasBeta"); v != false {
		t.Fatalf("expected false, got %v", v)
	}
	mustSet(t, e.State().GetRecord("flags"), "beta", true)
	if v := mustGet(t, e, "hasBeta"); v != true {
		t.Errorf("expected true, got %v", v)
	}
}

func TestRecordStrictRootKeySet(t *testing.T) {
	e := newTestEngine(t, Options{State: map[string]any{"a": 1}})
	root := e.State()

	err := root.Set("b", 2)
	if !errors.Is(err, ErrKeySetForbidden) {
		t.Errorf("expected ErrKeySetForbidden on add, got %v", err)
	}
	var ksErr *KeySetError
	if !errors.As(err, &ksErr) || ksErr.Op != "add" || ksErr.Key != "b" {
		t.Errorf("expected KeySetError{add b}, got %#v", ksErr)
	}
	if err := root.Delete("a"); !errors.Is(err, ErrKeySetForbidden) {
		t.Errorf("expected ErrKeySetForbidden on delete, got %v", err)
	}
	if root.Peek("a") != 1 {
		t.Error("forbidden delete must leave the key in place")
	}

	// Existing root keys stay writable.
	mustSet(t, root, "a", 3)
}

func TestRecordPermissiveRootKeySet(t *testing.T) {
	e := newTestEngine(t, Options{
		State:  map[string]any{"a": 1},
		Config: Config{KeySetPolicy: KeySetPermissive},
		Getters: map[string]any{
			"keys": func(s *Record) any { return s.Len() },
		},
	})

	if v := mustGet(t, e, "keys"); v != 1 {
		t.Fatalf("expected 1, got %v", v)
	}
	mustSet(t, e.State(), "b", 2)
	if v := mustGet(t, e, "keys"); v != 2 {
		t.Errorf("expected 2, got %v", v)
	}
	if err := e.State().Delete("a"); err != nil {
		t.Fatal(err)
	}
	if v := mustGet(t, e, "keys"); v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
}

func TestRecordDeleteMissingIsNoOp(t *testing.T) {
	e := newTestEngine(t, Options{State: map[string]any{}})
	if err := e.State().Delete("nothing"); err != nil {
		t.Errorf("deleting a missing key should be a no-op, got %v", err)
	}
}

func TestRecordTypedAccessors(t *testing.T) {
	e := newTestEngine(t, Options{State: map[string]any{
		"s": "text",
		"i": 7,
		"f": 1.5,
		"b": true,
		"r": map[string]any{},
		"l": []any{},
	}})
	r := e.State()

	if r.GetString("s") != "text" {
		t.Errorf("GetString: got %q", r.GetString("s"))
	}
	if r.GetInt("i") != 7 {
		t.Errorf("GetInt: got %d", r.GetInt("i"))
	}
	if r.GetInt("f") != 1 {
		t.Errorf("GetInt on a float should truncate, got %d", r.GetInt("f"))
	}
	if r.GetFloat("i") != 7 {
		t.Errorf("GetFloat on an int: got %v", r.GetFloat("i"))
	}
	if !r.GetBool("b") {
		t.Error("GetBool: got false")
	}
	if r.GetRecord("r") == nil || r.GetList("l") == nil {
		t.Error("expected child handles")
	}
	if r.GetRecord("s") != nil {
		t.Error("GetRecord on a string should be nil")
	}
}

func TestRecordPeekIsUntracked(t *testing.T) {
	e := newTestEngine(t, Options{
		State: map[string]any{"a": 1},
		Getters: map[string]any{
			"peek": func(s *Record) any { return s.Peek("a") },
		},
	})

	_ = mustGet(t, e, "peek")
	mustSet(t, e.State(), "a", 2)
	if !e.Getters().Valid("peek") {
		t.Error("Peek must not create a dependency")
	}
}

func TestRecordUpdate(t *testing.T) {
	e := newTestEngine(t, Options{State: map[string]any{"n": 1}})
	if err := e.State().Update("n", func(v any) any { return v.(int) + 1 }); err != nil {
		t.Fatal(err)
	}
	if e.State().Peek("n") != 2 {
		t.Errorf("expected 2, got %v", e.State().Peek("n"))
	}
}

func TestRecordRangeTracksKeys(t *testing.T) {
	e := newTestEngine(t, Options{
		State: map[string]any{"scores": map[string]any{"a": 1, "b": 2}},
		Getters: map[string]any{
			"total": func(s *Record) any {
				total := 0
				s.GetRecord("scores").Range(func(_ string, v any) bool {
					total += v.(int)
					return true
				})
				return total
			},
		},
	})

	if v := mustGet(t, e, "total"); v != 3 {
		t.Fatalf("expected 3, got %v", v)
	}
	mustSet(t, e.State().GetRecord("scores"), "b", 10)
	if v := mustGet(t, e, "total"); v != 11 {
		t.Errorf("expected 11, got %v", v)
	}
}

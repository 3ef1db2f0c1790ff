package reactor

import (
	"cmp"
	"errors"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
)

func listEngine(t *testing.T, items []any, getters map[string]any) (*Engine, *List) {
	t.Helper()
	e := newTestEngine(t, Options{
		State:   map[string]any{"items": items},
		Getters: getters,
	})
	return e, e.State().GetList("items")
}

func TestListLenIsReactive(t *testing.T) {
	calls := &counter{}
	e, items := listEngine(t, []any{1, 2}, map[string]any{
		"len": calls.wrap(func(s *Record, _ *Getters) any { return s.GetList("items").Len() }),
	})

	if v := mustGet(t, e, "len"); v != 2 {
		t.Fatalf("expected 2, got %v", v)
	}
	if err := items.Push(3); err != nil {
		t.Fatal(err)
	}
	if v := mustGet(t, e, "len"); v != 3 {
		t.Errorf("expected 3, got %v", v)
	}
	items.Pop()
	if v := mustGet(t, e, "len"); v != 2 {
		t.Errorf("expected 2, got %v", v)
	}
	if calls.n != 3 {
		t.Errorf("expected 3 computations, got %d", calls.n)
	}
}

func TestListPeekLenIsNotReactive(t *testing.T) {
	calls := &counter{}
	e, items := listEngine(t, []any{1, 2}, map[string]any{
		"snapshot": calls.wrap(func(s *Record, _ *Getters) any {
			return s.Peek("items").(*List).PeekLen()
		}),
	})

	_ = mustGet(t, e, "snapshot")
	if err := items.Push(3); err != nil {
		t.Fatal(err)
	}
	if v := mustGet(t, e, "snapshot"); v != 2 {
		t.Errorf("non-reactive length snapshot should stay cached at 2, got %v", v)
	}
	if calls.n != 1 {
		t.Errorf("expected 1 computation, got %d", calls.n)
	}
}

func TestListIndexWriteIsSelective(t *testing.T) {
	firstCalls, lenCalls := &counter{}, &counter{}
	e, items := listEngine(t, []any{1, 2, 3}, map[string]any{
		"first": firstCalls.wrap(func(s *Record, _ *Getters) any { return s.GetList("items").At(0) }),
		"len":   lenCalls.wrap(func(s *Record, _ *Getters) any { return s.GetList("items").Len() }),
	})

	_ = mustGet(t, e, "first")
	_ = mustGet(t, e, "len")

	if err := items.Set(2, 30); err != nil {
		t.Fatal(err)
	}
	if !e.Getters().Valid("first") {
		t.Error("writing index 2 must not invalidate a reader of index 0")
	}
	if !e.Getters().Valid("len") {
		t.Error("an index write does not change the length")
	}

	if err := items.Set(0, 10); err != nil {
		t.Fatal(err)
	}
	if v := mustGet(t, e, "first"); v != 10 {
		t.Errorf("expected 10, got %v", v)
	}
}

func TestListStructuralOpsInvalidateIndexReaders(t *testing.T) {
	e, items := listEngine(t, []any{"a", "b"}, map[string]any{
		"first": func(s *Record) any { return s.GetList("items").At(0) },
	})

	_ = mustGet(t, e, "first")
	if err := items.Unshift("z"); err != nil {
		t.Fatal(err)
	}
	if v := mustGet(t, e, "first"); v != "z" {
		t.Errorf("expected z, got %v", v)
	}
	items.Shift()
	if v := mustGet(t, e, "first"); v != "a" {
		t.Errorf("expected a, got %v", v)
	}
	items.Reverse()
	if v := mustGet(t, e, "first"); v != "b" {
		t.Errorf("expected b, got %v", v)
	}
}

func TestListRangeSeesIndexWrites(t *testing.T) {
	e, items := listEngine(t, []any{1, 2, 3}, map[string]any{
		"sum": func(s *Record) any {
			total := 0
			s.GetList("items").Range(func(_ int, v any) bool {
				total += v.(int)
				return true
			})
			return total
		},
	})

	if v := mustGet(t, e, "sum"); v != 6 {
		t.Fatalf("expected 6, got %v", v)
	}
	if err := items.Set(1, 20); err != nil {
		t.Fatal(err)
	}
	if v := mustGet(t, e, "sum"); v != 24 {
		t.Errorf("expected 24, got %v", v)
	}
}

func TestListSetAppendsAtLen(t *testing.T) {
	_, items := listEngine(t, []any{1}, nil)

	if err := items.Set(1, 2); err != nil {
		t.Fatal(err)
	}
	if items.PeekLen() != 2 {
		t.Errorf("expected length 2, got %d", items.PeekLen())
	}
	if err := items.Set(5, 9); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := items.Insert(-1, 9); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestListSplice(t *testing.T) {
	_, items := listEngine(t, []any{1, 2, 3, 4}, nil)

	removed, err := items.Splice(1, 2, "x")
	if err != nil {
		t.Fatal(err)
	}
	if diff := gocmp.Diff([]any{2, 3}, removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
	if diff := gocmp.Diff([]any{1, "x", 4}, Snapshot(items)); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	// Out-of-range arguments are clamped.
	removed, err = items.Splice(10, 5, "end")
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 0 {
		t.Errorf("expected nothing removed, got %v", removed)
	}
	if diff := gocmp.Diff([]any{1, "x", 4, "end"}, Snapshot(items)); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestListTruncateAndClear(t *testing.T) {
	e, items := listEngine(t, []any{1, 2, 3}, map[string]any{
		"len": func(s *Record) any { return s.GetList("items").Len() },
	})

	_ = mustGet(t, e, "len")
	items.Truncate(5)
	if !e.Getters().Valid("len") {
		t.Error("truncating to a larger length is a no-op")
	}
	items.Truncate(1)
	if v := mustGet(t, e, "len"); v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
	items.Clear()
	if v := mustGet(t, e, "len"); v != 0 {
		t.Errorf("expected 0, got %v", v)
	}
	if items.Pop() != nil || items.Shift() != nil {
		t.Error("popping an empty list should return nil")
	}
}

func TestListSort(t *testing.T) {
	e, items := listEngine(t, []any{3, 1, 2}, map[string]any{
		"first": func(s *Record) any { return s.GetList("items").At(0) },
	})

	_ = mustGet(t, e, "first")
	items.Sort(func(a, b any) int { return cmp.Compare(a.(int), b.(int)) })
	if v := mustGet(t, e, "first"); v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
}

func TestListPushWrapsElements(t *testing.T) {
	_, items := listEngine(t, nil, nil)

	if err := items.Push(map[string]any{"v": 1}, []int{1, 2}); err != nil {
		t.Fatal(err)
	}
	if _, ok := items.Peek(0).(*Record); !ok {
		t.Errorf("pushed map should be wrapped, got %T", items.Peek(0))
	}
	if _, ok := items.Peek(1).(*List); !ok {
		t.Errorf("pushed slice should be wrapped, got %T", items.Peek(1))
	}
}

func TestListAtOutOfRange(t *testing.T) {
	_, items := listEngine(t, []any{1}, nil)
	if items.At(5) != nil || items.At(-1) != nil || items.Peek(3) != nil {
		t.Error("out-of-range reads should return nil")
	}
}

package reactor

import (
	"fmt"
	"slices"
)

// List is a reactive ordered node.
//
// At tracks a single index; Len is the reactive length alias and tracks the
// list as a whole. Operations that add, remove or reorder elements
// invalidate every reader of the list, since they cannot be expressed as a
// single index write. PeekLen and Peek read without tracking.
type List struct {
	id     NodeID
	engine *Engine

	items []any
}

// ID returns the list's identity tag.
func (l *List) ID() NodeID { return l.id }

func (l *List) owner() *Engine { return l.engine }

// At returns the element at i, or nil when i is out of range.
func (l *List) At(i int) any {
	var v any
	if i >= 0 && i < len(l.items) {
		v = l.items[i]
	}
	if isFunc(v) {
		return v
	}
	l.engine.track(indexDep(l.id, i))
	return v
}

// RecordAt returns the record at i, or nil.
func (l *List) RecordAt(i int) *Record {
	r, _ := l.At(i).(*Record)
	return r
}

// ListAt returns the list at i, or nil.
func (l *List) ListAt(i int) *List {
	child, _ := l.At(i).(*List)
	return child
}

// Len returns the live length and tracks the list as a whole.
func (l *List) Len() int {
	l.engine.track(wholeDep(l.id))
	return len(l.items)
}

// PeekLen returns the length without tracking.
func (l *List) PeekLen() int {
	return len(l.items)
}

// Peek returns the element at i without tracking.
func (l *List) Peek(i int) any {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// Range calls fn for each element until fn returns false. The list as a
// whole and each visited index are tracked.
func (l *List) Range(fn func(i int, value any) bool) {
	l.engine.track(wholeDep(l.id))
	for i := 0; i < len(l.items); i++ {
		if !fn(i, l.At(i)) {
			return
		}
	}
}

// Values returns a copy of the elements, tracked like Range.
func (l *List) Values() []any {
	l.engine.track(wholeDep(l.id))
	for i := range l.items {
		l.engine.track(indexDep(l.id, i))
	}
	return slices.Clone(l.items)
}

// Set writes the element at i. Writing at i == Len appends. Writing the
// identical value is a no-op.
func (l *List) Set(i int, value any) error {
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(l.items))
	}
	if i == len(l.items) {
		return l.Push(value)
	}
	if identical(l.items[i], value) {
		return nil
	}
	wrapped, err := l.engine.Wrap(value)
	if err != nil {
		return err
	}
	l.engine.trigger(indexDep(l.id, i))
	l.items[i] = wrapped
	return nil
}

// Push appends values.
func (l *List) Push(values ...any) error {
	if len(values) == 0 {
		return nil
	}
	wrapped, err := l.wrapAll(values)
	if err != nil {
		return err
	}
	l.structural()
	l.items = append(l.items, wrapped...)
	return nil
}

// Unshift prepends values.
func (l *List) Unshift(values ...any) error {
	return l.Insert(0, values...)
}

// Insert inserts values before index i. i may equal Len.
func (l *List) Insert(i int, values ...any) error {
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(l.items))
	}
	if len(values) == 0 {
		return nil
	}
	wrapped, err := l.wrapAll(values)
	if err != nil {
		return err
	}
	l.structural()
	l.items = slices.Insert(l.items, i, wrapped...)
	return nil
}

// Pop removes and returns the last element, or nil when empty.
func (l *List) Pop() any {
	if len(l.items) == 0 {
		return nil
	}
	l.structural()
	last := l.items[len(l.items)-1]
	l.items[len(l.items)-1] = nil
	l.items = l.items[:len(l.items)-1]
	return last
}

// Shift removes and returns the first element, or nil when empty.
func (l *List) Shift() any {
	if len(l.items) == 0 {
		return nil
	}
	return l.RemoveAt(0)
}

// RemoveAt removes and returns the element at i, or nil when i is out of
// range.
func (l *List) RemoveAt(i int) any {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	l.structural()
	v := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	return v
}

// Splice removes deleteCount elements starting at start, inserts items in
// their place, and returns the removed elements. start and deleteCount are
// clamped to the list bounds.
func (l *List) Splice(start, deleteCount int, items ...any) ([]any, error) {
	n := len(l.items)
	start = max(0, min(start, n))
	deleteCount = max(0, min(deleteCount, n-start))
	if deleteCount == 0 && len(items) == 0 {
		return nil, nil
	}
	wrapped, err := l.wrapAll(items)
	if err != nil {
		return nil, err
	}
	l.structural()
	removed := slices.Clone(l.items[start : start+deleteCount])
	l.items = slices.Replace(l.items, start, start+deleteCount, wrapped...)
	return removed, nil
}

// Truncate shortens the list to n elements. It is a no-op when the list is
// already that short.
func (l *List) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(l.items) {
		return
	}
	l.structural()
	clear(l.items[n:])
	l.items = l.items[:n]
}

// Clear removes every element.
func (l *List) Clear() {
	l.Truncate(0)
}

// Reverse reverses the list in place.
func (l *List) Reverse() {
	if len(l.items) < 2 {
		return
	}
	l.structural()
	slices.Reverse(l.items)
}

// Sort sorts the list in place with cmp, stably. Elements are compared
// without tracking.
func (l *List) Sort(cmp func(a, b any) int) {
	if len(l.items) < 2 {
		return
	}
	l.structural()
	l.engine.Untracked(func() {
		slices.SortStableFunc(l.items, cmp)
	})
}

// structural invalidates every reader of the list.
func (l *List) structural() {
	l.engine.trigger(wholeDep(l.id))
}

func (l *List) wrapAll(values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		w, err := l.engine.Wrap(v)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

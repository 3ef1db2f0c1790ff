package reactor

import (
	"reflect"
	"strconv"
)

// NodeID is the identity tag of a wrapped node within one engine.
// Zero is never allocated.
type NodeID uint64

// Node is implemented by the reactive handle types (*Record and *List).
type Node interface {
	// ID returns the node's identity tag within its engine.
	ID() NodeID

	owner() *Engine
}

// dep is one entry of a dependency registry: a (node, key) pair, or the
// collection-wide key of a node when whole is set.
type dep struct {
	node  NodeID
	key   string
	whole bool
}

func keyDep(id NodeID, key string) dep {
	return dep{node: id, key: key}
}

func indexDep(id NodeID, i int) dep {
	return dep{node: id, key: strconv.Itoa(i)}
}

func wholeDep(id NodeID) dep {
	return dep{node: id, whole: true}
}

func (d dep) String() string {
	if d.whole {
		return "#" + strconv.FormatUint(uint64(d.node), 10) + "[*]"
	}
	return "#" + strconv.FormatUint(uint64(d.node), 10) + "." + d.key
}

// Frozen holds a value the application asserts is constant. Frozen values
// are stored as-is: they are never wrapped and reads of Value are not tracked.
type Frozen struct {
	Value any
}

// Freeze marks v as constant.
func Freeze(v any) Frozen {
	return Frozen{Value: v}
}

// IsReactive reports whether v is nil or a node handle carrying an identity
// tag. It does not check which engine owns the node; see Engine.IsReactive.
func IsReactive(v any) bool {
	if v == nil {
		return true
	}
	switch n := v.(type) {
	case *Record:
		return n != nil && n.id != 0
	case *List:
		return n != nil && n.id != 0
	}
	return false
}

// isFunc reports whether v is invocable. Function values are stored in the
// tree but never tracked.
func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// identical reports whether writing b over a is a no-op. Handles compare by
// pointer, comparable scalars by ==. Anything else is never identical.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice:
		return false
	}
	if !ta.Comparable() {
		return false
	}
	defer func() { _ = recover() }()
	return a == b
}

package scenario

import (
	"fmt"
	"math"
	"strings"

	"github.com/vango-dev/reactor/pkg/reactor"
)

const (
	opGet    = "get"
	opLen    = "len"
	opKeys   = "keys"
	opSum    = "sum"
	opCount  = "count"
	opJoin   = "join"
	opGetter = "getter"
)

var ops = []string{opGet, opLen, opKeys, opSum, opCount, opJoin, opGetter}

// compile turns the declaration into a getter function. Every read goes
// through the reactive handles, so dependencies are exactly the nodes and
// keys the op visits.
func (g GetterSpec) compile() reactor.GetterFunc {
	return func(state *reactor.Record, getters *reactor.Getters, _ any) (any, error) {
		if g.Op == opGetter {
			return getters.Get(g.Of)
		}

		target := resolve(state, g.Path)
		switch g.Op {
		case opGet:
			return target, nil
		case opLen:
			return length(target), nil
		case opKeys:
			if r, ok := target.(*reactor.Record); ok {
				return r.Keys(), nil
			}
			return []string{}, nil
		}

		values := g.elements(target)
		switch g.Op {
		case opSum:
			return sum(values), nil
		case opCount:
			n := 0
			for _, v := range values {
				if truthy(v) {
					n++
				}
			}
			return n, nil
		case opJoin:
			sep := g.Sep
			if sep == "" {
				sep = ","
			}
			parts := make([]string, 0, len(values))
			for _, v := range values {
				if v != nil {
					parts = append(parts, fmt.Sprint(v))
				}
			}
			return strings.Join(parts, sep), nil
		}
		return nil, fmt.Errorf("scenario: unknown op %q", g.Op)
	}
}

// elements returns the list's elements, or Field of each element when set.
// A record target contributes its values in key order.
func (g GetterSpec) elements(target any) []any {
	var items []any
	switch n := target.(type) {
	case *reactor.List:
		items = n.Values()
	case *reactor.Record:
		n.Range(func(_ string, v any) bool {
			items = append(items, v)
			return true
		})
	default:
		return nil
	}
	if g.Field == "" {
		return items
	}
	for i, item := range items {
		items[i] = child(item, g.Field)
	}
	return items
}

func length(v any) int {
	switch n := v.(type) {
	case *reactor.List:
		return n.Len()
	case *reactor.Record:
		return n.Len()
	case string:
		return len(n)
	}
	return 0
}

// sum adds numeric values. The result is an int unless a fractional value
// was seen.
func sum(values []any) any {
	var (
		total   float64
		integer = true
	)
	for _, v := range values {
		switch n := v.(type) {
		case int:
			total += float64(n)
		case int64:
			total += float64(n)
		case float64:
			total += n
			integer = integer && n == math.Trunc(n)
		}
	}
	if integer {
		return int(total)
	}
	return total
}

func truthy(v any) bool {
	switch n := v.(type) {
	case nil:
		return false
	case bool:
		return n
	case int:
		return n != 0
	case float64:
		return n != 0
	case string:
		return n != ""
	}
	return true
}

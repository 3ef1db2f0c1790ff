package reactor

import (
	"encoding/json"
)

// CircularMarker replaces a back-reference to an enclosing node in
// snapshots.
const CircularMarker = "[Circular]"

// Snapshot returns a plain copy of v without tracking: records become
// map[string]any, lists become []any, Frozen values are unwrapped, and
// function values are dropped. A node that refers back to one of its
// ancestors is replaced by CircularMarker.
func Snapshot(v any) any {
	return snapshotValue(v, make(map[NodeID]struct{}))
}

func snapshotValue(v any, path map[NodeID]struct{}) any {
	switch n := v.(type) {
	case *Record:
		if n == nil {
			return nil
		}
		if _, ok := path[n.id]; ok {
			return CircularMarker
		}
		path[n.id] = struct{}{}
		defer delete(path, n.id)

		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			child := n.values[k]
			if isFunc(child) {
				continue
			}
			out[k] = snapshotValue(child, path)
		}
		return out
	case *List:
		if n == nil {
			return nil
		}
		if _, ok := path[n.id]; ok {
			return CircularMarker
		}
		path[n.id] = struct{}{}
		defer delete(path, n.id)

		out := make([]any, len(n.items))
		for i, child := range n.items {
			if isFunc(child) {
				continue
			}
			out[i] = snapshotValue(child, path)
		}
		return out
	case Frozen:
		return n.Value
	}
	if isFunc(v) {
		return nil
	}
	return v
}

// MarshalJSON encodes the record's snapshot.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(Snapshot(r))
}

// MarshalJSON encodes the list's snapshot.
func (l *List) MarshalJSON() ([]byte, error) {
	return json.Marshal(Snapshot(l))
}

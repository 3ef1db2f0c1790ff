package reactor

import (
	"sort"
)

// registry is the set of (node, key) pairs one getter read during its last
// evaluation. perNode counts entries per node so collection-wide triggers
// can answer "any key of this node" without scanning.
type registry struct {
	entries map[dep]struct{}
	perNode map[NodeID]int
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[dep]struct{}),
		perNode: make(map[NodeID]int),
	}
}

// add inserts d. Adding an entry twice is a no-op.
func (r *registry) add(d dep) {
	if _, ok := r.entries[d]; ok {
		return
	}
	r.entries[d] = struct{}{}
	r.perNode[d.node]++
}

// has reports whether d is present.
func (r *registry) has(d dep) bool {
	_, ok := r.entries[d]
	return ok
}

// hasNode reports whether any entry for node is present.
func (r *registry) hasNode(node NodeID) bool {
	return r.perNode[node] > 0
}

// matches is the trigger test: a collection-wide dep matches any entry for
// its node, a keyed dep matches only itself.
func (r *registry) matches(d dep) bool {
	if d.whole {
		return r.hasNode(d.node)
	}
	return r.has(d)
}

func (r *registry) reset() {
	clear(r.entries)
	clear(r.perNode)
}

func (r *registry) len() int {
	return len(r.entries)
}

// list returns the entries in a stable order.
func (r *registry) list() []string {
	out := make([]string, 0, len(r.entries))
	for d := range r.entries {
		out = append(out, d.String())
	}
	sort.Strings(out)
	return out
}

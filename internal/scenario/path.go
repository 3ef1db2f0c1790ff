package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vango-dev/reactor/pkg/reactor"
)

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// child reads one segment of node with tracking.
func child(node any, seg string) any {
	switch n := node.(type) {
	case *reactor.Record:
		return n.Get(seg)
	case *reactor.List:
		i, err := strconv.Atoi(seg)
		if err != nil {
			return nil
		}
		return n.At(i)
	}
	return nil
}

// resolve walks path from root. Missing segments yield nil.
func resolve(root *reactor.Record, path string) any {
	var node any = root
	for _, seg := range splitPath(path) {
		node = child(node, seg)
		if node == nil {
			return nil
		}
	}
	return node
}

// parent resolves every segment but the last and returns the container and
// the final segment.
func parent(root *reactor.Record, path string) (any, string, error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, "", fmt.Errorf("scenario: path is empty")
	}
	var node any = root
	for _, seg := range segs[:len(segs)-1] {
		node = child(node, seg)
		if node == nil {
			return nil, "", fmt.Errorf("scenario: path %q: %q not found", path, seg)
		}
	}
	return node, segs[len(segs)-1], nil
}

func index(seg, path string) (int, error) {
	i, err := strconv.Atoi(seg)
	if err != nil {
		return 0, fmt.Errorf("scenario: path %q: %q is not a list index", path, seg)
	}
	return i, nil
}

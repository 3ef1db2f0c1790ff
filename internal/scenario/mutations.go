package scenario

import (
	"fmt"

	"github.com/vango-dev/reactor/pkg/reactor"
)

// builtins are the mutations every scenario engine registers. Payloads are
// maps with a "path" key plus op-specific fields, as decoded from YAML or
// JSON.
var builtins = map[string]reactor.PayloadFirstFunc{
	"set":    mutateSet,
	"push":   mutatePush,
	"delete": mutateDelete,
	"splice": mutateSplice,
}

type payload map[string]any

func asPayload(v any) (payload, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("scenario: payload must be a map, got %T", v)
	}
	return payload(m), nil
}

func (p payload) path() (string, error) {
	path, ok := p["path"].(string)
	if !ok {
		return "", fmt.Errorf("scenario: payload needs a string path")
	}
	return path, nil
}

func (p payload) intField(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("scenario: payload %q must be a number, got %T", key, v)
}

// mutateSet writes value at path: {path, value}.
func mutateSet(v any, c *reactor.Context) error {
	p, err := asPayload(v)
	if err != nil {
		return err
	}
	path, err := p.path()
	if err != nil {
		return err
	}
	node, last, err := parent(c.State, path)
	if err != nil {
		return err
	}
	switch n := node.(type) {
	case *reactor.Record:
		return n.Set(last, p["value"])
	case *reactor.List:
		i, err := index(last, path)
		if err != nil {
			return err
		}
		return n.Set(i, p["value"])
	}
	return fmt.Errorf("scenario: path %q: parent is not a record or list", path)
}

// mutatePush appends value to the list at path: {path, value}.
func mutatePush(v any, c *reactor.Context) error {
	p, err := asPayload(v)
	if err != nil {
		return err
	}
	list, path, err := listAt(c.State, p)
	if err != nil {
		return err
	}
	if err := list.Push(p["value"]); err != nil {
		return fmt.Errorf("scenario: push %q: %w", path, err)
	}
	return nil
}

// mutateDelete removes the key or index at path: {path}.
func mutateDelete(v any, c *reactor.Context) error {
	p, err := asPayload(v)
	if err != nil {
		return err
	}
	path, err := p.path()
	if err != nil {
		return err
	}
	node, last, err := parent(c.State, path)
	if err != nil {
		return err
	}
	switch n := node.(type) {
	case *reactor.Record:
		return n.Delete(last)
	case *reactor.List:
		i, err := index(last, path)
		if err != nil {
			return err
		}
		if i < 0 || i >= n.PeekLen() {
			return fmt.Errorf("scenario: delete %q: %w", path, reactor.ErrIndexOutOfRange)
		}
		n.RemoveAt(i)
		return nil
	}
	return fmt.Errorf("scenario: path %q: parent is not a record or list", path)
}

// mutateSplice edits the list at path: {path, start, delete, items}.
// A missing delete count removes nothing.
func mutateSplice(v any, c *reactor.Context) error {
	p, err := asPayload(v)
	if err != nil {
		return err
	}
	list, path, err := listAt(c.State, p)
	if err != nil {
		return err
	}
	start, err := p.intField("start", 0)
	if err != nil {
		return err
	}
	deleteCount, err := p.intField("delete", 0)
	if err != nil {
		return err
	}
	var items []any
	switch raw := p["items"].(type) {
	case nil:
	case []any:
		items = raw
	default:
		return fmt.Errorf("scenario: payload %q must be a list, got %T", "items", raw)
	}
	if _, err := list.Splice(start, deleteCount, items...); err != nil {
		return fmt.Errorf("scenario: splice %q: %w", path, err)
	}
	return nil
}

func listAt(root *reactor.Record, p payload) (*reactor.List, string, error) {
	path, err := p.path()
	if err != nil {
		return nil, "", err
	}
	list, ok := resolve(root, path).(*reactor.List)
	if !ok {
		return nil, path, fmt.Errorf("scenario: path %q is not a list", path)
	}
	return list, path, nil
}

// Package reactor provides a dependency-tracking, memoizing engine for
// derived values over a mutable state tree.
//
// An Engine wraps a raw data tree (maps and slices) into reactive handles.
// Getters are functions of the state; each getter's result is cached
// together with the set of (node, key) pairs it read. A write invalidates
// exactly the getters that read what was written, and nothing else.
//
// # Core Types
//
// Record and List are the reactive handles:
//
//	eng, _ := reactor.New(reactor.Options{
//	    State: map[string]any{"items": []any{}},
//	    Getters: map[string]any{
//	        "count": func(s *reactor.Record) any { return s.GetList("items").Len() },
//	    },
//	    Mutations: map[string]any{
//	        "push": func(p any, c *reactor.Context) error {
//	            return c.State.GetList("items").Push(p)
//	        },
//	    },
//	})
//
//	eng.Commit("push", map[string]any{"value": 10})
//	n, _ := eng.Getters().Get("count") // 1
//
// Reads of List.Len, Record.Keys and Range track the collection as a whole;
// PeekLen and the other Peek methods never track.
//
// # Getter Chains
//
// A getter may read other getters. Each getter's cached value is itself a
// tracked dependency, so invalidation propagates through chains.
//
// # Mutations and Events
//
// Mutations are the sanctioned way to write state from application code.
// After each successful mutation a MutationEvent is delivered to handlers
// registered with Engine.On(EventMutation, ...).
//
// # Thread Safety
//
// An Engine is single-threaded and synchronous. Callers that share an
// engine across goroutines must serialize access themselves.
package reactor

// Package scenario loads YAML scenario files that describe a reactor engine
// declaratively, and replays their steps.
//
// A scenario has an initial state, a set of declarative getters over dotted
// paths, and a list of steps. Each step commits one of the built-in
// mutations (set, push, delete, splice) and may assert getter values:
//
//	name: todo
//	state:
//	  items:
//	    - {title: a, value: 10}
//	getters:
//	  total: {op: sum, path: items, field: value}
//	  count: {op: len, path: items}
//	steps:
//	  - mutation: push
//	    payload: {path: items, value: {title: b, value: 20}}
//	    expect: {total: 30, count: 2}
//
// Paths are dot separated. Segments address record keys, or list indexes
// when the segment is a decimal integer. The empty path is the root record.
package scenario

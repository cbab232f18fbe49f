// Package filter provides combinators over core.Filter, the predicate
// type that gates whether a Record reaches a sink.
package filter

import (
	"github.com/logtape-go/logtape/core"
	"github.com/logtape-go/logtape/level"
)

// FromLevel returns a Filter that admits records at or above min.
// Disabled yields a filter that admits nothing, matching the "turn this
// subtree off" use of level.Disabled elsewhere in the tree.
func FromLevel(min level.Level) core.Filter {
	if min == level.Disabled {
		return func(*core.Record) bool { return false }
	}
	return func(r *core.Record) bool { return r.Level >= min }
}

// All combines filters with AND semantics: a record must satisfy every
// filter. This is the combinator the logger tree's own filter chain uses
// (a node's filters are ANDed together, never ORed).
func All(fs ...core.Filter) core.Filter {
	filters := append([]core.Filter(nil), fs...)
	return func(r *core.Record) bool {
		for _, f := range filters {
			if !f(r) {
				return false
			}
		}
		return true
	}
}

// Any combines filters with OR semantics: a record passes if any filter
// admits it. Not used by the tree's own delegation logic, which is
// always AND — provided as a named combinator for callers who want it.
func Any(fs ...core.Filter) core.Filter {
	filters := append([]core.Filter(nil), fs...)
	return func(r *core.Record) bool {
		for _, f := range filters {
			if f(r) {
				return true
			}
		}
		return false
	}
}

// Not inverts a filter.
func Not(f core.Filter) core.Filter {
	return func(r *core.Record) bool { return !f(r) }
}

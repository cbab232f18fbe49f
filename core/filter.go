package core

import "github.com/logtape-go/logtape/level"

// Filter is a predicate over a record. A node's own filters (if any) must
// all accept a record for it to proceed; a node with no filters of its
// own delegates to its parent's filter chain.
type Filter func(record *Record) bool

// FilterOrLevel is supplied in a Configuration's Filters map: either a
// Filter predicate, or a Level (lifted to "accept iff record.Level >=
// min", with Disabled rejecting everything).
type FilterOrLevel struct {
	Filter Filter
	Level  *level.Level
}

// FilterOf wraps a predicate for use in a Configuration's Filters map.
func FilterOf(f Filter) FilterOrLevel {
	return FilterOrLevel{Filter: f}
}

// LevelOf lifts a severity level for use in a Configuration's Filters
// map: the resolved filter accepts records at or above min, and
// level.Disabled yields a filter that rejects everything.
func LevelOf(min level.Level) FilterOrLevel {
	return FilterOrLevel{Level: &min}
}

// Resolve lifts a FilterOrLevel to a plain Filter.
func (fl FilterOrLevel) Resolve() Filter {
	if fl.Filter != nil {
		return fl.Filter
	}
	if fl.Level != nil {
		min := *fl.Level
		return func(r *Record) bool {
			if min == level.Disabled {
				return false
			}
			return r.Level >= min
		}
	}
	return func(*Record) bool { return true }
}

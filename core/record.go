package core

import (
	"strings"
	"time"

	"github.com/logtape-go/logtape/level"
)

// Category identifies a logger by an ordered sequence of non-empty
// segments. The empty sequence denotes the root logger. A child logger's
// category is its parent's category with one segment appended.
type Category []string

// MetaCategory is the category reserved for logtape's own self-logging.
var MetaCategory = Category{"logtape", "meta"}

// Child returns a new category with segment appended. The receiver is not
// modified.
func (c Category) Child(segment string) Category {
	out := make(Category, len(c)+1)
	copy(out, c)
	out[len(c)] = segment
	return out
}

// Equal reports whether two categories have the same segments in order.
func (c Category) Equal(other Category) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the category as a dot-joined name, e.g. "my-app.sql",
// for use in diagnostic text. Sinks receive the structured []string form;
// this is purely cosmetic.
func (c Category) String() string {
	if len(c) == 0 {
		return "<root>"
	}
	return strings.Join(c, ".")
}

// Clone returns an independent copy of the category.
func (c Category) Clone() Category {
	out := make(Category, len(c))
	copy(out, c)
	return out
}

// Record is an immutable log record once emitted. Message is a sequence
// alternating literal string fragments and interpolated values; its
// length is always odd, with indices 0, 2, 4, ... holding literal
// fragments and indices 1, 3, 5, ... holding interpolated values.
type Record struct {
	// Category is the category as seen by sinks; it may be prefixed by an
	// ambient category prefix set via WithCategoryPrefix.
	Category Category

	// Level is the severity of the record.
	Level level.Level

	// Message is the rendered message sequence.
	Message []any

	// RawMessage is either the original template string, or (for the
	// template-literal dispatch form) the literal-fragment sequence,
	// preserved for structured exporters.
	RawMessage any

	// Timestamp is captured at record construction.
	Timestamp time.Time

	// Properties holds the record's structured properties.
	Properties map[string]any
}

// RenderMessage concatenates Message into a single string, stringifying
// interpolated values the same way the template parser would if it had
// rendered them directly.
func (r *Record) RenderMessage() string {
	var b strings.Builder
	for i, part := range r.Message {
		if i%2 == 0 {
			b.WriteString(part.(string))
		} else {
			b.WriteString(stringifyValue(part))
		}
	}
	return b.String()
}

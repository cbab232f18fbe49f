package logtape

import (
	"fmt"

	"github.com/logtape-go/logtape/core"
)

// CategoryArg is anything GetLogger, WithCategoryPrefix, and the
// configuration bindings accept in place of a core.Category: a
// core.Category itself, a plain []string, or a single string segment
// (the common case for top-level loggers, e.g. GetLogger("my-app")).
type CategoryArg interface{}

// toCategory normalizes a CategoryArg. It never panics: a value of an
// unrecognized type becomes a single segment via fmt.Sprint, so a
// caller's typo produces a distinctly-named logger rather than a crash.
func toCategory(c CategoryArg) core.Category {
	switch v := c.(type) {
	case core.Category:
		return v.Clone()
	case []string:
		return core.Category(append([]string(nil), v...))
	case string:
		if v == "" {
			return core.Category{}
		}
		return core.Category{v}
	case nil:
		return core.Category{}
	default:
		return core.Category{fmt.Sprint(v)}
	}
}

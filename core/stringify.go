package core

import (
	"fmt"
	"time"
)

// stringifyValue renders an interpolated message value the way sinks
// that flatten a Record to plain text expect: nil renders as "nil",
// time.Time uses RFC3339, everything else falls back to fmt's %v.
func stringifyValue(value any) string {
	if value == nil {
		return "nil"
	}
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}

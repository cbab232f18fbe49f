// Package level defines LogTape's severity model: a small total order of
// named levels plus the Disabled sentinel used as an "admit nothing"
// threshold. Split out of package core so that packages needing only the
// severity model (filter, configuration) don't pull in the rest of the
// record/sink surface.
package level

import (
	"fmt"
	"strings"
)

// Level specifies the severity of a log record. Levels form a total order;
// a lower Level is less severe.
type Level int

const (
	// Trace is the most detailed logging level.
	Trace Level = iota

	// Debug is for debugging information.
	Debug

	// Info is for informational messages.
	Info

	// Warning is for warnings.
	Warning

	// Error is for errors.
	Error

	// Fatal is for fatal errors.
	Fatal

	// Disabled is a sentinel one step above Fatal. A node whose
	// lowestLevel is Disabled rejects every record, including fatal ones.
	Disabled
)

// String renders the level using LogTape's lowercase names.
func (l Level) String() string {
	switch l {
	case Trace:
		return "trace"
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	case Disabled:
		return "disabled"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// AllLevels returns the enumerable severity levels, excluding the Disabled
// sentinel (which is not a level records are emitted at, only a threshold).
func AllLevels() []Level {
	return []Level{Trace, Debug, Info, Warning, Error, Fatal}
}

// InvalidInputError is raised for inputs the library cannot interpret: an
// unknown severity token, or (elsewhere, via the core.InvalidInputError
// alias) a lazy template-literal callback that never invoked the
// template-prefix function it was given.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "logtape: invalid input: " + e.Reason
}

// ParseLevel parses a severity level case-insensitively. Unknown tokens
// return an *InvalidInputError.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "trc", "verbose", "vrb":
		return Trace, nil
	case "debug", "dbg":
		return Debug, nil
	case "info", "information", "inf":
		return Info, nil
	case "warning", "warn", "wrn":
		return Warning, nil
	case "error", "err":
		return Error, nil
	case "fatal", "ftl", "critical":
		return Fatal, nil
	case "disabled", "off", "none":
		return Disabled, nil
	default:
		return 0, &InvalidInputError{Reason: fmt.Sprintf("unknown log level %q", s)}
	}
}

// MarshalText implements encoding.TextMarshaler for config round-tripping.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for config round-tripping.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

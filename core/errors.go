package core

import "github.com/logtape-go/logtape/level"

// ConfigError is raised whenever a Configuration cannot be applied: an
// unknown sink/filter id, an async-only disposable supplied to
// ConfigureSync, or a previous configuration's async disposables that
// ConfigureSync cannot drain. Validation runs entirely against a
// scratch structure before anything about the live tree is mutated, so
// a ConfigError always leaves the tree exactly as it was before the
// call — never partially applied, never reset.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "logtape: configuration error: " + e.Reason
}

// InvalidInputError is raised for inputs the library cannot interpret: an
// unknown severity token (see level.ParseLevel), or a lazy
// template-literal callback that never invoked the template-prefix
// function it was given.
type InvalidInputError = level.InvalidInputError

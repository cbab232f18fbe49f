package logtape

import "github.com/logtape-go/logtape/core"

// ConfigError and InvalidInputError are re-exported here so callers need
// only import this package, not core, to match them with errors.As.
type (
	ConfigError       = core.ConfigError
	InvalidInputError = core.InvalidInputError
)

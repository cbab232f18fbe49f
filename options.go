package logtape

import (
	"os"

	"github.com/logtape-go/logtape/level"
)

// BindingOption configures a LoggerBinding built by Binding.
type BindingOption func(*LoggerBinding)

// WithSinks attaches the named sinks (resolved against Config.Sinks at
// Configure time) to this binding.
func WithSinks(ids ...string) BindingOption {
	return func(b *LoggerBinding) { b.sinkIDs = append(b.sinkIDs, ids...) }
}

// WithFilters attaches the named filters (resolved against
// Config.Filters at Configure time) to this binding.
func WithFilters(ids ...string) BindingOption {
	return func(b *LoggerBinding) { b.filterIDs = append(b.filterIDs, ids...) }
}

// WithLowestLevel sets the category's own severity threshold. Records
// below it never reach the filter chain or any sink.
func WithLowestLevel(lvl level.Level) BindingOption {
	return func(b *LoggerBinding) { b.lowestLevel = lvl; b.hasLevel = true }
}

// WithParentSinks sets whether the category's emit walks ancestor sinks
// (ParentSinksInherit, the default) or only its own (ParentSinksOverride).
func WithParentSinks(policy ParentSinkPolicy) BindingOption {
	return func(b *LoggerBinding) { b.parentSinks = policy }
}

func defaultMetaWriter() *os.File {
	return os.Stderr
}

// Package configuration loads a declarative logtape.Config from JSON or
// YAML, resolving named sinks and filters through a small factory
// registry. The registry ships factories for the sinks this module
// provides (Console, Memory) and a level filter; applications register
// their own factories for anything else.
package configuration

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/logtape-go/logtape"
	"github.com/logtape-go/logtape/core"
	"github.com/logtape-go/logtape/filter"
	"github.com/logtape-go/logtape/level"
	"github.com/logtape-go/logtape/sink"
	"gopkg.in/yaml.v3"
)

// SinkSpec names a sink and the arguments to build it with.
type SinkSpec struct {
	Name string                 `json:"name" yaml:"name"`
	Args map[string]interface{} `json:"args,omitempty" yaml:"args,omitempty"`
}

// FilterSpec names a filter and the arguments to build it with.
type FilterSpec struct {
	Name string                 `json:"name" yaml:"name"`
	Args map[string]interface{} `json:"args,omitempty" yaml:"args,omitempty"`
}

// LoggerSpec declares one category binding.
type LoggerSpec struct {
	Category     []string `json:"category" yaml:"category"`
	MinimumLevel string   `json:"minimumLevel,omitempty" yaml:"minimumLevel,omitempty"`
	Sinks        []string `json:"sinks,omitempty" yaml:"sinks,omitempty"`
	Filters      []string `json:"filters,omitempty" yaml:"filters,omitempty"`
	ParentSinks  string   `json:"parentSinks,omitempty" yaml:"parentSinks,omitempty"` // "inherit" (default) or "override"
}

// Document is the declarative, file-shaped form of a logtape.Config.
type Document struct {
	Sinks   map[string]SinkSpec   `json:"sinks,omitempty" yaml:"sinks,omitempty"`
	Filters map[string]FilterSpec `json:"filters,omitempty" yaml:"filters,omitempty"`
	Loggers []LoggerSpec          `json:"loggers,omitempty" yaml:"loggers,omitempty"`
	Reset   bool                  `json:"reset,omitempty" yaml:"reset,omitempty"`
}

// SinkFactory builds a sink from a SinkSpec's args.
type SinkFactory func(args map[string]interface{}) (core.Sink, error)

// FilterFactory builds a filter from a FilterSpec's args.
type FilterFactory func(args map[string]interface{}) (core.Filter, error)

// Registry holds the named sink and filter factories a Document's specs
// resolve against. NewRegistry returns one preloaded with this module's
// own sinks (Console, Memory) and a "Level" filter backed by
// filter.FromLevel; register more with RegisterSink/RegisterFilter
// before calling Build for any custom sink types.
type Registry struct {
	sinks   map[string]SinkFactory
	filters map[string]FilterFactory
}

// NewRegistry returns a Registry preloaded with this module's built-in
// sink and filter factories.
func NewRegistry() *Registry {
	r := &Registry{
		sinks:   make(map[string]SinkFactory),
		filters: make(map[string]FilterFactory),
	}
	r.RegisterSink("Console", createConsoleSink)
	r.RegisterSink("Memory", createMemorySink)
	r.RegisterFilter("Level", createLevelFilter)
	return r
}

// RegisterSink registers a sink factory under name, overwriting any
// existing registration.
func (r *Registry) RegisterSink(name string, factory SinkFactory) {
	r.sinks[name] = factory
}

// RegisterFilter registers a filter factory under name, overwriting any
// existing registration.
func (r *Registry) RegisterFilter(name string, factory FilterFactory) {
	r.filters[name] = factory
}

// Build resolves doc's specs into a logtape.Config, ready to pass to
// logtape.Configure or logtape.ConfigureSync. Unknown sink/filter type
// names and malformed per-logger levels produce an error describing the
// offending spec, rather than silently skipping it.
func (r *Registry) Build(doc *Document) (logtape.Config, error) {
	cfg := logtape.Config{
		Sinks:   make(map[string]core.Sink, len(doc.Sinks)),
		Filters: make(map[string]core.FilterOrLevel, len(doc.Filters)),
		Reset:   doc.Reset,
	}

	for name, spec := range doc.Sinks {
		factory, ok := r.sinks[spec.Name]
		if !ok {
			return logtape.Config{}, fmt.Errorf("configuration: sink %q has unknown type %q", name, spec.Name)
		}
		s, err := factory(spec.Args)
		if err != nil {
			return logtape.Config{}, fmt.Errorf("configuration: building sink %q: %w", name, err)
		}
		cfg.Sinks[name] = s
	}

	for name, spec := range doc.Filters {
		factory, ok := r.filters[spec.Name]
		if !ok {
			return logtape.Config{}, fmt.Errorf("configuration: filter %q has unknown type %q", name, spec.Name)
		}
		f, err := factory(spec.Args)
		if err != nil {
			return logtape.Config{}, fmt.Errorf("configuration: building filter %q: %w", name, err)
		}
		cfg.Filters[name] = core.FilterOf(f)
	}

	for _, ls := range doc.Loggers {
		opts := []logtape.BindingOption{
			logtape.WithSinks(ls.Sinks...),
			logtape.WithFilters(ls.Filters...),
		}
		if ls.MinimumLevel != "" {
			lvl, err := level.ParseLevel(ls.MinimumLevel)
			if err != nil {
				return logtape.Config{}, fmt.Errorf("configuration: logger %v: %w", ls.Category, err)
			}
			opts = append(opts, logtape.WithLowestLevel(lvl))
		}
		switch strings.ToLower(ls.ParentSinks) {
		case "", "inherit":
			opts = append(opts, logtape.WithParentSinks(logtape.ParentSinksInherit))
		case "override":
			opts = append(opts, logtape.WithParentSinks(logtape.ParentSinksOverride))
		default:
			return logtape.Config{}, fmt.Errorf("configuration: logger %v: unknown parentSinks %q", ls.Category, ls.ParentSinks)
		}
		cfg.Loggers = append(cfg.Loggers, logtape.Binding(ls.Category, opts...))
	}

	return cfg, nil
}

// LoadFile reads a JSON or YAML configuration document, dispatching on
// the file extension (.yaml/.yml versus everything else).
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configuration: reading %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return LoadYAML(data)
	}
	return LoadJSON(data)
}

// LoadJSON decodes a JSON configuration document.
func LoadJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("configuration: parsing JSON: %w", err)
	}
	return &doc, nil
}

// LoadYAML decodes a YAML configuration document.
func LoadYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("configuration: parsing YAML: %w", err)
	}
	return &doc, nil
}

func createConsoleSink(args map[string]interface{}) (core.Sink, error) {
	var opts []sink.ConsoleOption
	switch strings.ToLower(GetString(args, "theme", "")) {
	case "nocolor":
		opts = append(opts, sink.WithColor(false))
	case "color":
		opts = append(opts, sink.WithColor(true))
	}
	if GetBool(args, "showProperties", false) {
		opts = append(opts, sink.WithProperties(true))
	}
	w := os.Stdout
	if GetString(args, "destination", "stdout") == "stderr" {
		w = os.Stderr
	}
	s := core.Sink(sink.NewConsole(w, opts...))
	if size := GetInt(args, "bufferSize", 0); size > 0 {
		s = sink.Buffered(s, size, GetDuration(args, "flushInterval", time.Second))
	}
	return s, nil
}

func createMemorySink(map[string]interface{}) (core.Sink, error) {
	return sink.NewMemory(), nil
}

func createLevelFilter(args map[string]interface{}) (core.Filter, error) {
	lvlStr := GetString(args, "minimumLevel", "")
	if lvlStr == "" {
		return nil, fmt.Errorf("level filter requires 'minimumLevel' argument")
	}
	lvl, err := level.ParseLevel(lvlStr)
	if err != nil {
		return nil, err
	}
	return filter.FromLevel(lvl), nil
}

// GetString, GetInt, and GetBool read typed values out of a spec's Args
// map, tolerating the loose typing JSON/YAML unmarshaling produces
// (float64 for all JSON numbers, string-encoded numbers from
// environment-substituted YAML).

// GetString reads a string value from args, or defaultValue if absent.
func GetString(args map[string]interface{}, key string, defaultValue string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultValue
}

// GetInt reads an int value from args, or defaultValue if absent or
// unparsable.
func GetInt(args map[string]interface{}, key string, defaultValue int) int {
	if v, ok := args[key]; ok {
		switch val := v.(type) {
		case float64:
			return int(val)
		case int:
			return val
		case string:
			if i, err := strconv.Atoi(val); err == nil {
				return i
			}
		}
	}
	return defaultValue
}

// GetBool reads a bool value from args, or defaultValue if absent or
// unparsable.
func GetBool(args map[string]interface{}, key string, defaultValue bool) bool {
	if v, ok := args[key]; ok {
		switch val := v.(type) {
		case bool:
			return val
		case string:
			if b, err := strconv.ParseBool(val); err == nil {
				return b
			}
		}
	}
	return defaultValue
}

// GetDuration reads a duration value from args, or defaultValue if
// absent or unparsable. Strings use time.ParseDuration formats ("100ms",
// "5s", "1m"); bare numbers are taken as milliseconds.
func GetDuration(args map[string]interface{}, key string, defaultValue time.Duration) time.Duration {
	if v, ok := args[key]; ok {
		switch val := v.(type) {
		case string:
			if d, err := time.ParseDuration(val); err == nil {
				return d
			}
		case float64:
			return time.Duration(val) * time.Millisecond
		case int:
			return time.Duration(val) * time.Millisecond
		}
	}
	return defaultValue
}

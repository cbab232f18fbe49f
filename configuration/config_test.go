package configuration

import (
	"context"
	"testing"
	"time"

	"github.com/logtape-go/logtape/core"
)

func TestBuildResolvesMemorySink(t *testing.T) {
	reg := NewRegistry()
	doc := &Document{
		Sinks: map[string]SinkSpec{
			"out": {Name: "Memory"},
		},
		Loggers: []LoggerSpec{
			{Category: []string{"app"}, MinimumLevel: "warning", Sinks: []string{"out"}},
		},
	}

	cfg, err := reg.Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := cfg.Sinks["out"]; !ok {
		t.Fatal("expected the Memory sink to be built under id \"out\"")
	}
	if len(cfg.Loggers) != 1 {
		t.Fatalf("got %d logger bindings, want 1", len(cfg.Loggers))
	}
}

func TestBuildRejectsUnknownSinkType(t *testing.T) {
	reg := NewRegistry()
	doc := &Document{
		Sinks: map[string]SinkSpec{"out": {Name: "NoSuchSink"}},
	}
	if _, err := reg.Build(doc); err == nil {
		t.Fatal("expected an error for an unregistered sink type")
	}
}

func TestBuildRejectsUnknownParentSinksValue(t *testing.T) {
	reg := NewRegistry()
	doc := &Document{
		Loggers: []LoggerSpec{{Category: []string{"app"}, ParentSinks: "sideways"}},
	}
	if _, err := reg.Build(doc); err == nil {
		t.Fatal("expected an error for an unrecognized parentSinks value")
	}
}

func TestLoadYAMLRoundTrip(t *testing.T) {
	data := []byte(`
sinks:
  console:
    name: Console
    args:
      destination: stderr
loggers:
  - category: [app]
    minimumLevel: info
    sinks: [console]
`)
	doc, err := LoadYAML(data)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if doc.Sinks["console"].Name != "Console" {
		t.Errorf("got sink name %q, want Console", doc.Sinks["console"].Name)
	}
	if len(doc.Loggers) != 1 || doc.Loggers[0].MinimumLevel != "info" {
		t.Error("expected one logger binding with minimumLevel info")
	}

	reg := NewRegistry()
	cfg, err := reg.Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := cfg.Sinks["console"]; !ok {
		t.Fatal("expected the Console sink to be built")
	}
}

func TestLoadJSONRejectsMalformedInput(t *testing.T) {
	if _, err := LoadJSON([]byte("not json")); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestGetStringIntBoolDefaults(t *testing.T) {
	args := map[string]interface{}{
		"s":    "hello",
		"i":    float64(42),
		"istr": "7",
		"b":    true,
		"bstr": "false",
	}
	if GetString(args, "s", "x") != "hello" {
		t.Error("GetString should return the present value")
	}
	if GetString(args, "missing", "fallback") != "fallback" {
		t.Error("GetString should return the default for a missing key")
	}
	if GetInt(args, "i", 0) != 42 {
		t.Error("GetInt should coerce a JSON float64")
	}
	if GetInt(args, "istr", 0) != 7 {
		t.Error("GetInt should parse a numeric string")
	}
	if !GetBool(args, "b", false) {
		t.Error("GetBool should return the present bool")
	}
	if GetBool(args, "bstr", true) != false {
		t.Error("GetBool should parse a boolean string")
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		key  string
		want time.Duration
	}{
		{"duration string", map[string]interface{}{"d": "100ms"}, "d", 100 * time.Millisecond},
		{"compound duration string", map[string]interface{}{"d": "1m30s"}, "d", 90 * time.Second},
		{"json number is milliseconds", map[string]interface{}{"d": float64(250)}, "d", 250 * time.Millisecond},
		{"int is milliseconds", map[string]interface{}{"d": 5}, "d", 5 * time.Millisecond},
		{"missing key falls back", map[string]interface{}{}, "d", time.Second},
		{"unparsable string falls back", map[string]interface{}{"d": "soon"}, "d", time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetDuration(tt.args, tt.key, time.Second); got != tt.want {
				t.Errorf("GetDuration = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildBufferedConsoleSink(t *testing.T) {
	reg := NewRegistry()
	doc := &Document{
		Sinks: map[string]SinkSpec{
			"out": {Name: "Console", Args: map[string]interface{}{
				"bufferSize":    16,
				"flushInterval": "50ms",
			}},
		},
	}
	cfg, err := reg.Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s, ok := cfg.Sinks["out"]
	if !ok {
		t.Fatal("expected the buffered console sink to be built")
	}
	releaser, ok := s.(core.AsyncReleaser)
	if !ok {
		t.Fatal("a buffered console sink must expose async release so disposal drains it")
	}
	if err := releaser.CloseAsync(context.Background()); err != nil {
		t.Fatalf("CloseAsync: %v", err)
	}
}

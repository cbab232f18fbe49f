package parser

import (
	"reflect"
	"testing"
)

func TestParseNoPlaceholders(t *testing.T) {
	tests := []string{"", "hello world", "100% literal {{escaped}} text {{}}"}
	for _, tpl := range tests {
		tmpl := Parse(tpl)
		got := Render(tmpl, map[string]any{"unused": 1})
		if len(got) != 1 || got[0] != expectedLiteral(tpl) {
			t.Errorf("Parse(%q) rendered %#v, want a single literal equal to the escaped form", tpl, got)
		}
	}
}

// expectedLiteral mirrors the "{{"->"{" / "}}"->"}" escaping Parse performs.
func expectedLiteral(s string) string {
	tmpl := Parse(s)
	out := ""
	for _, tok := range tmpl.Tokens {
		if tt, ok := tok.(*TextToken); ok {
			out += tt.Text
		}
	}
	return out
}

func TestRenderTemplates(t *testing.T) {
	tests := []struct {
		name     string
		template string
		props    map[string]any
		want     []any
	}{
		{
			name:     "simple placeholder",
			template: "slow query {dur}ms",
			props:    map[string]any{"dur": 1200},
			want:     []any{"slow query ", 1200, "ms"},
		},
		{
			name:     "unknown key is absent",
			template: "hello {missing}",
			props:    map[string]any{},
			want:     []any{"hello ", nil, ""},
		},
		{
			name:     "trimmed key fallback",
			template: "{ name }",
			props:    map[string]any{"name": "Ada"},
			want:     []any{"", "Ada", ""},
		},
		{
			name:     "nested dot access",
			template: "{user.name} logged in from {ip}",
			props:    map[string]any{"user": map[string]any{"name": "Ada"}, "ip": "10.0.0.1"},
			want:     []any{"", "Ada", " logged in from ", "10.0.0.1", ""},
		},
		{
			name:     "bracket index",
			template: "{users[1]}",
			props:    map[string]any{"users": []any{"alice", "bob"}},
			want:     []any{"", "bob", ""},
		},
		{
			name:     "quoted bracket with escapes",
			template: `{user["full-name"]}`,
			props:    map[string]any{"user": map[string]any{"full-name": "Grace\nHopper"}},
			want:     []any{"", "Grace\nHopper", ""},
		},
		{
			name:     "optional chaining over missing path",
			template: "{user?.profile?.email}",
			props:    map[string]any{"user": map[string]any{}},
			want:     []any{"", nil, ""},
		},
		{
			name:     "prototype access blocked",
			template: "{a.__proto__}",
			props:    map[string]any{"a": map[string]any{"__proto__": "evil"}},
			want:     []any{"", nil, ""},
		},
		{
			name:     "unterminated brace is literal",
			template: "hello {world",
			props:    map[string]any{},
			want:     []any{"hello {world"},
		},
		{
			name:     "malformed index is absent",
			template: "{users[abc]}",
			props:    map[string]any{"users": []any{"x"}},
			want:     []any{"", nil, ""},
		},
		{
			name:     "out-of-bounds index is absent",
			template: "{users[9]}",
			props:    map[string]any{"users": []any{"x"}},
			want:     []any{"", nil, ""},
		},
		{
			name:     "numeric index into string-keyed map is absent",
			template: "{m[0]}",
			props:    map[string]any{"m": map[string]any{"a": 1}},
			want:     []any{"", nil, ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(Parse(tt.template), tt.props)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Render(%q) = %#v, want %#v", tt.template, got, tt.want)
			}
		})
	}
}

func TestParseWildcard(t *testing.T) {
	props := map[string]any{"a": 1, "b": 2}
	tmpl := Parse("{*}")
	got := Render(tmpl, props)
	if len(got) != 3 || !reflect.DeepEqual(got[1], props) {
		t.Errorf("wildcard should substitute the whole properties map, got %#v", got)
	}

	tmplNamed := Parse("{*}")
	props2 := map[string]any{"*": "star", "a": 1}
	got2 := Render(tmplNamed, props2)
	want2 := []any{"", "star", ""}
	if !reflect.DeepEqual(got2, want2) {
		t.Errorf("wildcard should prefer an explicit \"*\" key, got %#v", got2)
	}
}

func TestRenderLiteralInterleaving(t *testing.T) {
	got := RenderLiteral([]string{"count: ", " items"}, []any{42})
	want := []any{"count: ", 42, " items"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestRenderMessageInvariant(t *testing.T) {
	templates := []string{
		"",
		"no placeholders",
		"{a}{b}{c}",
		"prefix {a.b.c} suffix",
		`{x["y"]["z"]}`,
		"unterminated {",
	}
	for _, tpl := range templates {
		tmpl := Parse(tpl)
		msg := Render(tmpl, map[string]any{"a": 1, "b": 2, "x": map[string]any{}})
		if len(msg)%2 != 1 {
			t.Errorf("Render(%q) produced even-length message %#v, want odd", tpl, msg)
		}
		for i, v := range msg {
			if i%2 == 0 {
				if _, ok := v.(string); !ok {
					t.Errorf("Render(%q)[%d] = %#v, want a literal string", tpl, i, v)
				}
			}
		}
	}
}

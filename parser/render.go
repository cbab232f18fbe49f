package parser

import (
	"reflect"
	"strings"
)

// blockedSegmentNames are never resolved, even if present on the value
// being navigated, to prevent prototype-pollution-style access.
var blockedSegmentNames = map[string]bool{
	"__proto__":   true,
	"prototype":   true,
	"constructor": true,
}

// Render expands a parsed template against a properties map into the
// alternating literal/value sequence a core.Record's Message carries.
// The result always starts and ends with a string (possibly empty) and
// always has odd length.
func Render(tmpl *MessageTemplate, properties map[string]any) []any {
	message := make([]any, 0, len(tmpl.Tokens)*2+1)
	var pending string

	for _, tok := range tmpl.Tokens {
		switch t := tok.(type) {
		case *TextToken:
			pending += t.Text
		case *PropertyToken:
			message = append(message, pending)
			pending = ""
			value, ok := resolveProperty(t, properties)
			if !ok {
				value = nil
			}
			message = append(message, value)
		}
	}
	message = append(message, pending)
	return message
}

// RenderLiteral interleaves a tagged-template-literal's fragment
// sequence with its interpolated values, preserving the
// literal/value/literal/.../literal parity. If the caller passed fewer
// fragments than required (values+1), the sequence is padded with empty
// literals rather than panicking; surplus fragments are concatenated
// into the final literal.
func RenderLiteral(fragments []string, values []any) []any {
	need := len(values) + 1
	if len(fragments) < need {
		padded := make([]string, need)
		copy(padded, fragments)
		fragments = padded
	} else if len(fragments) > need {
		merged := make([]string, need)
		copy(merged, fragments[:need-1])
		merged[need-1] = strings.Join(fragments[need-1:], "")
		fragments = merged
	}
	message := make([]any, 0, len(fragments)+len(values))
	for i, f := range fragments {
		message = append(message, f)
		if i < len(values) {
			message = append(message, values[i])
		}
	}
	return message
}

// resolveProperty resolves a single placeholder against the properties
// map. Order of attempts, per the grammar: wildcard, exact (untrimmed)
// key, ASCII-trimmed key, then nested-path navigation.
func resolveProperty(tok *PropertyToken, properties map[string]any) (any, bool) {
	if tok.Wildcard {
		if v, ok := properties["*"]; ok {
			return v, true
		}
		return properties, true
	}

	if v, ok := properties[tok.Raw]; ok {
		return v, true
	}

	trimmed := trimASCIISpace(tok.Raw)
	if trimmed != tok.Raw {
		if v, ok := properties[trimmed]; ok {
			return v, true
		}
	}

	if len(tok.Path) == 0 {
		return nil, false
	}
	return resolvePath(properties, tok.Path)
}

func resolvePath(properties map[string]any, path []PathSegment) (any, bool) {
	root := path[0]
	if blockedSegmentNames[root.Name] {
		return nil, false
	}
	current, ok := properties[root.Name]
	if !ok {
		return nil, false
	}

	for _, seg := range path[1:] {
		switch seg.Kind {
		case SegmentDot, SegmentKey:
			if blockedSegmentNames[seg.Name] {
				return nil, false
			}
			current, ok = accessByKey(current, seg.Name)
		case SegmentIndex:
			if seg.Index < 0 {
				return nil, false
			}
			current, ok = accessByIndex(current, seg.Index)
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// accessByKey navigates a "." or quoted-bracket accessor. Only a value's
// own properties are considered: map entries and exported struct fields,
// never methods.
func accessByKey(value any, name string) (any, bool) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		f := rv.FieldByName(name)
		if !f.IsValid() || !f.CanInterface() {
			return nil, false
		}
		return f.Interface(), true
	default:
		return nil, false
	}
}

// accessByIndex navigates a numeric bracket accessor over a slice,
// array, or an integer-keyed map.
func accessByIndex(value any, idx int) (any, bool) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	case reflect.Map:
		kt := rv.Type().Key()
		kv := reflect.ValueOf(idx)
		if !kv.Type().AssignableTo(kt) {
			// Integer-keyed maps of any width are navigable; anything else
			// (a string-keyed map indexed numerically, say) is absent.
			switch kt.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
				reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				kv = kv.Convert(kt)
			default:
				return nil, false
			}
		}
		mv := rv.MapIndex(kv)
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	default:
		return nil, false
	}
}

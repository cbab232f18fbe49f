package parser

import "strconv"

// unescapeQuoted decodes the JS-style escape sequences LogTape accepts
// inside a quoted bracket accessor, e.g. user["full-name"] or, with
// escapes, user["line\nbreak"]. Unknown or truncated escapes degrade to
// emitting the literal character(s) rather than failing — the parser is
// total and never errors.
func unescapeQuoted(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b = append(b, c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b = append(b, '\n')
		case 't':
			b = append(b, '\t')
		case 'r':
			b = append(b, '\r')
		case 'b':
			b = append(b, '\b')
		case 'f':
			b = append(b, '\f')
		case 'v':
			b = append(b, '\v')
		case '0':
			b = append(b, 0)
		case '\\':
			b = append(b, '\\')
		case '"':
			b = append(b, '"')
		case '\'':
			b = append(b, '\'')
		case 'u':
			if i+4 < len(s) {
				if code, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					b = append(b, []byte(string(rune(code)))...)
					i += 4
					continue
				}
			}
			// Malformed \u escape: emit as-is.
			b = append(b, 'u')
		default:
			b = append(b, s[i])
		}
	}
	return string(b)
}

// Package parser implements LogTape's message-template grammar: turning
// a template string plus a properties map into the alternating
// literal/value sequence a core.Record carries as its Message.
//
// Parse is total — it never returns an error. Unterminated braces,
// unknown keys, and malformed nested paths all degrade gracefully to
// literal text or an absent-value marker (nil) rather than failing.
package parser

import "strconv"

// Parse compiles a message template into its token sequence in a single
// left-to-right pass, tracking the start of the current run of literal
// text.
func Parse(template string) *MessageTemplate {
	if template == "" {
		return &MessageTemplate{Raw: template, Tokens: nil}
	}

	var tokens []Token
	n := len(template)
	i := 0
	textStart := 0

	for i < n {
		switch template[i] {
		case '{':
			if i+1 < n && template[i+1] == '{' {
				if i > textStart {
					tokens = append(tokens, &TextToken{Text: template[textStart:i]})
				}
				tokens = append(tokens, &TextToken{Text: "{"})
				i += 2
				textStart = i
				continue
			}

			closeIdx, ok := findClosingBrace(template, i+1)
			if !ok {
				// Unmatched opening brace: the rest of the template is literal.
				tokens = append(tokens, &TextToken{Text: template[textStart:]})
				textStart = n
				i = n
				break
			}

			if i > textStart {
				tokens = append(tokens, &TextToken{Text: template[textStart:i]})
			}
			tokens = append(tokens, parsePropertyContent(template[i+1:closeIdx]))
			i = closeIdx + 1
			textStart = i

		case '}':
			if i+1 < n && template[i+1] == '}' {
				if i > textStart {
					tokens = append(tokens, &TextToken{Text: template[textStart:i]})
				}
				tokens = append(tokens, &TextToken{Text: "}"})
				i += 2
				textStart = i
				continue
			}
			i++

		default:
			i++
		}
	}

	if textStart < n {
		tokens = append(tokens, &TextToken{Text: template[textStart:]})
	}

	return &MessageTemplate{Raw: template, Tokens: tokens}
}

// findClosingBrace scans for the "}" matching an opening "{" at
// start-1, skipping over quoted bracket-accessor content so a literal
// "}" inside a quoted key (e.g. {user["a}b"]}) doesn't terminate early.
func findClosingBrace(s string, start int) (int, bool) {
	var inQuote byte
	i := start
	for i < len(s) {
		c := s[i]
		if inQuote != 0 {
			if c == '\\' && i+1 < len(s) {
				i += 2
				continue
			}
			if c == inQuote {
				inQuote = 0
			}
			i++
			continue
		}
		switch c {
		case '"', '\'':
			inQuote = c
			i++
		case '}':
			return i, true
		default:
			i++
		}
	}
	return 0, false
}

func isASCIISpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}

// parsePropertyContent parses the raw text between "{" and "}" into a
// PropertyToken. Content is never rejected outright: a wildcard, a flat
// key, or a nested-access path are all recorded, and resolution against
// a concrete properties map happens later, during Render.
func parsePropertyContent(content string) *PropertyToken {
	trimmed := trimASCIISpace(content)
	if trimmed == "*" {
		return &PropertyToken{Raw: content, Wildcard: true}
	}
	return &PropertyToken{Raw: content, Path: parsePath(trimmed)}
}

func trimASCIISpace(s string) string {
	start := 0
	for start < len(s) && isASCIISpace(rune(s[start])) {
		start++
	}
	end := len(s)
	for end > start && isASCIISpace(rune(s[end-1])) {
		end--
	}
	return s[start:end]
}

// parsePath splits a trimmed key such as "user?.profile.email" or
// "users[0]" or `user["full-name"]` into a root segment plus a chain of
// dot/bracket accessors. It never errors: a malformed bracket index just
// produces a segment that will resolve to the absent marker.
func parsePath(s string) []PathSegment {
	if s == "" {
		return nil
	}

	n := len(s)
	i := 0
	rootEnd := i
	for rootEnd < n && s[rootEnd] != '.' && s[rootEnd] != '[' && s[rootEnd] != '?' {
		rootEnd++
	}
	segs := []PathSegment{{Kind: SegmentRoot, Name: s[i:rootEnd]}}
	i = rootEnd

	for i < n {
		switch {
		case s[i] == '?':
			i++
			if i < n && s[i] == '.' {
				i++
			}
			start := i
			for i < n && s[i] != '.' && s[i] != '[' && s[i] != '?' {
				i++
			}
			segs = append(segs, PathSegment{Kind: SegmentDot, Name: s[start:i], Optional: true})

		case s[i] == '.':
			i++
			start := i
			for i < n && s[i] != '.' && s[i] != '[' && s[i] != '?' {
				i++
			}
			segs = append(segs, PathSegment{Kind: SegmentDot, Name: s[start:i]})

		case s[i] == '[':
			i++
			if i < n && (s[i] == '"' || s[i] == '\'') {
				quote := s[i]
				i++
				qstart := i
				for i < n && s[i] != quote {
					if s[i] == '\\' && i+1 < n {
						i += 2
						continue
					}
					i++
				}
				key := unescapeQuoted(s[qstart:i])
				if i < n {
					i++ // closing quote
				}
				for i < n && s[i] != ']' {
					i++
				}
				if i < n {
					i++ // closing bracket
				}
				segs = append(segs, PathSegment{Kind: SegmentKey, Name: key})
			} else {
				start := i
				for i < n && s[i] != ']' {
					i++
				}
				numStr := trimASCIISpace(s[start:i])
				if i < n {
					i++
				}
				idx, err := strconv.Atoi(numStr)
				if err != nil {
					idx = -1 // malformed index: resolves to absent
				}
				segs = append(segs, PathSegment{Kind: SegmentIndex, Index: idx})
			}

		default:
			// Stray character between accessors; skip defensively so the
			// scan always terminates.
			i++
		}
	}

	return segs
}

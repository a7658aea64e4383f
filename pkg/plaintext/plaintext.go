// Package plaintext derives a readable text alternative from rendered
// HTML. It is a best-effort byte scanner, not an HTML parser: malformed
// or unbalanced markup never fails, it degrades to literal text.
package plaintext

import (
	"html"
	"strings"
)

// blockTags are elements whose boundaries become paragraph breaks in
// the derived text. br and hr map to a single line break; td and th to
// a cell separator space.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"header": true, "footer": true, "blockquote": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true,
	"table": true, "thead": true, "tbody": true, "tr": true,
}

// Derive converts an HTML string into plaintext: tags removed,
// script/style contents dropped entirely, character entities decoded,
// and whitespace collapsed so block boundaries become blank lines.
// It never fails; empty input yields an empty string.
func Derive(src string) string {
	var out strings.Builder
	out.Grow(len(src))

	i := 0
	for i < len(src) {
		c := src[i]

		if c != '<' {
			// Normalize source whitespace immediately so only tag
			// boundaries produce real line breaks.
			if isSpace(c) {
				out.WriteByte(' ')
			} else {
				out.WriteByte(c)
			}
			i++
			continue
		}

		// A '<' not opening anything tag-like is literal text.
		if i+1 >= len(src) || !startsTag(src[i+1]) {
			out.WriteByte('<')
			i++
			continue
		}

		// Comments and declarations.
		if src[i+1] == '!' || src[i+1] == '?' {
			if strings.HasPrefix(src[i:], "<!--") {
				end := strings.Index(src[i+4:], "-->")
				if end < 0 {
					return finish(out.String())
				}
				i += 4 + end + 3
				continue
			}
			close := strings.IndexByte(src[i:], '>')
			if close < 0 {
				return finish(out.String())
			}
			i += close + 1
			continue
		}

		name, isClose := tagName(src[i+1:])

		// Script, style, and title contents are markup or chrome, not
		// prose: drop the whole element, not just its tags.
		if !isClose && (name == "script" || name == "style" || name == "title") {
			rest := src[i:]
			closeIdx := indexCaseInsensitive(rest, "</"+name)
			if closeIdx < 0 {
				return finish(out.String())
			}
			gt := strings.IndexByte(rest[closeIdx:], '>')
			if gt < 0 {
				return finish(out.String())
			}
			out.WriteString("\n\n")
			i += closeIdx + gt + 1
			continue
		}

		close := strings.IndexByte(src[i:], '>')
		if close < 0 {
			// Unterminated tag: keep the remainder as literal text.
			out.WriteString(src[i+1:])
			break
		}

		switch {
		case blockTags[name]:
			out.WriteString("\n\n")
		case name == "br", name == "hr":
			out.WriteByte('\n')
		case name == "td", name == "th":
			out.WriteByte(' ')
		}
		i += close + 1
	}

	return finish(out.String())
}

func startsTag(c byte) bool {
	return c == '/' || c == '!' || c == '?' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// tagName extracts the lowercased element name following '<'.
func tagName(s string) (string, bool) {
	isClose := false
	if len(s) > 0 && s[0] == '/' {
		isClose = true
		s = s[1:]
	}
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			end++
			continue
		}
		break
	}
	return strings.ToLower(s[:end]), isClose
}

func indexCaseInsensitive(s, sub string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(sub))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// finish decodes entities and collapses whitespace: runs of spaces
// become one space, three or more newlines become one blank line, and
// the result is trimmed.
func finish(s string) string {
	s = html.UnescapeString(s)
	// UnescapeString maps &nbsp; to U+00A0; a plain space reads better
	// in a text part.
	s = strings.ReplaceAll(s, "\u00a0", " ")

	var out strings.Builder
	out.Grow(len(s))

	newlines := 0
	pendingSpace := false
	started := false

	for _, r := range s {
		switch {
		case r == '\n':
			newlines++
		case r == ' ' || r == '\t' || r == '\r' || r == '\f':
			pendingSpace = true
		default:
			if started {
				switch {
				case newlines >= 2:
					out.WriteString("\n\n")
				case newlines == 1:
					out.WriteByte('\n')
				case pendingSpace:
					out.WriteByte(' ')
				}
			}
			newlines = 0
			pendingSpace = false
			started = true
			out.WriteRune(r)
		}
	}

	return out.String()
}

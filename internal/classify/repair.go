package classify

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var errNoJSON = errors.New("no JSON value in reply")

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\}|\\[.*?\\])\\s*```")

// ExtractJSON pulls the first parseable JSON value out of a model reply.
// It survives surrounding prose, markdown fences, literal newlines inside
// strings, and replies truncated mid-value.
func ExtractJSON(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if out, ok := tryParse(text); ok {
		return out, nil
	}
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		if out, ok := tryParse(m[1]); ok {
			return out, nil
		}
	}
	// Cut the embedded value out of the prose. When the reply holds a list
	// the bracket comes first; cutting the object first would return only
	// the list's first element.
	objStart := strings.IndexByte(text, '{')
	arrStart := strings.IndexByte(text, '[')
	delims := [][2]byte{{'{', '}'}, {'[', ']'}}
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		delims[0], delims[1] = delims[1], delims[0]
	}
	for _, d := range delims {
		chunk, ok := cutValue(text, d[0], d[1])
		if !ok {
			continue
		}
		if out, ok := tryParse(chunk); ok {
			return out, nil
		}
	}
	return nil, errNoJSON
}

// tryParse validates the candidate as-is, then with in-string newlines
// blanked, then with truncation closed, then both.
func tryParse(s string) ([]byte, bool) {
	for _, candidate := range []string{
		s,
		sanitizeStrings(s),
		closeTruncated(s),
		closeTruncated(sanitizeStrings(s)),
	} {
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), true
		}
	}
	return nil, false
}

// cutValue returns the value starting at the first open delimiter and
// ending where its nesting closes, tracking strings so that braces inside
// them do not count. A reply truncated before the value closes yields the
// whole tail, which closeTruncated can then finish.
func cutValue(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return s[start:], true
}

// sanitizeStrings replaces literal newlines inside JSON strings with
// spaces; models emit them when a reason spans lines.
func sanitizeStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for _, r := range s {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			b.WriteRune(r)
			escaped = true
		case r == '"':
			b.WriteRune(r)
			inString = !inString
		case (r == '\n' || r == '\r') && inString:
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// closeTruncated appends the closing quote, brackets and braces a
// truncated reply is missing, innermost first.
func closeTruncated(s string) string {
	var stack []byte
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			stack = append(stack, '}')
		case c == '[':
			stack = append(stack, ']')
		case c == '}' || c == ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	var b strings.Builder
	b.Grow(len(s) + len(stack) + 1)
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String()
}

package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentFold decomposes to NFD, drops combining marks and recomposes,
// so "bíceps" and "biceps" normalize to the same key.
var accentFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize produces the canonical comparison key for a name: lowercase,
// trimmed, accents stripped, internal whitespace collapsed to single spaces.
// Two names are "the same entity" exactly when their normalized keys match.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(accentFold, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}

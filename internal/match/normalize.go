// Package match implements the option-matching core: text normalization,
// bundle expansion, alias/code matching, and weighted scoring.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a natural-language string for matching.
// Steps, in order: lowercase, "ß" to "ss", NFKD decomposition with
// combining marks dropped ("ä" to "a", "²" to "2"), slash/hyphen/
// degree-sign to space, all other non-alphanumeric characters removed,
// whitespace collapsed and trimmed. Pure and idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "ß", "ss")
	s = norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark from the NFKD decomposition
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == '/' || r == '-' || r == '°' || unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

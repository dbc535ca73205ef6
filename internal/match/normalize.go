package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining diacritical marks after NFD decomposition,
// so "Björk" and "Bjork" normalize identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize reduces a display name to a comparison key: lowercase,
// diacritics stripped, parenthetical disambiguators removed,
// punctuation collapsed to spaces, and common leading/trailing filler
// ("the", "band") dropped.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	s = stripParentheticals(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	if len(fields) > 1 && fields[0] == "the" {
		fields = fields[1:]
	}
	if len(fields) > 1 && fields[len(fields)-1] == "band" {
		fields = fields[:len(fields)-1]
	}

	return strings.Join(fields, " ")
}

// Tokens splits a normalized name into its comparison tokens.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// stripParentheticals removes "(...)"" and "[...]" groups, which
// providers use for disambiguation rather than as part of the name.
func stripParentheticals(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// Package slug normalizes person and organization names into deterministic
// matching keys. Source feeds disagree on case, accents, and punctuation
// ("Jean-Luc MÉLENCHON" vs "jean luc melenchon"), so every name is reduced to
// a folded form before it participates in identity resolution.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes to NFD and strips combining marks, turning
// "é" into "e" and "ç" into "c".
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold lowercases s and removes diacritics. Non-transformable input falls
// back to plain lowercasing rather than failing.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Name reduces a name component to its matchable form: folded, with hyphens
// and apostrophes treated as spaces, collapsed to single spaces.
func Name(s string) string {
	folded := Fold(s)
	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Person builds the deterministic slug for a person from first and last name,
// e.g. ("Jean-Luc", "Mélenchon") -> "jean-luc-melenchon".
func Person(firstName, lastName string) string {
	first := strings.ReplaceAll(Name(firstName), " ", "-")
	last := strings.ReplaceAll(Name(lastName), " ", "-")
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + "-" + last
	}
}

package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Common patterns for standardization
	nonWordSpace   = regexp.MustCompile(`[^\w\s]`)
	displayPunct   = regexp.MustCompile(`[,/]`)
	multipleSpaces = regexp.MustCompile(`\s+`)

	// Legal-entity suffixes, site designators and connectives that carry no
	// identity information in typed counterparty names
	boilerplate = regexp.MustCompile(`\b(ltda|sa|me|epp|eireli|cia|fazenda|faz|mina|de|da|do|das|dos|e)\b`)
)

// Key builds the strict comparison key for a raw counterparty name:
// 1. Decompose Unicode and strip combining marks (accent folding)
// 2. Convert to lowercase
// 3. Remove punctuation
// 4. Remove legal-entity boilerplate tokens
// 5. Normalize whitespace
// Key is pure, total and idempotent; it is used for matching only and is
// never stored as a display name.
func Key(raw string) string {
	if raw == "" {
		return ""
	}

	key := foldAccents(raw)
	key = strings.ToLower(key)
	key = nonWordSpace.ReplaceAllString(key, "")
	key = boilerplate.ReplaceAllString(key, "")
	key = multipleSpaces.ReplaceAllString(key, " ")

	return strings.TrimSpace(key)
}

// DisplayUpper builds the display-safe uppercase form of a name: accents
// folded, stray separators removed, whitespace collapsed, uppercased. Unlike
// Key it keeps every word, so the result is safe to persist as an entity's
// display name.
func DisplayUpper(raw string) string {
	if raw == "" {
		return ""
	}

	name := foldAccents(raw)
	name = displayPunct.ReplaceAllString(name, "")
	name = multipleSpaces.ReplaceAllString(name, " ")

	return strings.ToUpper(strings.TrimSpace(name))
}

// foldAccents removes diacritical marks from Unicode characters.
func foldAccents(s string) string {
	if !hasNonASCII(s) {
		return s
	}

	// NFD decomposition, drop nonspacing marks, recompose
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// hasNonASCII checks if the string contains non-ASCII characters.
func hasNonASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return true
		}
	}
	return false
}

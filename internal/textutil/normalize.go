package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// trailingParenthetical matches a final "(...)" group, e.g. "(2021 film)".
var trailingParenthetical = regexp.MustCompile(`\s*\([^()]*\)\s*$`)

// Fold lowercases text and strips combining marks so "Amélie" and "AMELIE"
// compare equal.
func Fold(text string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}

// Normalize folds text and collapses every run of punctuation or whitespace
// into a single space.
func Normalize(text string) string {
	return strings.Join(Tokenize(text), " ")
}

// Tokenize splits folded text into letter/digit tokens.
func Tokenize(text string) []string {
	raw := tokenSplitPattern.Split(Fold(text), -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if token != "" {
			terms = append(terms, token)
		}
	}
	return terms
}

// StripParenthetical removes one trailing parenthetical disambiguation
// suffix. If nothing would remain, the input is returned trimmed.
func StripParenthetical(title string) string {
	trimmed := strings.TrimSpace(title)
	stripped := strings.TrimSpace(trailingParenthetical.ReplaceAllString(trimmed, ""))
	if stripped == "" {
		return trimmed
	}
	return stripped
}

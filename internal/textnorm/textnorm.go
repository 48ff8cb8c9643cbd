// Package textnorm provides the lexical normalization primitives shared by
// the deck matcher and the message pipeline: accent stripping, casing and
// word tokenization.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining diacritical marks
// (Unicode category Mn), so that "Über" and "Uber" normalize identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize canonically decomposes text, strips combining marks, lowercases
// and trims surrounding whitespace. It is deterministic, idempotent and
// total: the empty string maps to the empty string and no input fails.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		// Transform errors only occur on malformed UTF-8; keep the raw
		// text rather than dropping user input.
		stripped = text
	}
	return strings.TrimSpace(strings.ToLower(stripped))
}

// Tokenize splits text on word-character run boundaries. Punctuation and
// whitespace separate tokens and are dropped, never emitted.
//
// Word classification is basic (letters, digits, underscore). Languages
// without inter-word spacing, such as unsegmented Japanese, degrade to
// whole-phrase single tokens; that limitation is documented behavior.
func Tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	for _, r := range text {
		if isWordRune(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

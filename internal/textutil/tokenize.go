// Package textutil normalizes and tokenizes user-authored message text.
// All matching layers (automaton, regex bank, context cues) operate on the
// normalized form produced here so matching behavior stays consistent.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var foldCaser = cases.Fold()

// Normalize applies Unicode NFKC normalization, case folding, and whitespace
// collapsing. The result is what every matcher sees.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = foldCaser.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize splits normalized text into tokens: whitespace-separated units
// with leading/trailing punctuation stripped. Interior apostrophes and
// hyphens survive ("don't", "passive-aggressive"). Empty input yields nil.
func Tokenize(s string) []string {
	fields := strings.Fields(Normalize(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// ContentWords returns tokens of at least minLen runes, used for the
// last-resort keyword-overlap rule in fit verification.
func ContentWords(s string, minLen int) []string {
	var out []string
	for _, tok := range Tokenize(s) {
		if len([]rune(tok)) >= minLen {
			out = append(out, tok)
		}
	}
	return out
}

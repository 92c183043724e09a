// Package textnorm implements the tokenization pipeline shared by indexing
// and querying: lowercase, decompose, strip combining marks, fold letter
// variants, strip punctuation, split, filter.
//
// Each stage is exported so it can be tested and recombined on its own.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lower lowercases s.
func Lower(s string) string {
	return strings.ToLower(s)
}

// Decompose returns the canonical decomposition (NFD) of s, separating
// base letters from their combining marks.
func Decompose(s string) string {
	return norm.NFD.String(s)
}

// StripMarks removes combining marks (Unicode category Mn).
func StripMarks(s string) string {
	// Transformers carry state; build one per call.
	out, _, err := transform.String(runes.Remove(runes.In(unicode.Mn)), s)
	if err != nil {
		return s
	}
	return out
}

// letterFolds maps letters that carry no decomposable mark to their base form.
var letterFolds = strings.NewReplacer(
	"đ", "d", "Đ", "D",
	"ð", "d", "Ð", "D",
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"ß", "ss",
	"æ", "ae", "œ", "oe",
)

// FoldLetters replaces script-specific letter variants with plain Latin letters.
func FoldLetters(s string) string {
	return letterFolds.Replace(s)
}

// StripPunctuation replaces every rune that is not a letter or digit with a space.
func StripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
}

// Split splits s on whitespace.
func Split(s string) []string {
	return strings.Fields(s)
}

// Filter drops single-character tokens and stop words. It reuses the
// backing array of tokens.
func Filter(tokens []string) []string {
	out := tokens[:0]
	for _, t := range tokens {
		if utf8.RuneCountInString(t) <= 1 {
			continue
		}
		if IsStopWord(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Fold runs the character-level stages (lower, decompose, strip marks,
// fold letters) without splitting.
func Fold(s string) string {
	return FoldLetters(StripMarks(Decompose(Lower(s))))
}

// Tokenize runs the whole pipeline.
func Tokenize(s string) []string {
	return Filter(Split(StripPunctuation(Fold(s))))
}

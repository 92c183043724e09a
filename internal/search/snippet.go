package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Ellipsis marks a snippet edge that does not reach the end of the text.
const Ellipsis = "…"

const (
	snippetBefore  = 50
	snippetAfter   = 150
	snippetDefault = 200
)

// Snippet extracts a display window around the first case-insensitive
// occurrence of query in text, or the opening of text when there is none.
// Edges are snapped to word boundaries and whitespace is collapsed.
func Snippet(text, query string) string {
	r := []rune(norm.NFC.String(text))
	if len(r) == 0 {
		return ""
	}
	lower := lowerRunes(r)
	needle := lowerRunes([]rune(norm.NFC.String(strings.TrimSpace(query))))

	idx := indexRunes(lower, needle)
	var start, end, floor, ceil int
	if idx < 0 {
		start, end = 0, min(len(r), snippetDefault)
		floor, ceil = 0, end
	} else {
		matchEnd := idx + len(needle)
		start = max(0, idx-snippetBefore)
		end = min(len(r), matchEnd+snippetAfter)
		floor, ceil = matchEnd, idx
	}

	if start > 0 && !unicode.IsSpace(r[start-1]) {
		p := start
		for p < ceil && !unicode.IsSpace(r[p]) {
			p++
		}
		if p < ceil {
			start = p + 1
		}
	}
	if end < len(r) && !unicode.IsSpace(r[end]) {
		p := end - 1
		for p > floor && !unicode.IsSpace(r[p]) {
			p--
		}
		if p > floor {
			end = p
		}
	}

	out := strings.Join(strings.Fields(string(r[start:end])), " ")
	if start > 0 {
		out = Ellipsis + out
	}
	if end < len(r) {
		out += Ellipsis
	}
	return out
}

func lowerRunes(r []rune) []rune {
	out := make([]rune, len(r))
	for i, c := range r {
		out[i] = unicode.ToLower(c)
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
outer:
	for i := 0; i <= len(haystack)-len(needle); i++ {
		for j, c := range needle {
			if haystack[i+j] != c {
				continue outer
			}
		}
		return i
	}
	return -1
}

// Package grounding turns search results into citation-tagged context and
// enforces the rules generation must obey: no context, no answer.
package grounding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/starford/sgk/internal/apperr"
	"github.com/starford/sgk/internal/models"
)

// MaxTagHeadingChars bounds the heading path embedded in a citation tag.
const MaxTagHeadingChars = 50

const ellipsis = "…"

// tagPattern matches [SGK:<bookId>:L<start>-L<end>:<headingPath>].
// The book id is matched lazily so ids containing ':' still parse.
var tagPattern = regexp.MustCompile(`\[SGK:([^\]\s]+?):L(\d+)-L(\d+):([^\]]*)\]`)

var bracketReplacer = strings.NewReplacer("[", "(", "]", ")")

// FormatCitation derives the citation of a chunk.
func FormatCitation(c models.Chunk) models.Citation {
	return models.Citation{
		BookID:       c.BookID,
		StartLine:    c.StartLine,
		EndLine:      c.EndLine,
		HeadingPath:  c.HeadingPath,
		FormattedTag: Tag(c),
	}
}

// Tag renders the citation tag of a chunk.
func Tag(c models.Chunk) string {
	path := TruncateHeadingPath(bracketReplacer.Replace(c.HeadingPath), MaxTagHeadingChars)
	return fmt.Sprintf("[SGK:%s:L%d-L%d:%s]", c.BookID, c.StartLine, c.EndLine, path)
}

// TruncateHeadingPath shortens path to at most limit characters. Leading
// segments are dropped first, marked by an ellipsis segment; if the last
// segment alone is still too long it is cut and ends with an ellipsis.
func TruncateHeadingPath(path string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(path) <= limit {
		return path
	}
	segs := strings.Split(path, models.HeadingSeparator)
	for i := 1; i < len(segs); i++ {
		cand := ellipsis + models.HeadingSeparator + strings.Join(segs[i:], models.HeadingSeparator)
		if utf8.RuneCountInString(cand) <= limit {
			return cand
		}
	}
	last := segs[len(segs)-1]
	if len(segs) > 1 {
		last = ellipsis + models.HeadingSeparator + last
	}
	r := []rune(last)
	return string(r[:limit-1]) + ellipsis
}

// ParseCitation parses a single citation tag. Surrounding whitespace is ignored.
func ParseCitation(tag string) (models.Citation, error) {
	tag = strings.TrimSpace(tag)
	m := tagPattern.FindStringSubmatch(tag)
	if m == nil || m[0] != tag {
		return models.Citation{}, fmt.Errorf("grounding: parse %q: %w", tag, apperr.ErrInvalidCitation)
	}
	return fromMatch(m)
}

// ExtractCitations returns every well-formed citation tag in text, in order.
func ExtractCitations(text string) []models.Citation {
	var out []models.Citation
	for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
		c, err := fromMatch(m)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func fromMatch(m []string) (models.Citation, error) {
	start, err := strconv.Atoi(m[2])
	if err != nil {
		return models.Citation{}, fmt.Errorf("grounding: start line: %w", apperr.ErrInvalidCitation)
	}
	end, err := strconv.Atoi(m[3])
	if err != nil {
		return models.Citation{}, fmt.Errorf("grounding: end line: %w", apperr.ErrInvalidCitation)
	}
	if start < 1 || end < start {
		return models.Citation{}, fmt.Errorf("grounding: line range L%d-L%d: %w", start, end, apperr.ErrInvalidCitation)
	}
	return models.Citation{
		BookID:       m[1],
		StartLine:    start,
		EndLine:      end,
		HeadingPath:  m[4],
		FormattedTag: m[0],
	}, nil
}

// Package chunker splits heading-marked textbook text into addressable chunks.
package chunker

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/starford/sgk/internal/models"
)

// Default soft bounds, in characters.
const (
	DefaultMaxChars = 1200
	DefaultMinChars = 600
)

var headingRe = regexp.MustCompile(`^(#{1,6})[ \t]+(.+)$`)

// Options tunes the soft size bounds.
type Options struct {
	// MaxChars is the buffer size that triggers a split.
	MaxChars int
	// MinChars is how far into the buffer a paragraph break must be to be used as a split point.
	MinChars int
}

// Chunker is a stateless heading-aware splitter.
type Chunker struct {
	opts Options
}

// New creates a Chunker, filling zero options with defaults.
func New(opts Options) *Chunker {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.MinChars <= 0 || opts.MinChars >= opts.MaxChars {
		opts.MinChars = opts.MaxChars / 2
	}
	return &Chunker{opts: opts}
}

// ParseToChunks splits raw with the default bounds.
func ParseToChunks(raw, bookID string) []models.Chunk {
	return New(Options{}).Parse(raw, bookID)
}

// Heading reports whether line is a heading and returns its level and title.
func Heading(line string) (level int, title string, ok bool) {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	title = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(m[2]), "#"))
	if title == "" {
		return 0, "", false
	}
	return len(m[1]), title, true
}

type line struct {
	no   int
	text string
}

// Parse returns the ordered chunks of one book. Every source line belongs to
// exactly one chunk: a heading line opens the buffer of the section it
// introduces, and blank or heading-only runs are carried forward instead of
// becoming chunks of their own.
//
// Headings of level 1 to 3 reset the path below their depth. A heading of
// level 4 or deeper replaces the slot at its depth and also drops every deeper
// slot, so "# A / ## B / ### C / #### D / ##### E / #### F" yields the path
// "A > B > C > F", not "A > B > C > F > E".
func (c *Chunker) Parse(raw, bookID string) []models.Chunk {
	raw = strings.TrimPrefix(raw, "\ufeff")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(raw, "\n"), "\n")

	b := &builder{bookID: bookID, opts: c.opts}
	for i, text := range lines {
		text = strings.TrimSuffix(text, "\r")
		ln := line{no: i + 1, text: text}

		if level, title, ok := Heading(text); ok {
			if b.hasBody() {
				b.flush(len(b.buf))
			}
			b.push(level, title)
			b.append(ln)
			continue
		}

		b.append(ln)
		if b.chars >= b.opts.MaxChars && b.hasBody() {
			b.split()
		}
	}
	b.finish()
	return b.out
}

type builder struct {
	bookID string
	opts   Options
	stack  []string
	buf    []line
	chars  int
	seq    int
	out    []models.Chunk
}

func lineChars(l line) int {
	return utf8.RuneCountInString(l.text) + 1
}

func (b *builder) append(l line) {
	b.buf = append(b.buf, l)
	b.chars += lineChars(l)
}

// hasBody reports whether the buffer holds a non-blank, non-heading line.
func (b *builder) hasBody() bool {
	return bodyIn(b.buf)
}

func bodyIn(lines []line) bool {
	for _, l := range lines {
		if strings.TrimSpace(l.text) == "" {
			continue
		}
		if _, _, ok := Heading(l.text); !ok {
			return true
		}
	}
	return false
}

// push updates the heading stack for a new heading.
func (b *builder) push(level int, title string) {
	switch {
	case level == 1:
		b.stack = []string{title}
	case level <= 3:
		if len(b.stack) > level-1 {
			b.stack = b.stack[:level-1]
		}
		b.stack = append(b.stack, title)
	case level-1 < len(b.stack):
		b.stack = append(b.stack[:level-1], title)
	default:
		b.stack = append(b.stack, title)
	}
}

// flush emits buf[:n] as a chunk under the current heading path and keeps the rest.
func (b *builder) flush(n int) {
	part := b.buf[:n]
	texts := make([]string, len(part))
	for i, l := range part {
		texts[i] = l.text
	}
	b.out = append(b.out, models.Chunk{
		BookID:      b.bookID,
		ChunkID:     b.bookID + "-" + strconv.Itoa(b.seq),
		HeadingPath: strings.Join(b.stack, models.HeadingSeparator),
		Text:        strings.TrimSpace(strings.Join(texts, "\n")),
		StartLine:   part[0].no,
		EndLine:     part[n-1].no,
	})
	b.seq++

	rest := make([]line, len(b.buf)-n)
	copy(rest, b.buf[n:])
	b.buf = rest
	b.chars = 0
	for _, l := range b.buf {
		b.chars += lineChars(l)
	}
}

// split cuts an oversized buffer at the last paragraph break lying past
// MinChars, or at the current line when there is none.
func (b *builder) split() {
	prefix := 0
	cut := -1
	for i, l := range b.buf {
		prefix += lineChars(l)
		if i > 0 && strings.TrimSpace(l.text) == "" && prefix-lineChars(l) >= b.opts.MinChars && bodyIn(b.buf[:i]) {
			cut = i + 1
		}
	}
	if cut < 0 || cut >= len(b.buf) {
		b.flush(len(b.buf))
		return
	}
	b.flush(cut)
}

func (b *builder) finish() {
	if len(b.buf) == 0 {
		return
	}
	nonBlank := false
	for _, l := range b.buf {
		if strings.TrimSpace(l.text) != "" {
			nonBlank = true
			break
		}
	}
	if nonBlank {
		b.flush(len(b.buf))
		return
	}
	// Trailing blank lines belong to the last chunk.
	if n := len(b.out); n > 0 {
		b.out[n-1].EndLine = b.buf[len(b.buf)-1].no
	}
	b.buf = nil
}

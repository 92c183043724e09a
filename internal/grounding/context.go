package grounding

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/starford/sgk/internal/apperr"
	"github.com/starford/sgk/internal/models"
	"github.com/starford/sgk/internal/search"
)

// Defaults for Options.
const (
	DefaultTopK     = search.DefaultTopK
	DefaultMaxChars = 6000
)

const blockSeparator = "\n\n"

// Searcher is the query side of the store.
type Searcher interface {
	Search(query string, k int) ([]search.Result, error)
}

// Options bound a context build. Zero values select the defaults.
type Options struct {
	TopK     int
	MaxChars int
}

// Context is assembled grounding context. Text holds one block per
// citation, in rank order: the tag on its own line, then the chunk text.
type Context struct {
	Query     string            `json:"query"`
	Text      string            `json:"contextText"`
	Citations []models.Citation `json:"citations"`
	// Omitted counts ranked results left out to respect MaxChars.
	Omitted int `json:"omitted"`
}

// BuildContext retrieves the best chunks for query and assembles them
// under the character budget. Blocks are included whole or not at all.
// Failures are returned as *Failure.
func BuildContext(src Searcher, query string, opts Options) (*Context, error) {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}

	results, err := src.Search(query, opts.TopK)
	switch {
	case errors.Is(err, apperr.ErrNotReady):
		return nil, &Failure{Reason: ReasonNotReady}
	case err != nil:
		return nil, &Failure{Reason: ReasonNoSGK, Detail: err.Error()}
	case len(results) == 0:
		return nil, &Failure{Reason: ReasonNoMatch}
	}

	ctx := &Context{Query: query}
	var b strings.Builder
	size := 0
	for i, r := range results {
		cit := FormatCitation(r.Chunk)
		block := cit.FormattedTag + "\n" + r.Chunk.Text
		add := utf8.RuneCountInString(block)
		if i > 0 {
			add += utf8.RuneCountInString(blockSeparator)
		}
		if size+add > opts.MaxChars {
			ctx.Omitted = len(results) - i
			break
		}
		if i > 0 {
			b.WriteString(blockSeparator)
		}
		b.WriteString(block)
		size += add
		ctx.Citations = append(ctx.Citations, cit)
	}
	if len(ctx.Citations) == 0 {
		return nil, &Failure{Reason: ReasonNoMatch, Detail: "context budget too small for any result"}
	}
	ctx.Text = b.String()
	return ctx, nil
}

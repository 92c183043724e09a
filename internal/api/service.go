package api

import (
	"context"

	"github.com/starford/sgk/internal/grounding"
	"github.com/starford/sgk/internal/models"
	"github.com/starford/sgk/internal/store"
)

// Defaults are applied when a request leaves a bound unset.
type Defaults struct {
	TopK     int
	MaxChars int
}

// Service coordinates the store and the grounding layer for the API.
type Service struct {
	store    *store.Store
	defaults Defaults
}

// NewService creates a new API service.
func NewService(st *store.Store, d Defaults) *Service {
	if d.TopK <= 0 {
		d.TopK = grounding.DefaultTopK
	}
	if d.MaxChars <= 0 {
		d.MaxChars = grounding.DefaultMaxChars
	}
	return &Service{store: st, defaults: d}
}

// Search runs a ranked query and decorates each hit with a snippet and citation.
func (s *Service) Search(query string, k int) ([]SearchHit, error) {
	if k <= 0 {
		k = s.defaults.TopK
	}
	results, err := s.store.Search(query, k)
	if err != nil {
		return nil, err
	}
	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, SearchHit{
			BookID:      r.Chunk.BookID,
			ChunkID:     r.Chunk.ChunkID,
			HeadingPath: r.Chunk.HeadingPath,
			Score:       r.Score,
			Snippet:     s.store.Snippet(r.Chunk, query),
			Citation:    grounding.FormatCitation(r.Chunk),
		})
	}
	return hits, nil
}

// BuildContext assembles grounding context and applies the generation gate.
func (s *Service) BuildContext(req ContextRequest) ContextResponse {
	opts := grounding.Options{TopK: req.TopK, MaxChars: req.MaxChars}
	if opts.TopK <= 0 {
		opts.TopK = s.defaults.TopK
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = s.defaults.MaxChars
	}
	mode := grounding.ParseMode(req.Mode)

	gc, err := grounding.BuildContext(s.store, req.Query, opts)
	resp := ContextResponse{
		OK:                err == nil,
		Mode:              string(mode),
		GenerationAllowed: grounding.Gate(err, mode) == nil,
		Citations:         []models.Citation{},
	}
	if err == nil {
		resp.ContextText = gc.Text
		resp.Citations = gc.Citations
		resp.Omitted = gc.Omitted
	} else if reason, ok := grounding.ReasonOf(err); ok {
		resp.Reason = string(reason)
		resp.Guidance = grounding.Guidance(reason)
	}
	if resp.GenerationAllowed && req.Instruction != "" {
		resp.Instruction = grounding.ComposeInstruction(req.Instruction, gc)
	}
	return resp
}

// Reload restarts the corpus load without waiting for it.
func (s *Service) Reload(ctx context.Context) {
	go s.store.Reload(context.WithoutCancel(ctx))
}

package api

import (
	"github.com/starford/sgk/internal/grounding"
	"github.com/starford/sgk/internal/models"
	"github.com/starford/sgk/internal/store"
)

// StatusResponse is the corpus status (aliased from the store layer).
type StatusResponse = store.Summary

// BookListResponse wraps the book catalogue.
type BookListResponse struct {
	Books []models.Book `json:"books" validate:"required"`
}

// AssetResponse reports a secondary asset probe.
type AssetResponse struct {
	BookID    string `json:"bookId" example:"toan-6" validate:"required"`
	Asset     string `json:"asset" example:"glossary.json" validate:"required"`
	Available bool   `json:"available"`
}

// SearchHit is a single ranked chunk in the API response.
type SearchHit struct {
	BookID      string          `json:"bookId" example:"toan-6" validate:"required"`
	ChunkID     string          `json:"chunkId" example:"toan-6-3" validate:"required"`
	HeadingPath string          `json:"headingPath" example:"Chương 1 > Bài 1: Tập hợp"`
	Score       float64         `json:"score" example:"3.2"`
	Snippet     string          `json:"snippet" example:"…tập hợp là…"`
	Citation    models.Citation `json:"citation"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchHit `json:"results" validate:"required"`
}

// TopicsResponse lists topic candidates.
type TopicsResponse struct {
	Topics []string `json:"topics" validate:"required"`
}

// TopicValidationResponse reports whether a topic is covered by the corpus.
type TopicValidationResponse struct {
	Topic string `json:"topic" example:"phân số"`
	Valid bool   `json:"valid"`
}

// SuggestResponse wraps ranked topic suggestions.
type SuggestResponse struct {
	Suggestions []store.Suggestion `json:"suggestions" validate:"required"`
}

// ContextRequest is the request body for building grounding context.
type ContextRequest struct {
	Query    string `json:"query" example:"ẩn dụ là gì" validate:"required"`
	TopK     int    `json:"topK,omitempty" example:"5"`
	MaxChars int    `json:"maxChars,omitempty" example:"6000"`
	// Mode is "strict" (default) or "partial".
	Mode string `json:"mode,omitempty" example:"strict"`
	// Instruction, when set, is returned composed with the directive and context.
	Instruction string `json:"instruction,omitempty"`
}

// ContextResponse is the grounded context or the reason it is unavailable.
type ContextResponse struct {
	OK                bool              `json:"ok"`
	ContextText       string            `json:"contextText,omitempty"`
	Citations         []models.Citation `json:"citations"`
	Omitted           int               `json:"omitted"`
	Reason            string            `json:"reason,omitempty" example:"NO_MATCH"`
	Guidance          string            `json:"guidance,omitempty"`
	Mode              string            `json:"mode" example:"strict"`
	GenerationAllowed bool              `json:"generationAllowed"`
	Instruction       string            `json:"instruction,omitempty"`
}

// VerifyRequest is the request body for the post-generation citation check.
type VerifyRequest struct {
	Output    string            `json:"output" validate:"required"`
	Citations []models.Citation `json:"citations"`
}

// VerifyResponse is the citation check result.
type VerifyResponse = grounding.Verification

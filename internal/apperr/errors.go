// Package apperr holds the sentinel errors of the grounding engine.
package apperr

import "errors"

var (
	// ErrManifestMissing means no manifest resource exists; fatal for a load.
	ErrManifestMissing = errors.New("manifest missing")
	// ErrBookFetchFailed marks a single book whose content could not be fetched.
	ErrBookFetchFailed = errors.New("book fetch failed")
	// ErrNoContent means every book failed or produced no chunks.
	ErrNoContent = errors.New("no textbook content available")
	// ErrNotReady is returned while the corpus is still loading.
	ErrNotReady = errors.New("index not ready")
	// ErrNoSource is returned when the corpus failed to load.
	ErrNoSource = errors.New("no textbook source")
	// ErrNoMatch means the query matched no chunk.
	ErrNoMatch = errors.New("no match")
	// ErrCacheIO wraps best-effort cache persistence failures.
	ErrCacheIO = errors.New("cache io failure")
	// ErrNotFound is returned for unknown books or resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCitation is returned when a citation tag cannot be parsed.
	ErrInvalidCitation = errors.New("invalid citation")
)

// Package loader fetches the corpus manifest and per-book raw text.
//
// Missing resources are not exceptional: a missing manifest is reported as
// (nil, nil) and a missing book as an error wrapping apperr.ErrNotFound, so
// the store can decide what is fatal.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/starford/sgk/internal/models"
)

// DefaultManifest is the manifest resource name relative to the content root.
const DefaultManifest = "manifest.json"

// Loader is the content source consumed by the store.
type Loader interface {
	// LoadManifest returns the manifest, or nil when none exists.
	LoadManifest(ctx context.Context) (*models.Manifest, error)
	// FetchContent returns the raw heading-marked text of a book.
	FetchContent(ctx context.Context, book models.Book) (string, error)
	// HasAsset reports whether a secondary asset (e.g. "glossary.json") exists for a book.
	HasAsset(ctx context.Context, book models.Book, name string) (bool, error)
}

// AssetPath returns the resource path of a book's secondary asset: the
// content path with its extension replaced by "."+name.
func AssetPath(book models.Book, name string) string {
	base := strings.TrimSuffix(book.ContentPath, path.Ext(book.ContentPath))
	return base + "." + strings.TrimPrefix(name, ".")
}

func decodeManifest(data []byte) (*models.Manifest, error) {
	var m models.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("loader: decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("loader: invalid manifest: %w", err)
	}
	return &m, nil
}

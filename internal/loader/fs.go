package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/starford/sgk/internal/apperr"
	"github.com/starford/sgk/internal/models"
	"github.com/starford/sgk/internal/storage"
)

// FS loads content from a directory through a storage.Provider.
type FS struct {
	store    storage.Provider
	manifest string
}

var _ Loader = (*FS)(nil)

// NewFS creates a loader reading manifestName (DefaultManifest if empty)
// and book files from store.
func NewFS(store storage.Provider, manifestName string) *FS {
	if manifestName == "" {
		manifestName = DefaultManifest
	}
	return &FS{store: store, manifest: manifestName}
}

// LoadManifest reads and validates the manifest file.
func (l *FS) LoadManifest(_ context.Context) (*models.Manifest, error) {
	data, err := l.store.Read(l.manifest)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loader: read manifest: %w", err)
	}
	return decodeManifest(data)
}

// FetchContent reads the book's content file.
func (l *FS) FetchContent(_ context.Context, book models.Book) (string, error) {
	data, err := l.store.Read(book.ContentPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("loader: %s: %w", book.ContentPath, apperr.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("loader: fetch %s: %w", book.ID, err)
	}
	return string(data), nil
}

// HasAsset checks for the asset file next to the content file.
func (l *FS) HasAsset(_ context.Context, book models.Book, name string) (bool, error) {
	return l.store.Exists(AssetPath(book, name))
}

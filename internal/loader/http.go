package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/starford/sgk/internal/apperr"
	"github.com/starford/sgk/internal/models"
)

// HTTP loads content from a static file server. Resource paths are
// resolved against BaseURL.
type HTTP struct {
	base     *url.URL
	manifest string
	client   *http.Client
}

var _ Loader = (*HTTP)(nil)

// NewHTTP creates an HTTP loader. client may be nil.
func NewHTTP(baseURL, manifestName string, client *http.Client) (*HTTP, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("loader: parse base url: %w", err)
	}
	if manifestName == "" {
		manifestName = DefaultManifest
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{base: u, manifest: manifestName, client: client}, nil
}

// get fetches a resource; found is false on 404.
func (l *HTTP) get(ctx context.Context, method, rel string) (body []byte, found bool, err error) {
	ref, err := url.Parse(strings.TrimPrefix(rel, "/"))
	if err != nil {
		return nil, false, fmt.Errorf("loader: parse path %q: %w", rel, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, l.base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("loader: build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("loader: %s %s: %w", method, rel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, fmt.Errorf("loader: %s %s: unexpected status %d", method, rel, resp.StatusCode)
	}
	if method == http.MethodHead {
		return nil, true, nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("loader: read %s: %w", rel, err)
	}
	return data, true, nil
}

// LoadManifest fetches the manifest; 404 yields (nil, nil).
func (l *HTTP) LoadManifest(ctx context.Context) (*models.Manifest, error) {
	data, found, err := l.get(ctx, http.MethodGet, l.manifest)
	if err != nil || !found {
		return nil, err
	}
	return decodeManifest(data)
}

// FetchContent fetches the book's raw text.
func (l *HTTP) FetchContent(ctx context.Context, book models.Book) (string, error) {
	data, found, err := l.get(ctx, http.MethodGet, book.ContentPath)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("loader: %s: %w", book.ContentPath, apperr.ErrNotFound)
	}
	return string(data), nil
}

// HasAsset issues a HEAD request for the asset.
func (l *HTTP) HasAsset(ctx context.Context, book models.Book, name string) (bool, error) {
	_, found, err := l.get(ctx, http.MethodHead, AssetPath(book, name))
	return found, err
}

package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/sgk/internal/apperr"
	"github.com/starford/sgk/internal/models"
	"github.com/starford/sgk/internal/storage"
)

const manifestJSON = `{
  "version": "2024.1",
  "lastUpdated": "2024-09-01",
  "books": [
    {"id": "van6-t1", "title": "Ngữ văn 6 tập 1", "publisher": "KNTT", "grade": 6, "semester": 1, "contentPath": "books/van6-t1.txt"},
    {"id": "van6-t2", "title": "Ngữ văn 6 tập 2", "publisher": "KNTT", "grade": 6, "semester": 2, "contentPath": "books/van6-t2.txt"}
  ]
}`

func fsLoader(t *testing.T, files map[string]string) *FS {
	t.Helper()
	s, err := storage.NewFS(t.TempDir())
	require.NoError(t, err)
	for p, c := range files {
		require.NoError(t, s.Write(p, []byte(c)))
	}
	return NewFS(s, "")
}

func TestAssetPath(t *testing.T) {
	b := models.Book{ContentPath: "books/van6-t1.txt"}
	assert.Equal(t, "books/van6-t1.glossary.json", AssetPath(b, "glossary.json"))
	assert.Equal(t, "books/van6-t1.glossary.json", AssetPath(b, ".glossary.json"))
}

func TestFS_LoadManifest(t *testing.T) {
	l := fsLoader(t, map[string]string{"manifest.json": manifestJSON})
	m, err := l.LoadManifest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "2024.1", m.Version)
	require.Len(t, m.Books, 2)
	assert.Equal(t, "van6-t2", m.Books[1].ID)
}

func TestFS_MissingManifestIsAbsent(t *testing.T) {
	l := fsLoader(t, nil)
	m, err := l.LoadManifest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestFS_InvalidManifest(t *testing.T) {
	dup := `{"version":"1","books":[{"id":"a","title":"A","contentPath":"a.txt"},{"id":"a","title":"B","contentPath":"b.txt"}]}`
	l := fsLoader(t, map[string]string{"manifest.json": dup})
	_, err := l.LoadManifest(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")

	l = fsLoader(t, map[string]string{"manifest.json": `{"version":`})
	_, err = l.LoadManifest(context.Background())
	assert.Error(t, err)
}

func TestFS_FetchContentAndAssets(t *testing.T) {
	l := fsLoader(t, map[string]string{
		"books/van6-t1.txt":           "# Bài 1\nNội dung",
		"books/van6-t1.glossary.json": "{}",
	})
	b := models.Book{ID: "van6-t1", ContentPath: "books/van6-t1.txt"}

	text, err := l.FetchContent(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "# Bài 1\nNội dung", text)

	ok, err := l.HasAsset(context.Background(), b, "glossary.json")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = l.FetchContent(context.Background(), models.Book{ID: "x", ContentPath: "books/x.txt"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestHTTP_Loader(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sgk/manifest.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(manifestJSON))
	})
	mux.HandleFunc("/sgk/books/van6-t1.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# Bài 1\nXin chào"))
	})
	mux.HandleFunc("/sgk/books/van6-t1.glossary.json", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/sgk/books/broken.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	l, err := NewHTTP(srv.URL+"/sgk", "", srv.Client())
	require.NoError(t, err)
	ctx := context.Background()

	m, err := l.LoadManifest(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Len(t, m.Books, 2)

	text, err := l.FetchContent(ctx, m.Books[0])
	require.NoError(t, err)
	assert.Equal(t, "# Bài 1\nXin chào", text)

	_, err = l.FetchContent(ctx, m.Books[1])
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = l.FetchContent(ctx, models.Book{ID: "b", ContentPath: "books/broken.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")

	ok, err := l.HasAsset(ctx, m.Books[0], "glossary.json")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l.HasAsset(ctx, m.Books[1], "glossary.json")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTP_MissingManifest(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	l, err := NewHTTP(srv.URL, "", nil)
	require.NoError(t, err)
	m, err := l.LoadManifest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, m)
}

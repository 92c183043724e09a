// Package testutil provides shared test helpers: a sample corpus, an
// in-memory loader and temporary content roots.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/starford/sgk/internal/apperr"
	"github.com/starford/sgk/internal/loader"
	"github.com/starford/sgk/internal/models"
	"github.com/starford/sgk/internal/storage"
)

// MathContent is a small grade-6 mathematics textbook.
const MathContent = `# Chương 1: Số tự nhiên
## Bài 1: Tập hợp
Tập hợp là một khái niệm cơ bản của toán học. Mỗi đối tượng trong tập hợp gọi là phần tử.
Ta kí hiệu tập hợp bằng chữ cái in hoa như A, B, C.
## Bài 2: Phép cộng và phép trừ số tự nhiên
Phép cộng hai số tự nhiên cho ta một số tự nhiên gọi là tổng.
Phép trừ chỉ thực hiện được khi số bị trừ lớn hơn hoặc bằng số trừ.
# Chương 2: Phân số
## Bài 5: Phân số bằng nhau
Hai phân số a/b và c/d gọi là bằng nhau nếu a nhân d bằng b nhân c.
`

// HistoryContent is a small grade-8 history textbook.
const HistoryContent = `# Chương 1: Châu Âu và Bắc Mỹ
## Bài 1: Cách mạng tư sản Anh
Cách mạng tư sản Anh diễn ra vào thế kỉ XVII, mở đường cho chủ nghĩa tư bản phát triển.
## Bài 2: Cách mạng công nghiệp
Cách mạng công nghiệp bắt đầu ở Anh với phát minh máy hơi nước.
`

// Book ids of the sample corpus.
const (
	MathBookID    = "toan-6"
	HistoryBookID = "lich-su-8"
)

// Manifest returns the sample manifest at the given version.
func Manifest(version string) *models.Manifest {
	return &models.Manifest{
		Version:     version,
		LastUpdated: "2024-09-01",
		Books: []models.Book{
			{ID: MathBookID, Title: "Toán 6", Publisher: "KNTT", Grade: 6, Semester: 1, ContentPath: "toan-6.md"},
			{ID: HistoryBookID, Title: "Lịch sử 8", Publisher: "CTST", Grade: 8, Semester: 1, ContentPath: "lich-su-8.md"},
		},
	}
}

// Contents maps sample book ids to their text.
func Contents() map[string]string {
	return map[string]string{
		MathBookID:    MathContent,
		HistoryBookID: HistoryContent,
	}
}

// Loader is an in-memory loader.Loader with call counters.
type Loader struct {
	mu       sync.Mutex
	manifest *models.Manifest
	contents map[string]string
	assets   map[string]bool
	// ManifestErr is returned from LoadManifest when set.
	ManifestErr error

	manifestCalls int
	fetchCalls    int
}

var _ loader.Loader = (*Loader)(nil)

// NewLoader creates a loader serving m and contents keyed by book id.
// Books absent from contents fail to fetch.
func NewLoader(m *models.Manifest, contents map[string]string) *Loader {
	if contents == nil {
		contents = map[string]string{}
	}
	return &Loader{manifest: m, contents: contents, assets: map[string]bool{}}
}

// SetManifest replaces the served manifest.
func (l *Loader) SetManifest(m *models.Manifest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.manifest = m
}

// SetAsset marks a secondary asset as published.
func (l *Loader) SetAsset(bookID, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.assets[bookID+"/"+name] = true
}

func (l *Loader) LoadManifest(context.Context) (*models.Manifest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.manifestCalls++
	if l.ManifestErr != nil {
		return nil, l.ManifestErr
	}
	return l.manifest, nil
}

func (l *Loader) FetchContent(_ context.Context, b models.Book) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetchCalls++
	text, ok := l.contents[b.ID]
	if !ok {
		return "", fmt.Errorf("testutil: %s: %w", b.ContentPath, apperr.ErrNotFound)
	}
	return text, nil
}

func (l *Loader) HasAsset(_ context.Context, b models.Book, name string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.assets[b.ID+"/"+name], nil
}

// FetchCalls returns how many times FetchContent ran.
func (l *Loader) FetchCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fetchCalls
}

// ManifestCalls returns how many times LoadManifest ran.
func (l *Loader) ManifestCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.manifestCalls
}

// TestContent creates a temporary content root holding the sample corpus
// at the given version.
func TestContent(t *testing.T, version string) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	m := Manifest(version)
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Write(loader.DefaultManifest, data); err != nil {
		t.Fatal(err)
	}
	contents := Contents()
	for _, b := range m.Books {
		if err := fs.Write(b.ContentPath, []byte(contents[b.ID])); err != nil {
			t.Fatal(err)
		}
	}
	return dir, fs
}

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

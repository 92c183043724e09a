package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("# Bài 1\nNội dung.\n")
	require.NoError(t, s.Write("books/van6.txt", content))

	got, err := s.Read("books/van6.txt")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestReadMissingWrapsNotExist(t *testing.T) {
	s := tempRoot(t)
	_, err := s.Read("nope.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestExists(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("a.txt", []byte("a"))
	_ = os.MkdirAll(filepath.Join(s.Root(), "dir"), 0o755)

	ok, err := s.Exists("a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists("missing.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Exists("dir")
	require.NoError(t, err)
	assert.False(t, ok, "directories are not files")
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("del.txt", []byte("bye"))
	require.NoError(t, s.Delete("del.txt"))
	require.NoError(t, s.Delete("del.txt"))
	_, err := s.Read("del.txt")
	assert.Error(t, err)
}

func TestListFiltersByExtension(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("a.txt", []byte("a"))
	_ = s.Write("sub/b.txt", []byte("b"))
	_ = s.Write("manifest.json", []byte("{}"))

	items, err := s.List("", ".txt")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	all, err := s.List("", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)
	for _, p := range []string{"../../etc/passwd", "../outside.txt", "/etc/shadow"} {
		_, err := s.Read(p)
		assert.Error(t, err, "read %q", p)
		assert.Error(t, s.Write(p, []byte("x")), "write %q", p)
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("atomic.txt", []byte("original"))
	require.NoError(t, s.Write("atomic.txt", []byte("updated")))

	got, _ := s.Read("atomic.txt")
	assert.Equal(t, "updated", string(got))

	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".sgk-tmp-*"))
	assert.Empty(t, matches)
}

func TestNewFS_RejectsMissingAndFile(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)

	f, _ := os.CreateTemp(t.TempDir(), "sgk-test-*")
	_ = f.Close()
	_, err = NewFS(f.Name())
	assert.Error(t, err)
}

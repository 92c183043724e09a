package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/starford/sgk/internal/checksum"
	"github.com/starford/sgk/internal/storage"
)

const fileExt = ".cache"

// File stores one file per key in a directory, written atomically.
type File struct {
	fs storage.Provider
}

var _ KV = (*File)(nil)

// NewFile creates the directory if needed and returns a File cache in it.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache: file backend needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	p, err := storage.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &File{fs: p}, nil
}

func fileName(key string) string {
	return checksum.Short([]byte(key), 16) + fileExt
}

func (f *File) Get(key string) (string, bool, error) {
	data, err := f.fs.Read(fileName(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (f *File) Set(key, value string) error {
	return f.fs.Write(fileName(key), []byte(value))
}

func (f *File) Clear() error {
	entries, err := f.fs.List("", fileExt)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := f.fs.Delete(e.Path); err != nil {
			return err
		}
	}
	return nil
}

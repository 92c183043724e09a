// Package storage provides sandboxed file access for corpus content and cache files.
package storage

import "time"

// Entry is a file found under the storage root.
type Entry struct {
	Path      string
	Size      int64
	UpdatedAt time.Time
}

// Provider is the interface for file operations relative to a root directory.
type Provider interface {
	// List returns every file under dir whose name ends with ext (any file if ext is empty).
	List(dir, ext string) ([]Entry, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path. Missing files are not an error.
	Delete(path string) error
	// Root returns the absolute root directory.
	Root() string
}

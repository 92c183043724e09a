// Package cache provides the version-keyed key-value store that persists
// parsed chunks between runs. Backends are interchangeable; the store only
// sees KV.
package cache

import "fmt"

// Keys written by the store. They are invalidated together.
const (
	VersionKey = "sgk_version"
	ChunksKey  = "sgk_chunks"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// KV is a minimal string key-value store.
type KV interface {
	// Get returns the value and whether the key was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Clear removes every key.
	Clear() error
}

// Open builds the backend named by backend. path is a directory for the
// file backend and a database file for sqlite; memory ignores it.
func Open(backend, path string) (KV, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", backend)
	}
}

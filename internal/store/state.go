// Package store owns the corpus lifecycle: it loads the manifest and books,
// chunks and indexes them, caches the result by manifest version, and
// answers the derived lookups built on top of the loaded corpus.
package store

import "github.com/starford/sgk/internal/models"

// Status is the lifecycle phase of the store.
type Status string

// Lifecycle: idle → loading → ready | error.
const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Messages recorded in State.Error.
const (
	MsgManifestMissing     = "manifest missing: no textbook catalogue is published"
	MsgManifestUnavailable = "manifest unavailable"
	MsgNoContent           = "no textbook content available"
	MsgUnexpected          = "unexpected error while loading textbook content"
)

// State is a snapshot of the store. Slices are shared with the store and
// must be treated as read-only.
type State struct {
	Status        Status           `json:"status"`
	Error         string           `json:"error,omitempty"`
	Manifest      *models.Manifest `json:"manifest,omitempty"`
	Chunks        []models.Chunk   `json:"-"`
	Topics        []string         `json:"-"`
	LoadedBookIDs []string         `json:"loadedBookIds"`
	FailedBookIDs []string         `json:"failedBookIds"`
	FromCache     bool             `json:"fromCache"`
}

// Listener is called in-line after every state change.
type Listener func(State)

// Summary is the wire view of a State: counts instead of bulk data.
type Summary struct {
	Status        Status   `json:"status"`
	Error         string   `json:"error,omitempty"`
	Version       string   `json:"version,omitempty"`
	LastUpdated   string   `json:"lastUpdated,omitempty"`
	Books         int      `json:"books"`
	Chunks        int      `json:"chunks"`
	Topics        int      `json:"topics"`
	LoadedBookIDs []string `json:"loadedBookIds"`
	FailedBookIDs []string `json:"failedBookIds"`
	FromCache     bool     `json:"fromCache"`
}

// Summary condenses the state for status endpoints and event streams.
func (st State) Summary() Summary {
	s := Summary{
		Status:        st.Status,
		Error:         st.Error,
		Chunks:        len(st.Chunks),
		Topics:        len(st.Topics),
		LoadedBookIDs: st.LoadedBookIDs,
		FailedBookIDs: st.FailedBookIDs,
		FromCache:     st.FromCache,
	}
	if st.Manifest != nil {
		s.Version = st.Manifest.Version
		s.LastUpdated = st.Manifest.LastUpdated
		s.Books = len(st.Manifest.Books)
	}
	if s.LoadedBookIDs == nil {
		s.LoadedBookIDs = []string{}
	}
	if s.FailedBookIDs == nil {
		s.FailedBookIDs = []string{}
	}
	return s
}

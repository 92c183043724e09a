// Package models defines the domain types shared across the grounding engine.
package models

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Manifest lists the textbooks that make up one corpus version.
type Manifest struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Books       []Book `json:"books"`
}

// Book describes one textbook and where its raw text lives.
type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Publisher   string `json:"publisher"`
	Grade       int    `json:"grade"`
	Semester    int    `json:"semester"`
	ContentPath string `json:"contentPath"`
}

// Validate checks the manifest structure and that book ids are unique.
func (m *Manifest) Validate() error {
	if err := validation.ValidateStruct(m,
		validation.Field(&m.Version, validation.Required),
		validation.Field(&m.Books),
	); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(m.Books))
	for _, b := range m.Books {
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("books: duplicate id %q", b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}

// Validate validates a single book entry.
func (b Book) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ID, validation.Required),
		validation.Field(&b.Title, validation.Required),
		validation.Field(&b.ContentPath, validation.Required),
		validation.Field(&b.Semester, validation.Min(0), validation.Max(2)),
	)
}

// Find returns the book with the given id.
func (m *Manifest) Find(id string) (Book, bool) {
	if m == nil {
		return Book{}, false
	}
	for _, b := range m.Books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}

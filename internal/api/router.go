package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Corpus.
	r.Get("/status", h.Status)
	r.Post("/reload", h.Reload)

	// Books.
	r.Get("/books", h.ListBooks)
	r.Get("/books/{id}", h.GetBook)
	r.Get("/books/{id}/assets/{name}", h.ProbeAsset)

	// Search and topics.
	r.Get("/search", h.Search)
	r.Get("/topics", h.Topics)
	r.Get("/topics/validate", h.ValidateTopic)
	r.Get("/topics/suggest", h.SuggestTopics)

	// Grounding.
	r.Post("/context", h.BuildContext)
	r.Post("/verify", h.Verify)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/sgk/internal/apperr"
	"github.com/starford/sgk/internal/grounding"
	"github.com/starford/sgk/internal/models"
	"github.com/starford/sgk/internal/store"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc   *Service
	store *store.Store
}

// NewHandler creates a new Handler.
func NewHandler(st *store.Store, svc *Service) *Handler {
	return &Handler{svc: svc, store: st}
}

// readinessError writes the response for a search attempted before the
// corpus is usable.
func readinessError(w http.ResponseWriter, err error) {
	reason := grounding.ReasonNoSGK
	if errors.Is(err, apperr.ErrNotReady) {
		reason = grounding.ReasonNotReady
	}
	writeJSON(w, http.StatusServiceUnavailable, reasonBody{
		Error:    err.Error(),
		Reason:   string(reason),
		Guidance: grounding.Guidance(reason),
	})
}

// Status handles GET /api/status.
//
//	@Summary		Corpus lifecycle status
//	@Tags			corpus
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.State().Summary())
}

// ListBooks handles GET /api/books.
//
//	@Summary		List textbooks in the manifest
//	@Tags			books
//	@Produce		json
//	@Success		200	{object}	BookListResponse
//	@Security		BearerAuth
//	@Router			/books [get]
func (h *Handler) ListBooks(w http.ResponseWriter, _ *http.Request) {
	books := h.store.Books()
	if books == nil {
		books = []models.Book{}
	}
	writeJSON(w, http.StatusOK, BookListResponse{Books: books})
}

// GetBook handles GET /api/books/{id}.
//
//	@Summary		Get a textbook by id
//	@Tags			books
//	@Produce		json
//	@Param			id	path		string	true	"Book id"
//	@Success		200	{object}	models.Book
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books/{id} [get]
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.Book(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ProbeAsset handles GET /api/books/{id}/assets/{name}.
//
//	@Summary		Check whether a secondary asset is published for a book
//	@Tags			books
//	@Produce		json
//	@Param			id		path		string	true	"Book id"
//	@Param			name	path		string	true	"Asset name"
//	@Success		200		{object}	AssetResponse
//	@Failure		404		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books/{id}/assets/{name} [get]
func (h *Handler) ProbeAsset(w http.ResponseWriter, r *http.Request) {
	id, name := chi.URLParam(r, "id"), chi.URLParam(r, "name")
	probe := <-h.store.ProbeAssetAsync(r.Context(), id, name)
	if probe.Err != nil {
		if errors.Is(probe.Err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("asset probe failed", slog.String("book", id), slog.String("asset", name), slog.String("error", probe.Err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("content source unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, AssetResponse{BookID: id, Asset: name, Available: probe.Available})
}

// Search handles GET /api/search.
//
//	@Summary		Ranked search over textbook chunks
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"Search query"
//	@Param			k	query		int		false	"Max results"
//	@Success		200	{object}	SearchResponse
//	@Failure		400	{object}	errResponse
//	@Failure		503	{object}	reasonBody
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	k, _ := strconv.Atoi(r.URL.Query().Get("k"))
	hits, err := h.svc.Search(q, k)
	if err != nil {
		readinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
}

// Topics handles GET /api/topics.
//
//	@Summary		Topic candidates for autocomplete
//	@Tags			topics
//	@Produce		json
//	@Success		200	{object}	TopicsResponse
//	@Security		BearerAuth
//	@Router			/topics [get]
func (h *Handler) Topics(w http.ResponseWriter, _ *http.Request) {
	topics := h.store.Topics()
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, TopicsResponse{Topics: topics})
}

// ValidateTopic handles GET /api/topics/validate.
//
//	@Summary		Check whether a topic is covered by the corpus
//	@Tags			topics
//	@Produce		json
//	@Param			topic	query		string	true	"Topic"
//	@Success		200		{object}	TopicValidationResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/topics/validate [get]
func (h *Handler) ValidateTopic(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if strings.TrimSpace(topic) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'topic' is required"))
		return
	}
	writeJSON(w, http.StatusOK, TopicValidationResponse{Topic: topic, Valid: h.store.IsValidTopic(topic)})
}

// SuggestTopics handles GET /api/topics/suggest.
//
//	@Summary		Did-you-mean topic suggestions
//	@Tags			topics
//	@Produce		json
//	@Param			q		query		string	true	"Partial topic"
//	@Param			limit	query		int		false	"Max suggestions"
//	@Success		200		{object}	SuggestResponse
//	@Security		BearerAuth
//	@Router			/topics/suggest [get]
func (h *Handler) SuggestTopics(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	s := h.store.SuggestTopics(r.URL.Query().Get("q"), limit)
	if s == nil {
		s = []store.Suggestion{}
	}
	writeJSON(w, http.StatusOK, SuggestResponse{Suggestions: s})
}

// BuildContext handles POST /api/context.
//
//	@Summary		Build citation-tagged grounding context
//	@Tags			grounding
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ContextRequest	true	"Query and bounds"
//	@Success		200		{object}	ContextResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	ContextResponse
//	@Failure		503		{object}	ContextResponse
//	@Security		BearerAuth
//	@Router			/context [post]
func (h *Handler) BuildContext(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query is required"))
		return
	}
	resp := h.svc.BuildContext(req)
	writeJSON(w, contextStatus(resp), resp)
}

func contextStatus(resp ContextResponse) int {
	if resp.OK || resp.GenerationAllowed {
		return http.StatusOK
	}
	switch grounding.Reason(resp.Reason) {
	case grounding.ReasonNoMatch:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}

// Reload handles POST /api/reload.
//
//	@Summary		Invalidate the cache and reload the corpus
//	@Tags			corpus
//	@Produce		json
//	@Success		202	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	h.svc.Reload(r.Context())
	writeJSON(w, http.StatusAccepted, h.store.State().Summary())
}

// Verify handles POST /api/verify.
//
//	@Summary		Check generated output for citation tags
//	@Tags			grounding
//	@Accept			json
//	@Produce		json
//	@Param			body	body		VerifyRequest	true	"Model output and supplied citations"
//	@Success		200		{object}	VerifyResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/verify [post]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	v := grounding.VerifyOutput(req.Output, req.Citations)
	if !v.Cited {
		slog.Warn("verify: output without citation", slog.Int("supplied", len(req.Citations)))
	}
	writeJSON(w, http.StatusOK, v)
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/sgk/internal/apperr"
	"github.com/starford/sgk/internal/cache"
	"github.com/starford/sgk/internal/chunker"
	"github.com/starford/sgk/internal/loader"
	"github.com/starford/sgk/internal/models"
	"github.com/starford/sgk/internal/search"
)

// Store is the single owner of corpus state. Create one at startup and share it.
//
// Loads run synchronously inside Init; books are fetched one after another
// so load order and logs are deterministic.
type Store struct {
	loader    loader.Loader
	cache     cache.KV
	chunker   *chunker.Chunker
	logger    *slog.Logger
	indexOpts []search.Option

	mu    sync.RWMutex
	state State
	index *search.Index
	// pending is set when Reload arrives during a load.
	pending bool

	lmu       sync.Mutex
	listeners []listenerEntry
	nextID    uint64
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithChunker overrides the default chunker.
func WithChunker(c *chunker.Chunker) Option {
	return func(s *Store) { s.chunker = c }
}

// WithIndexOptions passes options to every index build.
func WithIndexOptions(opts ...search.Option) Option {
	return func(s *Store) { s.indexOpts = append(s.indexOpts, opts...) }
}

// New creates an idle store. kv may be nil, which disables persistence.
func New(l loader.Loader, kv cache.KV, opts ...Option) *Store {
	s := &Store{
		loader:  l,
		cache:   kv,
		chunker: chunker.New(chunker.Options{}),
		logger:  slog.Default(),
		state:   State{Status: StatusIdle},
	}
	if s.cache == nil {
		s.cache = cache.NewMemory()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		for i, e := range s.listeners {
			if e.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(st State) {
	s.lmu.Lock()
	fns := make([]Listener, len(s.listeners))
	for i, e := range s.listeners {
		fns[i] = e.fn
	}
	s.lmu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Status returns the current lifecycle status.
func (s *Store) Status() Status {
	return s.State().Status
}

// Init loads the corpus. It is a no-op while a load is already running;
// callers that need completion should Subscribe. Failures are recorded in
// State, never returned.
func (s *Store) Init(ctx context.Context) {
	if !s.begin(false) {
		s.logger.Debug("store: init skipped, load in progress")
		return
	}
	s.notify(State{Status: StatusLoading})
	if s.run(ctx) {
		s.Reload(ctx)
	}
}

// Reload invalidates the cache and index and runs a fresh idle, loading,
// terminal cycle. A reload requested while a load is running is queued and
// runs once that load finishes; further requests fold into the queued one.
func (s *Store) Reload(ctx context.Context) {
	for {
		if !s.begin(true) {
			s.logger.Debug("store: reload queued, load in progress")
			return
		}
		s.notify(State{Status: StatusIdle})
		s.notify(State{Status: StatusLoading})
		s.clearCache()
		if !s.run(ctx) {
			return
		}
	}
}

// begin moves the store to loading in one critical section. It reports false
// if a load is already running, marking a pending reload when reload is set.
func (s *Store) begin(reload bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status == StatusLoading {
		if reload {
			s.pending = true
		}
		return false
	}
	s.state = State{Status: StatusLoading}
	s.index = nil
	return true
}

// run performs the load, publishes the terminal state and reports whether a
// reload was queued meanwhile.
func (s *Store) run(ctx context.Context) (again bool) {
	st, ix := s.safeLoad(ctx)

	s.mu.Lock()
	s.state = st
	s.index = ix
	again = s.pending
	s.pending = false
	s.mu.Unlock()

	s.logger.Info("store: status changed",
		slog.String("status", string(st.Status)),
		slog.Int("chunks", len(st.Chunks)),
		slog.String("error", st.Error))
	s.notify(st)

	if again && ctx.Err() != nil {
		s.logger.Debug("store: queued reload dropped", slog.String("error", ctx.Err().Error()))
		return false
	}
	return again
}

func (s *Store) safeLoad(ctx context.Context) (st State, ix *search.Index) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("store: load panicked", slog.Any("panic", r))
			st, ix = State{Status: StatusError, Error: MsgUnexpected}, nil
		}
	}()
	return s.load(ctx)
}

func failed(msg string, m *models.Manifest) State {
	return State{Status: StatusError, Error: msg, Manifest: m}
}

func (s *Store) load(ctx context.Context) (State, *search.Index) {
	manifest, err := s.loader.LoadManifest(ctx)
	if err != nil {
		s.logger.Error("store: manifest load failed", slog.String("error", err.Error()))
		return failed(MsgManifestUnavailable+": "+err.Error(), nil), nil
	}
	if manifest == nil {
		s.logger.Error("store: manifest missing", slog.String("error", apperr.ErrManifestMissing.Error()))
		return failed(MsgManifestMissing, nil), nil
	}
	if len(manifest.Books) == 0 {
		return failed(MsgNoContent, manifest), nil
	}

	chunks, hit, err := s.readCache(manifest.Version)
	if err != nil {
		s.logger.Error("store: cached chunks unreadable", slog.String("error", err.Error()))
		s.clearCache()
		return failed(MsgUnexpected, manifest), nil
	}

	var loaded, missing []string
	if hit {
		loaded, missing = partition(manifest, chunks)
		s.logger.Info("store: cache hit", slog.String("version", manifest.Version), slog.Int("chunks", len(chunks)))
	} else {
		chunks, loaded, missing = s.fetchAll(ctx, manifest)
	}

	if len(chunks) == 0 {
		st := failed(MsgNoContent, manifest)
		st.LoadedBookIDs, st.FailedBookIDs = loaded, missing
		return st, nil
	}

	ix := search.Build(chunks, s.indexOpts...)
	if !hit {
		s.writeCache(manifest.Version, chunks)
	}
	return State{
		Status:        StatusReady,
		Manifest:      manifest,
		Chunks:        chunks,
		Topics:        topicCandidates(chunks),
		LoadedBookIDs: loaded,
		FailedBookIDs: missing,
		FromCache:     hit,
	}, ix
}

// fetchAll fetches and parses every book in manifest order.
func (s *Store) fetchAll(ctx context.Context, m *models.Manifest) (chunks []models.Chunk, loaded, missing []string) {
	loaded, missing = []string{}, []string{}
	for _, b := range m.Books {
		text, err := s.loader.FetchContent(ctx, b)
		if err != nil {
			s.logger.Warn("store: book fetch failed",
				slog.String("book", b.ID),
				slog.String("error", fmt.Errorf("%w: %w", apperr.ErrBookFetchFailed, err).Error()))
			missing = append(missing, b.ID)
			continue
		}
		parsed := s.chunker.Parse(text, b.ID)
		s.logger.Debug("store: book parsed", slog.String("book", b.ID), slog.Int("chunks", len(parsed)))
		chunks = append(chunks, parsed...)
		loaded = append(loaded, b.ID)
	}
	return chunks, loaded, missing
}

// partition derives loaded/failed ids for cached chunks.
func partition(m *models.Manifest, chunks []models.Chunk) (loaded, missing []string) {
	present := make(map[string]struct{})
	for _, c := range chunks {
		present[c.BookID] = struct{}{}
	}
	loaded, missing = []string{}, []string{}
	for _, b := range m.Books {
		if _, ok := present[b.ID]; ok {
			loaded = append(loaded, b.ID)
		} else {
			missing = append(missing, b.ID)
		}
	}
	return loaded, missing
}

// readCache returns cached chunks for version. Backend failures are logged
// and treated as a miss; undecodable data is returned as an error.
func (s *Store) readCache(version string) ([]models.Chunk, bool, error) {
	cached, ok, err := s.cache.Get(cache.VersionKey)
	if err != nil {
		s.cacheWarn("get version", err)
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}
	if cached != version {
		s.logger.Info("store: cache version mismatch", slog.String("cached", cached), slog.String("manifest", version))
		s.clearCache()
		return nil, false, nil
	}
	raw, ok, err := s.cache.Get(cache.ChunksKey)
	if err != nil {
		s.cacheWarn("get chunks", err)
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}
	var chunks []models.Chunk
	if err := json.Unmarshal([]byte(raw), &chunks); err != nil {
		return nil, false, fmt.Errorf("store: decode cached chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, false, nil
	}
	return chunks, true, nil
}

// writeCache persists chunks then the version marker, so a partial write reads as a miss.
func (s *Store) writeCache(version string, chunks []models.Chunk) {
	data, err := json.Marshal(chunks)
	if err != nil {
		s.cacheWarn("encode chunks", err)
		return
	}
	if err := s.cache.Set(cache.ChunksKey, string(data)); err != nil {
		s.cacheWarn("set chunks", err)
		return
	}
	if err := s.cache.Set(cache.VersionKey, version); err != nil {
		s.cacheWarn("set version", err)
	}
}

func (s *Store) clearCache() {
	if err := s.cache.Clear(); err != nil {
		s.cacheWarn("clear", err)
	}
}

func (s *Store) cacheWarn(op string, err error) {
	s.logger.Warn("store: cache "+op+" failed", slog.String("error", fmt.Errorf("%w: %w", apperr.ErrCacheIO, err).Error()))
}

// Search queries the index. It fails with apperr.ErrNotReady while idle or
// loading and apperr.ErrNoSource after a failed load.
func (s *Store) Search(query string, k int) ([]search.Result, error) {
	s.mu.RLock()
	st, ix := s.state.Status, s.index
	s.mu.RUnlock()
	if err := statusErr(st); err != nil {
		return nil, err
	}
	if ix == nil {
		return nil, apperr.ErrNoSource
	}
	return ix.Search(query, k), nil
}

func statusErr(st Status) error {
	switch st {
	case StatusReady:
		return nil
	case StatusIdle, StatusLoading:
		return apperr.ErrNotReady
	default:
		return apperr.ErrNoSource
	}
}

// Snippet returns a display snippet for a chunk.
func (s *Store) Snippet(c models.Chunk, query string) string {
	return search.Snippet(c.Text, query)
}

// Books returns the manifest's books, or nil before a manifest is loaded.
func (s *Store) Books() []models.Book {
	m := s.State().Manifest
	if m == nil {
		return nil
	}
	return append([]models.Book(nil), m.Books...)
}

// Book looks up a book by id.
func (s *Store) Book(id string) (models.Book, error) {
	b, ok := s.State().Manifest.Find(id)
	if !ok {
		return models.Book{}, fmt.Errorf("store: book %q: %w", id, apperr.ErrNotFound)
	}
	return b, nil
}

// AssetProbe is the outcome of an asynchronous asset check.
type AssetProbe struct {
	BookID    string
	Asset     string
	Available bool
	Err       error
}

// ProbeAsset reports whether a secondary asset is published for a book.
func (s *Store) ProbeAsset(ctx context.Context, bookID, asset string) (bool, error) {
	b, err := s.Book(bookID)
	if err != nil {
		return false, err
	}
	ok, err := s.loader.HasAsset(ctx, b, asset)
	if err != nil {
		return false, fmt.Errorf("store: probe %s/%s: %w", bookID, asset, err)
	}
	return ok, nil
}

// ProbeAssetAsync runs ProbeAsset in the background. The channel receives
// exactly one value and is then closed.
func (s *Store) ProbeAssetAsync(ctx context.Context, bookID, asset string) <-chan AssetProbe {
	out := make(chan AssetProbe, 1)
	go func() {
		defer close(out)
		ok, err := s.ProbeAsset(ctx, bookID, asset)
		out <- AssetProbe{BookID: bookID, Asset: asset, Available: ok, Err: err}
	}()
	return out
}

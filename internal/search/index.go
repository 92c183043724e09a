// Package search implements the token index used to retrieve chunks.
//
// Scoring is a linear scan: O(documents × query tokens) per query. That is
// fine for a few thousand chunks; a larger corpus needs inverted postings.
package search

import (
	"math"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/starford/sgk/internal/models"
	"github.com/starford/sgk/internal/textnorm"
)

// Ranking heuristics. They are tuning constants, not derived from a ranking
// model; keep them stable so rankings stay reproducible.
const (
	// HeadingBoost multiplies the score when the raw query occurs in the heading path.
	HeadingBoost = 2.0
	// PrefixWeight scales the idf credited for a prefix-only token match.
	PrefixWeight = 0.5
)

// DefaultTopK is used when a caller passes k <= 0.
const DefaultTopK = 5

// DefaultQueryCacheSize is the number of cached query results per index.
const DefaultQueryCacheSize = 256

// Document is a chunk prepared for scoring.
type Document struct {
	Chunk   models.Chunk
	Tokens  []string
	Freq    map[string]int
	heading string // lowercased NFC heading path
}

// Result is one ranked hit.
type Result struct {
	Chunk models.Chunk
	Score float64
}

// Index is an immutable scored token index over one corpus version.
type Index struct {
	docs  []Document
	idf   map[string]float64
	total int
	cache *lru.Cache[string, []Result]
}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	cacheSize int
}

// WithQueryCache sets the query-result cache size; 0 disables caching.
func WithQueryCache(size int) Option {
	return func(o *buildOptions) { o.cacheSize = size }
}

// Build tokenizes every chunk (heading path plus text) and computes
// Laplace-smoothed idf: ln((N+1)/(df+1)) + 1.
func Build(chunks []models.Chunk, opts ...Option) *Index {
	o := buildOptions{cacheSize: DefaultQueryCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	ix := &Index{
		docs:  make([]Document, 0, len(chunks)),
		idf:   make(map[string]float64),
		total: len(chunks),
	}
	df := make(map[string]int)
	for _, c := range chunks {
		tokens := textnorm.Tokenize(c.HeadingPath + " " + c.Text)
		freq := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freq[tok]++
		}
		for tok := range freq {
			df[tok]++
		}
		ix.docs = append(ix.docs, Document{
			Chunk:   c,
			Tokens:  tokens,
			Freq:    freq,
			heading: foldCase(c.HeadingPath),
		})
	}
	for tok, n := range df {
		ix.idf[tok] = idf(ix.total, n)
	}
	if o.cacheSize > 0 {
		ix.cache, _ = lru.New[string, []Result](o.cacheSize)
	}
	return ix
}

func idf(total, df int) float64 {
	return math.Log(float64(total+1)/float64(df+1)) + 1
}

func foldCase(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return ix.total }

// IDF returns the idf of a token; unseen tokens get the df=0 value.
func (ix *Index) IDF(token string) float64 {
	if v, ok := ix.idf[token]; ok {
		return v
	}
	return idf(ix.total, 0)
}

// Documents returns the indexed documents in corpus order.
func (ix *Index) Documents() []Document { return ix.docs }

// Search returns up to k chunks ranked by score. Zero-score documents are
// dropped and ties keep corpus order.
func (ix *Index) Search(query string, k int) []Result {
	if k <= 0 {
		k = DefaultTopK
	}
	key := query + "\x00" + strconv.Itoa(k)
	if ix.cache != nil {
		if hit, ok := ix.cache.Get(key); ok {
			return append([]Result(nil), hit...)
		}
	}

	results := ix.rank(query, k)
	if ix.cache != nil {
		ix.cache.Add(key, results)
	}
	return append([]Result(nil), results...)
}

func (ix *Index) rank(query string, k int) []Result {
	tokens := textnorm.Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}
	needle := foldCase(strings.TrimSpace(query))

	var results []Result
	for i := range ix.docs {
		d := &ix.docs[i]
		score := ix.score(d, tokens)
		if needle != "" && strings.Contains(d.heading, needle) {
			score *= HeadingBoost
		}
		if score > 0 {
			results = append(results, Result{Chunk: d.Chunk, Score: score})
		}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func (ix *Index) score(d *Document, tokens []string) float64 {
	var score float64
	for _, qt := range tokens {
		if tf := d.Freq[qt]; tf > 0 {
			score += float64(tf) * ix.IDF(qt)
			continue
		}
		for dt := range d.Freq {
			if strings.HasPrefix(dt, qt) || strings.HasPrefix(qt, dt) {
				score += PrefixWeight * ix.IDF(qt)
				break
			}
		}
	}
	return score
}

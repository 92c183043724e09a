package store

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/sgk/internal/models"
)

// DefaultSuggestLimit is used when SuggestTopics gets limit <= 0.
const DefaultSuggestLimit = 10

// Suggestion scores.
const (
	scoreExact         = 100
	scorePrefix        = 80
	scoreContains      = 60
	scoreReversePrefix = 40
	scorePerWord       = 10
)

// Suggestion is a ranked topic candidate.
type Suggestion struct {
	Topic string `json:"topic"`
	Score int    `json:"score"`
}

// topicCandidates returns every distinct full heading path and every
// individual heading segment, in Vietnamese collation order.
func topicCandidates(chunks []models.Chunk) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, c := range chunks {
		if c.HeadingPath == "" {
			continue
		}
		add(c.HeadingPath)
		for _, seg := range strings.Split(c.HeadingPath, models.HeadingSeparator) {
			add(seg)
		}
	}
	collate.New(language.Vietnamese).SortStrings(out)
	return out
}

// Topics returns the topic candidates of the loaded corpus.
func (s *Store) Topics() []string {
	return append([]string(nil), s.State().Topics...)
}

// IsValidTopic reports whether topic overlaps (as a case-insensitive
// substring in either direction) with any topic candidate.
func (s *Store) IsValidTopic(topic string) bool {
	t := strings.ToLower(strings.TrimSpace(topic))
	if t == "" {
		return false
	}
	for _, c := range s.State().Topics {
		cl := strings.ToLower(c)
		if strings.Contains(cl, t) || strings.Contains(t, cl) {
			return true
		}
	}
	return false
}

// SuggestTopics ranks topic candidates against input.
func (s *Store) SuggestTopics(input string, limit int) []Suggestion {
	return suggest(s.State().Topics, input, limit)
}

func suggest(candidates []string, input string, limit int) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(input))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	qWords := strings.Fields(q)

	var out []Suggestion
	for _, c := range candidates {
		if score := suggestScore(strings.ToLower(c), q, qWords); score > 0 {
			out = append(out, Suggestion{Topic: c, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func suggestScore(candidate, q string, qWords []string) int {
	switch {
	case candidate == q:
		return scoreExact
	case strings.HasPrefix(candidate, q):
		return scorePrefix
	case strings.Contains(candidate, q):
		return scoreContains
	case strings.HasPrefix(q, candidate):
		return scoreReversePrefix
	}
	words := make(map[string]struct{})
	for _, w := range strings.Fields(candidate) {
		words[w] = struct{}{}
	}
	n := 0
	for _, w := range qWords {
		if _, ok := words[w]; ok {
			n++
		}
	}
	return n * scorePerWord
}

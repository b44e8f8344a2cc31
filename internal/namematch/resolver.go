// Package namematch resolves free-text player names from inconsistent sources
// ("A.J. Brown", "Travis Etienne Jr.", "D'Andre Swift") to the canonical keys
// used by the draft store.
package namematch

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultThreshold is the minimum similarity score (0-100) to accept a fuzzy match.
const DefaultThreshold = 82

var (
	suffixRe  = regexp.MustCompile(`(?i)\s+(jr\.?|sr\.?|ii|iii|iv|v|2nd|3rd)$`)
	spaceRe   = regexp.MustCompile(`\s+`)
	punctRepl = strings.NewReplacer(".", "", "-", "", "'", "", "’", "")
)

// Normalize aggressively canonicalizes a name for exact-match lookups:
// "A.J. Brown Jr." -> "aj brown", "D'Andre Swift" -> "dandre swift".
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = punctRepl.Replace(s)
	s = suffixRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

type corpusEntry struct {
	normalized string
	canonical  string
}

// Resolver maps incoming player names to canonical pool keys. Safe for
// concurrent use. Misses are cached alongside hits so each raw variant is
// scored at most once per pool lifetime.
type Resolver struct {
	threshold int

	mu     sync.RWMutex
	index  map[string]string
	corpus []corpusEntry
	cache  map[string]string
}

func NewResolver(threshold int) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Resolver{
		threshold: threshold,
		index:     map[string]string{},
		cache:     map[string]string{},
	}
}

// BuildIndex rebuilds the matching index from canonical key -> display name.
// Call once after the pool loads; resets the cache.
func (r *Resolver) BuildIndex(displayNames map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = make(map[string]string, len(displayNames)*2)
	r.corpus = r.corpus[:0]
	r.cache = map[string]string{}

	// Sort keys so tie-breaking on equal fuzzy scores is deterministic.
	keys := make([]string, 0, len(displayNames))
	for k := range displayNames {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, canonical := range keys {
		aggressive := Normalize(displayNames[canonical])
		r.index[aggressive] = canonical
		r.corpus = append(r.corpus, corpusEntry{normalized: aggressive, canonical: canonical})
		if canonical != aggressive {
			r.index[canonical] = canonical
		}
	}
}

// Resolve maps a raw incoming name to a canonical key. The second return is
// false when nothing matched at or above the threshold. Never errors.
func (r *Resolver) Resolve(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	r.mu.RLock()
	if hit, ok := r.cache[raw]; ok {
		r.mu.RUnlock()
		return hit, hit != ""
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if hit, ok := r.cache[raw]; ok {
		return hit, hit != ""
	}

	aggressive := Normalize(raw)
	if canonical, ok := r.index[aggressive]; ok {
		r.cache[raw] = canonical
		return canonical, true
	}

	best := ""
	bestScore := -1
	for _, e := range r.corpus {
		score := tokenSortScore(aggressive, e.normalized)
		if score > bestScore {
			bestScore = score
			best = e.canonical
		}
	}
	if bestScore >= r.threshold {
		r.cache[raw] = best
		return best, true
	}

	r.cache[raw] = ""
	return "", false
}

// tokenSortScore is a token-order-insensitive similarity score on a 0-100
// scale: both names are tokenized, sorted, rejoined, and compared by
// Levenshtein distance relative to the longer string.
func tokenSortScore(a, b string) int {
	sa := tokenSort(a)
	sb := tokenSort(b)
	if sa == sb {
		return 100
	}
	longest := len(sa)
	if len(sb) > longest {
		longest = len(sb)
	}
	if longest == 0 {
		return 0
	}
	dist := fuzzy.LevenshteinDistance(sa, sb)
	score := 100 - (100*dist)/longest
	if score < 0 {
		score = 0
	}
	return score
}

func tokenSort(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

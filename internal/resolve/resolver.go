// Package resolve matches user-supplied names against the names already in
// the hierarchy. Matching is deliberately conservative: an exact normalized
// match always wins, a fuzzy match must clear a similarity threshold AND be
// unambiguous, and anything else is reported as not found so the caller can
// treat the name as a new entity. Creating a duplicate-looking entity is
// always preferred over filing into the wrong one.
package resolve

import (
	"errors"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/bits-and-blooms/bitset"
)

const (
	// DefaultThreshold is the minimum normalized similarity for a fuzzy match.
	DefaultThreshold = 0.82

	// DefaultAmbiguityWindow rejects a best match when the runner-up scores
	// within this distance of it.
	DefaultAmbiguityWindow = 0.03

	// scoreEpsilon absorbs float64 noise so that a score exactly at the
	// threshold resolves and a runner-up exactly at the window edge is
	// still ambiguous.
	scoreEpsilon = 1e-9
)

var (
	ErrNotFound  = errors.New("no matching entity")
	ErrAmbiguous = errors.New("ambiguous match")
)

// Candidate is one existing entity a name can resolve to.
type Candidate struct {
	ID   string
	Name string
}

// Match is a successful resolution.
type Match struct {
	ID    string
	Name  string  // stored display name, not the normalized key
	Score float64 // 1.0 for exact normalized matches
	Exact bool
}

// Resolver scores candidate names with normalized Levenshtein similarity.
type Resolver struct {
	threshold float64
	window    float64
}

// New creates a Resolver. Zero values select the defaults.
func New(threshold, window float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultAmbiguityWindow
	}
	return &Resolver{threshold: threshold, window: window}
}

// Threshold reports the configured similarity threshold.
func (r *Resolver) Threshold() float64 { return r.threshold }

// Resolve matches name against candidates.
//
// Exact normalized equality wins immediately with score 1.0. Otherwise every
// candidate is scored as 1 - dist/maxLen; the best is returned only when its
// score reaches the threshold and no second candidate scores within the
// ambiguity window of it. Ties and near-ties are never silently resolved:
// they return ErrAmbiguous, which callers treat the same as ErrNotFound.
func (r *Resolver) Resolve(name string, candidates []Candidate) (Match, error) {
	key := Normalize(name)
	if key == "" {
		return Match{}, ErrNotFound
	}

	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = Normalize(c.Name)
		if keys[i] == key {
			return Match{ID: c.ID, Name: c.Name, Score: 1.0, Exact: true}, nil
		}
	}

	// The distance is at least the rune-length delta, so 1-delta/maxLen
	// bounds the reachable score. Screen out candidates that cannot clear
	// the threshold before paying for the distance computation, with the
	// same epsilon tolerance as the accept check so a score exactly at
	// the threshold is never lost to float rounding.
	nameLen := len([]rune(key))
	eligible := bitset.New(uint(len(candidates)))
	for i, k := range keys {
		n := len([]rune(k))
		if n == 0 {
			continue
		}
		maxLen := nameLen
		if n > maxLen {
			maxLen = n
		}
		delta := nameLen - n
		if delta < 0 {
			delta = -delta
		}
		if 1-float64(delta)/float64(maxLen) >= r.threshold-scoreEpsilon {
			eligible.Set(uint(i))
		}
	}

	var (
		best, second float64
		bestIdx      = -1
	)
	for i, ok := eligible.NextSet(0); ok; i, ok = eligible.NextSet(i + 1) {
		score := Similarity(key, keys[i])
		switch {
		case score > best:
			second = best
			best = score
			bestIdx = int(i)
		case score > second:
			second = score
		}
	}

	if bestIdx < 0 || best < r.threshold-scoreEpsilon {
		return Match{}, ErrNotFound
	}
	if best-second <= r.window+scoreEpsilon {
		return Match{}, ErrAmbiguous
	}
	c := candidates[bestIdx]
	return Match{ID: c.ID, Name: c.Name, Score: best}, nil
}

// MatchesIdea reports whether an idea's text matches a delete/reminder
// target. Both directions of substring containment count (asking to delete
// "bíceps" removes "hacer bíceps"); otherwise the full texts must clear the
// similarity threshold.
func (r *Resolver) MatchesIdea(target, ideaText string) bool {
	t, i := Normalize(target), Normalize(ideaText)
	if t == "" || i == "" {
		return false
	}
	if strings.Contains(i, t) || strings.Contains(t, i) {
		return true
	}
	return Similarity(t, i) >= r.threshold-scoreEpsilon
}

// Similarity is the normalized edit-distance score between two already
// normalized strings: 1 - levenshtein/maxRuneLen, in [0,1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

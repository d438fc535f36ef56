// Package ranking orders launcher candidates by fuzzy match quality blended
// with usage history.
package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/blackwell-systems/applaunch/internal/entry"
)

// UsageWeight is the largest relative lift usage can give a fuzzy score.
const UsageWeight = 0.5

// Booster reports the usage boost of an application name in [0, 1].
type Booster interface {
	CalculateBoost(name string) float64
}

// Scored is a ranked candidate.
type Scored struct {
	Entry    entry.Entry
	Boost    float64
	Combined float64

	// Matched is false for the empty-query view, where no fuzzy score exists.
	Matched        bool
	Score          int
	MatchedIndexes []int
}

type nameSource []entry.Entry

func (s nameSource) String(i int) string { return s[i].Name }

func (s nameSource) Len() int { return len(s) }

// Rank orders candidates for query. An empty query sorts every candidate
// by descending boost. Otherwise candidates whose name does not fuzzy-match
// query are dropped and the rest are sorted by the blended score. Equal
// scores keep input order. A nil booster gives every name a zero boost.
func Rank(candidates []entry.Entry, query string, b Booster) []Scored {
	query = strings.TrimSpace(query)
	boost := func(name string) float64 {
		if b == nil {
			return 0
		}
		return b.CalculateBoost(name)
	}

	var out []Scored
	if query == "" {
		out = make([]Scored, len(candidates))
		for i, e := range candidates {
			bst := boost(e.Name)
			out[i] = Scored{Entry: e, Boost: bst, Combined: bst}
		}
	} else {
		matches := fuzzy.FindFrom(query, nameSource(candidates))
		// FindFrom sorts by score; restore input order so ties stay stable.
		sort.Slice(matches, func(i, j int) bool {
			return matches[i].Index < matches[j].Index
		})

		out = make([]Scored, 0, len(matches))
		for _, m := range matches {
			e := candidates[m.Index]
			bst := boost(e.Name)
			out = append(out, Scored{
				Entry:          e,
				Boost:          bst,
				Combined:       Blend(m.Score, bst),
				Matched:        true,
				Score:          m.Score,
				MatchedIndexes: m.MatchedIndexes,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return greater(out[i].Combined, out[j].Combined)
	})
	return out
}

// Blend applies the usage boost to a fuzzy score. For non-negative scores
// it equals score*(1+UsageWeight*boost); a negative score is lifted by the
// same proportion of its magnitude.
func Blend(score int, boost float64) float64 {
	s := float64(score)
	return s + math.Abs(s)*boost*UsageWeight
}

// greater treats NaN as equal to everything.
func greater(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return a > b
}

// Entries strips scores from a ranked list.
func Entries(scored []Scored) []entry.Entry {
	entries := make([]entry.Entry, len(scored))
	for i, s := range scored {
		entries[i] = s.Entry
	}
	return entries
}

// Top returns at most n results; n <= 0 returns all of them.
func Top(scored []Scored, n int) []Scored {
	if n <= 0 || n >= len(scored) {
		return scored
	}
	return scored[:n]
}

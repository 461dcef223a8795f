// Package match implements the best-effort listing selection heuristic.
// Scoring is a pure function so the matching policy can evolve without
// touching orchestration logic.
package match

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/shelfsync/shelfsync/internal/model"
)

// DefaultThreshold is the minimum score a listing must reach to count as a
// match. Below it the item is reported as unmatched.
const DefaultThreshold = 0.35

// Score returns a similarity score in [0, 1] between a warehouse item name
// and a partner listing title. It blends token overlap with a normalized
// Levenshtein distance so that reordered words and small spelling
// differences both contribute.
func Score(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	tokens := tokenOverlap(na, nb)

	dist := fuzzy.LevenshteinDistance(na, nb)
	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}
	lev := 1 - float64(dist)/float64(longest)
	if lev < 0 {
		lev = 0
	}

	return 0.6*tokens + 0.4*lev
}

// SelectBest picks the listing most similar to the item name. Ties are
// broken by presence of price/quantity data, then by listing order as
// returned. Returns nil when no listing reaches the threshold.
func SelectBest(name string, listings []model.PartnerListing, threshold float64) (*model.PartnerListing, float64) {
	var best *model.PartnerListing
	bestScore := 0.0

	for i := range listings {
		candidate := &listings[i]
		score := Score(name, candidate.Title)
		if score < threshold {
			continue
		}

		switch {
		case best == nil, score > bestScore:
			best = candidate
			bestScore = score
		case score == bestScore && hasData(candidate) && !hasData(best):
			best = candidate
		}
	}

	return best, bestScore
}

func hasData(l *model.PartnerListing) bool {
	return l.Price != nil || l.AvailableQuantity != nil
}

// tokenOverlap computes the Jaccard index of the two token sets.
func tokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// normalize lowercases and strips everything but letters, digits and spaces
// so that punctuation and formatting differences do not affect scoring.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '/':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

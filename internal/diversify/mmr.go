// Package diversify selects diverse, relevant passage subsets via
// maximal marginal relevance.
package diversify

import (
	"sort"
	"strings"

	"github.com/kektech/cardbot/internal/models"
)

// DefaultLambda balances relevance against novelty.
const DefaultLambda = 0.7

// SelectDiverse picks up to targetCount passages maximizing
// lambda*relevance + (1-lambda)*diversity. Inputs of targetCount or fewer
// are returned unchanged. The first selected passage is always the
// highest-scored input.
func SelectDiverse(passages []*models.Passage, targetCount int, lambda float64) []*models.Passage {
	if len(passages) <= targetCount {
		return passages
	}

	remaining := make([]*models.Passage, len(passages))
	copy(remaining, passages)
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Score > remaining[j].Score
	})

	selected := []*models.Passage{remaining[0]}
	remaining = remaining[1:]

	for len(selected) < targetCount && len(remaining) > 0 {
		bestIdx := 0
		bestMMR := mmrScore(remaining[0], selected, lambda)
		for i := 1; i < len(remaining); i++ {
			// Strict > keeps the first occurrence on ties.
			if score := mmrScore(remaining[i], selected, lambda); score > bestMMR {
				bestMMR = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

func mmrScore(candidate *models.Passage, selected []*models.Passage, lambda float64) float64 {
	maxOverlap := 0.0
	for _, s := range selected {
		if o := overlap(candidate.Text, s.Text); o > maxOverlap {
			maxOverlap = o
		}
	}
	return lambda*candidate.Score + (1-lambda)*(1-maxOverlap)
}

// overlap is the fraction of a's whitespace tokens that occur,
// case-insensitively, anywhere in b.
func overlap(a, b string) float64 {
	tokens := strings.Fields(strings.ToLower(a))
	if len(tokens) == 0 {
		return 0
	}
	bLower := strings.ToLower(b)
	matched := 0
	for _, tok := range tokens {
		if strings.Contains(bLower, tok) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}

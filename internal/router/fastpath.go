package router

import (
	"fmt"
	"math"
	"sort"

	"github.com/kektech/cardbot/internal/config"
	"github.com/kektech/cardbot/internal/models"
)

// dominanceEpsilon guards the dominance ratio against a zero second score.
const dominanceEpsilon = 1e-9

// DetectFastPath decides whether a structured-fact lookup can bypass
// generative reasoning. Pure: no I/O, no clock. metrics may carry
// precomputed aggregates; when nil they are derived from the candidates.
// Reasons records every intermediate check whatever the outcome.
func DetectFastPath(candidates []models.RouterCandidate, metrics *models.FastPathMetrics, cfg config.FastPathConfig) models.FastPathDecision {
	if len(candidates) == 0 {
		return models.FastPathDecision{
			Triggered: false,
			Reasons:   []string{"no candidates"},
		}
	}

	m := models.FastPathMetrics{}
	if metrics != nil {
		m = *metrics
	}
	if m.TotalAggregate == 0 {
		for _, c := range candidates {
			m.TotalAggregate += c.WeightedScore
			if c.SourceType == models.SourceCard {
				m.CardAggregate += c.WeightedScore
			}
		}
	}
	if m.TotalAggregate > 0 {
		m.CardShare = m.CardAggregate / m.TotalAggregate
	}
	for _, c := range candidates {
		if c.SourceType == models.SourceCard && c.Similarity > m.TopCardSimilarity {
			m.TopCardSimilarity = c.Similarity
		}
	}

	ranked := make([]models.RouterCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].WeightedScore > ranked[j].WeightedScore
	})
	top := ranked[0]
	m.TopCandidateID = top.ID
	m.TopCandidateWeighted = top.WeightedScore

	switch {
	case len(ranked) > 1 && ranked[1].WeightedScore > 0:
		m.DominanceRatio = (top.WeightedScore - ranked[1].WeightedScore) / math.Max(ranked[1].WeightedScore, dominanceEpsilon)
	case top.WeightedScore > 0:
		m.DominanceRatio = math.Inf(1)
	default:
		m.DominanceRatio = 0
	}

	var reasons []string
	topIsCard := top.SourceType == models.SourceCard
	reasons = append(reasons, fmt.Sprintf("top candidate source=%s (card=%t)", top.SourceType, topIsCard))

	topPositive := top.WeightedScore > 0
	reasons = append(reasons, fmt.Sprintf("top weighted score=%.4f (positive=%t)", top.WeightedScore, topPositive))

	dominant := m.DominanceRatio >= cfg.DominanceMargin
	reasons = append(reasons, fmt.Sprintf("dominance ratio=%.4f margin=%.4f (pass=%t)", m.DominanceRatio, cfg.DominanceMargin, dominant))

	sharePass := m.CardShare >= cfg.CardAggregateMin
	reasons = append(reasons, fmt.Sprintf("card share=%.4f min=%.4f (pass=%t)", m.CardShare, cfg.CardAggregateMin, sharePass))

	simPass := m.TopCardSimilarity >= cfg.TopSimilarityMin
	reasons = append(reasons, fmt.Sprintf("top card similarity=%.4f min=%.4f (pass=%t)", m.TopCardSimilarity, cfg.TopSimilarityMin, simPass))

	triggered := topIsCard && topPositive && dominant && (sharePass || simPass)
	reasons = append(reasons, fmt.Sprintf("triggered=%t", triggered))

	score := 0.0
	if cfg.CardAggregateMin > 0 {
		score = m.CardShare / cfg.CardAggregateMin
	}
	if cfg.TopSimilarityMin > 0 {
		if s := m.TopCardSimilarity / cfg.TopSimilarityMin; s > score {
			score = s
		}
	}

	decision := models.FastPathDecision{
		Triggered: triggered,
		Reasons:   reasons,
		Score:     score,
		Metrics:   m,
	}
	if triggered {
		primary := top
		decision.Primary = &primary
	}
	return decision
}

// Package router groups passages into bounded typed candidates, detects the
// card fast path, and drives the full per-query routing flow.
package router

import (
	"sort"

	"github.com/kektech/cardbot/internal/config"
	"github.com/kektech/cardbot/internal/models"
	"github.com/kektech/cardbot/pkg/utils"
)

// BuildCandidates groups passages by source type, drops those below the
// per-source match threshold, keeps the top K per source by score, and
// emits candidates in the fixed source-type order.
func BuildCandidates(passages []*models.Passage, cfg config.RouterConfig) []models.RouterCandidate {
	groups := make(map[models.SourceType][]*models.Passage)
	for _, p := range passages {
		if th, ok := cfg.MatchThresholds[p.SourceType]; ok && p.Score < th {
			continue
		}
		groups[p.SourceType] = append(groups[p.SourceType], p)
	}

	var out []models.RouterCandidate
	for _, st := range models.KnownSourceTypes {
		group := groups[st]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Score > group[j].Score
		})
		if len(group) > cfg.TopKPerSource {
			group = group[:cfg.TopKPerSource]
		}
		for _, p := range group {
			out = append(out, toCandidate(p, cfg))
		}
	}
	return out
}

func toCandidate(p *models.Passage, cfg config.RouterConfig) models.RouterCandidate {
	weight, ok := cfg.SourceWeights[p.SourceType]
	if !ok {
		weight = cfg.SourceWeights[models.SourceUnknown]
	}
	c := models.RouterCandidate{
		ID:             p.ID,
		SourceType:     p.SourceType,
		Kind:           kindFor(p.SourceType),
		Similarity:     p.Score,
		PriorityWeight: weight,
		TextPreview:    utils.Truncate(p.Text, cfg.PreviewLength),
		FullText:       p.Text,
		StructuredRef:  p.SourceRef,
		WeightedScore:  p.Score * weight,
	}
	if p.Author != "" || !p.Timestamp.IsZero() {
		c.Metadata = make(map[string]string, 2)
		if p.Author != "" {
			c.Metadata["author"] = p.Author
		}
		if !p.Timestamp.IsZero() {
			c.Metadata["timestamp"] = p.Timestamp.Format("2006-01-02T15:04:05Z07:00")
		}
	}
	return c
}

func kindFor(st models.SourceType) models.CandidateKind {
	switch st {
	case models.SourceMemory:
		return models.KindLore
	case models.SourceChatLog:
		return models.KindChat
	default:
		return models.KindFact
	}
}

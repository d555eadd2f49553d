package models

import (
	"encoding/json"
	"math"
)

// CandidateKind is the downstream handling class of a candidate.
type CandidateKind string

const (
	// KindFact candidates feed structured/factual answering.
	KindFact CandidateKind = "FACT"
	// KindLore candidates feed narrative answering.
	KindLore CandidateKind = "LORE"
	// KindChat candidates are conversational color.
	KindChat CandidateKind = "CHAT"
)

// RouterCandidate is a bounded, source-balanced, weighted passage prepared
// for the answer-generation layer. Produced per query, never persisted.
type RouterCandidate struct {
	ID             string            `json:"id"`
	SourceType     SourceType        `json:"source_type"`
	Kind           CandidateKind     `json:"kind"`
	Similarity     float64           `json:"similarity"`
	PriorityWeight float64           `json:"priority_weight"`
	TextPreview    string            `json:"text_preview"`
	FullText       string            `json:"full_text"`
	StructuredRef  string            `json:"structured_ref,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	WeightedScore  float64           `json:"weighted_score"`
}

// Intent is the classified purpose of a query.
type Intent string

const (
	IntentFacts     Intent = "FACTS"
	IntentLore      Intent = "LORE"
	IntentUncertain Intent = "UNCERTAIN"
)

// RouterDecision is the per-query routing outcome handed to answer generation.
type RouterDecision struct {
	Mode             Intent   `json:"mode"`
	ChosenPassageIDs []string `json:"chosen_passage_ids"`
	Confidence       float64  `json:"confidence"`
}

// FastPathMetrics holds the intermediate figures behind a fast-path decision.
type FastPathMetrics struct {
	CardAggregate        float64 `json:"card_aggregate"`
	TotalAggregate       float64 `json:"total_aggregate"`
	CardShare            float64 `json:"card_share"`
	TopCardSimilarity    float64 `json:"top_card_similarity"`
	DominanceRatio       float64 `json:"dominance_ratio"`
	TopCandidateID       string  `json:"top_candidate_id,omitempty"`
	TopCandidateWeighted float64 `json:"top_candidate_weighted,omitempty"`
}

// DominanceRatioCap is the finite value reported for an unbounded dominance
// ratio (a single positive candidate has no runner-up to divide by).
const DominanceRatioCap = 1e6

// MarshalJSON caps an infinite dominance ratio; JSON cannot carry +Inf and
// the whole metrics object would fail to encode otherwise.
func (m FastPathMetrics) MarshalJSON() ([]byte, error) {
	type plain FastPathMetrics
	p := plain(m)
	if math.IsInf(p.DominanceRatio, 0) {
		p.DominanceRatio = DominanceRatioCap
	}
	return json.Marshal(p)
}

// FastPathDecision reports whether a structured-fact lookup can bypass
// generative reasoning, with every intermediate check recorded in Reasons.
type FastPathDecision struct {
	Triggered bool             `json:"triggered"`
	Primary   *RouterCandidate `json:"primary_candidate,omitempty"`
	Reasons   []string         `json:"reasons"`
	Score     float64          `json:"score"`
	Metrics   FastPathMetrics  `json:"metrics"`
}

// RouteMetrics summarizes one router invocation for observability.
type RouteMetrics struct {
	RetrievedCount   int   `json:"retrieved_count"`
	DiversifiedCount int   `json:"diversified_count"`
	CandidateCount   int   `json:"candidate_count"`
	RetrievalMillis  int64 `json:"retrieval_ms"`
	CacheHit         bool  `json:"cache_hit"`
}

// RouteResult is the router's full output for one query.
type RouteResult struct {
	Query         string              `json:"query"`
	ExpandedQuery string              `json:"expanded_query"`
	Intent        Intent              `json:"intent"`
	Candidates    []RouterCandidate   `json:"candidates"`
	PassagesByID  map[string]*Passage `json:"passages_by_id"`
	FastPath      *FastPathDecision   `json:"fast_path,omitempty"`
	Decision      RouterDecision      `json:"decision"`
	Metrics       RouteMetrics        `json:"metrics"`
}

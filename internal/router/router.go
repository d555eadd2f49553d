package router

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kektech/cardbot/internal/config"
	"github.com/kektech/cardbot/internal/diversify"
	"github.com/kektech/cardbot/internal/models"
	"github.com/kektech/cardbot/internal/query"
	"github.com/kektech/cardbot/internal/routecache"
)

// Retriever is the retrieval dependency of the router.
type Retriever interface {
	Retrieve(ctx context.Context, query string, scope models.SearchScope) []*models.Passage
}

// Router drives the per-query flow: classify, expand, retrieve, diversify,
// build candidates, detect the fast path, decide. No call into Route lets a
// panic or error escape; every failure degrades to a typed empty result.
type Router struct {
	cfg        config.RouterConfig
	classifier *query.Classifier
	retriever  Retriever
	cache      *routecache.Cache
	logger     *zap.Logger
}

// Options adjusts a single Route call. Overrides are shallow-merged onto a
// copy of the resolved config and never written back.
type Options struct {
	AllowUncertain bool
	BypassCache    bool
	Overrides      *Overrides
}

// Overrides are the per-call tunables accepted from callers.
type Overrides struct {
	TopKPerSource *int     `json:"top_k_per_source,omitempty"`
	PreviewLength *int     `json:"preview_length,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
}

// New creates a Router. cache may be nil to disable assessment caching.
func New(cfg config.RouterConfig, retriever Retriever, cache *routecache.Cache, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		cfg: cfg,
		classifier: query.NewClassifier(query.Thresholds{
			ShortQuestionMaxWords: cfg.Classifier.ShortQuestionMaxWords,
			TieBreakMaxWords:      cfg.Classifier.TieBreakMaxWords,
			ProperNounMaxWords:    cfg.Classifier.ProperNounMaxWords,
			QuestionFactBonus:     cfg.Classifier.QuestionFactBonus,
		}),
		retriever: retriever,
		cache:     cache,
		logger:    logger,
	}
}

// Route processes one query end to end.
func (r *Router) Route(ctx context.Context, rawQuery string, scope models.SearchScope, opts Options) (result *models.RouteResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("route panic recovered", zap.Any("panic", rec))
			result = emptyResult(rawQuery)
		}
	}()

	trimmed := strings.TrimSpace(rawQuery)
	if trimmed == "" {
		return emptyResult(rawQuery)
	}

	cacheKey := routecache.Key(scope, trimmed)
	if r.cache != nil && !opts.BypassCache {
		if cached, ok := r.cache.Get(cacheKey); ok {
			hit := *cached
			hit.Metrics.CacheHit = true
			return &hit
		}
	}

	cfg := r.applyOverrides(opts.Overrides)

	intent := r.classifier.Classify(trimmed, query.ClassifyOptions{AllowUncertain: opts.AllowUncertain})
	expanded := query.Expand(trimmed)

	res := &models.RouteResult{
		Query:         rawQuery,
		ExpandedQuery: expanded,
		Intent:        intent,
		PassagesByID:  map[string]*models.Passage{},
		Decision:      models.RouterDecision{Mode: intent},
	}

	if !r.inRollout(scope) {
		res.Candidates = []models.RouterCandidate{}
		return res
	}

	start := time.Now()
	passages := r.retriever.Retrieve(ctx, expanded, scope)
	res.Metrics.RetrievalMillis = time.Since(start).Milliseconds()
	res.Metrics.RetrievedCount = len(passages)

	if len(passages) > cfg.DiversifyTarget {
		passages = diversify.SelectDiverse(passages, cfg.DiversifyTarget, cfg.Lambda)
	}
	res.Metrics.DiversifiedCount = len(passages)
	for _, p := range passages {
		res.PassagesByID[p.ID] = p
	}

	res.Candidates = BuildCandidates(passages, cfg)
	if res.Candidates == nil {
		res.Candidates = []models.RouterCandidate{}
	}
	res.Metrics.CandidateCount = len(res.Candidates)

	fp := DetectFastPath(res.Candidates, nil, cfg.FastPath)
	res.FastPath = &fp

	res.Decision = r.decide(intent, res.Candidates, &fp, cfg)

	if r.cache != nil {
		r.cache.Set(cacheKey, res)
	}
	return res
}

// decide folds intent, candidates, and the fast path into the final
// decision. A triggered fast path forces FACTS mode with confidence at or
// above the configured floor.
func (r *Router) decide(intent models.Intent, candidates []models.RouterCandidate, fp *models.FastPathDecision, cfg config.RouterConfig) models.RouterDecision {
	decision := models.RouterDecision{Mode: intent}
	for _, c := range candidates {
		decision.ChosenPassageIDs = append(decision.ChosenPassageIDs, c.ID)
	}

	if fp != nil && fp.Triggered {
		decision.Mode = models.IntentFacts
		conf := fp.Score
		if conf > 1 {
			conf = 1
		}
		if conf < cfg.MinConfidence {
			conf = cfg.MinConfidence
		}
		decision.Confidence = conf
		return decision
	}

	if len(candidates) > 0 {
		conf := candidates[0].WeightedScore
		for _, c := range candidates[1:] {
			if c.WeightedScore > conf {
				conf = c.WeightedScore
			}
		}
		if conf > 1 {
			conf = 1
		}
		decision.Confidence = conf
	}
	return decision
}

// applyOverrides shallow-merges per-call overrides onto a copy of the
// resolved config. The shared config is never mutated.
func (r *Router) applyOverrides(o *Overrides) config.RouterConfig {
	cfg := r.cfg.Clone()
	if o == nil {
		return cfg
	}
	if o.TopKPerSource != nil && *o.TopKPerSource > 0 {
		cfg.TopKPerSource = *o.TopKPerSource
	}
	if o.PreviewLength != nil && *o.PreviewLength > 0 {
		cfg.PreviewLength = *o.PreviewLength
	}
	if o.MinConfidence != nil && *o.MinConfidence >= 0 && *o.MinConfidence <= 1 {
		cfg.MinConfidence = *o.MinConfidence
	}
	return cfg
}

// inRollout buckets a scope into the rollout percentage. Bucketing is by
// room so a room's experience is stable across queries.
func (r *Router) inRollout(scope models.SearchScope) bool {
	if !r.cfg.Rollout.Enabled {
		return false
	}
	if r.cfg.Rollout.Percentage >= 100 {
		return true
	}
	h := fnv.New32a()
	h.Write([]byte(scope.RoomID))
	return int(h.Sum32()%100) < r.cfg.Rollout.Percentage
}

func emptyResult(rawQuery string) *models.RouteResult {
	return &models.RouteResult{
		Query:         rawQuery,
		ExpandedQuery: rawQuery,
		Intent:        models.IntentLore,
		Candidates:    []models.RouterCandidate{},
		PassagesByID:  map[string]*models.Passage{},
		Decision:      models.RouterDecision{Mode: models.IntentLore},
	}
}

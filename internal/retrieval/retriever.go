package retrieval

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kektech/cardbot/internal/models"
)

// entityTokenRe matches word-bounded alphanumeric runs of three or more
// characters, the candidates for structured-fact identifier matches.
var entityTokenRe = regexp.MustCompile(`\b[A-Za-z0-9]{3,}\b`)

// fallbackCount is how many hits the keyword fallback is asked for.
const fallbackCount = 15

// fallbackMinScore filters keyword fallback noise.
const fallbackMinScore = 0.1

// Retriever fans a query out to the injected capabilities and converts the
// hits into boosted, source-typed passages. Every external call is wrapped
// in a timeout; failures degrade to partial or empty results and are never
// propagated to the caller.
type Retriever struct {
	searcher    Searcher
	keyword     KeywordSearcher
	identifiers IdentifierSource
	weights     map[models.SourceType]float64
	timeout     time.Duration
	logger      *zap.Logger
}

// NewRetriever creates a Retriever. searcher, keyword, and identifiers may
// each be nil; the retriever degrades around whatever is missing.
func NewRetriever(
	searcher Searcher,
	keyword KeywordSearcher,
	identifiers IdentifierSource,
	weights map[models.SourceType]float64,
	timeout time.Duration,
	logger *zap.Logger,
) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Retriever{
		searcher:    searcher,
		keyword:     keyword,
		identifiers: identifiers,
		weights:     weights,
		timeout:     timeout,
		logger:      logger,
	}
}

// Retrieve runs the generic similarity lookup plus identifier-scoped card
// lookups, infers source types, applies trust boosting, and returns
// passages sorted descending by boosted score.
func (r *Retriever) Retrieve(ctx context.Context, query string, scope models.SearchScope) []*models.Passage {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	tagged := r.cardLookups(ctx, query, scope)
	generic := r.search(ctx, query, scope)

	// Tagged card hits go ahead of the generic results, deduplicated by id.
	seen := make(map[string]bool, len(tagged)+len(generic))
	passages := make([]*models.Passage, 0, len(tagged)+len(generic))
	for _, hit := range append(tagged, generic...) {
		p := hitToPassage(hit)
		if p == nil || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		passages = append(passages, p)
	}

	if len(passages) == 0 {
		return nil
	}
	r.boost(passages)
	return passages
}

// search runs the primary capability, falling back to the keyword
// capability when the primary is missing or fails.
func (r *Retriever) search(ctx context.Context, query string, scope models.SearchScope) []models.RawHit {
	if r.searcher != nil {
		hits, err := r.callSearch(ctx, query, scope)
		if err == nil {
			return hits
		}
		r.logger.Warn("primary retrieval failed, degrading to keyword fallback",
			zap.String("room", scope.RoomID), zap.Error(err))
	}
	if r.keyword == nil {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	hits, err := r.keyword.SearchByKeyword(cctx, query, scope, fallbackCount, fallbackMinScore)
	if err != nil {
		r.logger.Warn("keyword fallback failed", zap.String("room", scope.RoomID), zap.Error(err))
		return nil
	}
	return hits
}

func (r *Retriever) callSearch(ctx context.Context, query string, scope models.SearchScope) ([]models.RawHit, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.searcher.Search(cctx, query, scope)
}

// cardLookups extracts entity tokens from the query and issues an
// identifier-scoped lookup for each token that names a known card. Each
// lookup goes through the same primary-then-keyword chain as the generic
// search, so the augmentation still runs in keyword-only deployments.
func (r *Retriever) cardLookups(ctx context.Context, query string, scope models.SearchScope) []models.RawHit {
	if r.identifiers == nil || (r.searcher == nil && r.keyword == nil) {
		return nil
	}
	known := r.identifiers.KnownIdentifiers()
	if len(known) == 0 {
		return nil
	}
	knownSet := make(map[string]string, len(known))
	for _, id := range known {
		knownSet[strings.ToLower(id)] = id
	}

	var hits []models.RawHit
	matched := make(map[string]bool)
	for _, tok := range entityTokenRe.FindAllString(query, -1) {
		asset, ok := knownSet[strings.ToLower(tok)]
		if !ok || matched[asset] {
			continue
		}
		matched[asset] = true
		hits = append(hits, r.search(ctx, CardTagQuery(asset), scope)...)
	}
	return hits
}

// boost multiplies each passage's raw similarity by its source trust weight
// and re-sorts descending by the boosted score.
func (r *Retriever) boost(passages []*models.Passage) {
	for _, p := range passages {
		if w, ok := r.weights[p.SourceType]; ok {
			p.Score *= w
		}
	}
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})
}

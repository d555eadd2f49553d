// Package retrieval turns external search capabilities into boosted,
// source-typed passages.
package retrieval

import (
	"context"

	"github.com/kektech/cardbot/internal/models"
)

// Searcher is the primary retrieval capability (similarity search backed by
// an external embedding service).
type Searcher interface {
	Search(ctx context.Context, query string, scope models.SearchScope) ([]models.RawHit, error)
}

// KeywordSearcher is the fallback capability used when the primary searcher
// is unavailable or fails.
type KeywordSearcher interface {
	SearchByKeyword(ctx context.Context, query string, scope models.SearchScope, count int, minScore float64) ([]models.RawHit, error)
}

// IdentifierSource exposes the known structured-fact identifiers used for
// hybrid augmentation (card asset names from the registry).
type IdentifierSource interface {
	KnownIdentifiers() []string
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string, scope models.SearchScope) ([]models.RawHit, error)

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, query string, scope models.SearchScope) ([]models.RawHit, error) {
	return f(ctx, query, scope)
}

package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docsearch/internal/domain"
)

// DefaultTopK is the number of results returned when the caller does not
// ask for a specific count.
const DefaultTopK = 5

// Searcher embeds a query and ranks stored chunks by similarity.
type Searcher struct {
	embedder domain.Embedder
	store    domain.Storage
	log      *zap.Logger
}

func NewSearcher(embedder domain.Embedder, store domain.Storage, log *zap.Logger) *Searcher {
	return &Searcher{embedder: embedder, store: store, log: log}
}

// Search returns up to topK results ordered by descending similarity. A
// query embedding failure aborts the search; there is no fallback ranking.
// An empty result set is valid, not an error.
func (s *Searcher) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	vec, err := s.embedder.Embed(ctx, query, domain.IntentQuery)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	results, err := s.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	s.log.Info("query answered",
		zap.String("query", query),
		zap.Int("results", len(results)))
	return results, nil
}

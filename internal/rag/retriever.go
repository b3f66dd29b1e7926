// Package rag turns a query into a ranked context set and that context
// set into a grounded, cited answer.
package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
	"github.com/WoldamlakDebasu/Cognidoc/internal/index"
	"github.com/WoldamlakDebasu/Cognidoc/internal/provider"
)

// DefaultTopK is how many contexts a query retrieves by default.
const DefaultTopK = 3

// MaxTopK caps caller-requested context counts.
const MaxTopK = 5

// DefaultMinScore is the relevance threshold below which a chunk is not
// considered usable context.
const DefaultMinScore = 0.7

// Retriever produces a ranked, deduplicated, thresholded set of context
// chunks for a query. It is stateless; repeating a query against an
// unchanged index yields the same ordered result.
type Retriever struct {
	embedder provider.Embedder
	idx      index.VectorIndex
	topK     int
	minScore float64
	log      *slog.Logger
}

// NewRetriever creates a retriever with the given defaults. Out-of-range
// values fall back to the package defaults.
func NewRetriever(embedder provider.Embedder, idx index.VectorIndex, topK int, minScore float64, log *slog.Logger) *Retriever {
	if topK <= 0 || topK > MaxTopK {
		topK = DefaultTopK
	}
	if minScore <= 0 || minScore >= 1 {
		minScore = DefaultMinScore
	}
	if log == nil {
		log = slog.Default()
	}
	return &Retriever{embedder: embedder, idx: idx, topK: topK, minScore: minScore, log: log}
}

// Retrieve embeds the query, searches the index and returns at most k
// contexts scoring at or above the threshold, ranked from 1. An empty
// result is a legitimate "insufficient information" signal, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedContext, error) {
	if k <= 0 {
		k = r.topK
	}
	if k > MaxTopK {
		k = MaxTopK
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := r.idx.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	seen := make(map[string]bool, len(hits))
	contexts := make([]domain.RetrievedContext, 0, len(hits))
	for _, hit := range hits {
		if hit.Score < r.minScore {
			continue
		}
		id := hit.Chunk.ID.String()
		if seen[id] {
			continue
		}
		seen[id] = true
		contexts = append(contexts, domain.RetrievedContext{
			Chunk: hit.Chunk,
			Score: hit.Score,
			Rank:  len(contexts) + 1,
		})
		if len(contexts) == k {
			break
		}
	}

	r.log.Debug("retrieved contexts", "query_len", len(query), "hits", len(hits), "kept", len(contexts))
	return contexts, nil
}

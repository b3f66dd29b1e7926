// Package index stores chunk vectors and serves similarity search. Two
// implementations share one contract: an in-memory linear scan for demo
// mode and a pgvector-backed store for production. Switching between
// them never changes retrieval behavior.
package index

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
)

// Entry pairs a chunk with its embedding vector for storage.
type Entry struct {
	Chunk  domain.Chunk
	Vector []float32
}

// Hit is a search result: a stored chunk and its similarity score,
// normalized to [0,1] where 1 means identical direction.
type Hit struct {
	Chunk domain.Chunk
	Score float64
}

// VectorIndex is the one shared mutable resource of the engine. Upsert
// and Search must be safe under concurrent use. A vector whose dimension
// does not match the index aborts with *domain.ConfigurationError, never
// a silent wrong result.
type VectorIndex interface {
	Upsert(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)
	DeleteDocument(ctx context.Context, docID uuid.UUID) error
	Dimension() int
	Close() error
}

// checkDimension validates a vector against the index dimension.
func checkDimension(got, want int) error {
	if got != want {
		return &domain.ConfigurationError{
			Field:  "embedding dimension",
			Reason: fmt.Sprintf("vector has %d dimensions, index configured for %d", got, want),
		}
	}
	return nil
}

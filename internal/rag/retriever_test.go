package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
	"github.com/WoldamlakDebasu/Cognidoc/internal/index"
)

// --- Mock implementations ---

// mockEmbedder implements provider.Embedder for testing.
type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vec, nil
}

func (m *mockEmbedder) Dimension() int { return len(m.vec) }

// mockIndex implements index.VectorIndex for testing.
type mockIndex struct {
	hits      []index.Hit
	searchErr error
}

func (m *mockIndex) Upsert(_ context.Context, _ []index.Entry) error { return nil }

func (m *mockIndex) Search(_ context.Context, _ []float32, k int) ([]index.Hit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockIndex) DeleteDocument(_ context.Context, _ uuid.UUID) error { return nil }
func (m *mockIndex) Dimension() int                                      { return 3 }
func (m *mockIndex) Close() error                                        { return nil }

func hit(doc string, idx int, score float64) index.Hit {
	return index.Hit{
		Chunk: domain.Chunk{ID: uuid.New(), DocumentID: uuid.New(), Document: doc, Index: idx, Page: 1, Text: "text"},
		Score: score,
	}
}

func TestRetrieveThresholdAndRank(t *testing.T) {
	idx := &mockIndex{hits: []index.Hit{
		hit("a.pdf", 0, 0.95),
		hit("a.pdf", 1, 0.80),
		hit("b.pdf", 0, 0.50), // below threshold
	}}
	r := NewRetriever(&mockEmbedder{vec: []float32{1, 0, 0}}, idx, 3, 0.7, nil)

	contexts, err := r.Retrieve(context.Background(), "question", 0)

	require.NoError(t, err)
	require.Len(t, contexts, 2)
	assert.Equal(t, 1, contexts[0].Rank)
	assert.Equal(t, 0.95, contexts[0].Score)
	assert.Equal(t, 2, contexts[1].Rank)
	assert.Equal(t, 0.80, contexts[1].Score)
}

func TestRetrieveEmptyIsNotAnError(t *testing.T) {
	r := NewRetriever(&mockEmbedder{vec: []float32{1, 0, 0}}, &mockIndex{}, 3, 0.7, nil)

	contexts, err := r.Retrieve(context.Background(), "question", 0)

	require.NoError(t, err)
	assert.Empty(t, contexts)
}

func TestRetrieveAllBelowThreshold(t *testing.T) {
	idx := &mockIndex{hits: []index.Hit{hit("a.pdf", 0, 0.3), hit("a.pdf", 1, 0.2)}}
	r := NewRetriever(&mockEmbedder{vec: []float32{1, 0, 0}}, idx, 3, 0.7, nil)

	contexts, err := r.Retrieve(context.Background(), "question", 0)

	require.NoError(t, err)
	assert.Empty(t, contexts)
}

func TestRetrieveCapsRequestedK(t *testing.T) {
	var hits []index.Hit
	for i := 0; i < 10; i++ {
		hits = append(hits, hit("a.pdf", i, 0.9))
	}
	r := NewRetriever(&mockEmbedder{vec: []float32{1, 0, 0}}, &mockIndex{hits: hits}, 3, 0.7, nil)

	contexts, err := r.Retrieve(context.Background(), "question", 50)

	require.NoError(t, err)
	assert.Len(t, contexts, MaxTopK)
}

func TestRetrieveDeduplicatesChunks(t *testing.T) {
	h := hit("a.pdf", 0, 0.9)
	r := NewRetriever(&mockEmbedder{vec: []float32{1, 0, 0}}, &mockIndex{hits: []index.Hit{h, h}}, 3, 0.7, nil)

	contexts, err := r.Retrieve(context.Background(), "question", 0)

	require.NoError(t, err)
	assert.Len(t, contexts, 1)
}

func TestRetrieveIdempotent(t *testing.T) {
	idx := &mockIndex{hits: []index.Hit{
		hit("a.pdf", 0, 0.95),
		hit("b.pdf", 0, 0.85),
	}}
	r := NewRetriever(&mockEmbedder{vec: []float32{1, 0, 0}}, idx, 3, 0.7, nil)

	first, err := r.Retrieve(context.Background(), "question", 0)
	require.NoError(t, err)
	second, err := r.Retrieve(context.Background(), "question", 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRetrieveEmbedFailure(t *testing.T) {
	provErr := &domain.ProviderError{Provider: "embedding", Op: "embed", Err: errors.New("quota exceeded")}
	r := NewRetriever(&mockEmbedder{err: provErr}, &mockIndex{}, 3, 0.7, nil)

	_, err := r.Retrieve(context.Background(), "question", 0)

	var got *domain.ProviderError
	require.ErrorAs(t, err, &got)
}

func TestRetrieveSearchFailure(t *testing.T) {
	cfgErr := &domain.ConfigurationError{Field: "embedding dimension", Reason: "mismatch"}
	r := NewRetriever(&mockEmbedder{vec: []float32{1, 0, 0}}, &mockIndex{searchErr: cfgErr}, 3, 0.7, nil)

	_, err := r.Retrieve(context.Background(), "question", 0)

	var got *domain.ConfigurationError
	require.ErrorAs(t, err, &got)
}

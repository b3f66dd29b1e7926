package index

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
)

// Memory is the demo-mode index: a brute-force linear scan over an
// in-memory slice, guarded by a single coarse lock. Nothing survives a
// process restart.
type Memory struct {
	mu        sync.RWMutex
	dimension int
	entries   []Entry
}

// NewMemory creates an empty in-memory index with a fixed dimension.
func NewMemory(dimension int) (*Memory, error) {
	if dimension <= 0 {
		return nil, &domain.ConfigurationError{Field: "embedding dimension", Reason: "must be positive"}
	}
	return &Memory{dimension: dimension}, nil
}

// Dimension returns the configured vector dimension.
func (m *Memory) Dimension() int { return m.dimension }

// Upsert stores entries after validating every vector's dimension. The
// whole batch is rejected on the first mismatch.
func (m *Memory) Upsert(_ context.Context, entries []Entry) error {
	for _, e := range entries {
		if err := checkDimension(len(e.Vector), m.dimension); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

// Search scans every stored vector, scores it by cosine similarity
// normalized to [0,1] and returns the k best hits. Ties break by
// (document id, chunk index) so repeated searches are deterministic.
func (m *Memory) Search(_ context.Context, vector []float32, k int) ([]Hit, error) {
	if err := checkDimension(len(vector), m.dimension); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := make([]Hit, 0, len(m.entries))
	for _, e := range m.entries {
		hits = append(hits, Hit{Chunk: e.Chunk, Score: cosineScore(vector, e.Vector)})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if c := strings.Compare(hits[i].Chunk.DocumentID.String(), hits[j].Chunk.DocumentID.String()); c != 0 {
			return c < 0
		}
		return hits[i].Chunk.Index < hits[j].Chunk.Index
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// DeleteDocument removes every entry belonging to the given document.
func (m *Memory) DeleteDocument(_ context.Context, docID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.Chunk.DocumentID != docID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// Len reports the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close is a no-op for the in-memory index.
func (m *Memory) Close() error { return nil }

// cosineScore maps cosine similarity from [-1,1] onto [0,1], where 1
// means identical direction.
func cosineScore(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2
}

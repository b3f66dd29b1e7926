package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is the unit of storage and retrieval: a bounded span of page text
// with provenance metadata. Chunks are immutable once created.
type Chunk struct {
	ID          uuid.UUID
	DocumentID  uuid.UUID
	Document    string // owning document filename
	Index       int    // document-scoped, monotonically increasing
	Page        int    // 1-based page number
	Text        string
	StartOffset int // character offset within the page
	EndOffset   int
	CreatedAt   time.Time
}

// RetrievedContext wraps a chunk selected for a query together with its
// relevance score and 1-based rank. It is query-scoped and never persisted.
type RetrievedContext struct {
	Chunk Chunk
	Score float64
	Rank  int
}

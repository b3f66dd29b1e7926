package domain

import "time"

// Source is a citation attached to an answer. Sources are built from the
// contexts actually supplied to the generator, never parsed back out of
// the generated text.
type Source struct {
	Document       string  `json:"document"`
	PageNumber     int     `json:"page_number"`
	ChunkID        int     `json:"chunk_id"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Answer is the result of a single query. It is ephemeral; persistence,
// if any, is an API concern.
type Answer struct {
	Text           string        `json:"answer"`
	Sources        []Source      `json:"sources"`
	ProcessingTime time.Duration `json:"-"`
	ContextUsed    int           `json:"context_used"`
	Timestamp      time.Time     `json:"timestamp"`
}

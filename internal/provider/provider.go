// Package provider holds the embedding and generation backends the engine
// talks to, behind narrow interfaces so modes and vendors stay swappable.
package provider

import (
	"context"
	"time"
)

// Embedder maps text to a fixed-length vector. Dimension is fixed at
// configuration time; every vector returned by Embed has exactly that
// length. Failures are reported as *domain.ProviderError and are safe to
// retry (re-embedding the same text is idempotent).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Generator produces text from a prompt. Failures are reported as
// *domain.ProviderError and are never retried automatically: a duplicate
// generation call costs real money and latency.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Per-call timeouts for out-of-process providers. A provider call that
// exceeds its timeout fails rather than hangs.
const (
	EmbedTimeout    = 10 * time.Second
	GenerateTimeout = 30 * time.Second
)

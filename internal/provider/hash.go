package provider

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// DefaultHashDimension is the vector size of the demo embedder.
const DefaultHashDimension = 256

var tokenRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// HashingEmbedder is the demo-mode embedder: it hashes tokens into a
// fixed number of buckets and L2-normalizes the result. It needs no
// network, no credentials and is fully deterministic, which keeps the
// retriever and index behavior identical to production mode.
type HashingEmbedder struct {
	dimension int
}

// NewHashingEmbedder creates a demo embedder with the given dimension.
func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = DefaultHashDimension
	}
	return &HashingEmbedder{dimension: dimension}
}

// Dimension returns the configured vector size.
func (e *HashingEmbedder) Dimension() int { return e.dimension }

// Embed maps text to a normalized bag-of-hashed-tokens vector. The same
// text always yields the same vector.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()
		bucket := int(sum % uint32(e.dimension))
		// Alternate sign off one hash bit so common tokens do not all
		// pile into the positive orthant.
		if sum&0x80000000 != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := 1 / math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) * inv)
		}
	}
	return vec, nil
}

// Package embed defines the embedding capability used to build and query
// the dense index, plus the concrete providers.
//
// The pipeline never inspects provider identity: any implementation of
// Embedder can be wired in, as long as dimensionality is consistent across
// all calls within one snapshot.
package embed

import (
	"context"
	"math"
)

// DefaultCacheSize is the default number of query embeddings kept in the
// LRU cache.
const DefaultCacheSize = 1000

// Embedder generates fixed-length embedding vectors for text.
type Embedder interface {
	// Embed generates the embedding for a single text (used for queries).
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts (used at build
	// time). The result is positional: result[i] embeds texts[i].
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimensionality.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string
}

// normalizeInPlace scales a vector to unit length. Zero vectors are left
// untouched. Pre-normalized vectors make L2 search cosine-equivalent.
func normalizeInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
}

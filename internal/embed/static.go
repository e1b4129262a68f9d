package embed

import (
	"context"
	"hash/fnv"
	"strings"
)

// StaticDimensions is the vector size of the hash-based embedder.
const StaticDimensions = 256

// StaticEmbedder generates deterministic hash-based embeddings with no
// network and no model download. Semantic quality is crude (shared
// vocabulary only), but builds are instant and fully reproducible, which
// makes it the offline fallback and the test-suite embedder.
type StaticEmbedder struct{}

// Token and character n-gram weights for vector generation.
const (
	staticTokenWeight = 0.7
	staticNgramWeight = 0.3
	staticNgramSize   = 3
)

// NewStaticEmbedder creates a static embedder.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{}
}

// Embed generates a deterministic embedding for text.
// Empty or whitespace-only input yields the zero vector.
func (e *StaticEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, StaticDimensions)

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return vector, nil
	}

	for _, token := range strings.Fields(strings.ToLower(trimmed)) {
		vector[hashToIndex(token)] += staticTokenWeight
		for _, ngram := range ngrams(token, staticNgramSize) {
			vector[hashToIndex(ngram)] += staticNgramWeight
		}
	}

	normalizeInPlace(vector)
	return vector, nil
}

// EmbedBatch generates embeddings for all texts.
func (e *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	return vecs, nil
}

// Dimensions returns the embedding dimensionality.
func (e *StaticEmbedder) Dimensions() int { return StaticDimensions }

// ModelName returns the model identifier.
func (e *StaticEmbedder) ModelName() string { return "static-hash-v1" }

// hashToIndex maps a string to a vector index via FNV-1a.
func hashToIndex(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % StaticDimensions)
}

// ngrams returns the character n-grams of s.
func ngrams(s string, n int) []string {
	if len(s) < n {
		return nil
	}
	out := make([]string, 0, len(s)-n+1)
	for i := 0; i+n <= len(s); i++ {
		out = append(out, s[i:i+n])
	}
	return out
}

var _ Embedder = (*StaticEmbedder)(nil)

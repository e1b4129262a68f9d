// Package store provides the two retrieval indices: a dense vector index
// for semantic similarity and a BM25 index for lexical term matching.
//
// Both indices identify fragments positionally: vector i and token profile i
// belong to the i-th fragment in the pipeline snapshot. Indices are built
// once and immutable afterwards; a corpus change means a fresh build.
package store

import (
	"errors"
	"fmt"
)

// VectorResult is a single nearest-neighbor hit.
type VectorResult struct {
	// ID is the fragment identifier.
	ID int

	// Distance is the raw Euclidean (L2) distance to the query vector.
	// Lower is more similar.
	Distance float32
}

// VectorIndex stores fixed-dimension embedding vectors and answers
// nearest-neighbor queries by L2 distance.
//
// Implementations are safe for concurrent searches once building is done.
type VectorIndex interface {
	// Add appends the vector for fragment id. Vectors must be added in
	// fragment-ID order; id must equal Len() at call time.
	Add(id int, vector []float32) error

	// Search returns the k fragments nearest to query, ordered by
	// ascending distance with ties broken by ascending fragment ID.
	// k is capped at Len().
	Search(query []float32, k int) ([]VectorResult, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the vector dimensionality.
	Dimensions() int
}

// ErrNonSequentialID is returned when vectors are added out of fragment order.
var ErrNonSequentialID = errors.New("vector IDs must be added sequentially")

// DimensionError indicates a vector whose dimensionality does not match the
// index. A wrong-dimension query vector is a configuration bug, not a
// transient condition, so it is surfaced rather than worked around.
type DimensionError struct {
	Expected int
	Got      int
}

func (e DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

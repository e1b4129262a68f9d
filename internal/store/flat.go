package store

import (
	"math"
	"sort"
)

// FlatIndex is an exact brute-force L2 vector index.
//
// It scans every stored vector per query, which is the right trade-off for a
// corpus small enough to rebuild on each update: results are exact and
// tie-breaking is fully deterministic. For larger corpora see HNSWIndex.
type FlatIndex struct {
	dims    int
	vectors [][]float32
}

// NewFlatIndex creates an empty flat index for vectors of the given
// dimensionality.
func NewFlatIndex(dims int) (*FlatIndex, error) {
	if dims <= 0 {
		return nil, DimensionError{Expected: 1, Got: dims}
	}
	return &FlatIndex{dims: dims}, nil
}

// Add appends the vector for fragment id.
func (x *FlatIndex) Add(id int, vector []float32) error {
	if id != len(x.vectors) {
		return ErrNonSequentialID
	}
	if len(vector) != x.dims {
		return DimensionError{Expected: x.dims, Got: len(vector)}
	}
	stored := make([]float32, len(vector))
	copy(stored, vector)
	x.vectors = append(x.vectors, stored)
	return nil
}

// Search returns the k nearest vectors by L2 distance, ties broken by
// ascending fragment ID.
func (x *FlatIndex) Search(query []float32, k int) ([]VectorResult, error) {
	if len(query) != x.dims {
		return nil, DimensionError{Expected: x.dims, Got: len(query)}
	}
	if k <= 0 || len(x.vectors) == 0 {
		return []VectorResult{}, nil
	}
	if k > len(x.vectors) {
		k = len(x.vectors)
	}

	results := make([]VectorResult, len(x.vectors))
	for i, v := range x.vectors {
		results[i] = VectorResult{ID: i, Distance: l2Distance(query, v)}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})

	return results[:k], nil
}

// Len returns the number of stored vectors.
func (x *FlatIndex) Len() int { return len(x.vectors) }

// Dimensions returns the vector dimensionality.
func (x *FlatIndex) Dimensions() int { return x.dims }

// l2Distance computes the Euclidean distance between two equal-length vectors.
func l2Distance(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

var _ VectorIndex = (*FlatIndex)(nil)

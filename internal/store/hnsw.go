package store

import (
	"sort"

	"github.com/coder/hnsw"
)

// HNSWConfig tunes the approximate vector index.
type HNSWConfig struct {
	// M is the maximum connections per graph layer.
	M int

	// EfSearch is the query-time search width. Larger values trade
	// latency for recall.
	EfSearch int
}

// DefaultHNSWConfig returns the graph parameters used when none are set.
func DefaultHNSWConfig() HNSWConfig {
	return HNSWConfig{
		M:        16,
		EfSearch: 64,
	}
}

// HNSWIndex is an approximate L2 vector index backed by an HNSW graph.
//
// It trades the exactness of FlatIndex for sub-linear search, which matters
// once the corpus outgrows a few thousand fragments. Returned neighbors are
// re-sorted by exact distance with the same ID tie-break as FlatIndex, so
// ordering within the returned set stays deterministic.
type HNSWIndex struct {
	dims  int
	graph *hnsw.Graph[int]
	count int
}

// NewHNSWIndex creates an empty HNSW index for vectors of the given
// dimensionality.
func NewHNSWIndex(dims int, cfg HNSWConfig) (*HNSWIndex, error) {
	if dims <= 0 {
		return nil, DimensionError{Expected: 1, Got: dims}
	}
	if cfg.M == 0 {
		cfg.M = DefaultHNSWConfig().M
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = DefaultHNSWConfig().EfSearch
	}

	graph := hnsw.NewGraph[int]()
	graph.Distance = hnsw.EuclideanDistance
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch

	return &HNSWIndex{dims: dims, graph: graph}, nil
}

// Add appends the vector for fragment id.
func (x *HNSWIndex) Add(id int, vector []float32) error {
	if id != x.count {
		return ErrNonSequentialID
	}
	if len(vector) != x.dims {
		return DimensionError{Expected: x.dims, Got: len(vector)}
	}
	stored := make([]float32, len(vector))
	copy(stored, vector)
	x.graph.Add(hnsw.MakeNode(id, stored))
	x.count++
	return nil
}

// Search returns up to k approximate nearest neighbors by L2 distance,
// ties broken by ascending fragment ID.
func (x *HNSWIndex) Search(query []float32, k int) ([]VectorResult, error) {
	if len(query) != x.dims {
		return nil, DimensionError{Expected: x.dims, Got: len(query)}
	}
	if k <= 0 || x.count == 0 {
		return []VectorResult{}, nil
	}
	if k > x.count {
		k = x.count
	}

	nodes := x.graph.Search(query, k)

	results := make([]VectorResult, 0, len(nodes))
	for _, node := range nodes {
		results = append(results, VectorResult{
			ID:       node.Key,
			Distance: x.graph.Distance(query, node.Value),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})

	return results, nil
}

// Len returns the number of stored vectors.
func (x *HNSWIndex) Len() int { return x.count }

// Dimensions returns the vector dimensionality.
func (x *HNSWIndex) Dimensions() int { return x.dims }

var _ VectorIndex = (*HNSWIndex)(nil)

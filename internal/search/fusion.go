// Package search implements hybrid retrieval: dense and lexical signals are
// independently normalized, linearly blended, and ranked into the final
// candidate list handed to the generation side.
package search

import (
	"errors"
	"fmt"
	"sort"

	"github.com/policyqa/policyqa/internal/chunk"
	"github.com/policyqa/policyqa/internal/store"
)

// Fusion parameter errors. Invalid parameters are reported, never clamped.
var (
	ErrInvalidAlpha    = errors.New("alpha must be within [0, 1]")
	ErrInvalidFinalK   = errors.New("final_k must be positive")
	ErrInvalidTopKWide = errors.New("top_k_wide must be positive")
)

// epsilon guards the min-max normalization against division by zero when
// all distances or all lexical scores are identical (including all-zero).
const epsilon = 1e-6

// ScoredFragment is the per-query output unit exposed to the downstream
// generation component.
type ScoredFragment struct {
	FragmentID int     `json:"fragment_id"`
	Source     string  `json:"source"`
	Page       int     `json:"page"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
	CharCount  int     `json:"char_count"`
}

// Fuser blends normalized dense similarity and lexical relevance into one
// deterministic ranking.
type Fuser struct {
	alpha    float64
	topKWide int
	finalK   int
}

// NewFuser validates the fusion parameters and creates a Fuser.
// alpha weights the dense signal; 1-alpha weights the lexical signal.
func NewFuser(alpha float64, topKWide, finalK int) (*Fuser, error) {
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAlpha, alpha)
	}
	if topKWide <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopKWide, topKWide)
	}
	if finalK <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFinalK, finalK)
	}
	return &Fuser{alpha: alpha, topKWide: topKWide, finalK: finalK}, nil
}

// TopKWide returns the dense candidate pool size before the corpus-size cap.
func (f *Fuser) TopKWide() int { return f.topKWide }

// Fuse combines dense candidates and exhaustive lexical scores into the
// final ranking.
//
// Every fragment receives a combined score: dense candidates contribute
// alpha * normalized similarity, and all fragments contribute
// (1-alpha) * normalized lexical score. A fragment found by only one
// modality keeps its partial score; it is never excluded. Results are
// sorted by score descending, ties broken by ascending fragment ID, and
// truncated to final_k.
func (f *Fuser) Fuse(fragments []chunk.Fragment, dense []store.VectorResult, lexical []float64) ([]ScoredFragment, error) {
	n := len(fragments)
	if n == 0 {
		return []ScoredFragment{}, nil
	}
	if len(lexical) != n {
		return nil, fmt.Errorf("lexical scores cover %d fragments, corpus has %d", len(lexical), n)
	}

	combined := make([]float64, n)

	// Dense contribution: distances become similarities in [0,1] via the
	// shared epsilon-guarded max normalization. When all distances are
	// equal (including all-zero) every candidate gets similarity ~1
	// rather than a division by zero.
	distances := make([]float64, len(dense))
	for i, r := range dense {
		distances[i] = float64(r.Distance)
	}
	scaled := scaleByMax(distances)
	for i, r := range dense {
		if r.ID < 0 || r.ID >= n {
			return nil, fmt.Errorf("dense result ID %d out of range for corpus of %d", r.ID, n)
		}
		combined[r.ID] = f.alpha * (1 - scaled[i])
	}

	// Lexical contribution: exhaustive scores normalized by the corpus
	// maximum. An all-zero profile (no lexical overlap anywhere) stays
	// all-zero instead of producing NaN.
	for id, s := range scaleByMax(lexical) {
		combined[id] += (1 - f.alpha) * s
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if combined[a] != combined[b] {
			return combined[a] > combined[b]
		}
		return a < b
	})

	k := f.finalK
	if k > n {
		k = n
	}
	results := make([]ScoredFragment, k)
	for i := 0; i < k; i++ {
		frag := fragments[order[i]]
		results[i] = ScoredFragment{
			FragmentID: frag.ID,
			Source:     frag.Source,
			Page:       frag.Page,
			Score:      combined[order[i]],
			Text:       frag.Text,
			CharCount:  frag.CharCount,
		}
	}
	return results, nil
}

// scaleByMax divides every value by the slice maximum plus epsilon, mapping
// non-negative inputs onto [0, 1). A zero maximum leaves all values at zero.
// This is the single normalization primitive shared by both modalities.
func scaleByMax(vals []float64) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	max := vals[0]
	for _, v := range vals[1:] {
		if v > max {
			max = v
		}
	}
	for i, v := range vals {
		out[i] = v / (max + epsilon)
	}
	return out
}

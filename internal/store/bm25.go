package store

import (
	"math"
	"strings"
)

// BM25Config configures the lexical relevance formula.
type BM25Config struct {
	// K1 is the term-frequency saturation parameter.
	K1 float64

	// B is the document-length normalization parameter.
	B float64
}

// DefaultBM25Config returns the standard Okapi parameters.
func DefaultBM25Config() BM25Config {
	return BM25Config{K1: 1.2, B: 0.75}
}

// Tokenize lowercases text and splits it on whitespace.
//
// This is deliberately the whole analysis chain: no stemming, no
// lemmatization, no stop words. Policy queries lean on exact vocabulary
// ("14-day", "non-refundable"), which plain term matching already rewards.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// BM25Index holds per-fragment token frequency statistics and scores token
// queries against every fragment.
//
// The index is built once from the full corpus and immutable afterwards.
// Safe for concurrent scoring.
type BM25Index struct {
	config    BM25Config
	termFreqs []map[string]int // per fragment
	docFreq   map[string]int   // fragments containing a term
	docLens   []int
	avgDocLen float64
}

// NewBM25Index tokenizes every fragment text and builds the index.
// Fragment IDs are positional: texts[i] belongs to fragment i.
func NewBM25Index(texts []string, cfg BM25Config) *BM25Index {
	if cfg.K1 == 0 {
		cfg.K1 = DefaultBM25Config().K1
	}
	if cfg.B == 0 {
		cfg.B = DefaultBM25Config().B
	}

	idx := &BM25Index{
		config:    cfg,
		termFreqs: make([]map[string]int, len(texts)),
		docFreq:   make(map[string]int),
		docLens:   make([]int, len(texts)),
	}

	totalLen := 0
	for i, text := range texts {
		tokens := Tokenize(text)
		freq := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freq[tok]++
		}
		for term := range freq {
			idx.docFreq[term]++
		}
		idx.termFreqs[i] = freq
		idx.docLens[i] = len(tokens)
		totalLen += len(tokens)
	}

	if len(texts) > 0 {
		idx.avgDocLen = float64(totalLen) / float64(len(texts))
	}
	if idx.avgDocLen == 0 {
		idx.avgDocLen = 1
	}

	return idx
}

// Scores computes a non-negative BM25 relevance score for every fragment.
//
// The returned slice is positional: Scores(q)[i] is fragment i's score.
// Fragments sharing no tokens with the query score 0, and a query with zero
// tokens yields an all-zero slice rather than an error.
func (x *BM25Index) Scores(queryTokens []string) []float64 {
	scores := make([]float64, len(x.termFreqs))
	n := float64(len(x.termFreqs))

	for _, term := range queryTokens {
		df, ok := x.docFreq[term]
		if !ok {
			continue
		}
		// Lucene-style IDF: the +1 inside the log keeps scores
		// non-negative even for terms in most fragments.
		idf := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))

		for i, freqs := range x.termFreqs {
			tf := float64(freqs[term])
			if tf == 0 {
				continue
			}
			norm := x.config.K1 * (1 - x.config.B + x.config.B*float64(x.docLens[i])/x.avgDocLen)
			scores[i] += idf * tf * (x.config.K1 + 1) / (tf + norm)
		}
	}

	return scores
}

// Len returns the number of indexed fragments.
func (x *BM25Index) Len() int { return len(x.termFreqs) }

package search

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/policyqa/policyqa/internal/chunk"
	"github.com/policyqa/policyqa/internal/embed"
	"github.com/policyqa/policyqa/internal/store"
)

// Dense index backends.
const (
	DenseBackendFlat = "flat"
	DenseBackendHNSW = "hnsw"
)

// Retrieval defaults, tuned for small policy corpora: a wide dense pool of
// 16 candidates narrowed to 3 fragments, weighted 70% semantic / 30%
// keyword.
const (
	DefaultAlpha    = 0.7
	DefaultTopKWide = 16
	DefaultFinalK   = 3
)

// Options is the full configuration surface of the retrieval pipeline.
// Changing any field requires a full rebuild.
type Options struct {
	// Chunking configures the fragment splitter.
	Chunking chunk.Options

	// Alpha is the dense/lexical blend weight in [0, 1].
	Alpha float64

	// TopKWide is the dense candidate pool size (capped at corpus size).
	TopKWide int

	// FinalK is the number of fragments returned per query.
	FinalK int

	// BM25 configures the lexical relevance formula.
	BM25 store.BM25Config

	// DenseBackend selects "flat" (exact, default) or "hnsw"
	// (approximate, for larger corpora).
	DenseBackend string

	// HNSW tunes the approximate backend when selected.
	HNSW store.HNSWConfig
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		Chunking:     chunk.DefaultOptions(),
		Alpha:        DefaultAlpha,
		TopKWide:     DefaultTopKWide,
		FinalK:       DefaultFinalK,
		BM25:         store.DefaultBM25Config(),
		DenseBackend: DenseBackendFlat,
	}
}

// Pipeline is an immutable, query-ready snapshot: the fragment sequence and
// both indices, sharing fragment IDs positionally. Safe for concurrent
// queries without locking. A corpus change means building a fresh Pipeline;
// a live snapshot is never mutated.
type Pipeline struct {
	fragments []chunk.Fragment
	dense     store.VectorIndex
	lexical   *store.BM25Index
	embedder  embed.Embedder
	fuser     *Fuser
}

// Build chunks the documents, embeds every fragment, and constructs both
// indices into a new snapshot.
//
// A corpus that yields zero fragments is a normal state: the build succeeds
// and every query returns empty results. An embedding failure aborts the
// whole build; no partial snapshot is ever returned, so any previously
// built Pipeline stays intact and servable.
func Build(ctx context.Context, docs []chunk.Document, embedder embed.Embedder, opts Options) (*Pipeline, error) {
	fuser, err := NewFuser(opts.Alpha, opts.TopKWide, opts.FinalK)
	if err != nil {
		return nil, err
	}
	chunker, err := chunk.NewChunker(opts.Chunking)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{embedder: embedder, fuser: fuser}

	fragments := chunker.Chunk(docs)
	if len(fragments) == 0 {
		slog.Info("pipeline_built_empty", slog.Int("documents", len(docs)))
		return p, nil
	}

	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding corpus failed: %w", err)
	}
	if len(vectors) != len(fragments) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d fragments", len(vectors), len(fragments))
	}

	dense, err := newDenseIndex(opts, embedder.Dimensions())
	if err != nil {
		return nil, err
	}
	for i, vec := range vectors {
		if err := dense.Add(i, vec); err != nil {
			return nil, fmt.Errorf("indexing fragment %d: %w", i, err)
		}
	}

	p.fragments = fragments
	p.dense = dense
	p.lexical = store.NewBM25Index(texts, opts.BM25)

	slog.Info("pipeline_built",
		slog.Int("documents", len(docs)),
		slog.Int("fragments", len(fragments)),
		slog.Int("dimensions", embedder.Dimensions()),
		slog.String("dense_backend", denseBackendName(opts)),
	)
	return p, nil
}

// newDenseIndex constructs the configured dense backend.
func newDenseIndex(opts Options, dims int) (store.VectorIndex, error) {
	switch denseBackendName(opts) {
	case DenseBackendHNSW:
		return store.NewHNSWIndex(dims, opts.HNSW)
	case DenseBackendFlat:
		return store.NewFlatIndex(dims)
	default:
		return nil, fmt.Errorf("unknown dense backend %q", opts.DenseBackend)
	}
}

func denseBackendName(opts Options) string {
	if opts.DenseBackend == "" {
		return DenseBackendFlat
	}
	return opts.DenseBackend
}

// Query retrieves the final_k fragments most relevant to the query text.
//
// The dense and lexical paths run in parallel; their results are fused into
// one ranking. An empty corpus returns an empty sequence immediately with
// no index calls. Errors from either path (embedding failure, dimension
// mismatch) are surfaced with no partial fallback.
func (p *Pipeline) Query(ctx context.Context, query string) ([]ScoredFragment, error) {
	if len(p.fragments) == 0 {
		return []ScoredFragment{}, nil
	}

	wide := p.fuser.TopKWide()
	if wide > len(p.fragments) {
		wide = len(p.fragments)
	}

	var (
		dense   []store.VectorResult
		lexical []float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vec, err := p.embedder.Embed(gctx, query)
		if err != nil {
			return fmt.Errorf("embedding query failed: %w", err)
		}
		dense, err = p.dense.Search(vec, wide)
		if err != nil {
			return fmt.Errorf("dense search failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		lexical = p.lexical.Scores(store.Tokenize(query))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return p.fuser.Fuse(p.fragments, dense, lexical)
}

// Fragments returns the snapshot's fragment sequence. Callers must treat it
// as read-only.
func (p *Pipeline) Fragments() []chunk.Fragment { return p.fragments }

// Size returns the number of fragments in the snapshot.
func (p *Pipeline) Size() int { return len(p.fragments) }

package search

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/policyqa/policyqa/internal/chunk"
	"github.com/policyqa/policyqa/internal/embed"
)

// ErrNoSnapshot is returned by Query before the first successful build.
var ErrNoSnapshot = errors.New("search: no snapshot built yet")

// Handle serves queries from the current Pipeline snapshot while rebuilds
// happen off to the side. A rebuild constructs a complete new snapshot and
// swaps it in atomically; queries in flight keep reading the old one. A
// failed rebuild leaves the current snapshot untouched.
type Handle struct {
	current atomic.Pointer[Pipeline]
}

// NewHandle returns a Handle with no snapshot. Rebuild must succeed once
// before Query can serve.
func NewHandle() *Handle {
	return &Handle{}
}

// Snapshot returns the current Pipeline, or nil before the first build.
func (h *Handle) Snapshot() *Pipeline {
	return h.current.Load()
}

// Swap installs p as the current snapshot.
func (h *Handle) Swap(p *Pipeline) {
	h.current.Store(p)
}

// Rebuild constructs a fresh snapshot from docs and swaps it in. On error
// nothing is swapped and the previous snapshot keeps serving.
func (h *Handle) Rebuild(ctx context.Context, docs []chunk.Document, embedder embed.Embedder, opts Options) error {
	p, err := Build(ctx, docs, embedder, opts)
	if err != nil {
		return err
	}
	h.current.Store(p)
	return nil
}

// Query runs the query against the current snapshot.
func (h *Handle) Query(ctx context.Context, query string) ([]ScoredFragment, error) {
	p := h.current.Load()
	if p == nil {
		return nil, ErrNoSnapshot
	}
	return p.Query(ctx, query)
}

package chunk

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default chunking parameters for policy documents. Policy clauses typically
// span 100-200 characters, so 500-character fragments capture 2-3 related
// clauses and a 100-character overlap keeps boundary clauses intact in both
// neighbors.
const (
	DefaultChunkSize = 500
	DefaultOverlap   = 100
)

// DefaultSeparators is the separator priority used when splitting: coarse
// structural boundaries first (sections, paragraphs, lines), then sentence
// and clause boundaries, with single spaces as the finest fallback.
var DefaultSeparators = []string{"\n\n\n", "\n\n", "\n", ". ", "; ", ", ", " "}

// ErrInvalidOptions indicates a chunker misconfiguration.
// Invalid parameters are reported, never silently corrected.
var ErrInvalidOptions = errors.New("invalid chunker options")

// Options configures the Chunker.
type Options struct {
	// ChunkSize is the maximum fragment length in bytes. A fragment may
	// exceed it only when no separator boundary exists below that size.
	ChunkSize int

	// Overlap is the maximum number of trailing bytes carried into the
	// next fragment. Must be strictly less than ChunkSize.
	Overlap int

	// Separators is the split priority, coarsest first. An empty string
	// entry enables raw character cuts as the final fallback.
	// Nil means DefaultSeparators.
	Separators []string
}

// DefaultOptions returns the chunking defaults tuned for policy documents.
func DefaultOptions() Options {
	return Options{
		ChunkSize:  DefaultChunkSize,
		Overlap:    DefaultOverlap,
		Separators: DefaultSeparators,
	}
}

// Chunker splits documents into overlapping fragments using a prioritized
// separator hierarchy. A Chunker is stateless and safe for concurrent use.
type Chunker struct {
	opts Options
}

// NewChunker validates opts and creates a Chunker.
func NewChunker(opts Options) (*Chunker, error) {
	if opts.Separators == nil {
		opts.Separators = DefaultSeparators
	}
	if opts.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidOptions, opts.ChunkSize)
	}
	if opts.Overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidOptions, opts.Overlap)
	}
	if opts.Overlap >= opts.ChunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidOptions, opts.Overlap, opts.ChunkSize)
	}
	return &Chunker{opts: opts}, nil
}

// Chunk splits all documents into fragments with sequential IDs.
// Fragment IDs match emission order across the whole corpus.
func (c *Chunker) Chunk(docs []Document) []Fragment {
	var fragments []Fragment
	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			continue
		}
		pieces := c.split(doc.Text, c.opts.Separators)
		for _, text := range c.merge(pieces) {
			fragments = append(fragments, Fragment{
				ID:            len(fragments),
				Source:        doc.Source,
				Page:          doc.Page,
				Text:          text,
				CharCount:     len(text),
				TokenEstimate: len(text) / 4,
			})
		}
	}
	return fragments
}

// split recursively breaks text into pieces no longer than ChunkSize,
// trying separators in priority order. A piece that contains none of the
// remaining separators is kept whole rather than cut mid-token.
func (c *Chunker) split(text string, separators []string) []string {
	if len(text) <= c.opts.ChunkSize {
		return []string{text}
	}

	sep, rest, found := firstSeparator(text, separators)
	if !found {
		// No boundary below chunk size: the text is an atomic unit and
		// may minimally exceed the limit.
		return []string{text}
	}
	if sep == "" {
		return c.hardCut(text)
	}

	var pieces []string
	for _, piece := range splitAfter(text, sep) {
		if len(piece) <= c.opts.ChunkSize {
			pieces = append(pieces, piece)
		} else {
			pieces = append(pieces, c.split(piece, rest)...)
		}
	}
	return pieces
}

// firstSeparator returns the highest-priority separator present in text and
// the lower-priority remainder to recurse with.
func firstSeparator(text string, separators []string) (sep string, rest []string, found bool) {
	for i, s := range separators {
		if s == "" {
			return "", nil, true
		}
		if strings.Contains(text, s) {
			return s, separators[i+1:], true
		}
	}
	return "", nil, false
}

// splitAfter splits text on sep, keeping the separator attached to the
// preceding piece so no characters are lost.
func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}
	return parts
}

// hardCut slices text into ChunkSize pieces at rune boundaries.
// Only reached when an empty-string separator is configured.
func (c *Chunker) hardCut(text string) []string {
	var pieces []string
	for len(text) > c.opts.ChunkSize {
		cut := c.opts.ChunkSize
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		pieces = append(pieces, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		pieces = append(pieces, text)
	}
	return pieces
}

// merge accumulates pieces into fragments of at most ChunkSize bytes,
// carrying up to Overlap trailing bytes of each emitted fragment into the
// next one so context survives the split point.
func (c *Chunker) merge(pieces []string) []string {
	var chunks []string
	current := ""
	for _, piece := range pieces {
		if current != "" && len(current)+len(piece) > c.opts.ChunkSize {
			chunks = append(chunks, current)
			current = c.carry(current, len(piece))
		}
		current += piece
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// carry returns the trailing slice of the previous fragment to prepend to
// the next one. The carry is capped at Overlap and shrunk further when the
// upcoming piece would otherwise push the next fragment past ChunkSize.
func (c *Chunker) carry(prev string, nextLen int) string {
	keep := c.opts.Overlap
	if room := c.opts.ChunkSize - nextLen; room < keep {
		keep = room
	}
	if keep <= 0 || len(prev) <= keep {
		if keep <= 0 {
			return ""
		}
		return prev
	}
	cut := len(prev) - keep
	for cut < len(prev) && !utf8.RuneStart(prev[cut]) {
		cut++
	}
	return prev[cut:]
}

package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunker_RejectsInvalidOptions(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"zero chunk size", Options{ChunkSize: 0, Overlap: 0}},
		{"negative chunk size", Options{ChunkSize: -5, Overlap: 0}},
		{"negative overlap", Options{ChunkSize: 100, Overlap: -1}},
		{"overlap equals chunk size", Options{ChunkSize: 100, Overlap: 100}},
		{"overlap exceeds chunk size", Options{ChunkSize: 100, Overlap: 150}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewChunker(tc.opts)
			require.ErrorIs(t, err, ErrInvalidOptions)
			assert.Nil(t, c)
		})
	}
}

func TestChunk_ShortDocumentYieldsSingleFragment(t *testing.T) {
	// Given: a document shorter than the chunk size
	c, err := NewChunker(Options{ChunkSize: 500, Overlap: 100})
	require.NoError(t, err)
	doc := Document{Source: "refund.txt", Text: "Refunds are issued within 14 days."}

	// When: chunking
	fragments := c.Chunk([]Document{doc})

	// Then: exactly one fragment equal to the whole text
	require.Len(t, fragments, 1)
	assert.Equal(t, doc.Text, fragments[0].Text)
	assert.Equal(t, 0, fragments[0].ID)
	assert.Equal(t, "refund.txt", fragments[0].Source)
}

func TestChunk_SentenceBoundaryScenario(t *testing.T) {
	// Given: "A. B. C." with chunk_size=5, overlap=2
	c, err := NewChunker(Options{ChunkSize: 5, Overlap: 2})
	require.NoError(t, err)

	// When: chunking
	fragments := c.Chunk([]Document{{Source: "a.txt", Text: "A. B. C."}})

	// Then: splits land on sentence boundaries with overlap carry-over,
	// never inside "A.", "B.", or "C."
	require.Len(t, fragments, 3)
	assert.Equal(t, "A. ", fragments[0].Text)
	assert.Equal(t, ". B. ", fragments[1].Text)
	assert.Equal(t, ". C.", fragments[2].Text)
	for _, f := range fragments {
		assert.LessOrEqual(t, f.CharCount, 5)
	}
}

func TestChunk_Determinism(t *testing.T) {
	// Given: the same document chunked twice with identical parameters
	c, err := NewChunker(Options{ChunkSize: 80, Overlap: 20})
	require.NoError(t, err)
	doc := Document{
		Source: "warranty.txt",
		Text: "The warranty covers manufacturing defects for 12 months. " +
			"Accidental damage is not covered. Claims require proof of purchase. " +
			"Contact support to initiate a claim. Shipping costs are not refunded.",
	}

	first := c.Chunk([]Document{doc})
	second := c.Chunk([]Document{doc})

	assert.Equal(t, first, second)
}

func TestChunk_OverlapProperty(t *testing.T) {
	// Given: a document well beyond the chunk size
	const overlap = 30
	c, err := NewChunker(Options{ChunkSize: 120, Overlap: overlap})
	require.NoError(t, err)
	text := strings.Repeat("Customers may request a refund within fourteen days of delivery. ", 20)
	fragments := c.Chunk([]Document{{Source: "p.txt", Text: text}})
	require.Greater(t, len(fragments), 1)

	// Then: consecutive fragments share boundary text of length in (0, overlap]
	for i := 1; i < len(fragments); i++ {
		prev, next := fragments[i-1].Text, fragments[i].Text
		shared := sharedBoundary(prev, next, overlap)
		assert.Greater(t, shared, 0, "fragments %d and %d share no boundary text", i-1, i)
		assert.LessOrEqual(t, shared, overlap)
	}
}

// sharedBoundary returns the longest l <= max such that the last l bytes of
// prev equal the first l bytes of next.
func sharedBoundary(prev, next string, max int) int {
	for l := max; l > 0; l-- {
		if l > len(prev) || l > len(next) {
			continue
		}
		if prev[len(prev)-l:] == next[:l] {
			return l
		}
	}
	return 0
}

func TestChunk_FragmentMetadata(t *testing.T) {
	c, err := NewChunker(Options{ChunkSize: 60, Overlap: 10})
	require.NoError(t, err)
	docs := []Document{
		{Source: "shipping.txt", Page: 1, Text: strings.Repeat("International orders may incur customs duties. ", 4)},
		{Source: "returns.txt", Page: 2, Text: strings.Repeat("Items must be unused and in original packaging. ", 4)},
	}

	fragments := c.Chunk(docs)
	require.NotEmpty(t, fragments)

	for i, f := range fragments {
		assert.Equal(t, i, f.ID, "IDs must be sequential in emission order")
		assert.Equal(t, len(f.Text), f.CharCount)
		assert.Equal(t, f.CharCount/4, f.TokenEstimate)
		assert.NotEmpty(t, f.Source)
		assert.NotZero(t, f.Page)
	}

	// Fragments from the second document follow the first
	sources := make([]string, len(fragments))
	for i, f := range fragments {
		sources[i] = f.Source
	}
	assert.Equal(t, "shipping.txt", sources[0])
	assert.Equal(t, "returns.txt", sources[len(sources)-1])
}

func TestChunk_EmptyInput(t *testing.T) {
	c, err := NewChunker(DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, c.Chunk(nil))
	assert.Empty(t, c.Chunk([]Document{{Source: "blank.txt", Text: "   \n\n  "}}))
}

func TestChunk_AtomicUnitMayExceedChunkSize(t *testing.T) {
	// Given: a single token longer than the chunk size and no raw-cut separator
	c, err := NewChunker(Options{ChunkSize: 10, Overlap: 2})
	require.NoError(t, err)

	fragments := c.Chunk([]Document{{Source: "w.txt", Text: "nonrefundabledeposit"}})

	// Then: the atomic unit is kept whole rather than cut mid-token
	require.Len(t, fragments, 1)
	assert.Equal(t, "nonrefundabledeposit", fragments[0].Text)
}

func TestChunk_RawCutFallback(t *testing.T) {
	// Given: an empty-string separator enabling raw character cuts
	c, err := NewChunker(Options{ChunkSize: 4, Overlap: 0, Separators: []string{""}})
	require.NoError(t, err)

	fragments := c.Chunk([]Document{{Source: "x.txt", Text: "abcdefghij"}})

	require.Len(t, fragments, 3)
	assert.Equal(t, "abcd", fragments[0].Text)
	assert.Equal(t, "efgh", fragments[1].Text)
	assert.Equal(t, "ij", fragments[2].Text)
}

func TestChunk_CoversAllText(t *testing.T) {
	// Every byte of the document must appear in at least one fragment.
	c, err := NewChunker(Options{ChunkSize: 50, Overlap: 10})
	require.NoError(t, err)
	text := "Orders can be cancelled within 24 hours. Refunds for cancelled orders arrive in 5-7 business days. Digital goods are non-refundable."

	fragments := c.Chunk([]Document{{Source: "c.txt", Text: text}})
	require.NotEmpty(t, fragments)

	// Strip each fragment's overlap with its predecessor and re-concatenate.
	var rebuilt strings.Builder
	rebuilt.WriteString(fragments[0].Text)
	for i := 1; i < len(fragments); i++ {
		shared := sharedBoundary(fragments[i-1].Text, fragments[i].Text, 10)
		rebuilt.WriteString(fragments[i].Text[shared:])
	}
	assert.Equal(t, text, rebuilt.String())
}

// Package chunk splits policy documents into overlapping fragments.
//
// Fragments are the atomic retrievable unit: every index in the pipeline
// refers to fragments by their sequential ID, which matches emission order.
package chunk

// Document is a single loaded policy document.
// Documents are immutable once loaded; the loader owns their creation.
type Document struct {
	// Source is the originating file name (e.g. "refund_policy.txt").
	Source string

	// Text is the full raw text of the document.
	Text string

	// Page is the 1-based page number when the document was split per page
	// by the ingestion side. Zero means no page information.
	Page int
}

// Fragment is a bounded contiguous slice of a document's text.
// Fragments are created exclusively by the Chunker and immutable afterwards.
type Fragment struct {
	// ID is the sequential fragment identifier across the whole corpus.
	// IDs match emission order and are the canonical tie-break key.
	ID int

	// Source is the parent document's source name.
	Source string

	// Page carries the parent document's page number (0 = unknown).
	Page int

	// Text is the fragment content.
	Text string

	// CharCount is len(Text), recorded at creation.
	CharCount int

	// TokenEstimate is CharCount/4, a coarse token-count proxy.
	TokenEstimate int
}

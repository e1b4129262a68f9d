package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policyqa/policyqa/internal/chunk"
	"github.com/policyqa/policyqa/internal/store"
)

func testFragments(texts ...string) []chunk.Fragment {
	frags := make([]chunk.Fragment, len(texts))
	for i, text := range texts {
		frags[i] = chunk.Fragment{
			ID:        i,
			Source:    "policy.txt",
			Text:      text,
			CharCount: len(text),
		}
	}
	return frags
}

func TestNewFuser_InvalidParameters(t *testing.T) {
	tests := []struct {
		name     string
		alpha    float64
		topKWide int
		finalK   int
		wantErr  error
	}{
		{"negative alpha", -0.1, 16, 3, ErrInvalidAlpha},
		{"alpha above one", 1.5, 16, 3, ErrInvalidAlpha},
		{"zero top_k_wide", 0.7, 0, 3, ErrInvalidTopKWide},
		{"negative top_k_wide", 0.7, -1, 3, ErrInvalidTopKWide},
		{"zero final_k", 0.7, 16, 0, ErrInvalidFinalK},
		{"negative final_k", 0.7, 16, -3, ErrInvalidFinalK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFuser(tt.alpha, tt.topKWide, tt.finalK)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, f)
		})
	}
}

func TestNewFuser_BoundaryAlphaValues(t *testing.T) {
	// Given: alpha exactly at both ends of the valid range
	for _, alpha := range []float64{0.0, 1.0} {
		// When: constructing a fuser
		f, err := NewFuser(alpha, 16, 3)

		// Then: the boundary values are accepted
		require.NoError(t, err)
		assert.NotNil(t, f)
	}
}

func TestFuse_PureDenseIgnoresLexical(t *testing.T) {
	// Given: alpha=1.0 and lexical scores that favor the opposite order
	fuser, err := NewFuser(1.0, 16, 3)
	require.NoError(t, err)
	frags := testFragments("first", "second", "third")
	dense := []store.VectorResult{
		{ID: 2, Distance: 0.1},
		{ID: 0, Distance: 0.5},
		{ID: 1, Distance: 0.9},
	}
	lexical := []float64{9.0, 5.0, 0.0}

	// When: fusing
	results, err := fuser.Fuse(frags, dense, lexical)
	require.NoError(t, err)

	// Then: the ranking matches the dense ordering exactly
	require.Len(t, results, 3)
	assert.Equal(t, 2, results[0].FragmentID)
	assert.Equal(t, 0, results[1].FragmentID)
	assert.Equal(t, 1, results[2].FragmentID)
}

func TestFuse_PureLexicalIgnoresDense(t *testing.T) {
	// Given: alpha=0.0 and dense candidates that favor the opposite order
	fuser, err := NewFuser(0.0, 16, 3)
	require.NoError(t, err)
	frags := testFragments("first", "second", "third")
	dense := []store.VectorResult{
		{ID: 0, Distance: 0.1},
		{ID: 1, Distance: 0.5},
	}
	lexical := []float64{0.0, 3.0, 8.0}

	results, err := fuser.Fuse(frags, dense, lexical)
	require.NoError(t, err)

	// Then: the ranking matches the lexical ordering exactly
	require.Len(t, results, 3)
	assert.Equal(t, 2, results[0].FragmentID)
	assert.Equal(t, 1, results[1].FragmentID)
	assert.Equal(t, 0, results[2].FragmentID)
}

func TestFuse_ZeroLexicalOverlapKeepsDenseRanking(t *testing.T) {
	// Given: a query with no keyword overlap, so every lexical score is zero
	fuser, err := NewFuser(0.7, 16, 2)
	require.NoError(t, err)
	frags := testFragments("alpha text", "beta text", "gamma text")
	dense := []store.VectorResult{
		{ID: 1, Distance: 0.2},
		{ID: 0, Distance: 0.8},
	}
	lexical := []float64{0, 0, 0}

	results, err := fuser.Fuse(frags, dense, lexical)
	require.NoError(t, err)

	// Then: dense candidates rank by alpha-weighted similarity alone and
	// the normalization does not divide by zero
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].FragmentID)
	assert.Equal(t, 0, results[1].FragmentID)
	for _, r := range results {
		assert.False(t, r.Score != r.Score, "score must not be NaN")
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
}

func TestFuse_DegenerateEqualDistances(t *testing.T) {
	// Given: every dense candidate at the same distance from the query
	fuser, err := NewFuser(1.0, 16, 3)
	require.NoError(t, err)
	frags := testFragments("a", "b", "c")
	dense := []store.VectorResult{
		{ID: 0, Distance: 0.4},
		{ID: 1, Distance: 0.4},
		{ID: 2, Distance: 0.4},
	}
	lexical := []float64{0, 0, 0}

	results, err := fuser.Fuse(frags, dense, lexical)
	require.NoError(t, err)

	// Then: all candidates score (nearly) equally instead of dividing by
	// zero, and ties break by ascending fragment ID
	require.Len(t, results, 3)
	assert.Equal(t, 0, results[0].FragmentID)
	assert.Equal(t, 1, results[1].FragmentID)
	assert.Equal(t, 2, results[2].FragmentID)
	assert.InDelta(t, results[0].Score, results[2].Score, 1e-9)
}

func TestFuse_TiesBreakByAscendingID(t *testing.T) {
	// Given: fragments with identical combined scores
	fuser, err := NewFuser(0.0, 16, 4)
	require.NoError(t, err)
	frags := testFragments("a", "b", "c", "d")
	lexical := []float64{2.0, 5.0, 2.0, 5.0}

	results, err := fuser.Fuse(frags, nil, lexical)
	require.NoError(t, err)

	// Then: within each score band IDs ascend
	require.Len(t, results, 4)
	assert.Equal(t, []int{1, 3, 0, 2}, []int{
		results[0].FragmentID, results[1].FragmentID,
		results[2].FragmentID, results[3].FragmentID,
	})
}

func TestFuse_TruncatesToFinalK(t *testing.T) {
	fuser, err := NewFuser(0.5, 16, 2)
	require.NoError(t, err)
	frags := testFragments("a", "b", "c", "d", "e")
	dense := []store.VectorResult{{ID: 0, Distance: 0.1}}
	lexical := []float64{1, 2, 3, 4, 5}

	results, err := fuser.Fuse(frags, dense, lexical)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFuse_FinalKLargerThanCorpus(t *testing.T) {
	fuser, err := NewFuser(0.5, 16, 10)
	require.NoError(t, err)
	frags := testFragments("a", "b")
	lexical := []float64{1, 2}

	results, err := fuser.Fuse(frags, nil, lexical)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFuse_ScoresStayWithinUnitInterval(t *testing.T) {
	fuser, err := NewFuser(0.7, 16, 5)
	require.NoError(t, err)
	frags := testFragments("a", "b", "c", "d", "e")
	dense := []store.VectorResult{
		{ID: 0, Distance: 0.0},
		{ID: 3, Distance: 1.2},
		{ID: 4, Distance: 7.5},
	}
	lexical := []float64{4.2, 0, 1.1, 0.3, 9.9}

	results, err := fuser.Fuse(frags, dense, lexical)
	require.NoError(t, err)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
}

func TestFuse_SingleModalityCandidateIsNeverExcluded(t *testing.T) {
	// Given: fragment 2 unseen by the dense pool but lexically dominant,
	// and fragment 0 dense-only
	fuser, err := NewFuser(0.5, 16, 3)
	require.NoError(t, err)
	frags := testFragments("a", "b", "c")
	dense := []store.VectorResult{{ID: 0, Distance: 0.1}}
	lexical := []float64{0, 0, 6.0}

	results, err := fuser.Fuse(frags, dense, lexical)
	require.NoError(t, err)

	// Then: both partial-score fragments appear in the ranking
	ids := []int{results[0].FragmentID, results[1].FragmentID, results[2].FragmentID}
	assert.Contains(t, ids, 0)
	assert.Contains(t, ids, 2)
}

func TestFuse_EmptyCorpus(t *testing.T) {
	fuser, err := NewFuser(0.7, 16, 3)
	require.NoError(t, err)

	results, err := fuser.Fuse(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFuse_LexicalLengthMismatch(t *testing.T) {
	fuser, err := NewFuser(0.7, 16, 3)
	require.NoError(t, err)
	frags := testFragments("a", "b", "c")

	_, err = fuser.Fuse(frags, nil, []float64{1.0})
	assert.Error(t, err)
}

func TestFuse_CarriesFragmentMetadata(t *testing.T) {
	fuser, err := NewFuser(0.0, 16, 1)
	require.NoError(t, err)
	frags := []chunk.Fragment{
		{ID: 0, Source: "leave.md", Page: 2, Text: "leave policy", CharCount: 12},
	}

	results, err := fuser.Fuse(frags, nil, []float64{1.0})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "leave.md", results[0].Source)
	assert.Equal(t, 2, results[0].Page)
	assert.Equal(t, "leave policy", results[0].Text)
	assert.Equal(t, 12, results[0].CharCount)
}

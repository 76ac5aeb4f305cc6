package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuisine-engine/backend/internal/cleaning"
	"github.com/cuisine-engine/backend/internal/search"
)

func sampleRecords() []cleaning.CleanRecord {
	return []cleaning.CleanRecord{
		{CanonicalName: "big pizza", DisplayName: "Big Pizza", CleanCuisines: "italian pizza", CleanReviews: "wood fired pizza", Rating: 4.0},
		{CanonicalName: "dhaba", DisplayName: "Dhaba", CleanCuisines: "north indian", CleanReviews: "butter chicken", Rating: 4.5},
		{CanonicalName: "little italy", DisplayName: "Little Italy", CleanCuisines: "italian", CleanReviews: "pasta", Rating: 3.5},
		{CanonicalName: "sushi bar", DisplayName: "Sushi Bar", CleanCuisines: "japanese sushi", CleanReviews: "fresh fish", Rating: 4.8},
		{CanonicalName: "wok", DisplayName: "Wok", CleanCuisines: "chinese thai", CleanReviews: "noodles", Rating: 3.9},
	}
}

func mustBuild(t *testing.T, records []cleaning.CleanRecord) *search.Index {
	t.Helper()
	idx, err := search.Build(records)
	require.NoError(t, err)
	return idx
}

func TestBuild_EmptyDataset(t *testing.T) {
	idx, err := search.Build(nil)
	assert.ErrorIs(t, err, search.ErrEmptyDataset)
	assert.Nil(t, idx)
}

func TestBuild(t *testing.T) {
	idx := mustBuild(t, sampleRecords())

	assert.Equal(t, 5, idx.Len())
	assert.Greater(t, idx.VocabularySize(), 0)
	assert.Equal(t, sampleRecords(), idx.Records())
}

func TestBuild_MaxFeatures(t *testing.T) {
	idx, err := search.Build(sampleRecords(), search.WithMaxFeatures(3))
	require.NoError(t, err)
	assert.Equal(t, 3, idx.VocabularySize())
}

func TestRecommend_BlankQuery(t *testing.T) {
	idx := mustBuild(t, sampleRecords())

	assert.Empty(t, idx.Recommend("", 10))
	assert.Empty(t, idx.Recommend("   ", 5))
	assert.NotNil(t, idx.Recommend("", 10))
}

func TestRecommend_FiltersByCuisine(t *testing.T) {
	records := sampleRecords()
	idx := mustBuild(t, records)

	hits := idx.Search("italian", 5)

	require.Len(t, hits, 2)
	for _, hit := range hits {
		assert.Contains(t, hit.Record.CleanCuisines, "italian")
	}
}

func TestRecommend_RanksBySimilarityFirst(t *testing.T) {
	idx := mustBuild(t, sampleRecords())

	// "italian" is a larger share of Little Italy's text, so it outranks the
	// better-rated Big Pizza.
	got := idx.Recommend("  Italian ", 5)

	assert.Equal(t, []search.Recommendation{
		{DisplayName: "Little Italy", Rating: 3.5},
		{DisplayName: "Big Pizza", Rating: 4.0},
	}, got)
}

func TestRecommend_NoMatch(t *testing.T) {
	idx := mustBuild(t, sampleRecords())

	got := idx.Recommend("mexican", 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecommend_TopNLargerThanMatches(t *testing.T) {
	records := append(sampleRecords(),
		cleaning.CleanRecord{CanonicalName: "trattoria", DisplayName: "Trattoria", CleanCuisines: "italian cafe", CleanReviews: "tiramisu", Rating: 4.1},
	)
	idx := mustBuild(t, records)

	assert.Len(t, idx.Recommend("italian", 100), 3)
	assert.Len(t, idx.Recommend("italian", 1), 1)
	assert.Empty(t, idx.Recommend("italian", 0))
}

func TestRecommend_SubstringMatch(t *testing.T) {
	idx := mustBuild(t, sampleRecords())

	got := idx.Recommend("pan", 5)

	require.Len(t, got, 1)
	assert.Equal(t, "Sushi Bar", got[0].DisplayName)
}

func TestRecommend_OutOfVocabularyQueryFallsBackToRating(t *testing.T) {
	idx := mustBuild(t, sampleRecords())

	// "ital" matches as a substring but is not a vocabulary term, so every
	// similarity is zero and rating decides.
	got := idx.Recommend("ital", 5)

	assert.Equal(t, []search.Recommendation{
		{DisplayName: "Big Pizza", Rating: 4.0},
		{DisplayName: "Little Italy", Rating: 3.5},
	}, got)
}

func TestBuild_Idempotent(t *testing.T) {
	first := mustBuild(t, sampleRecords())
	second := mustBuild(t, sampleRecords())

	for _, q := range []string{"italian", "indian", "pan", "thai", "sushi", "", "mexican"} {
		assert.Equal(t, first.Recommend(q, 10), second.Recommend(q, 10), q)
	}
}

func TestSortHits(t *testing.T) {
	hits := []search.Hit{
		{Record: cleaning.CleanRecord{DisplayName: "Row1", Rating: 3.0}, Similarity: 0.8},
		{Record: cleaning.CleanRecord{DisplayName: "Row2", Rating: 4.5}, Similarity: 0.8},
		{Record: cleaning.CleanRecord{DisplayName: "Row3", Rating: 5.0}, Similarity: 0.3},
	}

	search.SortHits(hits)

	names := []string{hits[0].Record.DisplayName, hits[1].Record.DisplayName, hits[2].Record.DisplayName}
	assert.Equal(t, []string{"Row2", "Row1", "Row3"}, names)
}

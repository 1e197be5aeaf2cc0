package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corpus(texts ...string) [][]string {
	out := make([][]string, len(texts))
	for i, t := range texts {
		out[i] = Tokenize(t)
	}
	return out
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"Article", "21.", "Protection", "of", "life"},
		Tokenize("Article  21.\nProtection of life"))
	assert.Empty(t, Tokenize("   \n\t "))
}

func TestScores_MatchingTermRanksHigher(t *testing.T) {
	idx := New(corpus(
		"the insured person must notify the company",
		"grace period for premium payment is thirty days",
		"waiting period of thirty six months applies",
	))

	scores := idx.Scores(Tokenize("grace period premium"))
	require.Len(t, scores, 3)

	assert.Greater(t, scores[1], scores[0])
	assert.Greater(t, scores[1], scores[2])
}

func TestScores_UnknownTermsScoreZero(t *testing.T) {
	idx := New(corpus("alpha beta", "gamma delta"))

	scores := idx.Scores(Tokenize("zeta eta"))
	assert.Equal(t, []float64{0, 0}, scores)
}

func TestScores_CommonTermStillPositive(t *testing.T) {
	// "policy" appears in every document; Okapi IDF would go negative,
	// the epsilon floor keeps the contribution positive.
	idx := New(corpus(
		"policy terms",
		"policy conditions",
		"policy exclusions",
		"policy riders",
	))

	scores := idx.Scores(Tokenize("policy"))
	for i, s := range scores {
		assert.Greater(t, s, 0.0, "document %d", i)
	}
}

func TestTopK_OrderAndTruncation(t *testing.T) {
	idx := New(corpus(
		"cats and dogs",
		"dogs dogs dogs",
		"birds only here",
	))

	hits := idx.TopK(Tokenize("dogs"), 2)
	require.Len(t, hits, 2)

	assert.Equal(t, 1, hits[0].Position)
	assert.Equal(t, 0, hits[1].Position)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestTopK_TiesKeepPositionOrder(t *testing.T) {
	idx := New(corpus(
		"unrelated text",
		"more unrelated text",
		"still unrelated",
	))

	// No query term matches: all scores equal zero, positions ascend.
	hits := idx.TopK(Tokenize("absent"), 3)
	require.Len(t, hits, 3)
	assert.Equal(t, 0, hits[0].Position)
	assert.Equal(t, 1, hits[1].Position)
	assert.Equal(t, 2, hits[2].Position)
}

func TestTopK_LargerThanCorpus(t *testing.T) {
	idx := New(corpus("one", "two"))
	hits := idx.TopK(Tokenize("one"), 10)
	assert.Len(t, hits, 2)
}

func TestLen(t *testing.T) {
	assert.Equal(t, 0, New(nil).Len())
	assert.Equal(t, 2, New(corpus("a", "b")).Len())
}

package semantic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedIsDeterministic(t *testing.T) {
	a := Embed("hello world")
	b := Embed("hello world")
	assert.Equal(t, a, b)
	assert.Len(t, a, Dimensions)
}

func TestCosineSimilarityBounds(t *testing.T) {
	a := Embed("database query optimization")
	b := Embed("deploy container to cluster")

	score := CosineSimilarity(a, b)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestCosineSimilarityIsOneForIdenticalVectors(t *testing.T) {
	v := Embed("neural network training")
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

// TestSemanticVsLexicalRanking is scenario S5: "antonio's restaurant"
// ranks the cooking document above the typescript guide even though
// neither literal token appears in either document.
func TestSemanticVsLexicalRanking(t *testing.T) {
	query := Embed("antonio's restaurant")
	cooking := Embed("cooking italian food")
	tsGuide := Embed("typescript guide")
	pasta := Embed("pasta")

	cookingScore := CosineSimilarity(query, cooking)
	tsScore := CosineSimilarity(query, tsGuide)
	pastaScore := CosineSimilarity(query, pasta)

	assert.Greater(t, cookingScore, tsScore)
	assert.Greater(t, pastaScore, tsScore)
}

func TestRRFMonotonicityInFTSRank(t *testing.T) {
	opts := DefaultRRFOptions()
	semanticRank := 5.0

	better := RRFScore(1, semanticRank, opts)
	worse := RRFScore(10, semanticRank, opts)
	assert.GreaterOrEqual(t, better, worse)
}

func TestRRFAbsentRankContributesZero(t *testing.T) {
	opts := DefaultRRFOptions()
	onlyFTS := RRFScore(1, math.Inf(1), opts)
	both := RRFScore(1, 1, opts)
	assert.Less(t, onlyFTS, both)
}

func TestRankOfAbsentIsInfinity(t *testing.T) {
	ids := []string{"a", "b", "c"}
	require.Equal(t, 2.0, RankOf(ids, "b"))
	assert.True(t, math.IsInf(RankOf(ids, "z"), 1))
}

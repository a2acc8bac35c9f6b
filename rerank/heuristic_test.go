package rerank

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civica/policyrag/core"
)

func candidate(id core.ID, text string) core.Candidate {
	return core.Candidate{
		Chunk:  &core.Chunk{ID: id, Text: text, Source: "doc.md"},
		Origin: core.OriginVector,
	}
}

func TestHeuristicRerankPrefersTermOverlap(t *testing.T) {
	r := NewHeuristicReranker()

	results, err := r.Rerank(context.Background(), "garbage collection schedule", []core.Candidate{
		candidate(1, "parking permits are issued downtown"),
		candidate(2, "the garbage collection schedule changes in summer"),
		candidate(3, "garbage bags are sold at convenience stores"),
	}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, core.ID(2), results[0].Chunk.ID)
	assert.Equal(t, core.ID(3), results[1].Chunk.ID)
	assert.Equal(t, core.ID(1), results[2].Chunk.ID)
}

func TestHeuristicRerankScoresNonIncreasing(t *testing.T) {
	r := NewHeuristicReranker()

	results, err := r.Rerank(context.Background(), "recycling rules", []core.Candidate{
		candidate(1, "recycling rules apply citywide"),
		candidate(2, "unrelated passage"),
		candidate(3, "rules about parking"),
	}, 3)
	require.NoError(t, err)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].FinalScore, results[i].FinalScore)
	}
}

func TestHeuristicRerankRespectsTopK(t *testing.T) {
	r := NewHeuristicReranker()

	results, err := r.Rerank(context.Background(), "recycling", []core.Candidate{
		candidate(1, "recycling a"),
		candidate(2, "recycling b"),
		candidate(3, "recycling c"),
	}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestHeuristicRerankEmptyCandidates(t *testing.T) {
	r := NewHeuristicReranker()

	results, err := r.Rerank(context.Background(), "anything", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHeuristicRerankIsDeterministic(t *testing.T) {
	r := NewHeuristicReranker()
	candidates := []core.Candidate{
		candidate(5, "identical text"),
		candidate(2, "identical text"),
		candidate(9, "identical text"),
	}

	first, err := r.Rerank(context.Background(), "identical", candidates, 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := r.Rerank(context.Background(), "identical", candidates, 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRankTiesKeepCandidateOrder(t *testing.T) {
	r := NewHeuristicReranker()
	// Identical text scores identically, so the incoming candidate
	// order must survive, not be reshuffled by chunk ID.
	candidates := []core.Candidate{
		candidate(7, "same passage"),
		candidate(1, "same passage"),
		candidate(4, "same passage"),
	}

	results, err := r.Rerank(context.Background(), "passage", candidates, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, core.ID(7), results[0].Chunk.ID)
	assert.Equal(t, core.ID(1), results[1].Chunk.ID)
	assert.Equal(t, core.ID(4), results[2].Chunk.ID)
}

func TestLengthPenalty(t *testing.T) {
	assert.InDelta(t, 1.0, lengthPenalty(500), 1e-9)
	assert.InDelta(t, 0.9, lengthPenalty(450), 1e-9)
	assert.InDelta(t, 0.8, lengthPenalty(600), 1e-9)
	assert.InDelta(t, 0.5, lengthPenalty(250), 1e-9)
	// The falloff is linear in the distance from the ideal length, so
	// 250 over scores the same as 250 under.
	assert.InDelta(t, 0.5, lengthPenalty(750), 1e-9)
	assert.InDelta(t, 0.5, lengthPenalty(10), 1e-9)
	assert.InDelta(t, 0.5, lengthPenalty(5000), 1e-9)
	assert.InDelta(t, 0.5, lengthPenalty(0), 1e-9)
}

func TestEarlyPositionBonus(t *testing.T) {
	early := "garbage is collected on tuesdays. " + strings.Repeat("x ", 100)
	late := strings.Repeat("x ", 100) + " garbage is collected on tuesdays."

	assert.InDelta(t, earlyBonus, earlyPositionBonus([]string{"garbage"}, early), 1e-9)
	assert.InDelta(t, 0.0, earlyPositionBonus([]string{"garbage"}, late), 1e-9)
}

func TestHeuristicScoreWeights(t *testing.T) {
	pad := func(prefix string) string {
		return prefix + strings.Repeat("x", 500-len(prefix))
	}
	early := pad("garbage pickup runs weekly. ")
	late := pad(strings.Repeat("x", 150) + " garbage pickup runs weekly.")
	terms := []string{"garbage", "pickup"}

	// Both passages are ideal length with full overlap, so they differ
	// only in the weighted position term: 0.2 * 0.2 = 0.04.
	earlyScore := heuristicScore(terms, early)
	lateScore := heuristicScore(terms, late)
	assert.InDelta(t, 0.84, earlyScore, 1e-9)
	assert.InDelta(t, 0.80, lateScore, 1e-9)
	assert.InDelta(t, 0.04, earlyScore-lateScore, 1e-9)
}

package boost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civica/policyrag/core"
	badgerstore "github.com/civica/policyrag/storage/badger"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	_, _, boostRepo, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	engine, err := NewEngine(context.Background(), boostRepo)
	require.NoError(t, err)
	return engine
}

func sourceCandidate(source string, distance float64) core.Candidate {
	return core.Candidate{
		Chunk:    &core.Chunk{ID: core.IDFromContent(source), Text: "text", Source: source},
		RawScore: distance,
		Origin:   core.OriginVector,
	}
}

func TestNewEngineRequiresRepository(t *testing.T) {
	_, err := NewEngine(context.Background(), nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}

func TestSetBoostAndGetBoosts(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.SetBoost(ctx, core.BoostTargetSource, "garbage.md", 0.2))
	require.NoError(t, engine.SetBoost(ctx, core.BoostTargetCategory, "activity", 0.1))

	rules := engine.GetBoosts()
	assert.Equal(t, 0.2, rules.Source["garbage.md"])
	assert.Equal(t, 0.1, rules.Category["activity"])
}

func TestSetBoostRejectsInvalidInput(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	err := engine.SetBoost(ctx, core.BoostTarget("tag"), "x", 0.5)
	assert.ErrorIs(t, err, core.ErrInvalidBoostTarget)

	err = engine.SetBoost(ctx, core.BoostTargetSource, "x", -0.5)
	assert.ErrorIs(t, err, core.ErrNegativeBoostWeight)

	assert.Empty(t, engine.GetBoosts().Source)
}

func TestSetBoostZeroWeightRemovesRule(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.SetBoost(ctx, core.BoostTargetSource, "doc.md", 0.3))
	require.NoError(t, engine.SetBoost(ctx, core.BoostTargetSource, "doc.md", 0))

	_, ok := engine.GetBoosts().Source["doc.md"]
	assert.False(t, ok)
}

func TestClearBoost(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.SetBoost(ctx, core.BoostTargetSource, "doc.md", 0.3))
	require.NoError(t, engine.ClearBoost(ctx, core.BoostTargetSource, "doc.md"))
	require.NoError(t, engine.ClearBoost(ctx, core.BoostTargetSource, "doc.md"))

	assert.Empty(t, engine.GetBoosts().Source)
}

func TestGetBoostsReturnsSnapshot(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.SetBoost(ctx, core.BoostTargetSource, "doc.md", 0.3))

	snapshot := engine.GetBoosts()
	snapshot.Source["doc.md"] = 99

	assert.Equal(t, 0.3, engine.GetBoosts().Source["doc.md"])
}

func TestApplyBoostsSubtractsWeight(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.SetBoost(ctx, core.BoostTargetSource, "garbage.md", 0.2))

	boosted := engine.ApplyBoosts([]core.Candidate{
		sourceCandidate("garbage.md", 0.5),
		sourceCandidate("parking.md", 0.5),
	})

	assert.InDelta(t, 0.3, boosted[0].RawScore, 1e-9)
	assert.InDelta(t, 0.5, boosted[1].RawScore, 1e-9)
}

func TestApplyBoostsClampsAtZero(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.SetBoost(ctx, core.BoostTargetSource, "garbage.md", 2.0))

	boosted := engine.ApplyBoosts([]core.Candidate{sourceCandidate("garbage.md", 0.5)})
	assert.Equal(t, 0.0, boosted[0].RawScore)
}

func TestApplyBoostsStacksSourceAndCategory(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.SetBoost(ctx, core.BoostTargetSource, "festival.md", 0.1))
	require.NoError(t, engine.SetBoost(ctx, core.BoostTargetCategory, "activity", 0.1))

	candidate := core.Candidate{
		Chunk:    &core.Chunk{ID: 1, Text: "the summer festival schedule", Source: "festival.md"},
		RawScore: 0.5,
	}
	boosted := engine.ApplyBoosts([]core.Candidate{candidate})
	assert.InDelta(t, 0.3, boosted[0].RawScore, 1e-9)
}

func TestApplyBoostsNoRulesPreservesInput(t *testing.T) {
	engine := newTestEngine(t)

	in := []core.Candidate{sourceCandidate("doc.md", 0.4)}
	out := engine.ApplyBoosts(in)
	assert.Equal(t, in, out)
}

func TestApplyToResultsAddsWeightAndMarks(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.SetBoost(ctx, core.BoostTargetSource, "garbage.md", 0.2))

	results := engine.ApplyToResults([]core.RankedResult{
		{Chunk: &core.Chunk{ID: 1, Text: "text", Source: "garbage.md"}, FinalScore: 0.5},
		{Chunk: &core.Chunk{ID: 2, Text: "text", Source: "parking.md"}, FinalScore: 0.5},
	})

	assert.InDelta(t, 0.7, results[0].FinalScore, 1e-9)
	assert.True(t, results[0].BoostApplied)
	assert.InDelta(t, 0.5, results[1].FinalScore, 1e-9)
	assert.False(t, results[1].BoostApplied)
}

func TestBoostsPersistAcrossEngines(t *testing.T) {
	_, _, boostRepo, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	ctx := context.Background()
	engine, err := NewEngine(ctx, boostRepo)
	require.NoError(t, err)
	require.NoError(t, engine.SetBoost(ctx, core.BoostTargetSource, "doc.md", 0.25))

	reopened, err := NewEngine(ctx, boostRepo)
	require.NoError(t, err)
	assert.Equal(t, 0.25, reopened.GetBoosts().Source["doc.md"])
}

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()

	assert.Equal(t, "activity", c.Classify(&core.Chunk{Source: "summer-festival.md", Text: "city festival"}))
	assert.Equal(t, "trade-in", c.Classify(&core.Chunk{Source: "appliances.md", Text: "trade-in subsidy rules"}))
	assert.Equal(t, CategoryOther, c.Classify(&core.Chunk{Source: "parking.md", Text: "parking permit fees"}))
}

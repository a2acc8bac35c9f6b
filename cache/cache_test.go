package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civica/policyrag/core"
)

func sampleResults() []core.RankedResult {
	return []core.RankedResult{
		{
			Chunk:      &core.Chunk{ID: 1, Text: "garbage schedule", Source: "garbage.md", Position: 0},
			FinalScore: 0.9,
			Distance:   0.1,
		},
		{
			Chunk:      &core.Chunk{ID: 2, Text: "recycling rules", Source: "recycling.md", Position: 3},
			FinalScore: 0.7,
			Distance:   0.3,
		},
	}
}

func TestKeyNormalization(t *testing.T) {
	base := Key("garbage collection", 10, "Springfield City")

	assert.Equal(t, base, Key("  Garbage   COLLECTION  ", 10, "Springfield City"))
	assert.NotEqual(t, base, Key("garbage collection", 5, "Springfield City"))
	assert.NotEqual(t, base, Key("garbage collection", 10, ""))
	assert.NotEqual(t, base, Key("recycling", 10, "Springfield City"))
}

func TestLocalGetSet(t *testing.T) {
	local, err := NewLocal()
	require.NoError(t, err)
	ctx := context.Background()

	_, ok := local.Get(ctx, "k")
	assert.False(t, ok)

	local.Set(ctx, "k", sampleResults())

	got, ok := local.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, sampleResults(), got)

	stats := local.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestLocalExpiry(t *testing.T) {
	local, err := NewLocal(WithLocalTTL(time.Minute))
	require.NoError(t, err)
	ctx := context.Background()

	clock := time.Now()
	local.now = func() time.Time { return clock }

	local.Set(ctx, "k", sampleResults())

	_, ok := local.Get(ctx, "k")
	assert.True(t, ok)

	clock = clock.Add(2 * time.Minute)
	_, ok = local.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, local.Stats().Entries)
}

func TestLocalClear(t *testing.T) {
	local, err := NewLocal()
	require.NoError(t, err)
	ctx := context.Background()

	local.Set(ctx, "k", sampleResults())
	require.NoError(t, local.Clear(ctx))

	_, ok := local.Get(ctx, "k")
	assert.False(t, ok)
}

func TestPayloadRoundTrip(t *testing.T) {
	now := time.Now()
	data, err := encodePayload(sampleResults(), now, time.Hour)
	require.NoError(t, err)

	got, ok := decodePayload(data, now)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, core.ID(1), got[0].Chunk.ID)
	assert.Equal(t, "garbage.md", got[0].Chunk.Source)
	assert.InDelta(t, 0.9, got[0].FinalScore, 1e-9)
	assert.Empty(t, got[0].Chunk.Vector)
}

func TestPayloadExpiry(t *testing.T) {
	now := time.Now()
	data, err := encodePayload(sampleResults(), now, time.Hour)
	require.NoError(t, err)

	_, ok := decodePayload(data, now.Add(2*time.Hour))
	assert.False(t, ok)
}

func TestPayloadMalformed(t *testing.T) {
	_, ok := decodePayload([]byte("not json"), time.Now())
	assert.False(t, ok)
}

func TestTieredFallsBackWithoutRemote(t *testing.T) {
	local, err := NewLocal()
	require.NoError(t, err)
	tiered := NewTiered(nil, local, nil)
	ctx := context.Background()

	tiered.Set(ctx, "k", sampleResults())

	got, ok := tiered.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, sampleResults(), got)
	assert.Equal(t, "local", tiered.Stats().Backend)
}

func TestTieredPrefersRemote(t *testing.T) {
	remote, err := NewLocal()
	require.NoError(t, err)
	local, err := NewLocal()
	require.NoError(t, err)
	tiered := NewTiered(remote, local, nil)
	ctx := context.Background()

	tiered.Set(ctx, "k", sampleResults())

	// Both tiers were written.
	_, ok := remote.Get(ctx, "k")
	assert.True(t, ok)
	_, ok = local.Get(ctx, "k")
	assert.True(t, ok)

	require.NoError(t, tiered.Clear(ctx))
	_, ok = tiered.Get(ctx, "k")
	assert.False(t, ok)
}

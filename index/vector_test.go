package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civica/policyrag/core"
)

func chunkWithVector(id core.ID, text string, vector []float32) *core.Chunk {
	return &core.Chunk{ID: id, Text: text, Source: "doc.md", Vector: vector}
}

func TestVectorIndexSearchOrdersByDistance(t *testing.T) {
	ix := NewVectorIndex()
	ix.Rebuild([]*core.Chunk{
		chunkWithVector(1, "exact match", []float32{1, 0, 0}),
		chunkWithVector(2, "orthogonal", []float32{0, 1, 0}),
		chunkWithVector(3, "close match", []float32{0.9, 0.1, 0}),
	})

	results, err := ix.Search(context.Background(), []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, core.ID(1), results[0].Chunk.ID)
	assert.Equal(t, core.ID(3), results[1].Chunk.ID)
	assert.Equal(t, core.ID(2), results[2].Chunk.ID)

	assert.InDelta(t, 0.0, results[0].RawScore, 1e-9)
	assert.InDelta(t, 1.0, results[2].RawScore, 1e-9)
	for _, res := range results {
		assert.Equal(t, core.OriginVector, res.Origin)
	}
}

func TestVectorIndexSearchRespectsTopK(t *testing.T) {
	ix := NewVectorIndex()
	ix.Rebuild([]*core.Chunk{
		chunkWithVector(1, "a", []float32{1, 0}),
		chunkWithVector(2, "b", []float32{0, 1}),
		chunkWithVector(3, "c", []float32{1, 1}),
	})

	results, err := ix.Search(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestVectorIndexSearchEmptyIndex(t *testing.T) {
	ix := NewVectorIndex()

	results, err := ix.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorIndexSearchDimensionMismatch(t *testing.T) {
	ix := NewVectorIndex()
	ix.Rebuild([]*core.Chunk{chunkWithVector(1, "a", []float32{1, 0, 0})})

	_, err := ix.Search(context.Background(), []float32{1, 0}, 5)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestVectorIndexSearchEmptyQuery(t *testing.T) {
	ix := NewVectorIndex()
	ix.Rebuild([]*core.Chunk{chunkWithVector(1, "a", []float32{1, 0})})

	_, err := ix.Search(context.Background(), nil, 5)
	assert.ErrorIs(t, err, ErrEmptyVector)

	_, err = ix.Search(context.Background(), []float32{0, 0}, 5)
	assert.ErrorIs(t, err, ErrEmptyVector)
}

func TestVectorIndexRebuildSkipsChunksWithoutVectors(t *testing.T) {
	ix := NewVectorIndex()
	ix.Rebuild([]*core.Chunk{
		chunkWithVector(1, "a", []float32{1, 0}),
		&core.Chunk{ID: 2, Text: "no vector", Source: "doc.md"},
	})

	assert.Equal(t, 1, ix.Len())
}

func TestVectorIndexAdd(t *testing.T) {
	ix := NewVectorIndex()
	ix.Rebuild([]*core.Chunk{chunkWithVector(1, "a", []float32{1, 0})})
	ix.Add([]*core.Chunk{chunkWithVector(2, "b", []float32{0, 1})})

	require.Equal(t, 2, ix.Len())

	results, err := ix.Search(context.Background(), []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.ID(2), results[0].Chunk.ID)
}

func TestVectorIndexRebuildReplaces(t *testing.T) {
	ix := NewVectorIndex()
	ix.Rebuild([]*core.Chunk{
		chunkWithVector(1, "a", []float32{1, 0}),
		chunkWithVector(2, "b", []float32{0, 1}),
	})
	ix.Rebuild([]*core.Chunk{chunkWithVector(3, "c", []float32{1, 1})})

	assert.Equal(t, 1, ix.Len())
}

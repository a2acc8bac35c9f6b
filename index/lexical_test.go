package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civica/policyrag/core"
)

func textChunk(id core.ID, text string) *core.Chunk {
	return &core.Chunk{ID: id, Text: text, Source: "doc.md"}
}

func TestLexicalIndexSearchRanksByRelevance(t *testing.T) {
	ix := NewLexicalIndex()
	ix.Rebuild([]*core.Chunk{
		textChunk(1, "garbage collection happens every tuesday morning"),
		textChunk(2, "garbage bags must be transparent; garbage separation rules apply"),
		textChunk(3, "parking permits are issued at city hall"),
	})

	results, err := ix.Search(context.Background(), "garbage collection", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Chunk 1 matches both terms, chunk 2 only one.
	assert.Equal(t, core.ID(1), results[0].Chunk.ID)
	assert.Equal(t, core.ID(2), results[1].Chunk.ID)
	assert.Greater(t, results[0].RawScore, results[1].RawScore)
	for _, res := range results {
		assert.Equal(t, core.OriginLexical, res.Origin)
	}
}

func TestLexicalIndexSearchNoMatch(t *testing.T) {
	ix := NewLexicalIndex()
	ix.Rebuild([]*core.Chunk{textChunk(1, "parking permits are issued at city hall")})

	results, err := ix.Search(context.Background(), "garbage collection", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalIndexSearchStopWordsOnlyQuery(t *testing.T) {
	ix := NewLexicalIndex()
	ix.Rebuild([]*core.Chunk{textChunk(1, "parking permits")})

	results, err := ix.Search(context.Background(), "the and of", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalIndexSearchRespectsTopK(t *testing.T) {
	ix := NewLexicalIndex()
	ix.Rebuild([]*core.Chunk{
		textChunk(1, "recycling schedule for plastics"),
		textChunk(2, "recycling center opening hours"),
		textChunk(3, "recycling fee waiver form"),
	})

	results, err := ix.Search(context.Background(), "recycling", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestLexicalIndexSearchIsCaseInsensitive(t *testing.T) {
	ix := NewLexicalIndex()
	ix.Rebuild([]*core.Chunk{textChunk(1, "Garbage Collection schedule")})

	results, err := ix.Search(context.Background(), "GARBAGE collection", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestLexicalIndexAddReplacesExistingDoc(t *testing.T) {
	ix := NewLexicalIndex()
	ix.Rebuild([]*core.Chunk{textChunk(1, "old text about parking")})
	ix.Add([]*core.Chunk{textChunk(1, "new text about recycling")})

	require.Equal(t, 1, ix.Len())

	results, err := ix.Search(context.Background(), "parking", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = ix.Search(context.Background(), "recycling", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestLexicalIndexDeterministicTieBreak(t *testing.T) {
	ix := NewLexicalIndex()
	ix.Rebuild([]*core.Chunk{
		textChunk(7, "identical passage text"),
		textChunk(3, "identical passage text"),
	})

	for i := 0; i < 5; i++ {
		results, err := ix.Search(context.Background(), "passage", 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, core.ID(3), results[0].Chunk.ID)
		assert.Equal(t, core.ID(7), results[1].Chunk.ID)
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("The Garbage, collection: is on Tuesday!")
	assert.Equal(t, []string{"garbage", "collection", "tuesday"}, tokens)
}

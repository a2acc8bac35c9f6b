package reembed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civica/policyrag/ai/mock"
	"github.com/civica/policyrag/core"
	"github.com/civica/policyrag/storage"
	badgerstore "github.com/civica/policyrag/storage/badger"
)

func newTestStore(t *testing.T, chunkCount int) storage.ChunkRepository {
	t.Helper()

	chunkRepo, registryRepo, boostRepo, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		boostRepo.Close()
		registryRepo.Close()
		chunkRepo.Close()
		backend.Close()
	})

	chunks := make([]*core.Chunk, chunkCount)
	for i := range chunks {
		chunks[i] = &core.Chunk{
			Text:   fmt.Sprintf("Policy passage number %d about municipal services.", i),
			Source: "policies.md",
			Vector: []float32{1, 0, 0},
		}
	}
	if chunkCount > 0 {
		_, err = chunkRepo.AddChunks(context.Background(), chunks...)
		require.NoError(t, err)
	}
	return chunkRepo
}

func TestReembedderRun(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t, 7)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{0, 6, 8}
		}
		return vectors, nil
	}

	var out bytes.Buffer
	reembedder := NewReembedder(repo, embedder, &Config{
		BatchSize:      3,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}, &out)

	require.NoError(t, reembedder.Run(ctx))
	assert.Contains(t, out.String(), "Reembedding complete")

	// Every stored vector should be the new one, unit-normalized.
	err := repo.AllChunks(ctx, func(chunk *core.Chunk) error {
		require.Len(t, chunk.Vector, 3)
		assert.InDelta(t, 0.0, chunk.Vector[0], 1e-6)
		assert.InDelta(t, 0.6, chunk.Vector[1], 1e-6)
		assert.InDelta(t, 0.8, chunk.Vector[2], 1e-6)
		return nil
	})
	require.NoError(t, err)
}

func TestReembedderRun_EmptyStore(t *testing.T) {
	repo := newTestStore(t, 0)

	var out bytes.Buffer
	reembedder := NewReembedder(repo, mock.NewMockEmbedder(), nil, &out)

	require.NoError(t, reembedder.Run(context.Background()))
	assert.Contains(t, out.String(), "No chunks found")
}

func TestReembedderRun_EmbedderFailure(t *testing.T) {
	repo := newTestStore(t, 3)

	boom := errors.New("embedding service down")
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, boom
	}

	var out bytes.Buffer
	reembedder := NewReembedder(repo, embedder, &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}, &out)

	err := reembedder.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestChunkIteratorBatches(t *testing.T) {
	repo := newTestStore(t, 5)

	iterator := NewChunkIterator(repo, 2)
	var batchSizes []int
	err := iterator.ForEach(context.Background(), func(chunks []*core.Chunk) error {
		batchSizes = append(batchSizes, len(chunks))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, batchSizes)
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	repo := newTestStore(t, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}

	processor := NewBatchProcessor(repo, embedder, 1, time.Millisecond)
	chunks := []*core.Chunk{
		{ID: 1, Text: "a", Source: "a.md"},
		{ID: 2, Text: "b", Source: "a.md"},
	}
	err := processor.Process(context.Background(), chunks)
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
}

package badger

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civica/policyrag/core"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	tmpFile := t.TempDir() + "/file.txt"
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	backend, err := OpenBackend(tmpFile, false)
	assert.Error(t, err)
	assert.Nil(t, backend)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestBackendPersistence(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)

	chunkRepo, err := NewChunkRepository(backend)
	require.NoError(t, err)

	added, err := chunkRepo.AddChunks(ctx, &core.Chunk{
		Text:   "Persisted across reopen.",
		Source: "a.md",
	})
	require.NoError(t, err)
	require.NoError(t, chunkRepo.Close())
	require.NoError(t, backend.Close())

	reopened, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	defer reopened.Close()

	chunkRepo, err = NewChunkRepository(reopened)
	require.NoError(t, err)
	defer chunkRepo.Close()

	chunk, err := chunkRepo.GetChunk(ctx, added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted across reopen.", chunk.Text)
}

func TestBackendDropPrefix(t *testing.T) {
	chunkRepo, registryRepo, boostRepo, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer func() { boostRepo.Close(); registryRepo.Close(); chunkRepo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = chunkRepo.AddChunks(ctx, &core.Chunk{Text: "doomed", Source: "a.md"})
	require.NoError(t, err)

	require.NoError(t, backend.DropPrefix([]byte(chunkPrefix+":")))

	count, err := chunkRepo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

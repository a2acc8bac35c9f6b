package storage

import (
	"context"

	"github.com/civica/policyrag/core"
)

// ChunkRepository provides durable storage for indexed chunks.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// AddChunks adds one or more chunks to storage.
	// For chunks with ID=0, derives the ID from text and source content.
	// Sets IndexedAt if not already set.
	// Returns the chunks with IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// AllChunks iterates every stored chunk, used to rebuild the in-memory
	// indexes at startup. Chunks are yielded in key order.
	AllChunks(ctx context.Context, fn func(chunk *core.Chunk) error) error

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// ReplaceAll atomically replaces the entire chunk set. Used by full
	// index rebuilds; the old records never coexist with the new ones.
	ReplaceAll(ctx context.Context, chunks []*core.Chunk) ([]*core.Chunk, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// RegistryRepository persists the source-document registry used by the
// index synchronizer.
type RegistryRepository interface {
	// Load retrieves all registry entries keyed by source.
	Load(ctx context.Context) (map[string]core.RegistryEntry, error)

	// Put creates or updates a single registry entry.
	Put(ctx context.Context, entry core.RegistryEntry) error

	// ReplaceAll rewrites the registry wholesale, as happens after a full
	// rebuild or a scan cycle.
	ReplaceAll(ctx context.Context, entries map[string]core.RegistryEntry) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// BoostRepository persists the administrator-defined boost rule set as a
// single durable record. Save replaces the whole set; callers serialize
// load-modify-save cycles themselves.
type BoostRepository interface {
	// Load retrieves the committed rule set. Returns an empty set when none
	// was ever saved.
	Load(ctx context.Context) (*core.BoostRuleSet, error)

	// Save atomically replaces the committed rule set.
	Save(ctx context.Context, rules *core.BoostRuleSet) error

	// Close closes the storage backend and releases resources.
	Close() error
}

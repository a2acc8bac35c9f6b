package index

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/civica/policyrag/core"
)

// vectorEntry holds an indexed chunk with its precomputed vector norm.
type vectorEntry struct {
	chunk *core.Chunk
	norm  float64
}

// VectorIndex is a brute-force cosine-distance index over chunk vectors.
// Rebuild constructs a fresh entry slice and swaps it in under the write
// lock, so concurrent searches always see a consistent snapshot.
type VectorIndex struct {
	mu      sync.RWMutex
	entries []vectorEntry
	dim     int
}

// NewVectorIndex creates an empty vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Rebuild replaces the index contents with the given chunks.
// Chunks without vectors are skipped.
func (ix *VectorIndex) Rebuild(chunks []*core.Chunk) {
	entries := make([]vectorEntry, 0, len(chunks))
	dim := 0
	for _, chunk := range chunks {
		if len(chunk.Vector) == 0 {
			continue
		}
		if dim == 0 {
			dim = len(chunk.Vector)
		}
		entries = append(entries, vectorEntry{
			chunk: chunk,
			norm:  vectorNorm(chunk.Vector),
		})
	}

	ix.mu.Lock()
	ix.entries = entries
	ix.dim = dim
	ix.mu.Unlock()
}

// Add appends chunks to the index without disturbing existing entries.
func (ix *VectorIndex) Add(chunks []*core.Chunk) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, chunk := range chunks {
		if len(chunk.Vector) == 0 {
			continue
		}
		if ix.dim == 0 {
			ix.dim = len(chunk.Vector)
		}
		ix.entries = append(ix.entries, vectorEntry{
			chunk: chunk,
			norm:  vectorNorm(chunk.Vector),
		})
	}
}

// Len returns the number of indexed chunks.
func (ix *VectorIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Search returns the topK chunks closest to the query vector, ordered by
// ascending cosine distance. RawScore holds the distance in [0, 2].
func (ix *VectorIndex) Search(ctx context.Context, query []float32, topK int) ([]core.Candidate, error) {
	if len(query) == 0 {
		return nil, ErrEmptyVector
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.entries) == 0 {
		return []core.Candidate{}, nil
	}
	if ix.dim != 0 && len(query) != ix.dim {
		return nil, ErrDimensionMismatch
	}

	queryNorm := vectorNorm(query)
	if queryNorm == 0 {
		return nil, ErrEmptyVector
	}

	candidates := make([]core.Candidate, 0, len(ix.entries))
	for _, entry := range ix.entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates = append(candidates, core.Candidate{
			Chunk:    entry.chunk,
			RawScore: cosineDistance(query, queryNorm, entry.chunk.Vector, entry.norm),
			Origin:   core.OriginVector,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RawScore < candidates[j].RawScore
	})
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// cosineDistance computes 1 - cosine similarity, yielding a value in [0, 2]
// where 0 means identical direction.
func cosineDistance(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 1.0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return 1.0 - dot/(aNorm*bNorm)
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from content so that identical chunk text from the same
// source always maps to the same entry.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// HashSampleSize bounds how much of a document feeds the registry content hash.
const HashSampleSize = 10 * 1024

// ContentHash returns a hex BLAKE2b digest over at most the first
// HashSampleSize bytes of text. Used by the index synchronizer to detect
// modified source documents.
func ContentHash(text string) string {
	sample := text
	if len(sample) > HashSampleSize {
		sample = sample[:HashSampleSize]
	}
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(sample))
	sum := h.Sum(nil)
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(sum)*2)
	for i, b := range sum {
		out[i*2] = hexdigits[b>>4]
		out[i*2+1] = hexdigits[b&0x0f]
	}
	return string(out)
}

// Chunk is one indexed passage of a source document. Immutable once created;
// indexes reference chunks by ID and never copy the text.
type Chunk struct {
	ID        ID
	Text      string
	Source    string // source document key, usually the file base name
	Position  int    // chunk ordinal within the source document
	Vector    []float32
	IndexedAt time.Time
}

// SignalOrigin identifies which recall signal proposed a candidate.
type SignalOrigin int

const (
	// OriginVector marks a candidate found by semantic similarity only.
	OriginVector SignalOrigin = iota + 1
	// OriginLexical marks a candidate found by term overlap only.
	OriginLexical
	// OriginBoth marks a candidate found by both signals.
	OriginBoth
)

func (o SignalOrigin) String() string {
	switch o {
	case OriginVector:
		return "vector"
	case OriginLexical:
		return "lexical"
	case OriginBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Candidate is a chunk proposed by one or both recall signals, before
// reranking. For vector and both origins RawScore is a cosine distance
// (lower is better); for lexical-only candidates it is a lexical
// relevance score (higher is better).
type Candidate struct {
	Chunk    *Chunk
	RawScore float64
	Origin   SignalOrigin
}

// RankedResult is a final, caller-facing result. FinalScore is
// similarity-style (higher is better) and non-increasing across a returned
// sequence. Distance carries the boost-adjusted vector distance where one
// exists.
type RankedResult struct {
	Chunk         *Chunk
	FinalScore    float64
	Distance      float64
	LocationScore float64
	BoostApplied  bool
}

// Chunks extracts the chunk from each ranked result, preserving order.
func Chunks(results []RankedResult) []*Chunk {
	chunks := make([]*Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}
	return chunks
}

// BoostTarget selects what a boost rule is keyed by.
type BoostTarget string

const (
	// BoostTargetSource keys a boost by source document.
	BoostTargetSource BoostTarget = "source"
	// BoostTargetCategory keys a boost by inferred category.
	BoostTargetCategory BoostTarget = "category"
)

// BoostRuleSet is the full set of administrator-defined score adjustments.
// Weights are non-negative and are subtracted from distance-style scores.
// A weight of zero is equivalent to rule absence.
type BoostRuleSet struct {
	Source   map[string]float64
	Category map[string]float64
}

// NewBoostRuleSet returns an empty rule set with both maps allocated.
func NewBoostRuleSet() *BoostRuleSet {
	return &BoostRuleSet{
		Source:   make(map[string]float64),
		Category: make(map[string]float64),
	}
}

// Rules returns the map for the given target type, or nil for an unknown target.
func (b *BoostRuleSet) Rules(target BoostTarget) map[string]float64 {
	switch target {
	case BoostTargetSource:
		return b.Source
	case BoostTargetCategory:
		return b.Category
	default:
		return nil
	}
}

// Clone returns a deep copy, used to hand callers a snapshot that cannot
// alias the engine's committed state.
func (b *BoostRuleSet) Clone() *BoostRuleSet {
	clone := NewBoostRuleSet()
	for k, v := range b.Source {
		clone.Source[k] = v
	}
	for k, v := range b.Category {
		clone.Category[k] = v
	}
	return clone
}

// RegistryEntry records one indexed source document. Entries are created on
// first index and updated when a change is detected. Entries for files later
// deleted from disk are left in place; see the syncer package.
type RegistryEntry struct {
	Source      string
	FilePath    string
	Mtime       int64 // unix seconds of the source file's last modification
	ContentHash string
}

// Location is a parsed caller location. Fields may be empty; a location
// without at least a city does not participate in ranking.
type Location struct {
	Province string
	City     string
	District string
}

// HasCity reports whether the location is specific enough for geo reranking.
func (l Location) HasCity() bool {
	return l.City != ""
}

// Stats summarizes the knowledge base for operators.
type Stats struct {
	TotalDocuments   int
	TotalChunks      int
	IndexLocation    string
	RegistryLocation string
	Documents        []DocumentInfo
	Boosts           *BoostRuleSet
}

// DocumentInfo is one registry row in Stats.
type DocumentInfo struct {
	Source       string
	FilePath     string
	LastModified int64
}

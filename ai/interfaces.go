package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// PairScorer scores (query, passage) pairs with a pairwise relevance model.
// Higher score means more relevant. Implementations must be thread-safe.
type PairScorer interface {
	// ScorePairs scores each passage against the query.
	// The returned slice contains scores in the same order as the input texts.
	ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder and PairScorer
// instances, ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// PairScorer returns the pairwise relevance scoring service, or nil when
	// the provider does not carry a scoring model. A nil scorer is a
	// capability gap decided at startup, not an error; callers fall back to
	// the deterministic heuristic reranker.
	PairScorer() PairScorer

	// Close releases resources held by the provider and its services.
	Close() error
}

package mock

import (
	"github.com/civica/policyrag/ai"
)

// MockProvider is a test double for ai.Provider that aggregates the mock
// embedder and scorer.
type MockProvider struct {
	embedder *MockEmbedder
	scorer   *MockScorer
	closed   bool
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider with deterministic mock services.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		scorer:   NewMockScorer(),
	}
}

// NewMockProviderWithoutScorer creates a provider that lacks the pairwise
// scoring capability, for exercising heuristic-fallback paths.
func NewMockProviderWithoutScorer() *MockProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// PairScorer returns the mock scoring service, or nil when constructed
// without one.
func (p *MockProvider) PairScorer() ai.PairScorer {
	if p.scorer == nil {
		return nil
	}
	return p.scorer
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockEmbedder returns the concrete embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockScorer returns the concrete scorer for test assertions.
func (p *MockProvider) GetMockScorer() *MockScorer {
	return p.scorer
}

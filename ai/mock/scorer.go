package mock

import (
	"context"
	"strings"
)

// MockScorer is a test double for ai.PairScorer.
// The default behavior scores by case-insensitive term overlap, which is
// deterministic and roughly order-preserving for relevance.
type MockScorer struct {
	// ScorePairsFunc is called by ScorePairs if set.
	ScorePairsFunc func(ctx context.Context, query string, texts []string) ([]float64, error)

	callCount int
}

// NewMockScorer creates a mock scorer with default deterministic behavior.
func NewMockScorer() *MockScorer {
	return &MockScorer{}
}

// ScorePairs scores each text by the fraction of query terms it contains.
func (m *MockScorer) ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error) {
	m.callCount++

	if m.ScorePairsFunc != nil {
		return m.ScorePairsFunc(ctx, query, texts)
	}

	terms := strings.Fields(strings.ToLower(query))
	scores := make([]float64, len(texts))
	for i, text := range texts {
		if len(terms) == 0 {
			continue
		}
		lower := strings.ToLower(text)
		hits := 0
		for _, term := range terms {
			if strings.Contains(lower, term) {
				hits++
			}
		}
		scores[i] = float64(hits) / float64(len(terms))
	}
	return scores, nil
}

// CallCount returns the number of times ScorePairs was called.
func (m *MockScorer) CallCount() int {
	return m.callCount
}

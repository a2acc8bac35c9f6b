package rerank

import (
	"context"
	"log/slog"

	"github.com/civica/policyrag/ai"
	"github.com/civica/policyrag/core"
)

// passageLimit is the number of characters of each passage submitted to
// the scorer. Longer passages are truncated.
const passageLimit = 512

// ModelReranker scores (query, passage) pairs with an ai.PairScorer.
type ModelReranker struct {
	scorer ai.PairScorer
	logger *slog.Logger
}

var _ Reranker = (*ModelReranker)(nil)

// ModelOption configures a ModelReranker.
type ModelOption func(*ModelReranker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ModelOption {
	return func(r *ModelReranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewModelReranker creates a model-backed reranker.
func NewModelReranker(scorer ai.PairScorer, opts ...ModelOption) (*ModelReranker, error) {
	if scorer == nil {
		return nil, ErrScorerRequired
	}

	r := &ModelReranker{
		scorer: scorer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Rerank submits all candidate passages to the scorer in one call and
// orders results by the returned scores.
func (r *ModelReranker) Rerank(ctx context.Context, query string, candidates []core.Candidate, topK int) ([]core.RankedResult, error) {
	if len(candidates) == 0 {
		return []core.RankedResult{}, nil
	}

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = truncatePassage(c.Chunk.Text)
	}

	scores, err := r.scorer.ScorePairs(ctx, query, passages)
	if err != nil {
		r.logger.Error("pair scoring failed", "query", query, "passages", len(passages), "err", err)
		return nil, err
	}
	if len(scores) != len(candidates) {
		r.logger.Error("scorer returned wrong score count", "want", len(candidates), "got", len(scores))
		return nil, ErrScoreCountMismatch
	}

	results := make([]core.RankedResult, 0, len(candidates))
	for i, c := range candidates {
		results = append(results, core.RankedResult{
			Chunk:      c.Chunk,
			FinalScore: scores[i],
			Distance:   c.RawScore,
		})
	}
	return rank(results, topK), nil
}

func truncatePassage(text string) string {
	if len(text) > passageLimit {
		return text[:passageLimit]
	}
	return text
}

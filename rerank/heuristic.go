package rerank

import (
	"context"
	"math"
	"strings"

	"github.com/civica/policyrag/core"
	"github.com/civica/policyrag/index"
)

// Scoring weights and shape constants for the heuristic signal.
const (
	overlapWeight  = 0.6
	lengthWeight   = 0.2
	positionWeight = 0.2

	idealLength      = 500
	minLengthPenalty = 0.5
	earlyWindow      = 100
	earlyBonus       = 0.2
)

// HeuristicReranker scores candidates without a model: query-term overlap,
// a penalty for passages far from the ideal length, and a bonus when a
// query term appears near the start of the passage.
type HeuristicReranker struct{}

var _ Reranker = (*HeuristicReranker)(nil)

// NewHeuristicReranker creates a heuristic reranker.
func NewHeuristicReranker() *HeuristicReranker {
	return &HeuristicReranker{}
}

// Rerank scores every candidate and returns the topK best. It never
// fails; the error return satisfies the Reranker interface.
func (r *HeuristicReranker) Rerank(ctx context.Context, query string, candidates []core.Candidate, topK int) ([]core.RankedResult, error) {
	terms := index.Tokenize(query)

	results := make([]core.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, core.RankedResult{
			Chunk:      c.Chunk,
			FinalScore: heuristicScore(terms, c.Chunk.Text),
			Distance:   c.RawScore,
		})
	}
	return rank(results, topK), nil
}

// heuristicScore is the weighted sum of the three signals.
func heuristicScore(queryTerms []string, text string) float64 {
	lower := strings.ToLower(text)

	overlap := termOverlap(queryTerms, lower)
	length := lengthPenalty(len(text))
	position := earlyPositionBonus(queryTerms, lower)

	return overlapWeight*overlap + lengthWeight*length + positionWeight*position
}

// termOverlap returns the fraction of query terms present in the passage.
func termOverlap(queryTerms []string, lowerText string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	hits := 0
	for _, term := range queryTerms {
		if strings.Contains(lowerText, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTerms))
}

// lengthPenalty is 1.0 at the ideal passage length and falls off
// linearly with the distance from it, clamped to [0.5, 1.0].
func lengthPenalty(length int) float64 {
	penalty := 1 - math.Abs(float64(length-idealLength))/float64(idealLength)
	return math.Max(minLengthPenalty, math.Min(1, penalty))
}

// earlyPositionBonus awards a flat bonus when any query term occurs
// within the opening window of the passage.
func earlyPositionBonus(queryTerms []string, lowerText string) float64 {
	window := lowerText
	if len(window) > earlyWindow {
		window = window[:earlyWindow]
	}
	for _, term := range queryTerms {
		if strings.Contains(window, term) {
			return earlyBonus
		}
	}
	return 0
}

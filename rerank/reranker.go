package rerank

import (
	"context"
	"sort"

	"github.com/civica/policyrag/core"
)

// Reranker reorders candidates by relevance to the query and returns up
// to topK ranked results, best first.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []core.Candidate, topK int) ([]core.RankedResult, error)
}

// rank sorts results by descending final score, then truncates to topK.
// The sort is stable, so score ties keep the incoming fusion order.
func rank(results []core.RankedResult, topK int) []core.RankedResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

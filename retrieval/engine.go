package retrieval

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/civica/policyrag/ai"
	"github.com/civica/policyrag/boost"
	"github.com/civica/policyrag/cache"
	"github.com/civica/policyrag/core"
	"github.com/civica/policyrag/index"
	"github.com/civica/policyrag/location"
	"github.com/civica/policyrag/rerank"
)

// Defaults for the query pipeline.
const (
	DefaultTimeout             = 3 * time.Second
	DefaultSimilarityThreshold = 0.6
	DefaultLocationWeight      = 0.3
)

// Reason explains an empty result set.
type Reason string

const (
	// ReasonOK means candidates were found.
	ReasonOK Reason = "ok"
	// ReasonNoMatch means both signals ran but nothing matched.
	ReasonNoMatch Reason = "no_match"
	// ReasonNoSignal means both signals failed or timed out.
	ReasonNoSignal Reason = "no_signal"
)

// Retrieval is the fused candidate set of one query, with per-signal
// health so callers can tell a thin corpus from a degraded search.
type Retrieval struct {
	Candidates []core.Candidate
	VectorOK   bool
	LexicalOK  bool
	Reason     Reason
}

// Engine coordinates the full retrieval pipeline.
type Engine struct {
	embedder     ai.Embedder
	vectorIndex  *index.VectorIndex
	lexicalIndex *index.LexicalIndex
	reranker     rerank.Reranker
	boosts       *boost.Engine
	matcher      *location.Matcher
	results      cache.Store
	monitor      Monitor

	pool                *ants.Pool
	timeout             time.Duration
	similarityThreshold float64
	locationWeight      float64
	dedupeBySource      bool
	logger              *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithTimeout sets the fan-out wall-clock timeout.
// Default is DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) error {
		if timeout > 0 {
			e.timeout = timeout
		}
		return nil
	}
}

// WithSimilarityThreshold sets the vector similarity threshold in [0,1].
// Default is DefaultSimilarityThreshold.
func WithSimilarityThreshold(threshold float64) Option {
	return func(e *Engine) error {
		if threshold >= 0 && threshold <= 1 {
			e.similarityThreshold = threshold
		}
		return nil
	}
}

// WithLocationWeight sets the blend weight for location reranking.
// Default is DefaultLocationWeight.
func WithLocationWeight(weight float64) Option {
	return func(e *Engine) error {
		if weight >= 0 && weight <= 1 {
			e.locationWeight = weight
		}
		return nil
	}
}

// WithBoostEngine attaches a boost engine. Without one, no boosts apply.
func WithBoostEngine(boosts *boost.Engine) Option {
	return func(e *Engine) error {
		e.boosts = boosts
		return nil
	}
}

// WithLocationMatcher attaches a location matcher. Without one, caller
// locations are ignored.
func WithLocationMatcher(matcher *location.Matcher) Option {
	return func(e *Engine) error {
		e.matcher = matcher
		return nil
	}
}

// WithCache attaches a result cache. Without one, every query retrieves.
func WithCache(store cache.Store) Option {
	return func(e *Engine) error {
		e.results = store
		return nil
	}
}

// WithMonitor attaches a pipeline observer. Default is a no-op.
func WithMonitor(monitor Monitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// WithoutSourceDedup disables the one-result-per-source rule.
func WithoutSourceDedup() Option {
	return func(e *Engine) error {
		e.dedupeBySource = false
		return nil
	}
}

// WithPoolSize sets the signal fan-out pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 2.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 2 {
			size = 2
		}
		if e.pool != nil {
			e.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a retrieval engine.
func NewEngine(
	embedder ai.Embedder,
	vectorIndex *index.VectorIndex,
	lexicalIndex *index.LexicalIndex,
	reranker rerank.Reranker,
	opts ...Option,
) (*Engine, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if vectorIndex == nil || lexicalIndex == nil {
		return nil, ErrIndexRequired
	}
	if reranker == nil {
		return nil, ErrRerankerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 2 {
		poolSize = 2
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		embedder:            embedder,
		vectorIndex:         vectorIndex,
		lexicalIndex:        lexicalIndex,
		reranker:            reranker,
		pool:                pool,
		timeout:             DefaultTimeout,
		similarityThreshold: DefaultSimilarityThreshold,
		locationWeight:      DefaultLocationWeight,
		dedupeBySource:      true,
		monitor:             &noopMonitor{},
		logger:              slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}

	return e, nil
}

// Release releases the worker pool. The engine should not be used after
// calling Release.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

type signalResult struct {
	candidates []core.Candidate
	err        error
}

// Retrieve runs both recall signals concurrently and returns the fused,
// threshold-filtered candidate set. Each signal gets 2*topK slots so the
// reranker has room to reorder. One failed signal degrades the result;
// both failing yields an empty set with ReasonNoSignal.
func (e *Engine) Retrieve(ctx context.Context, query string, topK int) (*Retrieval, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}
	if err := core.ValidateTopK(topK); err != nil {
		return nil, err
	}
	if e.vectorIndex.Len() == 0 && e.lexicalIndex.Len() == 0 {
		return nil, ErrNotInitialized
	}

	fetch := 2 * topK

	// Buffered size 1 so a branch finishing after the deadline can drop
	// its result without blocking or panicking.
	vectorCh := make(chan signalResult, 1)
	lexicalCh := make(chan signalResult, 1)

	e.submit(vectorCh, func() signalResult {
		vec, err := e.embedder.EmbedText(ctx, query)
		if err != nil {
			return signalResult{err: err}
		}
		candidates, err := e.vectorIndex.Search(ctx, vec, fetch)
		return signalResult{candidates: candidates, err: err}
	})
	e.submit(lexicalCh, func() signalResult {
		candidates, err := e.lexicalIndex.Search(ctx, query, fetch)
		return signalResult{candidates: candidates, err: err}
	})

	deadline := time.Now().Add(e.timeout)
	vector := e.await(vectorCh, deadline, "vector", query)
	lexical := e.await(lexicalCh, deadline, "lexical", query)
	e.monitor.AfterVectorRecall(vector.candidates, vector.err)
	e.monitor.AfterLexicalRecall(lexical.candidates, lexical.err)

	retrieval := &Retrieval{
		VectorOK:  vector.err == nil,
		LexicalOK: lexical.err == nil,
	}
	if !retrieval.VectorOK && !retrieval.LexicalOK {
		retrieval.Candidates = []core.Candidate{}
		retrieval.Reason = ReasonNoSignal
		return retrieval, nil
	}

	fused := fuse(vector.candidates, lexical.candidates)
	e.monitor.AfterFusion(fused)
	fused = e.applyThreshold(fused, topK)
	e.monitor.AfterThreshold(fused)
	retrieval.Candidates = fused
	if len(fused) == 0 {
		retrieval.Reason = ReasonNoMatch
	} else {
		retrieval.Reason = ReasonOK
	}
	return retrieval, nil
}

// Search runs the full hybrid pipeline: retrieve, rerank, boost,
// location-adjust, dedupe. An empty retrieval returns an empty slice,
// not an error.
func (e *Engine) Search(ctx context.Context, query string, topK int, loc core.Location) ([]core.RankedResult, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}
	if err := core.ValidateTopK(topK); err != nil {
		return nil, err
	}

	e.monitor.Start(query)

	key := cache.Key(query, topK, loc.City)
	if e.results != nil {
		if cached, ok := e.results.Get(ctx, key); ok {
			e.logger.Debug("cache hit", "query", query, "topK", topK)
			e.monitor.Finish(cached)
			return cached, nil
		}
	}

	retrieval, err := e.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if len(retrieval.Candidates) == 0 {
		e.logger.Info("query retrieved nothing", "query", query, "reason", retrieval.Reason)
		e.monitor.Finish(nil)
		return []core.RankedResult{}, nil
	}

	results, err := e.reranker.Rerank(ctx, query, retrieval.Candidates, 0)
	if err != nil {
		return nil, err
	}
	e.monitor.AfterRerank(results)

	if e.boosts != nil {
		results = e.boosts.ApplyToResults(results)
		sortByFinalScore(results)
	}
	if e.matcher != nil && loc.HasCity() {
		results = e.matcher.Rerank(results, loc, e.locationWeight)
	}
	if e.dedupeBySource {
		results = dedupeBySource(results)
	}
	if len(results) > topK {
		results = results[:topK]
	}

	if e.results != nil {
		e.results.Set(ctx, key, results)
	}
	e.monitor.Finish(results)
	return results, nil
}

// SearchWithScore runs the vector-only scored path: a wide vector scan,
// boosts on distance, ascending-distance order, source dedupe, and an
// optional location adjustment. It asks for 3*topK so dedupe and boosts
// still leave topK distinct sources.
func (e *Engine) SearchWithScore(ctx context.Context, query string, topK int, loc core.Location) ([]core.RankedResult, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}
	if err := core.ValidateTopK(topK); err != nil {
		return nil, err
	}
	if e.vectorIndex.Len() == 0 {
		return nil, ErrNotInitialized
	}

	vec, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}
	candidates, err := e.vectorIndex.Search(ctx, vec, 3*topK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []core.RankedResult{}, nil
	}

	boosted := candidates
	if e.boosts != nil {
		boosted = e.boosts.ApplyBoosts(candidates)
	}

	results := make([]core.RankedResult, 0, len(boosted))
	for i, c := range boosted {
		score := 1 - c.RawScore
		if score < 0 {
			score = 0
		}
		results = append(results, core.RankedResult{
			Chunk:        c.Chunk,
			FinalScore:   score,
			Distance:     c.RawScore,
			BoostApplied: c.RawScore != candidates[i].RawScore,
		})
	}
	sortByFinalScore(results)

	if e.matcher != nil && loc.HasCity() {
		results = e.matcher.Rerank(results, loc, e.locationWeight)
	}
	if e.dedupeBySource {
		results = dedupeBySource(results)
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// submit runs fn on the pool, falling back to inline execution when the
// pool rejects the task.
func (e *Engine) submit(out chan<- signalResult, fn func() signalResult) {
	err := e.pool.Submit(func() {
		out <- fn()
	})
	if err != nil {
		out <- fn()
	}
}

// await waits for one signal or the shared absolute deadline. The
// deadline is a point in time rather than a channel so that once it
// passes, every remaining await returns immediately instead of blocking
// on a tick that was already consumed. A late result stays in the
// buffered channel and is garbage collected with it.
func (e *Engine) await(ch <-chan signalResult, deadline time.Time, signal, query string) signalResult {
	select {
	case res := <-ch:
		if res.err != nil {
			e.logger.Warn("retrieval signal failed", "signal", signal, "query", query, "err", res.err)
		}
		return res
	case <-time.After(time.Until(deadline)):
		e.logger.Warn("retrieval signal timed out", "signal", signal, "query", query, "timeout", e.timeout)
		return signalResult{err: context.DeadlineExceeded}
	}
}

// fuse merges the signal outputs, preferring the vector candidate when a
// chunk appears in both. Vector candidates come first in ascending
// distance, then lexical-only candidates in their relevance order.
func fuse(vector, lexical []core.Candidate) []core.Candidate {
	fused := make([]core.Candidate, 0, len(vector)+len(lexical))
	seen := make(map[core.ID]int, len(vector))

	for _, c := range vector {
		seen[c.Chunk.ID] = len(fused)
		fused = append(fused, c)
	}
	for _, c := range lexical {
		if at, dup := seen[c.Chunk.ID]; dup {
			fused[at].Origin = core.OriginBoth
			continue
		}
		fused = append(fused, c)
	}
	return fused
}

// applyThreshold drops vector candidates whose distance exceeds
// 1 - similarityThreshold. When the filter would leave fewer than topK
// while the pool has more, the best dropped candidates are restored in
// ascending distance, so a strict threshold never starves a query
// against a non-empty corpus.
func (e *Engine) applyThreshold(candidates []core.Candidate, topK int) []core.Candidate {
	maxDistance := 1 - e.similarityThreshold

	kept := make([]core.Candidate, 0, len(candidates))
	var dropped []core.Candidate
	for _, c := range candidates {
		if c.Origin != core.OriginLexical && c.RawScore > maxDistance {
			dropped = append(dropped, c)
			continue
		}
		kept = append(kept, c)
	}

	if len(kept) < topK && len(dropped) > 0 {
		sort.SliceStable(dropped, func(i, j int) bool {
			return dropped[i].RawScore < dropped[j].RawScore
		})
		for _, c := range dropped {
			if len(kept) >= topK {
				break
			}
			kept = append(kept, c)
		}
	}
	return kept
}

// sortByFinalScore orders results best first. The sort is stable so
// score ties keep the incoming fusion order.
func sortByFinalScore(results []core.RankedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
}

// dedupeBySource keeps the best-ranked result per source document.
func dedupeBySource(results []core.RankedResult) []core.RankedResult {
	seen := make(map[string]bool, len(results))
	deduped := make([]core.RankedResult, 0, len(results))
	for _, res := range results {
		if seen[res.Chunk.Source] {
			continue
		}
		seen[res.Chunk.Source] = true
		deduped = append(deduped, res)
	}
	return deduped
}

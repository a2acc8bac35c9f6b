package boost

import (
	"context"
	"log/slog"
	"sync"

	"github.com/civica/policyrag/core"
	"github.com/civica/policyrag/storage"
)

// Engine applies and administers boost rules. The committed rule set is
// cached in memory; mutations serialize on a mutex and persist by
// replacing the whole stored record, so a crash never leaves a partial
// rule set behind.
type Engine struct {
	repository storage.BoostRepository
	classifier CategoryClassifier
	logger     *slog.Logger

	mu    sync.RWMutex
	rules *core.BoostRuleSet
}

// Option configures an Engine.
type Option func(*Engine) error

// WithClassifier sets the category classifier.
// Default is NewKeywordClassifier().
func WithClassifier(classifier CategoryClassifier) Option {
	return func(e *Engine) error {
		if classifier != nil {
			e.classifier = classifier
		}
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

// NewEngine creates a boost engine and loads the committed rule set.
func NewEngine(ctx context.Context, repository storage.BoostRepository, opts ...Option) (*Engine, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	e := &Engine{
		repository: repository,
		classifier: NewKeywordClassifier(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	rules, err := repository.Load(ctx)
	if err != nil {
		return nil, err
	}
	e.rules = rules

	return e, nil
}

// SetBoost creates or updates a boost rule. A zero weight removes the
// rule, since absence and zero are indistinguishable at query time.
// Validation failures leave the committed set untouched.
func (e *Engine) SetBoost(ctx context.Context, target core.BoostTarget, key string, weight float64) error {
	if err := core.ValidateBoostTarget(target); err != nil {
		return err
	}
	if err := core.ValidateBoostWeight(weight); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.rules.Clone()
	if weight == 0 {
		delete(next.Rules(target), key)
	} else {
		next.Rules(target)[key] = weight
	}

	if err := e.repository.Save(ctx, next); err != nil {
		e.logger.Error("failed to persist boost rules", "target", target, "key", key, "err", err)
		return err
	}
	e.rules = next
	e.logger.Info("boost rule set", "target", target, "key", key, "weight", weight)
	return nil
}

// ClearBoost removes a boost rule. Clearing an absent rule is a no-op.
func (e *Engine) ClearBoost(ctx context.Context, target core.BoostTarget, key string) error {
	if err := core.ValidateBoostTarget(target); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.rules.Rules(target)[key]; !ok {
		return nil
	}

	next := e.rules.Clone()
	delete(next.Rules(target), key)

	if err := e.repository.Save(ctx, next); err != nil {
		e.logger.Error("failed to persist boost rules", "target", target, "key", key, "err", err)
		return err
	}
	e.rules = next
	e.logger.Info("boost rule cleared", "target", target, "key", key)
	return nil
}

// GetBoosts returns a snapshot of the committed rule set. The snapshot
// never aliases engine state.
func (e *Engine) GetBoosts() *core.BoostRuleSet {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules.Clone()
}

// ApplyToResults adds the summed matching weights to each result's
// similarity-style final score and marks boosted results. The input
// order is preserved; callers re-sort afterward.
func (e *Engine) ApplyToResults(results []core.RankedResult) []core.RankedResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.rules.Source) == 0 && len(e.rules.Category) == 0 {
		return results
	}

	boosted := make([]core.RankedResult, len(results))
	for i, res := range results {
		total := e.rules.Source[res.Chunk.Source]
		total += e.rules.Category[e.classifier.Classify(res.Chunk)]

		if total > 0 {
			res.FinalScore += total
			res.BoostApplied = true
		}
		boosted[i] = res
	}
	return boosted
}

// ApplyBoosts subtracts the summed matching weights from each
// candidate's distance-style score, clamped at zero. The input order is
// preserved; callers re-sort afterward.
func (e *Engine) ApplyBoosts(candidates []core.Candidate) []core.Candidate {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.rules.Source) == 0 && len(e.rules.Category) == 0 {
		return candidates
	}

	boosted := make([]core.Candidate, len(candidates))
	for i, c := range candidates {
		total := e.rules.Source[c.Chunk.Source]
		total += e.rules.Category[e.classifier.Classify(c.Chunk)]

		if total > 0 {
			c.RawScore -= total
			if c.RawScore < 0 {
				c.RawScore = 0
			}
		}
		boosted[i] = c
	}
	return boosted
}

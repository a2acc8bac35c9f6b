// Copyright 2026 Civica Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package policyrag

import (
	"context"
	"log/slog"
	"sort"

	"github.com/civica/policyrag/ai"
	"github.com/civica/policyrag/ai/openai"
	"github.com/civica/policyrag/boost"
	"github.com/civica/policyrag/cache"
	"github.com/civica/policyrag/config"
	"github.com/civica/policyrag/core"
	"github.com/civica/policyrag/index"
	"github.com/civica/policyrag/loader"
	"github.com/civica/policyrag/location"
	"github.com/civica/policyrag/rerank"
	"github.com/civica/policyrag/retrieval"
	"github.com/civica/policyrag/storage"
	"github.com/civica/policyrag/storage/badger"
	"github.com/civica/policyrag/syncer"
)

// Service is the top-level context object for the policy retrieval
// system. It owns the storage backend, the repositories, the in-memory
// indexes, the AI provider, the cache, and the retrieval engine, and it
// closes them all when Close is called.
type Service struct {
	cfg *config.Config

	backend      *badger.Backend
	chunkRepo    storage.ChunkRepository
	registryRepo storage.RegistryRepository
	boostRepo    storage.BoostRepository

	provider     ai.Provider
	vectorIndex  *index.VectorIndex
	lexicalIndex *index.LexicalIndex
	boosts       *boost.Engine
	matcher      *location.Matcher
	resultCache  cache.Store
	synchronizer *syncer.Synchronizer
	engine       *retrieval.Engine

	logger *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	provider  ai.Provider
	gazetteer location.Gazetteer
	logger    *slog.Logger
	inMemory  bool
}

// WithProvider injects an AI provider instead of constructing the
// OpenAI-compatible one from configuration.
func WithProvider(provider ai.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithGazetteer sets the administrative hierarchy used for location
// parsing and reranking. Without one, location handling is a no-op.
func WithGazetteer(gazetteer location.Gazetteer) ServiceOption {
	return func(o *serviceOptions) {
		o.gazetteer = gazetteer
	}
}

// WithServiceLogger sets the logger for the service and its components.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithInMemoryStorage keeps all storage in memory. Intended for tests.
func WithInMemoryStorage() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// NewService constructs the full retrieval stack from configuration and
// loads the persisted chunks into both indexes. Components are built in
// dependency order; a failure partway through closes everything already
// opened.
func NewService(ctx context.Context, cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Open backend
	backend, err := badger.OpenBackend(cfg.DBPath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create chunk repository
	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create registry repository
	registryRepo, err := badger.NewRegistryRepository(backend)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create boost repository
	boostRepo := badger.NewBoostRepository(backend)

	// Create AI provider unless one was injected
	provider := options.provider
	if provider == nil {
		aiConfig := ai.NewConfig(
			ai.WithEmbeddingHost(cfg.EmbeddingHost),
			ai.WithEmbeddingModel(cfg.EmbeddingModel),
			ai.WithScorerHost(cfg.ScorerHost),
			ai.WithScorerModel(cfg.ScorerModel),
		)
		provider, err = openai.NewProvider(aiConfig)
		if err != nil {
			registryRepo.Close()
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	s := &Service{
		cfg:          cfg,
		backend:      backend,
		chunkRepo:    chunkRepo,
		registryRepo: registryRepo,
		boostRepo:    boostRepo,
		provider:     provider,
		vectorIndex:  index.NewVectorIndex(),
		lexicalIndex: index.NewLexicalIndex(),
		matcher:      location.NewMatcher(options.gazetteer),
		logger:       logger,
	}

	boosts, err := boost.NewEngine(ctx, boostRepo, boost.WithLogger(logger))
	if err != nil {
		s.closePartial()
		return nil, err
	}
	s.boosts = boosts

	s.resultCache = s.buildCache(ctx)

	syncOpts := []syncer.Option{
		syncer.WithLogger(logger),
		syncer.WithChunker(loader.NewChunker()),
	}
	if cfg.PoolSize > 0 {
		syncOpts = append(syncOpts, syncer.WithPoolSize(cfg.PoolSize))
	}
	synchronizer, err := syncer.NewSynchronizer(
		chunkRepo,
		registryRepo,
		loader.NewFilesystem(),
		provider.Embedder(),
		s.vectorIndex,
		s.lexicalIndex,
		syncOpts...,
	)
	if err != nil {
		s.closePartial()
		return nil, err
	}
	s.synchronizer = synchronizer

	if err := synchronizer.LoadIndexes(ctx); err != nil {
		synchronizer.Release()
		s.closePartial()
		return nil, err
	}

	engineOpts := []retrieval.Option{
		retrieval.WithTimeout(cfg.SearchTimeout),
		retrieval.WithSimilarityThreshold(cfg.SimilarityThreshold),
		retrieval.WithLocationWeight(cfg.LocationWeight),
		retrieval.WithBoostEngine(boosts),
		retrieval.WithLocationMatcher(s.matcher),
		retrieval.WithCache(s.resultCache),
		retrieval.WithLogger(logger),
	}
	if cfg.PoolSize > 0 {
		engineOpts = append(engineOpts, retrieval.WithPoolSize(cfg.PoolSize))
	}
	engine, err := retrieval.NewEngine(
		provider.Embedder(),
		s.vectorIndex,
		s.lexicalIndex,
		s.buildReranker(),
		engineOpts...,
	)
	if err != nil {
		synchronizer.Release()
		s.closePartial()
		return nil, err
	}
	s.engine = engine

	return s, nil
}

// buildReranker selects the reranking strategy once at startup. The
// model strategy needs a pairwise scorer; without one the service logs
// the downgrade and uses the deterministic heuristic.
func (s *Service) buildReranker() rerank.Reranker {
	if s.cfg.Reranker == "model" {
		scorer := s.provider.PairScorer()
		if scorer != nil {
			reranker, err := rerank.NewModelReranker(scorer, rerank.WithLogger(s.logger))
			if err == nil {
				return reranker
			}
			s.logger.Warn("model reranker unavailable, using heuristic", "err", err)
		} else {
			s.logger.Warn("model reranker requested but no scorer model configured, using heuristic")
		}
	}
	return rerank.NewHeuristicReranker()
}

// buildCache assembles the tiered result cache. Redis is probed once at
// startup; an unreachable server demotes the cache to the local tier
// without failing construction.
func (s *Service) buildCache(ctx context.Context) cache.Store {
	local, err := cache.NewLocal(cache.WithLocalTTL(s.cfg.CacheTTL))
	if err != nil {
		s.logger.Warn("local cache unavailable, caching disabled", "err", err)
		return nil
	}

	var remote cache.Store
	if s.cfg.RedisAddr != "" {
		redisCache, redisErr := cache.NewRedis(ctx, s.cfg.RedisAddr,
			cache.WithRedisTTL(s.cfg.CacheTTL),
			cache.WithRedisLogger(s.logger),
		)
		if redisErr != nil {
			s.logger.Warn("redis unreachable, using local cache only",
				"addr", s.cfg.RedisAddr, "err", redisErr)
		} else {
			remote = redisCache
		}
	}

	return cache.NewTiered(remote, local, s.logger)
}

// closePartial closes whatever was already constructed, in reverse
// order. Used on construction failure paths.
func (s *Service) closePartial() {
	if s.provider != nil {
		s.provider.Close()
	}
	if s.boostRepo != nil {
		s.boostRepo.Close()
	}
	if s.registryRepo != nil {
		s.registryRepo.Close()
	}
	if s.chunkRepo != nil {
		s.chunkRepo.Close()
	}
	if s.backend != nil {
		s.backend.Close()
	}
}

// Close releases the engine, the synchronizer, the cache, the provider,
// the repositories, and finally the backend.
func (s *Service) Close() error {
	if s.engine != nil {
		s.engine.Release()
	}
	if s.synchronizer != nil {
		s.synchronizer.Release()
	}
	if s.resultCache != nil {
		if err := s.resultCache.Close(); err != nil {
			s.logger.Error("error closing result cache", "err", err)
		}
	}
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.boostRepo.Close(); err != nil {
		s.logger.Error("error closing boost repository", "err", err)
		return err
	}
	if err := s.registryRepo.Close(); err != nil {
		s.logger.Error("error closing registry repository", "err", err)
		return err
	}
	if err := s.chunkRepo.Close(); err != nil {
		s.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Search runs the full pipeline and returns the matched chunks in rank
// order. An empty knowledge base or no surviving candidates yields an
// empty slice, not an error.
func (s *Service) Search(ctx context.Context, query string, topK int, loc core.Location) ([]*core.Chunk, error) {
	results, err := s.engine.Search(ctx, query, topK, loc)
	if err != nil {
		return nil, err
	}
	return core.Chunks(results), nil
}

// SearchWithScore runs the score-transparent pipeline: boosted distances,
// ascending order, deduplicated by source.
func (s *Service) SearchWithScore(ctx context.Context, query string, topK int, loc core.Location) ([]core.RankedResult, error) {
	return s.engine.SearchWithScore(ctx, query, topK, loc)
}

// ParseLocation resolves a free-form location string against the
// configured gazetteer.
func (s *Service) ParseLocation(text string) core.Location {
	return s.matcher.Parse(text)
}

// Sync scans the configured documents directory and reconciles the
// indexes with what changed on disk.
func (s *Service) Sync(ctx context.Context, force bool) (*syncer.SyncResult, error) {
	return s.synchronizer.Sync(ctx, s.cfg.DocsDir, force)
}

// IndexFile indexes a single document without scanning the directory.
func (s *Service) IndexFile(ctx context.Context, path string) (*syncer.IndexFileResult, error) {
	return s.synchronizer.IndexFile(ctx, path)
}

// SetBoost creates or updates a boost rule. Weight 0 removes the rule.
func (s *Service) SetBoost(ctx context.Context, target core.BoostTarget, key string, weight float64) error {
	return s.boosts.SetBoost(ctx, target, key, weight)
}

// ClearBoost removes a boost rule.
func (s *Service) ClearBoost(ctx context.Context, target core.BoostTarget, key string) error {
	return s.boosts.ClearBoost(ctx, target, key)
}

// GetBoosts returns a snapshot of the committed boost rules.
func (s *Service) GetBoosts() *core.BoostRuleSet {
	return s.boosts.GetBoosts()
}

// ClearCache drops all cached result sets from every tier.
func (s *Service) ClearCache(ctx context.Context) error {
	if s.resultCache == nil {
		return nil
	}
	return s.resultCache.Clear(ctx)
}

// CacheStats reports hit and miss counters for the active cache tier.
func (s *Service) CacheStats() cache.Stats {
	if s.resultCache == nil {
		return cache.Stats{}
	}
	return s.resultCache.Stats()
}

// Stats summarizes the knowledge base: document registry, chunk count,
// storage locations, and active boost rules.
func (s *Service) Stats(ctx context.Context) (*core.Stats, error) {
	entries, err := s.registryRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	totalChunks, err := s.chunkRepo.CountChunks(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]core.DocumentInfo, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, core.DocumentInfo{
			Source:       entry.Source,
			FilePath:     entry.FilePath,
			LastModified: entry.Mtime,
		})
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Source < docs[j].Source
	})

	return &core.Stats{
		TotalDocuments:   len(entries),
		TotalChunks:      totalChunks,
		IndexLocation:    s.cfg.DBPath,
		RegistryLocation: s.cfg.DBPath,
		Documents:        docs,
		Boosts:           s.boosts.GetBoosts(),
	}, nil
}

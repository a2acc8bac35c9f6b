package syncer

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/civica/policyrag/ai"
	"github.com/civica/policyrag/core"
	"github.com/civica/policyrag/index"
	"github.com/civica/policyrag/loader"
	"github.com/civica/policyrag/storage"
)

// Default embedding batch shape and retry budget.
const (
	defaultBatchSize      = 32
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second
)

// Synchronizer reconciles source documents with the chunk store and the
// in-memory indexes.
type Synchronizer struct {
	chunkRepository storage.ChunkRepository
	registry        storage.RegistryRepository
	docLoader       loader.DocumentLoader
	chunker         *loader.Chunker
	embedder        ai.Embedder
	vectorIndex     *index.VectorIndex
	lexicalIndex    *index.LexicalIndex

	pool              *ants.Pool
	batchSize         int
	maxRetries        int
	retryBaseDelay    time.Duration
	rebuildOnModified bool
	logger            *slog.Logger
}

// Option configures a Synchronizer.
type Option func(*Synchronizer) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Synchronizer) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithChunker sets the chunker used to split documents.
// Default is loader.NewChunker().
func WithChunker(chunker *loader.Chunker) Option {
	return func(s *Synchronizer) error {
		if chunker != nil {
			s.chunker = chunker
		}
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per batch call.
func WithBatchSize(size int) Option {
	return func(s *Synchronizer) error {
		if size > 0 {
			s.batchSize = size
		}
		return nil
	}
}

// WithRetry sets the embedding retry budget and base backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(s *Synchronizer) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		s.maxRetries = maxAttempts
		s.retryBaseDelay = baseDelay
		return nil
	}
}

// WithRebuildOnModified controls whether a modified document triggers a
// full index rebuild. Default is true; when disabled, modified documents
// are skipped until the next forced sync.
func WithRebuildOnModified(enabled bool) Option {
	return func(s *Synchronizer) error {
		s.rebuildOnModified = enabled
		return nil
	}
}

// NewSynchronizer creates an index synchronizer.
func NewSynchronizer(
	chunkRepository storage.ChunkRepository,
	registry storage.RegistryRepository,
	docLoader loader.DocumentLoader,
	embedder ai.Embedder,
	vectorIndex *index.VectorIndex,
	lexicalIndex *index.LexicalIndex,
	opts ...Option,
) (*Synchronizer, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if docLoader == nil {
		return nil, ErrLoaderRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Synchronizer{
		chunkRepository:   chunkRepository,
		registry:          registry,
		docLoader:         docLoader,
		chunker:           loader.NewChunker(),
		embedder:          embedder,
		vectorIndex:       vectorIndex,
		lexicalIndex:      lexicalIndex,
		pool:              pool,
		batchSize:         defaultBatchSize,
		maxRetries:        defaultMaxRetries,
		retryBaseDelay:    defaultRetryBaseDelay,
		rebuildOnModified: true,
		logger:            slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}

	return s, nil
}

// SyncResult summarizes one sync cycle.
type SyncResult struct {
	NewDocuments       int
	ModifiedDocuments  int
	UnchangedDocuments int
	AddedChunks        int
	Rebuilt            bool
}

// IndexFileResult summarizes a single-file index operation.
type IndexFileResult struct {
	AddedChunks int
	Source      string
}

// LoadIndexes populates both in-memory indexes from the chunk store.
// Called once at startup before the first search.
func (s *Synchronizer) LoadIndexes(ctx context.Context) error {
	var chunks []*core.Chunk
	err := s.chunkRepository.AllChunks(ctx, func(chunk *core.Chunk) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		return err
	}

	s.vectorIndex.Rebuild(chunks)
	s.lexicalIndex.Rebuild(chunks)
	s.logger.Info("indexes loaded from store", "chunks", len(chunks))
	return nil
}

// Sync reconciles the documents under dir with the index. New documents
// are added incrementally; modified documents trigger a full rebuild
// unless disabled. force always rebuilds everything.
func (s *Synchronizer) Sync(ctx context.Context, dir string, force bool) (*SyncResult, error) {
	docs, err := s.docLoader.LoadAll(dir)
	if err != nil {
		return nil, err
	}
	entries, err := s.registry.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	var newDocs, modifiedDocs []loader.Document
	for _, doc := range docs {
		entry, known := entries[doc.Source]
		switch {
		case !known:
			newDocs = append(newDocs, doc)
		case entry.Mtime != doc.Mtime.Unix() || entry.ContentHash != core.ContentHash(doc.Text):
			modifiedDocs = append(modifiedDocs, doc)
		default:
			result.UnchangedDocuments++
		}
	}
	result.NewDocuments = len(newDocs)
	result.ModifiedDocuments = len(modifiedDocs)

	if force || (len(modifiedDocs) > 0 && s.rebuildOnModified) {
		added, err := s.rebuildAll(ctx, docs, entries)
		if err != nil {
			return nil, err
		}
		result.AddedChunks = added
		result.Rebuilt = true
		s.logger.Info("knowledge base rebuilt",
			"documents", len(docs), "chunks", added, "forced", force)
		return result, nil
	}

	if len(modifiedDocs) > 0 {
		for _, doc := range modifiedDocs {
			s.logger.Warn("modified document skipped, rebuild disabled", "source", doc.Source)
		}
	}

	for _, doc := range newDocs {
		added, err := s.indexDocument(ctx, doc)
		if err != nil {
			return nil, err
		}
		result.AddedChunks += added
		entries[doc.Source] = registryEntry(doc)
	}

	// Rewritten wholesale; rows for documents no longer on disk survive.
	if err := s.registry.ReplaceAll(ctx, entries); err != nil {
		return nil, err
	}

	s.logger.Info("knowledge base synced",
		"new", result.NewDocuments,
		"modified", result.ModifiedDocuments,
		"unchanged", result.UnchangedDocuments,
		"addedChunks", result.AddedChunks)
	return result, nil
}

// IndexFile indexes a single document without a directory scan.
func (s *Synchronizer) IndexFile(ctx context.Context, path string) (*IndexFileResult, error) {
	doc, err := s.docLoader.Load(path)
	if err != nil {
		return nil, err
	}

	added, err := s.indexDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Put(ctx, registryEntry(doc)); err != nil {
		return nil, err
	}

	s.logger.Info("document indexed", "source", doc.Source, "chunks", added)
	return &IndexFileResult{AddedChunks: added, Source: doc.Source}, nil
}

// Release releases the worker pool. The synchronizer should not be used
// after calling Release.
func (s *Synchronizer) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// indexDocument chunks, embeds, persists, and indexes one document.
func (s *Synchronizer) indexDocument(ctx context.Context, doc loader.Document) (int, error) {
	chunks, err := s.chunker.Chunk(doc)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	if err := s.embedChunks(ctx, chunks); err != nil {
		return 0, err
	}
	stored, err := s.chunkRepository.AddChunks(ctx, chunks...)
	if err != nil {
		return 0, err
	}

	s.vectorIndex.Add(stored)
	s.lexicalIndex.Add(stored)
	return len(stored), nil
}

// rebuildAll re-chunks and re-embeds every document, replaces the chunk
// store, and swaps both indexes. Returns the new chunk count.
func (s *Synchronizer) rebuildAll(ctx context.Context, docs []loader.Document, entries map[string]core.RegistryEntry) (int, error) {
	var all []*core.Chunk
	for _, doc := range docs {
		chunks, err := s.chunker.Chunk(doc)
		if err != nil {
			return 0, err
		}
		all = append(all, chunks...)
		entries[doc.Source] = registryEntry(doc)
	}

	if err := s.embedChunks(ctx, all); err != nil {
		return 0, err
	}
	stored, err := s.chunkRepository.ReplaceAll(ctx, all)
	if err != nil {
		return 0, err
	}

	s.vectorIndex.Rebuild(stored)
	s.lexicalIndex.Rebuild(stored)

	if err := s.registry.ReplaceAll(ctx, entries); err != nil {
		return 0, err
	}
	return len(stored), nil
}

// embedChunks fills chunk vectors in place, fanning batches out over the
// worker pool. The first batch error wins; remaining batches still run
// to completion before it is returned.
func (s *Synchronizer) embedChunks(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			if err := s.embedBatch(ctx, batch); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	return firstErr
}

func (s *Synchronizer) embedBatch(ctx context.Context, batch []*core.Chunk) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	var vectors [][]float32
	err := retryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = s.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, s.maxRetries, s.retryBaseDelay)
	if err != nil {
		return err
	}
	if len(vectors) != len(batch) {
		return ErrEmbeddingCountMismatch
	}

	for i, chunk := range batch {
		chunk.Vector = normalizeVector(vectors[i])
	}
	return nil
}

func registryEntry(doc loader.Document) core.RegistryEntry {
	return core.RegistryEntry{
		Source:      doc.Source,
		FilePath:    doc.Path,
		Mtime:       doc.Mtime.Unix(),
		ContentHash: core.ContentHash(doc.Text),
	}
}

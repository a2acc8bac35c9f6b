package loader

import (
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/civica/policyrag/core"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 100

// Chunker splits document text into overlapping chunks sized for
// embedding.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*chunkerConfig)

type chunkerConfig struct {
	chunkSize int
	overlap   int
}

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) ChunkerOption {
	return func(c *chunkerConfig) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the overlap between chunks in characters.
func WithChunkOverlap(overlap int) ChunkerOption {
	return func(c *chunkerConfig) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// NewChunker creates a chunker with the given options.
func NewChunker(opts ...ChunkerOption) *Chunker {
	cfg := &chunkerConfig{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.overlap >= cfg.chunkSize {
		cfg.overlap = cfg.chunkSize / 4
	}

	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.chunkSize),
			textsplitter.WithChunkOverlap(cfg.overlap),
		),
	}
}

// Chunk splits a document into chunks. IDs and vectors are left unset;
// storage derives IDs and the syncer fills vectors.
func (c *Chunker) Chunk(doc Document) ([]*core.Chunk, error) {
	if doc.Text == "" {
		return nil, nil
	}

	pieces, err := c.splitter.SplitText(doc.Text)
	if err != nil {
		return nil, err
	}

	chunks := make([]*core.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		if piece == "" {
			continue
		}
		chunks = append(chunks, &core.Chunk{
			Text:     piece,
			Source:   doc.Source,
			Position: i,
		})
	}
	return chunks, nil
}

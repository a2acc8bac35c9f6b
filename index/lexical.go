package index

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/civica/policyrag/core"
)

// BM25 parameters. Standard values from the literature.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// lexicalDoc holds the per-chunk state needed for BM25 scoring.
type lexicalDoc struct {
	chunk  *core.Chunk
	length int
	freqs  map[string]int
}

// LexicalIndex is an inverted index over chunk text with BM25 scoring.
// Like VectorIndex, Rebuild constructs fresh state and swaps it in under
// the write lock.
type LexicalIndex struct {
	mu        sync.RWMutex
	docs      map[core.ID]*lexicalDoc
	postings  map[string]map[core.ID]bool
	avgLength float64
}

// NewLexicalIndex creates an empty lexical index.
func NewLexicalIndex() *LexicalIndex {
	return &LexicalIndex{
		docs:     map[core.ID]*lexicalDoc{},
		postings: map[string]map[core.ID]bool{},
	}
}

// Rebuild replaces the index contents with the given chunks.
func (ix *LexicalIndex) Rebuild(chunks []*core.Chunk) {
	docs := make(map[core.ID]*lexicalDoc, len(chunks))
	postings := map[string]map[core.ID]bool{}
	totalLength := 0

	for _, chunk := range chunks {
		doc := buildDoc(chunk)
		docs[chunk.ID] = doc
		totalLength += doc.length
		for term := range doc.freqs {
			set := postings[term]
			if set == nil {
				set = map[core.ID]bool{}
				postings[term] = set
			}
			set[chunk.ID] = true
		}
	}

	avg := 0.0
	if len(docs) > 0 {
		avg = float64(totalLength) / float64(len(docs))
	}

	ix.mu.Lock()
	ix.docs = docs
	ix.postings = postings
	ix.avgLength = avg
	ix.mu.Unlock()
}

// Add indexes chunks incrementally.
func (ix *LexicalIndex) Add(chunks []*core.Chunk) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	totalLength := ix.avgLength * float64(len(ix.docs))
	for _, chunk := range chunks {
		if prev, ok := ix.docs[chunk.ID]; ok {
			totalLength -= float64(prev.length)
			ix.removePostings(chunk.ID, prev)
		}
		doc := buildDoc(chunk)
		ix.docs[chunk.ID] = doc
		totalLength += float64(doc.length)
		for term := range doc.freqs {
			set := ix.postings[term]
			if set == nil {
				set = map[core.ID]bool{}
				ix.postings[term] = set
			}
			set[chunk.ID] = true
		}
	}

	if len(ix.docs) > 0 {
		ix.avgLength = totalLength / float64(len(ix.docs))
	} else {
		ix.avgLength = 0
	}
}

// Len returns the number of indexed chunks.
func (ix *LexicalIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Search returns up to topK chunks matching the query terms, ordered by
// descending BM25 relevance. RawScore holds the relevance score; chunks
// with no matching term are not returned.
func (ix *LexicalIndex) Search(ctx context.Context, query string, topK int) ([]core.Candidate, error) {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return []core.Candidate{}, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	docCount := len(ix.docs)
	if docCount == 0 {
		return []core.Candidate{}, nil
	}

	scores := map[core.ID]float64{}
	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		set := ix.postings[term]
		if len(set) == 0 {
			continue
		}
		idf := math.Log(1 + (float64(docCount)-float64(len(set))+0.5)/(float64(len(set))+0.5))
		for id := range set {
			doc := ix.docs[id]
			tf := float64(doc.freqs[term])
			norm := bm25K1*(1-bm25B+bm25B*float64(doc.length)/ix.avgLength) + tf
			scores[id] += idf * tf * (bm25K1 + 1) / norm
		}
	}

	candidates := make([]core.Candidate, 0, len(scores))
	for id, score := range scores {
		candidates = append(candidates, core.Candidate{
			Chunk:    ix.docs[id].chunk,
			RawScore: score,
			Origin:   core.OriginLexical,
		})
	}

	// Ties broken by ID so results are deterministic across runs.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].RawScore != candidates[j].RawScore {
			return candidates[i].RawScore > candidates[j].RawScore
		}
		return candidates[i].Chunk.ID < candidates[j].Chunk.ID
	})
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func (ix *LexicalIndex) removePostings(id core.ID, doc *lexicalDoc) {
	for term := range doc.freqs {
		set := ix.postings[term]
		delete(set, id)
		if len(set) == 0 {
			delete(ix.postings, term)
		}
	}
}

func buildDoc(chunk *core.Chunk) *lexicalDoc {
	terms := Tokenize(chunk.Text)
	freqs := make(map[string]int, len(terms))
	for _, term := range terms {
		freqs[term]++
	}
	return &lexicalDoc{chunk: chunk, length: len(terms), freqs: freqs}
}

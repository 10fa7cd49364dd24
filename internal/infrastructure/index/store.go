// Package index holds the in-memory corpus container with its dense and
// sparse retrieval indexes behind one coarse read/write lock.
package index

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ragline/docqa/internal/core/domain"
)

type docEntry struct {
	doc       domain.Document
	vector    []float32 // unit-normalized at index time
	tokens    []string
	tokenText string // tokens joined by single spaces, for phrase lookups
}

// Store owns the document set shared read-only by both indexes. Writes
// (Index, Reset) exclude concurrent reads; reads run concurrently.
type Store struct {
	mu       sync.RWMutex
	entries  []docEntry
	byID     map[string]int
	postings map[string][]termPosting
	totalLen int
}

type termPosting struct {
	entry int
	tf    float64
}

func NewStore() *Store {
	return &Store{
		byID:     make(map[string]int),
		postings: make(map[string][]termPosting),
	}
}

// Index validates and appends documents with their embedding vectors, then
// updates the sparse postings before returning. A duplicate id rejects the
// whole batch and leaves the store unchanged.
func (s *Store) Index(_ context.Context, docs []domain.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"index documents",
			fmt.Errorf("vectors/documents mismatch: %d/%d", len(vectors), len(docs)),
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return err
		}
		if _, dup := s.byID[doc.ID]; dup {
			return domain.WrapError(domain.ErrDuplicateDocument, "index documents", fmt.Errorf("id %q", doc.ID))
		}
		if _, dup := seen[doc.ID]; dup {
			return domain.WrapError(domain.ErrDuplicateDocument, "index documents", fmt.Errorf("id %q repeated in batch", doc.ID))
		}
		seen[doc.ID] = struct{}{}
	}

	for i, doc := range docs {
		tokens := tokenizeAlphaNum(doc.Text)
		entry := docEntry{
			doc:       doc,
			vector:    normalizeVector(vectors[i]),
			tokens:    tokens,
			tokenText: joinTokens(tokens),
		}
		idx := len(s.entries)
		s.entries = append(s.entries, entry)
		s.byID[doc.ID] = idx
		s.totalLen += len(tokens)

		tf := make(map[string]float64, len(tokens))
		for _, token := range tokens {
			tf[token]++
		}
		for token, count := range tf {
			s.postings[token] = append(s.postings[token], termPosting{entry: idx, tf: count})
		}
	}
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Reset drops the full corpus and both indexes.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byID = make(map[string]int)
	s.postings = make(map[string][]termPosting)
	s.totalLen = 0
}

func (s *Store) avgDocLen() float64 {
	if len(s.entries) == 0 {
		return 0
	}
	return float64(s.totalLen) / float64(len(s.entries))
}

func joinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}

package index

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ragline/docqa/internal/core/domain"
)

const (
	bm25K1      = 1.2
	bm25B       = 0.75
	phraseBonus = 0.5
)

// SparseSearch ranks documents by BM25-style term overlap plus a bonus for
// exact phrase (adjacent token pair) matches, which is what lets proper nouns
// like "Cisco AnyConnect" beat the embedding space. Documents sharing no
// query terms are excluded. Ties break by document id ascending.
func (s *Store) SparseSearch(query string, topK int) ([]domain.SparseResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyCorpus, "sparse search", fmt.Errorf("no documents indexed"))
	}
	if topK <= 0 {
		topK = 5
	}

	queryTokens := tokenizeAlphaNum(query)
	if len(queryTokens) == 0 {
		return []domain.SparseResult{}, nil
	}

	n := float64(len(s.entries))
	avgLen := s.avgDocLen()
	scores := make(map[int]float64)

	seenTokens := make(map[string]struct{}, len(queryTokens))
	for _, token := range queryTokens {
		if _, dup := seenTokens[token]; dup {
			continue
		}
		seenTokens[token] = struct{}{}

		postings := s.postings[token]
		if len(postings) == 0 {
			continue
		}
		df := float64(len(postings))
		idf := math.Log(1.0 + (n-df+0.5)/(df+0.5))
		for _, p := range postings {
			docLen := float64(len(s.entries[p.entry].tokens))
			lenNorm := 1.0 - bm25B + bm25B*docLen/math.Max(avgLen, 1.0)
			scores[p.entry] += idf * (p.tf * (bm25K1 + 1.0)) / (p.tf + bm25K1*lenNorm)
		}
	}

	for _, phrase := range bigrams(queryTokens) {
		needle := " " + phrase + " "
		for entryIdx := range scores {
			if strings.Contains(" "+s.entries[entryIdx].tokenText+" ", needle) {
				scores[entryIdx] += phraseBonus
			}
		}
	}

	out := make([]domain.SparseResult, 0, len(scores))
	for entryIdx, score := range scores {
		if score <= 0 {
			continue
		}
		out = append(out, domain.SparseResult{
			Document: s.entries[entryIdx].doc,
			Score:    score,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Document.ID < out[j].Document.ID
	})

	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

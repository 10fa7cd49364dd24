package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/ragline/docqa/internal/core/domain"
)

// DenseSearch ranks documents by cosine similarity against the query vector.
// Vectors are unit-normalized at index time, so cosine reduces to a dot
// product. Ties break by document id ascending.
func (s *Store) DenseSearch(queryVector []float32, topK int) ([]domain.DenseResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyCorpus, "dense search", fmt.Errorf("no documents indexed"))
	}
	if len(queryVector) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "dense search", fmt.Errorf("empty query vector"))
	}
	if topK <= 0 {
		topK = 5
	}

	query := normalizeVector(queryVector)
	out := make([]domain.DenseResult, 0, len(s.entries))
	for _, entry := range s.entries {
		if len(entry.vector) != len(query) {
			return nil, domain.WrapError(
				domain.ErrInvalidInput,
				"dense search",
				fmt.Errorf("vector dimensionality mismatch: %d vs %d", len(entry.vector), len(query)),
			)
		}
		out = append(out, domain.DenseResult{
			Document: entry.doc,
			Score:    dot(query, entry.vector),
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

func normalizeVector(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

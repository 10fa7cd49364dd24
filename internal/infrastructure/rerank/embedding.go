package rerank

import (
	"context"
	"fmt"
	"math"

	"github.com/ragline/docqa/internal/core/ports"
)

// EmbeddingScorer scores relevance as cosine similarity between fresh query
// and document embeddings, shifted into [0,1]. Slower than lexical scoring
// but robust to paraphrase.
type EmbeddingScorer struct {
	embedder ports.Embedder
}

func NewEmbeddingScorer(embedder ports.Embedder) *EmbeddingScorer {
	return &EmbeddingScorer{embedder: embedder}
}

func (s *EmbeddingScorer) Name() string { return "embedding" }

func (s *EmbeddingScorer) Score(ctx context.Context, query, documentText string) (float64, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query, documentText})
	if err != nil {
		return 0, fmt.Errorf("embedding scorer: %w", err)
	}
	if len(vectors) != 2 {
		return 0, fmt.Errorf("embedding scorer: got %d vectors, want 2", len(vectors))
	}

	return (cosine(vectors[0], vectors[1]) + 1) / 2, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

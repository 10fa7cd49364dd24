package ports

import (
	"context"

	"github.com/ragline/docqa/internal/core/domain"
)

// Embedder maps text to fixed-length vectors via the external embedding
// provider. ModelInfo is consumed for diagnostics only.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	ModelInfo() map[string]string
}

// Generator is the external generation backend for answer synthesis.
type Generator interface {
	Generate(ctx context.Context, prompt string, passages []string) (string, error)
}

// RerankScorer is a pairwise query/document relevance scorer. Implementations
// are interchangeable; the reranking engine never branches on scorer identity.
type RerankScorer interface {
	Name() string
	Score(ctx context.Context, query, documentText string) (float64, error)
}

// CorpusIndex owns the document set and both retrieval indexes. Index rebuilds
// complete before Index returns; reads and writes are mutually exclusive.
type CorpusIndex interface {
	Index(ctx context.Context, docs []domain.Document, vectors [][]float32) error
	DenseSearch(queryVector []float32, topK int) ([]domain.DenseResult, error)
	SparseSearch(query string, topK int) ([]domain.SparseResult, error)
	Len() int
	Reset()
}

// QueryExpander produces alternate phrasings of a query. Expansion is a
// best-effort recall aid; callers fall back to the original query on error.
type QueryExpander interface {
	Expand(ctx context.Context, query string, maxVariants int) (domain.ExpandedQuerySet, error)
}

// EventPublisher announces corpus changes to interested consumers.
type EventPublisher interface {
	PublishDocumentIndexed(ctx context.Context, documentID string) error
}

// AnswerLog records synthesized answers for offline evaluation.
type AnswerLog interface {
	Record(ctx context.Context, query string, result domain.AnswerResult) error
}

package ports

import (
	"context"

	"github.com/ragline/docqa/internal/core/domain"
)

// DocumentIngestor is the inbound contract for corpus ingestion.
type DocumentIngestor interface {
	AddDocuments(ctx context.Context, docs []domain.Document) error
	AddDocument(ctx context.Context, text, docType, source string, metadata map[string]string) (domain.Document, error)
}

// SearchService is the inbound contract for the retrieval pipeline.
type SearchService interface {
	DenseSearch(ctx context.Context, query string, topK int) ([]domain.DenseResult, error)
	SparseSearch(ctx context.Context, query string, topK int) ([]domain.SparseResult, error)
	HybridSearch(ctx context.Context, query string, topK int, alpha float64) ([]domain.FusedResult, error)
	SearchWithExpansion(ctx context.Context, query string, topK int) (domain.ExpandedSearchResult, error)
	SearchWithReranking(ctx context.Context, query string, topK int, explain bool) ([]domain.RerankedResult, error)
}

// AnswerService synthesizes cited answers. It never returns an error:
// every failure mode degrades into the returned AnswerResult.
type AnswerService interface {
	GenerateAnswer(ctx context.Context, query string) domain.AnswerResult
}

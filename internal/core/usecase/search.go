package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ragline/docqa/internal/core/domain"
	"github.com/ragline/docqa/internal/core/ports"
)

// RetrievalOptions bound the staged pipeline: fusion pulls a wider candidate
// pool than the caller's topK so that reranking has something to reorder.
type RetrievalOptions struct {
	Alpha            float64
	TopK             int
	HybridCandidates int
	RerankTopN       int
	MaxVariants      int
	MaxQueryChars    int
	EmbedTimeout     time.Duration
	ExpandTimeout    time.Duration
}

func (o RetrievalOptions) normalize() RetrievalOptions {
	out := o
	if out.Alpha <= 0 || out.Alpha > 1 {
		out.Alpha = DefaultFusionAlpha
	}
	if out.TopK <= 0 {
		out.TopK = 5
	}
	if out.HybridCandidates <= 0 {
		out.HybridCandidates = 30
	}
	if out.RerankTopN <= 0 {
		out.RerankTopN = 20
	}
	if out.MaxVariants <= 0 {
		out.MaxVariants = 4
	}
	if out.MaxQueryChars <= 0 {
		out.MaxQueryChars = 512
	}
	if out.EmbedTimeout <= 0 {
		out.EmbedTimeout = 10 * time.Second
	}
	if out.ExpandTimeout <= 0 {
		out.ExpandTimeout = 5 * time.Second
	}
	return out
}

type RetrievalUseCase struct {
	store    ports.CorpusIndex
	embedder ports.Embedder
	expander ports.QueryExpander
	reranker *RerankUseCase
	opts     RetrievalOptions
	log      *slog.Logger
}

func NewRetrievalUseCase(
	store ports.CorpusIndex,
	embedder ports.Embedder,
	expander ports.QueryExpander,
	reranker *RerankUseCase,
	opts RetrievalOptions,
	log *slog.Logger,
) *RetrievalUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &RetrievalUseCase{
		store:    store,
		embedder: embedder,
		expander: expander,
		reranker: reranker,
		opts:     opts.normalize(),
		log:      log,
	}
}

func (uc *RetrievalUseCase) validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate query", fmt.Errorf("query is empty"))
	}
	if len([]rune(query)) > uc.opts.MaxQueryChars {
		return domain.WrapError(domain.ErrInvalidInput, "validate query", fmt.Errorf("query exceeds %d characters", uc.opts.MaxQueryChars))
	}
	return nil
}

func (uc *RetrievalUseCase) DenseSearch(ctx context.Context, query string, topK int) ([]domain.DenseResult, error) {
	if err := uc.validateQuery(query); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = uc.opts.TopK
	}

	vector, err := uc.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return uc.store.DenseSearch(vector, topK)
}

func (uc *RetrievalUseCase) SparseSearch(_ context.Context, query string, topK int) ([]domain.SparseResult, error) {
	if err := uc.validateQuery(query); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = uc.opts.TopK
	}
	return uc.store.SparseSearch(query, topK)
}

// HybridSearch fuses dense and sparse rankings. If exactly one engine fails
// on an external error, the ranking degrades to the surviving engine instead
// of failing the query; an empty corpus still surfaces as an error.
func (uc *RetrievalUseCase) HybridSearch(ctx context.Context, query string, topK int, alpha float64) ([]domain.FusedResult, error) {
	if err := uc.validateQuery(query); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = uc.opts.TopK
	}
	if alpha < 0 {
		alpha = uc.opts.Alpha
	}
	if uc.store.Len() == 0 {
		return nil, domain.WrapError(domain.ErrEmptyCorpus, "hybrid search", fmt.Errorf("no documents indexed"))
	}

	candidates := uc.opts.HybridCandidates
	if candidates < topK {
		candidates = topK
	}

	dense, denseErr := uc.denseCandidates(ctx, query, candidates)
	sparse, sparseErr := uc.store.SparseSearch(query, candidates)

	if denseErr != nil && sparseErr != nil {
		return nil, fmt.Errorf("hybrid search: dense: %w; sparse: %w", denseErr, sparseErr)
	}
	if denseErr != nil {
		uc.log.Warn("hybrid_dense_degraded", "error", denseErr)
		dense = nil
	}
	if sparseErr != nil {
		uc.log.Warn("hybrid_sparse_degraded", "error", sparseErr)
		sparse = nil
	}

	return fuseCandidates(dense, sparse, alpha, topK), nil
}

// SearchWithExpansion runs hybrid search for every query variant and merges
// results by document id at the maximum combined score reached across
// variants. Expansion is best effort: a failed or timed-out expander falls
// back to the original query alone.
func (uc *RetrievalUseCase) SearchWithExpansion(ctx context.Context, query string, topK int) (domain.ExpandedSearchResult, error) {
	if err := uc.validateQuery(query); err != nil {
		return domain.ExpandedSearchResult{}, err
	}
	if topK <= 0 {
		topK = uc.opts.TopK
	}

	queries := uc.expandQuery(ctx, query)

	merged := make(map[string]domain.FusedResult)
	searched := 0
	for _, variant := range queries.Variants {
		results, err := uc.HybridSearch(ctx, variant, topK, uc.opts.Alpha)
		if err != nil {
			if variant == queries.Original {
				return domain.ExpandedSearchResult{}, err
			}
			uc.log.Warn("expansion_variant_skipped", "variant", variant, "error", err)
			continue
		}
		searched++
		for _, r := range results {
			best, ok := merged[r.Document.ID]
			if !ok || r.CombinedScore > best.CombinedScore {
				merged[r.Document.ID] = r
			}
		}
	}
	if searched == 0 {
		return domain.ExpandedSearchResult{}, domain.WrapError(domain.ErrEmptyCorpus, "expanded search", fmt.Errorf("no variant produced results"))
	}

	out := make([]domain.FusedResult, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sortFused(out)
	if len(out) > topK {
		out = out[:topK]
	}

	return domain.ExpandedSearchResult{Results: out, Queries: queries}, nil
}

// SearchWithReranking pulls a wider fused candidate pool and reorders its
// head with the second-pass scorer.
func (uc *RetrievalUseCase) SearchWithReranking(ctx context.Context, query string, topK int, explain bool) ([]domain.RerankedResult, error) {
	if err := uc.validateQuery(query); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = uc.opts.TopK
	}

	poolSize := uc.opts.RerankTopN
	if poolSize < topK {
		poolSize = topK
	}
	fused, err := uc.HybridSearch(ctx, query, poolSize, uc.opts.Alpha)
	if err != nil {
		return nil, err
	}
	return uc.reranker.Rerank(ctx, query, fused, topK, explain)
}

func (uc *RetrievalUseCase) denseCandidates(ctx context.Context, query string, limit int) ([]domain.DenseResult, error) {
	vector, err := uc.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return uc.store.DenseSearch(vector, limit)
}

func (uc *RetrievalUseCase) embedQuery(ctx context.Context, query string) ([]float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, uc.opts.EmbedTimeout)
	defer cancel()

	vector, err := uc.embedder.EmbedQuery(embedCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return vector, nil
}

func (uc *RetrievalUseCase) expandQuery(ctx context.Context, query string) domain.ExpandedQuerySet {
	fallback := domain.ExpandedQuerySet{Original: query, Variants: []string{query}}
	if uc.expander == nil {
		return fallback
	}

	expandCtx, cancel := context.WithTimeout(ctx, uc.opts.ExpandTimeout)
	defer cancel()

	queries, err := uc.expander.Expand(expandCtx, query, uc.opts.MaxVariants)
	if err != nil {
		uc.log.Warn("query_expansion_failed", "error", err)
		return fallback
	}
	if len(queries.Variants) == 0 || queries.Variants[0] != query {
		return fallback
	}
	return queries
}

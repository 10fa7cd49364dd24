package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ragline/docqa/internal/core/domain"
)

// CompareRerankers runs one query through fusion once, then hands the same
// candidate pool to every configured scorer.
func (uc *RetrievalUseCase) CompareRerankers(ctx context.Context, query string, topK int) (domain.RerankComparison, error) {
	if err := uc.validateQuery(query); err != nil {
		return domain.RerankComparison{}, err
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
		return domain.RerankComparison{}, err
	}
	return uc.reranker.CompareScorers(ctx, query, fused, topK)
}

// BenchmarkReranking measures, over a query batch, how often and by how much
// the second-pass scorer promotes a better document than fusion's top hit,
// and what the extra stage costs in latency. Queries that fail retrieval are
// skipped rather than aborting the batch.
func (uc *RetrievalUseCase) BenchmarkReranking(ctx context.Context, queries []string, topK int) (domain.RerankBenchmarkReport, error) {
	if len(queries) == 0 {
		return domain.RerankBenchmarkReport{}, fmt.Errorf("benchmark reranking: no queries")
	}
	if topK <= 0 {
		topK = uc.opts.TopK
	}

	poolSize := uc.opts.RerankTopN
	if poolSize < topK {
		poolSize = topK
	}

	var (
		evaluated    int
		improved     int
		sumDelta     float64
		addedLatency time.Duration
	)
	for _, query := range queries {
		fused, err := uc.HybridSearch(ctx, query, poolSize, uc.opts.Alpha)
		if err != nil || len(fused) == 0 {
			uc.log.Warn("benchmark_query_skipped", "query", query, "error", err)
			continue
		}

		start := time.Now()
		reranked, err := uc.reranker.Rerank(ctx, query, fused, topK, false)
		if err != nil || len(reranked) == 0 {
			uc.log.Warn("benchmark_query_skipped", "query", query, "error", err)
			continue
		}
		addedLatency += time.Since(start)

		fusionTopScore, ok := rerankScoreOf(reranked, fused[0].Document.ID)
		if !ok {
			// fusion's top hit fell past topK, the reranker demoted it
			fusionTopScore = reranked[len(reranked)-1].RerankScore
		}
		delta := reranked[0].RerankScore - fusionTopScore
		sumDelta += delta
		if delta > 1e-9 {
			improved++
		}
		evaluated++
	}
	if evaluated == 0 {
		return domain.RerankBenchmarkReport{}, fmt.Errorf("benchmark reranking: every query failed")
	}

	return domain.RerankBenchmarkReport{
		Queries:          evaluated,
		MeanImprovement:  sumDelta / float64(evaluated),
		ImprovedFraction: float64(improved) / float64(evaluated),
		AvgAddedLatency:  addedLatency.Seconds() / float64(evaluated),
	}, nil
}

func rerankScoreOf(results []domain.RerankedResult, docID string) (float64, bool) {
	for _, r := range results {
		if r.Document.ID == docID {
			return r.RerankScore, true
		}
	}
	return 0, false
}

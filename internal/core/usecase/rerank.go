package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/ragline/docqa/internal/core/domain"
	"github.com/ragline/docqa/internal/core/ports"
)

// RerankUseCase applies a second-pass, higher-cost relevance scorer to a
// short fused candidate list. Per-candidate scoring has no ordering
// dependency and runs on a shared worker pool; the final sort is the only
// synchronization point.
type RerankUseCase struct {
	scorer  ports.RerankScorer
	scorers []ports.RerankScorer
	pool    *ants.Pool
	log     *slog.Logger
}

func NewRerankUseCase(scorer ports.RerankScorer, extraScorers []ports.RerankScorer, pool *ants.Pool, log *slog.Logger) *RerankUseCase {
	if log == nil {
		log = slog.Default()
	}
	scorers := make([]ports.RerankScorer, 0, 1+len(extraScorers))
	if scorer != nil {
		scorers = append(scorers, scorer)
	}
	scorers = append(scorers, extraScorers...)
	return &RerankUseCase{
		scorer:  scorer,
		scorers: scorers,
		pool:    pool,
		log:     log,
	}
}

// Rerank re-scores the candidates and reorders them by rerank score. A
// scorer failure on one candidate falls back to that candidate's fused
// combined score instead of failing the batch. No document outside the
// input candidate list can appear in the output.
func (uc *RerankUseCase) Rerank(
	ctx context.Context,
	query string,
	candidates []domain.FusedResult,
	topK int,
	explain bool,
) ([]domain.RerankedResult, error) {
	if len(candidates) == 0 {
		return []domain.RerankedResult{}, nil
	}
	if uc.scorer == nil {
		return nil, fmt.Errorf("rerank: no scorer configured")
	}
	if topK <= 0 || topK > len(candidates) {
		topK = len(candidates)
	}

	scores := uc.scoreCandidates(ctx, uc.scorer, query, candidates)

	out := make([]domain.RerankedResult, len(candidates))
	fusionRank := make(map[string]int, len(candidates))
	for i, candidate := range candidates {
		fusionRank[candidate.Document.ID] = i
		out[i] = domain.RerankedResult{
			FusedResult: candidate,
			RerankScore: scores[i],
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RerankScore != out[j].RerankScore {
			return out[i].RerankScore > out[j].RerankScore
		}
		if out[i].CombinedScore != out[j].CombinedScore {
			return out[i].CombinedScore > out[j].CombinedScore
		}
		return out[i].Document.ID < out[j].Document.ID
	})

	for i := range out {
		out[i].RankDelta = fusionRank[out[i].Document.ID] - i
		if explain {
			out[i].Explanation = fmt.Sprintf(
				"%s: fused=%.3f rerank=%.3f moved %+d",
				uc.scorer.Name(), out[i].CombinedScore, out[i].RerankScore, out[i].RankDelta,
			)
		}
	}

	return out[:topK], nil
}

// CompareScorers runs every configured scorer over the same candidate set and
// reports per-scorer rankings with a divergence summary. Used for offline
// evaluation only.
func (uc *RerankUseCase) CompareScorers(
	ctx context.Context,
	query string,
	candidates []domain.FusedResult,
	topK int,
) (domain.RerankComparison, error) {
	if len(uc.scorers) < 2 {
		return domain.RerankComparison{}, fmt.Errorf("compare scorers: need at least two scorers, have %d", len(uc.scorers))
	}
	if len(candidates) == 0 {
		return domain.RerankComparison{}, fmt.Errorf("compare scorers: empty candidate set")
	}
	if topK <= 0 || topK > len(candidates) {
		topK = len(candidates)
	}

	orderings := make([][]string, 0, len(uc.scorers))
	comparison := domain.RerankComparison{Query: query}
	for _, scorer := range uc.scorers {
		scores := uc.scoreCandidates(ctx, scorer, query, candidates)

		order := make([]int, len(candidates))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			if scores[order[i]] != scores[order[j]] {
				return scores[order[i]] > scores[order[j]]
			}
			return candidates[order[i]].Document.ID < candidates[order[j]].Document.ID
		})

		ids := make([]string, 0, len(order))
		for _, idx := range order {
			ids = append(ids, candidates[idx].Document.ID)
		}
		orderings = append(orderings, ids)

		ranking := domain.ScorerRanking{
			Scorer:   scorer.Name(),
			TopScore: scores[order[0]],
		}
		if len(ids) > topK {
			ranking.DocumentIDs = ids[:topK]
		} else {
			ranking.DocumentIDs = ids
		}
		comparison.Rankings = append(comparison.Rankings, ranking)
	}

	comparison.RankCorrelation = meanPairwiseSpearman(orderings)
	comparison.Top1Agreement = top1Agreement(orderings)
	return comparison, nil
}

func (uc *RerankUseCase) scoreCandidates(
	ctx context.Context,
	scorer ports.RerankScorer,
	query string,
	candidates []domain.FusedResult,
) []float64 {
	scores := make([]float64, len(candidates))

	var wg sync.WaitGroup
	for i := range candidates {
		wg.Add(1)
		task := func(i int) func() {
			return func() {
				defer wg.Done()
				score, err := scorer.Score(ctx, query, candidates[i].Document.Text)
				if err != nil {
					uc.log.Warn("rerank_score_fallback",
						"scorer", scorer.Name(),
						"document_id", candidates[i].Document.ID,
						"error", err,
					)
					score = candidates[i].CombinedScore
				}
				scores[i] = score
			}
		}(i)

		if uc.pool == nil || uc.pool.Submit(task) != nil {
			task()
		}
	}
	wg.Wait()

	return scores
}

// meanPairwiseSpearman averages Spearman's rank correlation over all scorer
// pairs. Every ordering covers the same document set.
func meanPairwiseSpearman(orderings [][]string) float64 {
	if len(orderings) < 2 {
		return 1.0
	}
	var sum float64
	pairs := 0
	for i := 0; i < len(orderings); i++ {
		for j := i + 1; j < len(orderings); j++ {
			sum += spearman(orderings[i], orderings[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

func spearman(a, b []string) float64 {
	n := len(a)
	if n <= 1 {
		return 1.0
	}
	posB := make(map[string]int, n)
	for i, id := range b {
		posB[id] = i
	}
	var sumSq float64
	for i, id := range a {
		d := float64(i - posB[id])
		sumSq += d * d
	}
	return 1.0 - (6.0*sumSq)/float64(n*(n*n-1))
}

func top1Agreement(orderings [][]string) bool {
	for _, ordering := range orderings[1:] {
		if len(ordering) == 0 || len(orderings[0]) == 0 || ordering[0] != orderings[0][0] {
			return false
		}
	}
	return true
}

package usecase

import (
	"sort"

	"github.com/ragline/docqa/internal/core/domain"
)

const DefaultFusionAlpha = 0.7

// fuseCandidates merges dense and sparse rankings into one list. Each
// engine's raw scores are min-max normalized over its returned candidate set
// only; a document missing from one engine gets 0.0 for that engine, so
// keyword-only and semantic-only hits still surface. Changing alpha is a pure
// recomputation over the same normalized scores.
func fuseCandidates(dense []domain.DenseResult, sparse []domain.SparseResult, alpha float64, topK int) []domain.FusedResult {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	denseNorm := normalizeDense(dense)
	sparseNorm := normalizeSparse(sparse)

	acc := make(map[string]domain.FusedResult, len(dense)+len(sparse))
	for i, r := range dense {
		acc[r.Document.ID] = domain.FusedResult{
			Document:   r.Document,
			DenseScore: denseNorm[i],
		}
	}
	for i, r := range sparse {
		candidate := acc[r.Document.ID]
		if candidate.Document.ID == "" {
			candidate.Document = r.Document
		}
		candidate.SparseScore = sparseNorm[i]
		acc[r.Document.ID] = candidate
	}

	out := make([]domain.FusedResult, 0, len(acc))
	for _, candidate := range acc {
		candidate.CombinedScore = alpha*candidate.DenseScore + (1-alpha)*candidate.SparseScore
		out = append(out, candidate)
	}

	sortFused(out)

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

func sortFused(out []domain.FusedResult) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CombinedScore != out[j].CombinedScore {
			return out[i].CombinedScore > out[j].CombinedScore
		}
		if out[i].DenseScore != out[j].DenseScore {
			return out[i].DenseScore > out[j].DenseScore
		}
		return out[i].Document.ID < out[j].Document.ID
	})
}

func normalizeDense(results []domain.DenseResult) []float64 {
	raw := make([]float64, len(results))
	for i, r := range results {
		raw[i] = r.Score
	}
	return minMaxNormalize(raw)
}

func normalizeSparse(results []domain.SparseResult) []float64 {
	raw := make([]float64, len(results))
	for i, r := range results {
		raw[i] = r.Score
	}
	return minMaxNormalize(raw)
}

// minMaxNormalize rescales raw scores into [0,1] over the candidate set.
// A single candidate or an all-equal set normalizes to 1.0 for every member.
func minMaxNormalize(raw []float64) []float64 {
	if len(raw) == 0 {
		return nil
	}
	minScore, maxScore := raw[0], raw[0]
	for _, v := range raw[1:] {
		if v < minScore {
			minScore = v
		}
		if v > maxScore {
			maxScore = v
		}
	}

	out := make([]float64, len(raw))
	spread := maxScore - minScore
	if spread <= 0 {
		for i := range out {
			out[i] = 1.0
		}
		return out
	}
	for i, v := range raw {
		out[i] = (v - minScore) / spread
	}
	return out
}

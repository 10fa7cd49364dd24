package domain

// DenseResult is one dense (semantic) search hit. Score is a raw cosine
// similarity and is not comparable with sparse scores.
type DenseResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// SparseResult is one sparse (keyword) search hit. Score is an unbounded
// term-overlap score; documents sharing no terms with the query are excluded.
type SparseResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// FusedResult carries both normalized per-engine scores so that re-weighting
// with a different alpha is a pure recomputation, with no index round trip.
type FusedResult struct {
	Document      Document `json:"document"`
	DenseScore    float64  `json:"dense_score"`
	SparseScore   float64  `json:"sparse_score"`
	CombinedScore float64  `json:"combined_score"`
}

// RerankedResult extends a FusedResult with the second-pass score and the
// signed position change versus the fusion ranking.
type RerankedResult struct {
	FusedResult
	RerankScore float64 `json:"rerank_score"`
	RankDelta   int     `json:"rank_delta"`
	Explanation string  `json:"explanation,omitempty"`
}

// ExpandedQuerySet lists the query variants used for an expanded search.
// The original query is always variant 0; variants are deduplicated.
type ExpandedQuerySet struct {
	Original string   `json:"original"`
	Variants []string `json:"variants"`
}

// ExpandedSearchResult pairs the merged ranking with the variant set that
// produced it, for explainability.
type ExpandedSearchResult struct {
	Results []FusedResult    `json:"results"`
	Queries ExpandedQuerySet `json:"queries"`
}

// ScorerRanking is one reranking scorer's ordering over a shared candidate set.
type ScorerRanking struct {
	Scorer      string   `json:"scorer"`
	DocumentIDs []string `json:"document_ids"`
	TopScore    float64  `json:"top_score"`
}

// RerankComparison reports how two or more scorers diverge on one query.
type RerankComparison struct {
	Query           string          `json:"query"`
	Rankings        []ScorerRanking `json:"rankings"`
	RankCorrelation float64         `json:"rank_correlation"`
	Top1Agreement   bool            `json:"top1_agreement"`
}

// RerankBenchmarkReport aggregates reranking impact over a query batch.
type RerankBenchmarkReport struct {
	Queries          int     `json:"queries"`
	MeanImprovement  float64 `json:"mean_improvement"`
	ImprovedFraction float64 `json:"improved_fraction"`
	AvgAddedLatency  float64 `json:"avg_added_latency_seconds"`
}

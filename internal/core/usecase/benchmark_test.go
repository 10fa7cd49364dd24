package usecase

import (
	"context"
	"testing"

	"github.com/ragline/docqa/internal/core/ports"
)

func TestBenchmarkRerankingReportsImprovement(t *testing.T) {
	store := seededIndex()
	// fusion puts "hr" first; the scorer strongly prefers "it"
	scorer := &fakeScorer{name: "fake", scores: map[string]float64{"hr": 0.2, "it": 0.9}}
	reranker := NewRerankUseCase(scorer, nil, nil, nil)
	uc := NewRetrievalUseCase(store, &fakeEmbedder{}, nil, reranker, RetrievalOptions{}, nil)

	report, err := uc.BenchmarkReranking(context.Background(), []string{"q1", "q2"}, 2)
	if err != nil {
		t.Fatalf("BenchmarkReranking() error = %v", err)
	}
	if report.Queries != 2 {
		t.Fatalf("expected 2 evaluated queries, got %d", report.Queries)
	}
	if report.MeanImprovement <= 0 {
		t.Fatalf("scorer disagrees with fusion, expected positive improvement, got %v", report.MeanImprovement)
	}
	if report.ImprovedFraction != 1.0 {
		t.Fatalf("every query improves, got fraction %v", report.ImprovedFraction)
	}
	if report.AvgAddedLatency < 0 {
		t.Fatalf("latency cannot be negative, got %v", report.AvgAddedLatency)
	}
}

func TestBenchmarkRerankingNoQueries(t *testing.T) {
	uc := newSearchUC(seededIndex(), &fakeEmbedder{}, nil)

	if _, err := uc.BenchmarkReranking(context.Background(), nil, 2); err == nil {
		t.Fatalf("expected error for empty query batch")
	}
}

func TestBenchmarkRerankingSkipsFailedQueries(t *testing.T) {
	uc := newSearchUC(&fakeIndex{}, &fakeEmbedder{}, nil)

	if _, err := uc.BenchmarkReranking(context.Background(), []string{"q"}, 2); err == nil {
		t.Fatalf("expected error when every query fails on empty corpus")
	}
}

func TestCompareRerankersRunsOverSharedCandidates(t *testing.T) {
	store := seededIndex()
	primary := &fakeScorer{name: "one", scores: map[string]float64{"hr": 0.9, "it": 0.1}}
	secondary := &fakeScorer{name: "two", scores: map[string]float64{"hr": 0.1, "it": 0.9}}
	reranker := NewRerankUseCase(primary, []ports.RerankScorer{secondary}, nil, nil)
	uc := NewRetrievalUseCase(store, &fakeEmbedder{}, nil, reranker, RetrievalOptions{}, nil)

	comparison, err := uc.CompareRerankers(context.Background(), "vacation", 2)
	if err != nil {
		t.Fatalf("CompareRerankers() error = %v", err)
	}
	if comparison.Query != "vacation" {
		t.Fatalf("expected query echoed, got %q", comparison.Query)
	}
	if len(comparison.Rankings) != 2 {
		t.Fatalf("expected rankings for both scorers, got %d", len(comparison.Rankings))
	}
	if comparison.Top1Agreement {
		t.Fatalf("opposed scorers must disagree on top-1")
	}
}

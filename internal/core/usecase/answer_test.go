package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ragline/docqa/internal/core/domain"
)

type fakeSearcher struct {
	results []domain.RerankedResult
	err     error
}

func (f *fakeSearcher) DenseSearch(context.Context, string, int) ([]domain.DenseResult, error) {
	return nil, nil
}

func (f *fakeSearcher) SparseSearch(context.Context, string, int) ([]domain.SparseResult, error) {
	return nil, nil
}

func (f *fakeSearcher) HybridSearch(context.Context, string, int, float64) ([]domain.FusedResult, error) {
	return nil, nil
}

func (f *fakeSearcher) SearchWithExpansion(context.Context, string, int) (domain.ExpandedSearchResult, error) {
	return domain.ExpandedSearchResult{}, nil
}

func (f *fakeSearcher) SearchWithReranking(context.Context, string, int, bool) ([]domain.RerankedResult, error) {
	return f.results, f.err
}

type fakeGenerator struct {
	answer string
	err    error
}

func (f *fakeGenerator) Generate(context.Context, string, []string) (string, error) {
	return f.answer, f.err
}

type fakeAudit struct {
	recorded []domain.AnswerResult
	err      error
}

func (f *fakeAudit) Record(_ context.Context, _ string, result domain.AnswerResult) error {
	f.recorded = append(f.recorded, result)
	return f.err
}

func reranked(id, source, text string, score float64) domain.RerankedResult {
	return domain.RerankedResult{
		FusedResult: domain.FusedResult{
			Document:      domain.Document{ID: id, Source: source, Text: text},
			CombinedScore: score,
		},
		RerankScore: score,
	}
}

func vacationResults() []domain.RerankedResult {
	return []domain.RerankedResult{
		reranked("senior", "hr_senior.txt", "Senior employees with 5 or more years receive 20 vacation days per year.", 0.92),
		reranked("standard", "hr_handbook.txt", "Employees receive 15 vacation days per year.", 0.78),
	}
}

func TestGenerateAnswerFactualWithCitations(t *testing.T) {
	audit := &fakeAudit{}
	uc := NewAnswerUseCase(
		&fakeSearcher{results: vacationResults()},
		&fakeGenerator{answer: "Senior employees receive 20 vacation days per year."},
		audit,
		AnswerOptions{},
		nil,
	)

	result := uc.GenerateAnswer(context.Background(), "How many vacation days do senior employees get?")

	if result.AnswerType != domain.AnswerFactual {
		t.Fatalf("expected factual answer, got %s", result.AnswerType)
	}
	if result.Answer == "" {
		t.Fatalf("expected non-empty answer")
	}
	if len(result.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(result.Citations))
	}
	if result.Citations[0].SourceID != "senior" || result.Citations[0].SourceName != "hr_senior.txt" {
		t.Fatalf("citations must keep retrieval rank order, got %+v", result.Citations[0])
	}
	if result.ConfidenceScore <= 0.5 {
		t.Fatalf("well-grounded answer should score above 0.5, got %v", result.ConfidenceScore)
	}
	if result.GenerationTime <= 0 {
		t.Fatalf("expected positive generation time")
	}
	if len(audit.recorded) != 1 {
		t.Fatalf("expected answer recorded to audit log")
	}
}

func TestGenerateAnswerEmptyQueryDegrades(t *testing.T) {
	uc := NewAnswerUseCase(&fakeSearcher{}, &fakeGenerator{answer: "x"}, nil, AnswerOptions{}, nil)

	result := uc.GenerateAnswer(context.Background(), "   ")
	if result.ConfidenceScore != 0 {
		t.Fatalf("degraded answer must have confidence 0, got %v", result.ConfidenceScore)
	}
	if len(result.Citations) != 0 {
		t.Fatalf("degraded answer must have no citations, got %d", len(result.Citations))
	}
	if result.Answer == "" {
		t.Fatalf("degraded answer must still carry a message")
	}
}

func TestGenerateAnswerNoEvidenceDegrades(t *testing.T) {
	uc := NewAnswerUseCase(&fakeSearcher{results: nil}, &fakeGenerator{answer: "x"}, nil, AnswerOptions{}, nil)

	result := uc.GenerateAnswer(context.Background(), "what is the moon made of")
	if result.ConfidenceScore != 0 || len(result.Citations) != 0 {
		t.Fatalf("no-evidence answer must degrade, got %+v", result)
	}
	if result.AnswerType != domain.AnswerFactual {
		t.Fatalf("classification must survive degradation, got %s", result.AnswerType)
	}
}

func TestGenerateAnswerRetrievalFailureDegrades(t *testing.T) {
	uc := NewAnswerUseCase(
		&fakeSearcher{err: errors.New("index offline")},
		&fakeGenerator{answer: "x"},
		nil, AnswerOptions{}, nil,
	)

	result := uc.GenerateAnswer(context.Background(), "How do I set up the VPN?")
	if result.ConfidenceScore != 0 || len(result.Citations) != 0 {
		t.Fatalf("retrieval failure must degrade, got %+v", result)
	}
	if result.AnswerType != domain.AnswerProcedural {
		t.Fatalf("expected procedural classification, got %s", result.AnswerType)
	}
}

func TestGenerateAnswerGenerationFailureDegrades(t *testing.T) {
	uc := NewAnswerUseCase(
		&fakeSearcher{results: vacationResults()},
		&fakeGenerator{err: errors.New("backend timeout")},
		nil, AnswerOptions{}, nil,
	)

	result := uc.GenerateAnswer(context.Background(), "How many vacation days do I get?")
	if result.ConfidenceScore != 0 || len(result.Citations) != 0 {
		t.Fatalf("generation failure must degrade, got %+v", result)
	}
	if result.AnswerType != domain.AnswerGeneral {
		t.Fatalf("generation failure must report general, got %s", result.AnswerType)
	}
}

func TestGenerateAnswerAuditFailureDoesNotSurface(t *testing.T) {
	uc := NewAnswerUseCase(
		&fakeSearcher{results: vacationResults()},
		&fakeGenerator{answer: "Employees receive vacation days."},
		&fakeAudit{err: errors.New("db offline")},
		AnswerOptions{}, nil,
	)

	result := uc.GenerateAnswer(context.Background(), "How many vacation days?")
	if result.Answer == "" {
		t.Fatalf("audit failure must not affect the answer")
	}
}

func TestCitationsDeduplicateAndExcerpt(t *testing.T) {
	results := []domain.RerankedResult{
		reranked("a", "doc.txt", "short text", 0.9),
		reranked("a", "doc.txt", "short text", 0.8),
		reranked("b", "", "some other passage", 0.7),
	}
	citations := buildCitations(results, 160)
	if len(citations) != 2 {
		t.Fatalf("expected deduplicated citations, got %d", len(citations))
	}
	if citations[1].SourceName != "b" {
		t.Fatalf("missing source must fall back to document id, got %q", citations[1].SourceName)
	}
}

func TestExcerptTruncatesAtWordBoundary(t *testing.T) {
	long := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	got := excerpt(long, 30)
	if len(got) > 34 {
		t.Fatalf("excerpt too long: %q", got)
	}
	if got[len(got)-3:] != "..." {
		t.Fatalf("truncated excerpt must end with ellipsis, got %q", got)
	}
}

func TestConfidenceIncreasesWithGrounding(t *testing.T) {
	results := vacationResults()

	grounded := confidence("senior employees receive 20 vacation days per year", results)
	ungrounded := confidence("quarks and leptons interact weakly", results)
	if grounded <= ungrounded {
		t.Fatalf("grounded answer must score higher: grounded=%v ungrounded=%v", grounded, ungrounded)
	}
	if grounded > 1 || ungrounded < 0 {
		t.Fatalf("confidence out of range: %v, %v", grounded, ungrounded)
	}
}

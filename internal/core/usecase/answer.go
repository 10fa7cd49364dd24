package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ragline/docqa/internal/core/domain"
	"github.com/ragline/docqa/internal/core/ports"
)

const (
	answerNoEvidence = "I could not find anything in the indexed documents that answers this question."
	answerDegraded   = "I was unable to produce an answer for this question right now. Please try again."

	confidenceTopWeight       = 0.5
	confidenceAgreementWeight = 0.2
	confidenceGroundingWeight = 0.3
)

type AnswerOptions struct {
	RetrieveTopN    int
	ExcerptChars    int
	GenerateTimeout time.Duration
}

func (o AnswerOptions) normalize() AnswerOptions {
	out := o
	if out.RetrieveTopN <= 0 {
		out.RetrieveTopN = 4
	}
	if out.ExcerptChars <= 0 {
		out.ExcerptChars = 160
	}
	if out.GenerateTimeout <= 0 {
		out.GenerateTimeout = 60 * time.Second
	}
	return out
}

// AnswerUseCase runs the full question pipeline: classify, retrieve with
// reranking, generate, score confidence, attach citations. It never returns
// an error; every failure mode degrades into the AnswerResult itself so the
// caller always has something to show.
type AnswerUseCase struct {
	searcher  ports.SearchService
	generator ports.Generator
	audit     ports.AnswerLog
	opts      AnswerOptions
	log       *slog.Logger
}

func NewAnswerUseCase(
	searcher ports.SearchService,
	generator ports.Generator,
	audit ports.AnswerLog,
	opts AnswerOptions,
	log *slog.Logger,
) *AnswerUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &AnswerUseCase{
		searcher:  searcher,
		generator: generator,
		audit:     audit,
		opts:      opts.normalize(),
		log:       log,
	}
}

func (uc *AnswerUseCase) GenerateAnswer(ctx context.Context, query string) domain.AnswerResult {
	start := time.Now()
	result := uc.generate(ctx, query, start)
	uc.record(ctx, query, result)
	return result
}

func (uc *AnswerUseCase) generate(ctx context.Context, query string, start time.Time) domain.AnswerResult {
	if strings.TrimSpace(query) == "" {
		return degradedAnswer(domain.AnswerGeneral, answerNoEvidence, start)
	}

	answerType := classifyQuery(query)

	retrieved, err := uc.searcher.SearchWithReranking(ctx, query, uc.opts.RetrieveTopN, false)
	if err != nil {
		uc.log.Warn("answer_retrieval_failed", "error", err)
		return degradedAnswer(answerType, answerNoEvidence, start)
	}
	if len(retrieved) == 0 {
		return degradedAnswer(answerType, answerNoEvidence, start)
	}

	passages := make([]string, 0, len(retrieved))
	for _, r := range retrieved {
		passages = append(passages, r.Document.Text)
	}

	genCtx, cancel := context.WithTimeout(ctx, uc.opts.GenerateTimeout)
	defer cancel()
	text, err := uc.generator.Generate(genCtx, buildPrompt(answerType, query), passages)
	if err != nil || strings.TrimSpace(text) == "" {
		uc.log.Warn("answer_generation_failed", "error", err)
		// A backend failure reports general: the classified shape was never
		// produced, unlike the no-evidence case where it still describes
		// what was asked.
		return degradedAnswer(domain.AnswerGeneral, answerDegraded, start)
	}

	return domain.AnswerResult{
		Answer:          text,
		AnswerType:      answerType,
		ConfidenceScore: confidence(text, retrieved),
		Citations:       buildCitations(retrieved, uc.opts.ExcerptChars),
		GenerationTime:  time.Since(start),
	}
}

func (uc *AnswerUseCase) record(ctx context.Context, query string, result domain.AnswerResult) {
	if uc.audit == nil {
		return
	}
	if err := uc.audit.Record(ctx, query, result); err != nil {
		uc.log.Warn("answer_audit_failed", "error", err)
	}
}

func degradedAnswer(answerType domain.AnswerType, text string, start time.Time) domain.AnswerResult {
	return domain.AnswerResult{
		Answer:          text,
		AnswerType:      answerType,
		ConfidenceScore: 0,
		Citations:       []domain.Citation{},
		GenerationTime:  time.Since(start),
	}
}

// confidence blends retrieval strength, cross-passage agreement, and how much
// of the generated text is actually grounded in the retrieved passages.
func confidence(answer string, retrieved []domain.RerankedResult) float64 {
	top := clamp01(retrieved[0].RerankScore)

	agreeing := 0
	for _, r := range retrieved {
		if r.RerankScore >= 0.5*retrieved[0].RerankScore {
			agreeing++
		}
	}
	agreement := float64(agreeing) / float64(len(retrieved))

	score := confidenceTopWeight*top +
		confidenceAgreementWeight*agreement +
		confidenceGroundingWeight*groundingRatio(answer, retrieved)
	return clamp01(score)
}

// groundingRatio is the fraction of the answer's content words that occur in
// at least one retrieved passage.
func groundingRatio(answer string, retrieved []domain.RerankedResult) float64 {
	answerTokens := splitAlphaNumLower(answer)
	if len(answerTokens) == 0 {
		return 0
	}

	corpus := make(map[string]struct{})
	for _, r := range retrieved {
		for _, token := range splitAlphaNumLower(r.Document.Text) {
			corpus[token] = struct{}{}
		}
	}

	grounded := 0
	for _, token := range answerTokens {
		if _, ok := corpus[token]; ok {
			grounded++
		}
	}
	return float64(grounded) / float64(len(answerTokens))
}

// buildCitations keeps retrieval rank order, one citation per source.
func buildCitations(retrieved []domain.RerankedResult, excerptChars int) []domain.Citation {
	citations := make([]domain.Citation, 0, len(retrieved))
	seen := make(map[string]struct{}, len(retrieved))
	for _, r := range retrieved {
		if _, dup := seen[r.Document.ID]; dup {
			continue
		}
		seen[r.Document.ID] = struct{}{}

		name := r.Document.Source
		if name == "" {
			name = r.Document.ID
		}
		citations = append(citations, domain.Citation{
			SourceID:   r.Document.ID,
			SourceName: name,
			Excerpt:    excerpt(r.Document.Text, excerptChars),
		})
	}
	return citations
}

// excerpt truncates at a word boundary near the limit.
func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if idx := strings.LastIndexByte(cut, ' '); idx > limit/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func splitAlphaNumLower(s string) []string {
	var tokens []string
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

var _ ports.AnswerService = (*AnswerUseCase)(nil)

// Package rerank provides second-pass relevance scorers over fused candidates.
package rerank

import (
	"context"
	"strings"
	"unicode"
)

// LexicalScorer scores query/document relevance from surface evidence:
// token overlap plus exact phrase hits. Scores land in [0,1] and need no
// external calls, so it is the default scorer.
type LexicalScorer struct{}

func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

func (s *LexicalScorer) Name() string { return "lexical" }

func (s *LexicalScorer) Score(_ context.Context, query, documentText string) (float64, error) {
	queryTokens := splitAlphaNumLower(query)
	if len(queryTokens) == 0 || documentText == "" {
		return 0, nil
	}

	docTokens := splitAlphaNumLower(documentText)
	docSet := toTokenSet(docTokens)

	overlap := tokenOverlap(queryTokens, docSet)
	phrase := phraseHit(queryTokens, docTokens)

	return 0.70*overlap + 0.30*phrase, nil
}

func tokenOverlap(queryTokens []string, docSet map[string]struct{}) float64 {
	if len(queryTokens) == 0 || len(docSet) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(queryTokens))
	matches := 0
	total := 0
	for _, token := range queryTokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		total++
		if _, ok := docSet[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(total)
}

// phraseHit is the fraction of adjacent query token pairs that appear
// adjacent in the document. Multi-word names only count when kept together.
func phraseHit(queryTokens, docTokens []string) float64 {
	if len(queryTokens) < 2 {
		return 0
	}

	docText := " " + strings.Join(docTokens, " ") + " "
	hits := 0
	pairs := 0
	for i := 0; i+1 < len(queryTokens); i++ {
		pairs++
		if strings.Contains(docText, " "+queryTokens[i]+" "+queryTokens[i+1]+" ") {
			hits++
		}
	}
	return float64(hits) / float64(pairs)
}

func toTokenSet(tokens []string) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
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

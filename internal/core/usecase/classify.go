package usecase

import (
	"strings"

	"github.com/ragline/docqa/internal/core/domain"
)

var (
	comparativeCues = []string{"difference between", "compare", "versus", " vs ", " vs.", "better than"}
	proceduralCues  = []string{"how do i", "how to", "steps", "procedure", "set up", "setup", "guide", "instructions", "configure"}
	factualCues     = []string{"how many", "how much", "what is", "what are", "when ", "where ", "who ", "which "}

	conversationalCues = []string{"tell me about", "talk about", "what do you think", "overview of", "anything about"}
)

// classifyQuery picks the answer shape from surface cues in the query.
// Comparative wins over procedural wins over factual; "how do I compare"
// style queries resolve in that order on purpose. A query with no cue at all
// defaults to factual: a bare noun phrase like "vacation days for senior
// employees" asks for a specific fact. Only blank queries and open-ended
// conversational phrasings classify as general.
func classifyQuery(query string) domain.AnswerType {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return domain.AnswerGeneral
	}
	q := " " + strings.ToLower(trimmed) + " "

	for _, cue := range comparativeCues {
		if strings.Contains(q, cue) {
			return domain.AnswerComparative
		}
	}
	for _, cue := range proceduralCues {
		if strings.Contains(q, cue) {
			return domain.AnswerProcedural
		}
	}
	for _, cue := range factualCues {
		if strings.Contains(q, cue) {
			return domain.AnswerFactual
		}
	}
	for _, cue := range conversationalCues {
		if strings.Contains(q, cue) {
			return domain.AnswerGeneral
		}
	}
	return domain.AnswerFactual
}

package usecase

import (
	"fmt"

	"github.com/ragline/docqa/internal/core/domain"
)

const basePromptRules = "Answer using only the provided context passages. " +
	"If the context does not contain the answer, say so plainly. Do not invent facts."

// buildPrompt shapes the generation instruction to the classified answer
// type. The context passages travel separately to the generation backend.
func buildPrompt(answerType domain.AnswerType, query string) string {
	switch answerType {
	case domain.AnswerFactual:
		return fmt.Sprintf(
			"%s Give a direct, specific answer with the exact figure or fact.\n\nQuestion: %s",
			basePromptRules, query,
		)
	case domain.AnswerProcedural:
		return fmt.Sprintf(
			"%s Answer with a numbered list of steps in the order they must be performed.\n\nQuestion: %s",
			basePromptRules, query,
		)
	case domain.AnswerComparative:
		return fmt.Sprintf(
			"%s Contrast the options point by point, naming each side explicitly.\n\nQuestion: %s",
			basePromptRules, query,
		)
	default:
		return fmt.Sprintf(
			"%s Give a concise, helpful answer.\n\nQuestion: %s",
			basePromptRules, query,
		)
	}
}

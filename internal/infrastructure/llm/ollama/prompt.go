package ollama

import (
	"fmt"
	"strings"
)

// assembleGenerationInput joins the instruction with numbered context
// passages. Passage numbering is stable so answers can reference sources.
func assembleGenerationInput(prompt string, passages []string) string {
	if len(passages) == 0 {
		return prompt
	}

	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nContext:\n")
	for i, passage := range passages {
		b.WriteString(fmt.Sprintf("[%d] %s\n\n", i+1, passage))
	}
	return b.String()
}

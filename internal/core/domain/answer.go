package domain

import "time"

// AnswerType classifies the query, not the documents it retrieves.
type AnswerType string

const (
	AnswerFactual     AnswerType = "factual"
	AnswerProcedural  AnswerType = "procedural"
	AnswerComparative AnswerType = "comparative"
	AnswerGeneral     AnswerType = "general"
)

// Citation points at one source document that contributed to an answer.
// Citations reflect retrieval provenance, not generation behavior.
type Citation struct {
	SourceID   string `json:"source_id"`
	SourceName string `json:"source_name"`
	Excerpt    string `json:"excerpt"`
}

// AnswerResult is the terminal output of the answer synthesis pipeline.
// It is created once per query and never mutated afterwards.
type AnswerResult struct {
	Answer          string        `json:"answer"`
	AnswerType      AnswerType    `json:"answer_type"`
	ConfidenceScore float64       `json:"confidence_score"`
	Citations       []Citation    `json:"citations"`
	GenerationTime  time.Duration `json:"generation_time"`
}

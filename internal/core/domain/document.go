package domain

import (
	"errors"
	"strings"
)

// Document is an immutable corpus record. It is created at ingestion and
// never mutated; removal happens only through a full corpus reset.
type Document struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Source   string            `json:"source"`
	DocType  string            `json:"doc_type"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (d Document) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return WrapError(ErrInvalidInput, "validate document", errors.New("document id is required"))
	}
	if strings.TrimSpace(d.Text) == "" {
		return WrapError(ErrInvalidInput, "validate document", errors.New("document text is required"))
	}
	return nil
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ragline/docqa/internal/core/domain"
	"github.com/ragline/docqa/internal/core/ports"
)

type IngestOptions struct {
	EmbedTimeout time.Duration
}

// IngestUseCase embeds incoming documents and indexes them atomically: a
// batch either lands in the corpus as a whole or not at all.
type IngestUseCase struct {
	store     ports.CorpusIndex
	embedder  ports.Embedder
	publisher ports.EventPublisher
	opts      IngestOptions
	log       *slog.Logger
}

func NewIngestUseCase(
	store ports.CorpusIndex,
	embedder ports.Embedder,
	publisher ports.EventPublisher,
	opts IngestOptions,
	log *slog.Logger,
) *IngestUseCase {
	if opts.EmbedTimeout <= 0 {
		opts.EmbedTimeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &IngestUseCase{
		store:     store,
		embedder:  embedder,
		publisher: publisher,
		opts:      opts,
		log:       log,
	}
}

func (uc *IngestUseCase) AddDocuments(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "add documents", fmt.Errorf("empty batch"))
	}
	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			return err
		}
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	embedCtx, cancel := context.WithTimeout(ctx, uc.opts.EmbedTimeout)
	defer cancel()
	vectors, err := uc.embedder.Embed(embedCtx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embed documents: got %d vectors for %d documents", len(vectors), len(docs))
	}

	if err := uc.store.Index(ctx, docs, vectors); err != nil {
		return err
	}

	uc.log.Info("documents_indexed", "count", len(docs), "corpus_size", uc.store.Len())
	uc.announce(ctx, docs)
	return nil
}

// AddDocument assigns an id and indexes a single document.
func (uc *IngestUseCase) AddDocument(
	ctx context.Context,
	text, docType, source string,
	metadata map[string]string,
) (domain.Document, error) {
	doc := domain.Document{
		ID:       uuid.NewString(),
		Text:     text,
		Source:   source,
		DocType:  docType,
		Metadata: metadata,
	}
	if err := uc.AddDocuments(ctx, []domain.Document{doc}); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

// announce is best effort: a broker outage never rolls back an index write.
func (uc *IngestUseCase) announce(ctx context.Context, docs []domain.Document) {
	if uc.publisher == nil {
		return
	}
	for _, doc := range docs {
		if err := uc.publisher.PublishDocumentIndexed(ctx, doc.ID); err != nil {
			uc.log.Warn("publish_document_indexed_failed", "document_id", doc.ID, "error", err)
		}
	}
}

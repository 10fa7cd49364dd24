package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ragline/docqa/internal/core/domain"
)

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishDocumentIndexed(_ context.Context, documentID string) error {
	f.published = append(f.published, documentID)
	return f.err
}

func TestAddDocumentsEmbedsAndIndexesBatch(t *testing.T) {
	store := &fakeIndex{}
	embedder := &fakeEmbedder{}
	publisher := &fakePublisher{}
	uc := NewIngestUseCase(store, embedder, publisher, IngestOptions{}, nil)

	docs := []domain.Document{
		{ID: "a", Text: "first document"},
		{ID: "b", Text: "second document"},
	}
	if err := uc.AddDocuments(context.Background(), docs); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 indexed documents, got %d", store.Len())
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 indexed events, got %d", len(publisher.published))
	}
}

func TestAddDocumentsRejectsEmptyBatch(t *testing.T) {
	uc := NewIngestUseCase(&fakeIndex{}, &fakeEmbedder{}, nil, IngestOptions{}, nil)

	if err := uc.AddDocuments(context.Background(), nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAddDocumentsRejectsInvalidDocument(t *testing.T) {
	uc := NewIngestUseCase(&fakeIndex{}, &fakeEmbedder{}, nil, IngestOptions{}, nil)

	err := uc.AddDocuments(context.Background(), []domain.Document{{ID: "a", Text: "   "}})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank text, got %v", err)
	}
}

func TestAddDocumentsPropagatesEmbedFailure(t *testing.T) {
	store := &fakeIndex{}
	uc := NewIngestUseCase(store, &fakeEmbedder{err: errors.New("backend down")}, nil, IngestOptions{}, nil)

	err := uc.AddDocuments(context.Background(), []domain.Document{{ID: "a", Text: "text"}})
	if err == nil {
		t.Fatalf("expected embed failure to propagate")
	}
	if store.Len() != 0 {
		t.Fatalf("nothing must be indexed on embed failure, got %d", store.Len())
	}
}

func TestAddDocumentsPublisherFailureIsBestEffort(t *testing.T) {
	store := &fakeIndex{}
	publisher := &fakePublisher{err: errors.New("broker offline")}
	uc := NewIngestUseCase(store, &fakeEmbedder{}, publisher, IngestOptions{}, nil)

	if err := uc.AddDocuments(context.Background(), []domain.Document{{ID: "a", Text: "text"}}); err != nil {
		t.Fatalf("publish failure must not fail ingestion: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("document must stay indexed, got %d", store.Len())
	}
}

func TestAddDocumentAssignsID(t *testing.T) {
	store := &fakeIndex{}
	uc := NewIngestUseCase(store, &fakeEmbedder{}, nil, IngestOptions{}, nil)

	doc, err := uc.AddDocument(context.Background(), "some text", "manual", "guide.txt", map[string]string{"team": "it"})
	if err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected generated document id")
	}
	if doc.Source != "guide.txt" || doc.DocType != "manual" || doc.Metadata["team"] != "it" {
		t.Fatalf("document fields lost: %+v", doc)
	}
	if store.Len() != 1 {
		t.Fatalf("expected document indexed, got %d", store.Len())
	}
}

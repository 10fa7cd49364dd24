package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ragline/docqa/internal/core/domain"
)

func newLogWithMock(t *testing.T) (*AnswerLog, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &AnswerLog{db: db}, mock, func() { _ = db.Close() }
}

func TestRecordInsertsAnswerRow(t *testing.T) {
	log, mock, done := newLogWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO answer_log").
		WithArgs(
			"how many vacation days",
			"Employees receive 15 days.",
			"factual",
			0.82,
			sqlmock.AnyArg(),
			int64(1200),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := log.Record(context.Background(), "how many vacation days", domain.AnswerResult{
		Answer:          "Employees receive 15 days.",
		AnswerType:      domain.AnswerFactual,
		ConfidenceScore: 0.82,
		Citations: []domain.Citation{
			{SourceID: "doc-1", SourceName: "hr_handbook.txt", Excerpt: "15 days"},
		},
		GenerationTime: 1200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordWrapsDriverError(t *testing.T) {
	log, mock, done := newLogWithMock(t)
	defer done()

	driverErr := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO answer_log").WillReturnError(driverErr)

	err := log.Record(context.Background(), "q", domain.AnswerResult{AnswerType: domain.AnswerGeneral})
	if !errors.Is(err, driverErr) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

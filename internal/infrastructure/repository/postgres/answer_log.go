// Package postgres persists an audit trail of synthesized answers for
// offline quality evaluation. The corpus itself stays in memory; only
// answer provenance is durable.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ragline/docqa/internal/core/domain"
)

type AnswerLog struct {
	db *sql.DB
}

func NewAnswerLog(db *sql.DB) *AnswerLog {
	return &AnswerLog{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (l *AnswerLog) EnsureSchema(ctx context.Context) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent api startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS answer_log (
	id BIGSERIAL PRIMARY KEY,
	query TEXT NOT NULL,
	answer TEXT NOT NULL,
	answer_type TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	citations JSONB NOT NULL DEFAULT '[]'::jsonb,
	generation_ms BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_answer_log_created_at ON answer_log(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (l *AnswerLog) Record(ctx context.Context, query string, result domain.AnswerResult) error {
	citations, err := json.Marshal(result.Citations)
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}

	_, err = l.db.ExecContext(ctx, `
INSERT INTO answer_log (query, answer, answer_type, confidence, citations, generation_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		query,
		result.Answer,
		string(result.AnswerType),
		result.ConfidenceScore,
		citations,
		result.GenerationTime.Milliseconds(),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert answer log: %w", err)
	}
	return nil
}

// Package postgres persists pronunciation attempts and prompt templates in
// PostgreSQL via pgx. Word scores and the deep-analysis enrichment are
// stored as JSONB so the schema stays stable while the payload shapes
// evolve.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the phonaid tables. Execute it via
// [Store.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS pronunciation_attempts (
    id                 TEXT PRIMARY KEY,
    flashcard_id       TEXT NOT NULL,
    user_id            TEXT NOT NULL,
    audio_ref          TEXT NOT NULL,
    target_text        TEXT NOT NULL,
    transcribed_text   TEXT NOT NULL DEFAULT '',
    language           TEXT NOT NULL DEFAULT '',
    overall_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
    word_scores        JSONB NOT NULL DEFAULT '[]',
    ipa_target         TEXT NOT NULL DEFAULT '',
    ipa_transcribed    TEXT NOT NULL DEFAULT '',
    enrichment         JSONB,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_attempts_user ON pronunciation_attempts(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_attempts_flashcard ON pronunciation_attempts(flashcard_id, created_at DESC);

CREATE TABLE IF NOT EXISTS prompt_templates (
    id                  BIGSERIAL PRIMARY KEY,
    kind                TEXT NOT NULL,
    language_code       TEXT NOT NULL,
    native_language     TEXT NOT NULL DEFAULT '',
    template            TEXT NOT NULL,
    known_interferences JSONB NOT NULL DEFAULT '[]',
    active              BOOLEAN NOT NULL DEFAULT true,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_prompt_templates_lookup ON prompt_templates(kind, language_code) WHERE active;
`

// DB is the database interface used by [Store]. Both *pgxpool.Pool and
// *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store provides the attempt-store and template-store contracts over one
// database handle.
type Store struct {
	db DB
}

// New creates a [Store] that uses the given database connection or pool.
// The caller is responsible for calling [Store.Migrate] to ensure the
// schema exists before issuing queries.
func New(db DB) *Store {
	return &Store{db: db}
}

// Migrate executes the [Schema] DDL against the database, creating the
// tables and indexes if they do not already exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/phonaid/phonaid/internal/attempt"
	"github.com/phonaid/phonaid/internal/score"
)

// Compile-time interface check.
var _ attempt.Store = (*Store)(nil)

const attemptColumns = `id, flashcard_id, user_id, audio_ref, target_text, transcribed_text,
       language, overall_confidence, word_scores, ipa_target, ipa_transcribed,
       enrichment, created_at`

// Insert implements attempt.Store.
func (s *Store) Insert(ctx context.Context, a *attempt.Attempt) error {
	wordsJSON, err := json.Marshal(emptyScores(a.WordScores))
	if err != nil {
		return fmt.Errorf("postgres: marshal word_scores: %w", err)
	}

	const query = `
		INSERT INTO pronunciation_attempts (
			id, flashcard_id, user_id, audio_ref, target_text, transcribed_text,
			language, overall_confidence, word_scores, ipa_target, ipa_transcribed, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err = s.db.Exec(ctx, query,
		a.ID, a.FlashcardID, a.UserID, a.AudioRef, a.TargetText, a.TranscribedText,
		a.Language, a.OverallConfidence, wordsJSON, a.IPATarget, a.IPATranscribed, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert attempt: %w", err)
	}
	return nil
}

// Get implements attempt.Store.
func (s *Store) Get(ctx context.Context, id string) (*attempt.Attempt, error) {
	const query = `SELECT ` + attemptColumns + `
		FROM pronunciation_attempts
		WHERE id = $1`

	a, err := scanAttempt(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attempt.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get attempt %q: %w", id, err)
	}
	return a, nil
}

// ListByUser implements attempt.Store.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]*attempt.Attempt, error) {
	const query = `SELECT ` + attemptColumns + `
		FROM pronunciation_attempts
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list by user: %w", err)
	}
	return collectAttempts(rows)
}

// ListByFlashcard implements attempt.Store. A limit of 0 returns all rows
// after skip.
func (s *Store) ListByFlashcard(ctx context.Context, flashcardID string, skip, limit int) ([]*attempt.Attempt, error) {
	query := `SELECT ` + attemptColumns + `
		FROM pronunciation_attempts
		WHERE flashcard_id = $1
		ORDER BY created_at DESC
		OFFSET $2`
	args := []any{flashcardID, skip}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list by flashcard: %w", err)
	}
	return collectAttempts(rows)
}

// CountByFlashcard implements attempt.Store.
func (s *Store) CountByFlashcard(ctx context.Context, flashcardID string) (int, error) {
	const query = `SELECT count(*) FROM pronunciation_attempts WHERE flashcard_id = $1`

	var n int
	if err := s.db.QueryRow(ctx, query, flashcardID).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count by flashcard: %w", err)
	}
	return n, nil
}

// Enrich implements attempt.Store. The WHERE clause enforces write-once at
// the database so concurrent analysis passes cannot both win.
func (s *Store) Enrich(ctx context.Context, id string, e *attempt.Enrichment) error {
	enrichJSON, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("postgres: marshal enrichment: %w", err)
	}

	const query = `
		UPDATE pronunciation_attempts
		SET enrichment = $2
		WHERE id = $1 AND enrichment IS NULL`

	tag, err := s.db.Exec(ctx, query, id, enrichJSON)
	if err != nil {
		return fmt.Errorf("postgres: enrich attempt %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the attempt does not exist or it is already enriched.
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return attempt.ErrAlreadyEnriched
	}
	return nil
}

// scanAttempt reads one attempt row.
func scanAttempt(row pgx.Row) (*attempt.Attempt, error) {
	var a attempt.Attempt
	var wordsJSON []byte
	var enrichJSON []byte

	err := row.Scan(
		&a.ID, &a.FlashcardID, &a.UserID, &a.AudioRef, &a.TargetText, &a.TranscribedText,
		&a.Language, &a.OverallConfidence, &wordsJSON, &a.IPATarget, &a.IPATranscribed,
		&enrichJSON, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(wordsJSON, &a.WordScores); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal word_scores: %w", err)
	}
	if enrichJSON != nil {
		var e attempt.Enrichment
		if err := json.Unmarshal(enrichJSON, &e); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal enrichment: %w", err)
		}
		a.Enrichment = &e
	}
	return &a, nil
}

// collectAttempts drains rows into a slice.
func collectAttempts(rows pgx.Rows) ([]*attempt.Attempt, error) {
	defer rows.Close()

	var attempts []*attempt.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list attempts: %w", err)
	}
	return attempts, nil
}

// emptyScores returns s if non-nil, otherwise an empty non-nil slice. This
// ensures JSON marshalling produces "[]" instead of "null".
func emptyScores(s []score.WordScore) []score.WordScore {
	if s == nil {
		return []score.WordScore{}
	}
	return s
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/phonaid/phonaid/internal/prompt"
)

// Compile-time interface check.
var _ prompt.Store = (*Store)(nil)

// Lookup implements prompt.Store: the newest active row for the exact
// language wins; when none exists, the wildcard row is tried before
// returning prompt.ErrNotFound.
func (s *Store) Lookup(ctx context.Context, kind prompt.Kind, languageCode string) (*prompt.Template, error) {
	t, err := s.lookupExact(ctx, kind, languageCode)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, prompt.ErrNotFound) {
		return nil, err
	}
	if languageCode == prompt.WildcardLanguage {
		return nil, prompt.ErrNotFound
	}
	return s.lookupExact(ctx, kind, prompt.WildcardLanguage)
}

func (s *Store) lookupExact(ctx context.Context, kind prompt.Kind, languageCode string) (*prompt.Template, error) {
	const query = `
		SELECT kind, language_code, native_language, template, known_interferences, active
		FROM prompt_templates
		WHERE kind = $1 AND language_code = $2 AND active
		ORDER BY created_at DESC
		LIMIT 1`

	var t prompt.Template
	var interferencesJSON []byte

	err := s.db.QueryRow(ctx, query, string(kind), languageCode).Scan(
		&t.Kind, &t.LanguageCode, &t.NativeLanguage, &t.Text, &interferencesJSON, &t.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, prompt.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: lookup template %s/%s: %w", kind, languageCode, err)
	}

	if err := json.Unmarshal(interferencesJSON, &t.KnownInterferences); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal known_interferences: %w", err)
	}
	return &t, nil
}

// UpsertTemplate inserts a new active template row for (kind, language),
// deactivating any previous active row. Used by operational tooling when a
// language team tunes a prompt.
func (s *Store) UpsertTemplate(ctx context.Context, t *prompt.Template) error {
	interferencesJSON, err := json.Marshal(emptyStrings(t.KnownInterferences))
	if err != nil {
		return fmt.Errorf("postgres: marshal known_interferences: %w", err)
	}

	const deactivate = `
		UPDATE prompt_templates SET active = false
		WHERE kind = $1 AND language_code = $2 AND active`
	if _, err := s.db.Exec(ctx, deactivate, string(t.Kind), t.LanguageCode); err != nil {
		return fmt.Errorf("postgres: deactivate templates %s/%s: %w", t.Kind, t.LanguageCode, err)
	}

	const insert = `
		INSERT INTO prompt_templates (kind, language_code, native_language, template, known_interferences, active)
		VALUES ($1,$2,$3,$4,$5,$6)`
	_, err = s.db.Exec(ctx, insert,
		string(t.Kind), t.LanguageCode, t.NativeLanguage, t.Text, interferencesJSON, t.Active,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert template %s/%s: %w", t.Kind, t.LanguageCode, err)
	}
	return nil
}

// emptyStrings returns s if non-nil, otherwise an empty non-nil slice.
func emptyStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

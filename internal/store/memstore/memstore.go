// Package memstore provides in-memory implementations of the attempt and
// prompt-template store contracts. Used by tests and by the CLI's one-shot
// mode, where spinning up PostgreSQL would be overkill.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/phonaid/phonaid/internal/attempt"
	"github.com/phonaid/phonaid/internal/prompt"
)

// Store keeps attempts and templates in process memory. Safe for concurrent
// use.
type Store struct {
	mu        sync.RWMutex
	attempts  map[string]*attempt.Attempt
	order     []string
	templates []*prompt.Template
}

// Compile-time interface checks.
var (
	_ attempt.Store = (*Store)(nil)
	_ prompt.Store  = (*Store)(nil)
)

// New creates an empty Store.
func New() *Store {
	return &Store{
		attempts: make(map[string]*attempt.Attempt),
	}
}

// Insert implements attempt.Store.
func (s *Store) Insert(_ context.Context, a *attempt.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *a
	s.attempts[a.ID] = &cp
	s.order = append(s.order, a.ID)
	return nil
}

// Get implements attempt.Store.
func (s *Store) Get(_ context.Context, id string) (*attempt.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attempts[id]
	if !ok {
		return nil, attempt.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// ListByUser implements attempt.Store, newest first.
func (s *Store) ListByUser(_ context.Context, userID string) ([]*attempt.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*attempt.Attempt
	for _, a := range s.attempts {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListByFlashcard implements attempt.Store, newest first. A limit of 0
// returns all rows after skip.
func (s *Store) ListByFlashcard(_ context.Context, flashcardID string, skip, limit int) ([]*attempt.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*attempt.Attempt
	for _, a := range s.attempts {
		if a.FlashcardID == flashcardID {
			cp := *a
			all = append(all, &cp)
		}
	}
	sortNewestFirst(all)

	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// CountByFlashcard implements attempt.Store.
func (s *Store) CountByFlashcard(_ context.Context, flashcardID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, a := range s.attempts {
		if a.FlashcardID == flashcardID {
			n++
		}
	}
	return n, nil
}

// Enrich implements attempt.Store with the write-once contract.
func (s *Store) Enrich(_ context.Context, id string, e *attempt.Enrichment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[id]
	if !ok {
		return attempt.ErrNotFound
	}
	if a.Enrichment != nil {
		return attempt.ErrAlreadyEnriched
	}
	cp := *e
	a.Enrichment = &cp
	return nil
}

// AddTemplate registers a prompt template.
func (s *Store) AddTemplate(t *prompt.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	s.templates = append(s.templates, &cp)
}

// Lookup implements prompt.Store: exact active match first, then the
// wildcard row.
func (s *Store) Lookup(_ context.Context, kind prompt.Kind, languageCode string) (*prompt.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t := s.findActive(kind, languageCode); t != nil {
		return t, nil
	}
	if languageCode != prompt.WildcardLanguage {
		if t := s.findActive(kind, prompt.WildcardLanguage); t != nil {
			return t, nil
		}
	}
	return nil, prompt.ErrNotFound
}

func (s *Store) findActive(kind prompt.Kind, languageCode string) *prompt.Template {
	// Newest registration wins, matching the database store's behaviour.
	for i := len(s.templates) - 1; i >= 0; i-- {
		t := s.templates[i]
		if t.Active && t.Kind == kind && strings.EqualFold(t.LanguageCode, languageCode) {
			cp := *t
			return &cp
		}
	}
	return nil
}

func sortNewestFirst(attempts []*attempt.Attempt) {
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].CreatedAt.After(attempts[j].CreatedAt)
	})
}

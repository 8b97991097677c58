package attempt

import (
	"context"
	"errors"
)

// ErrNotFound is returned by store lookups when no attempt has the given id.
var ErrNotFound = errors.New("attempt: not found")

// ErrAlreadyEnriched is returned by Enrich when the attempt already carries
// a deep-analysis payload. Enrichment is write-once.
var ErrAlreadyEnriched = errors.New("attempt: already enriched")

// Store is the persistence contract for pronunciation attempts.
//
// Attempts are append-only: Insert creates, Enrich adds the one optional
// late payload, and nothing is ever updated in place or deleted here.
// Implementations must be safe for concurrent use.
type Store interface {
	// Insert persists a new attempt. The caller assigns the ID.
	Insert(ctx context.Context, a *Attempt) error

	// Get returns the attempt with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Attempt, error)

	// ListByUser returns all attempts of a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Attempt, error)

	// ListByFlashcard returns a page of a flashcard's attempts, newest
	// first. skip and limit follow the usual offset-pagination contract; a
	// limit of 0 means no limit.
	ListByFlashcard(ctx context.Context, flashcardID string, skip, limit int) ([]*Attempt, error)

	// CountByFlashcard returns the total number of attempts for a flashcard.
	CountByFlashcard(ctx context.Context, flashcardID string) (int, error)

	// Enrich attaches the deep-analysis payload to an attempt. Returns
	// ErrNotFound when the attempt does not exist and ErrAlreadyEnriched
	// when a payload is already present.
	Enrich(ctx context.Context, id string, e *Enrichment) error
}

package db

import (
	"context"
	"errors"

	"github.com/balkashynov/fiches/internal/models"
)

// ErrNotSupported is returned by optional operations a backend cannot serve
var ErrNotSupported = errors.New("operation not supported by this backend")

// Adapter mirrors the store to a persistence backend. Every write is an
// idempotent upsert or delete by id; a failed write never affects the
// in-memory store.
type Adapter interface {
	// FetchAll returns the whole store ordered by position, then creation
	// time, or nil when the backend holds nothing
	FetchAll(ctx context.Context) (*models.Store, error)

	// Upserts carry the row's index in the store (a university among
	// universities, a subject or item within its university) so that
	// concurrent writes keep the display order.
	UpsertUniversity(ctx context.Context, id, name string, position int) error
	UpsertSubject(ctx context.Context, universityID string, subject models.Subject, position int) error
	UpsertItem(ctx context.Context, item models.Item, position int) error

	// DeleteUniversity and DeleteSubject cascade to what they own
	DeleteUniversity(ctx context.Context, id string) error
	DeleteSubject(ctx context.Context, id string) error
	DeleteItem(ctx context.Context, id string) error
}

// Event tells subscribers the backend changed and should be fetched again
type Event struct {
	Path string
}

// Notifier is implemented by adapters able to report outside changes
type Notifier interface {
	// Subscribe streams events until ctx is cancelled, then closes the channel
	Subscribe(ctx context.Context) (<-chan Event, error)
}

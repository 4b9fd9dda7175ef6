package actions

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced university, subject or item does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalid means a supplied value was rejected; nothing was changed
	ErrInvalid = errors.New("invalid value")
)

// SyncError reports backend writes that failed after the local change was
// kept. It is a warning: the store is consistent, the backend is stale.
type SyncError struct {
	Failed int
	Total  int
	// First is the first failure seen
	First error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%d of %d remote writes failed: %v", e.Failed, e.Total, e.First)
}

func (e *SyncError) Unwrap() error {
	return e.First
}

// IsSyncWarning reports whether err only signals a stale backend
func IsSyncWarning(err error) bool {
	var syncErr *SyncError
	return errors.As(err, &syncErr)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q %w", kind, id, ErrNotFound)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

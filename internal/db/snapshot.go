package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/balkashynov/fiches/internal/importer"
	"github.com/balkashynov/fiches/internal/models"
)

const (
	lockTimeout = 3 * time.Second
	lockRetry   = 100 * time.Millisecond
)

// Snapshot is the local JSON copy of the store, including the UI state.
// It is what the dashboard falls back to when the backend has nothing.
type Snapshot struct {
	path string
	lock *flock.Flock
}

// NewSnapshot returns a snapshot stored at path, locked through path.lock
func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the snapshot file location
func (s *Snapshot) Path() string {
	return s.path
}

func (s *Snapshot) acquire(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	locked, err := s.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire snapshot lock")
	}
	return func() { _ = s.lock.Unlock() }, nil
}

// Load reads the snapshot. A missing or empty file yields a nil store.
func (s *Snapshot) Load(ctx context.Context) (*models.Store, error) {
	unlock, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() == 0 {
		return nil, nil
	}
	store, err := importer.DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.path, err)
	}
	return store, nil
}

// Save replaces the snapshot atomically (temp file then rename)
func (s *Snapshot) Save(ctx context.Context, store *models.Store) error {
	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := importer.Export(tmp, store); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

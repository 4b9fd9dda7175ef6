// Package actions owns the dashboard store. Every change goes through a
// Service method: it is validated, applied under the service lock, saved to
// the local snapshot and mirrored to the backend.
package actions

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/balkashynov/fiches/internal/db"
	"github.com/balkashynov/fiches/internal/ids"
	"github.com/balkashynov/fiches/internal/importer"
	"github.com/balkashynov/fiches/internal/models"
)

const defaultConcurrency = 8

// Options wires a Service to its collaborators. Zero values get defaults:
// an in-memory backend, no snapshot, UUIDs, the default logger, time.Now.
type Options struct {
	Adapter  db.Adapter
	Snapshot *db.Snapshot
	IDs      ids.Generator
	Log      *slog.Logger
	Now      func() time.Time
	// Concurrency bounds parallel backend writes
	Concurrency int
}

// Service serialises all access to one store
type Service struct {
	mu       sync.Mutex
	store    *models.Store
	adapter  db.Adapter
	snapshot *db.Snapshot
	ids      ids.Generator
	log      *slog.Logger
	now      func() time.Time
	limit    int
}

// New wraps an already loaded store. A nil store starts empty.
func New(store *models.Store, opts Options) *Service {
	s := &Service{
		store:    store,
		adapter:  opts.Adapter,
		snapshot: opts.Snapshot,
		ids:      opts.IDs,
		log:      opts.Log,
		now:      opts.Now,
		limit:    opts.Concurrency,
	}
	if s.adapter == nil {
		s.adapter = db.NewMemory()
	}
	if s.ids == nil {
		s.ids = ids.UUID{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.limit <= 0 {
		s.limit = defaultConcurrency
	}
	if s.store == nil {
		s.store = models.NewStore(s.now())
	}
	return s
}

// Open loads the store (backend, then snapshot, then demo data) and returns
// the service. Demo data is pushed to the backend; a failure to do so comes
// back as a *SyncError alongside a usable service.
func Open(ctx context.Context, opts Options) (*Service, db.Source, error) {
	s := New(nil, opts)
	store, source := db.Loader{
		Adapter:  s.adapter,
		Snapshot: s.snapshot,
		IDs:      s.ids,
		Log:      s.log,
	}.Load(ctx, s.now())
	s.store = store
	s.log.Debug("store loaded", "source", source.String(), "universities", len(store.Universities))

	if source != db.SourceDefaults {
		return s, source, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s, source, s.commit(ctx, s.pushAll(s.store.Universities)...)
}

// Snapshot returns a copy of the current store
func (s *Service) Snapshot() *models.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clone()
}

// Now returns the service clock's current time
func (s *Service) Now() time.Time {
	return s.now()
}

// Subscribe forwards backend change events when the backend reports them
func (s *Service) Subscribe(ctx context.Context) (<-chan db.Event, error) {
	n, ok := s.adapter.(db.Notifier)
	if !ok {
		return nil, db.ErrNotSupported
	}
	return n.Subscribe(ctx)
}

// Reload replaces the data with the backend's copy while keeping the UI
// state. It reports false when the backend had nothing to offer.
func (s *Service) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remote, err := s.adapter.FetchAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to fetch data: %w", err)
	}
	if remote == nil {
		return false, nil
	}
	remote.UI = s.store.UI
	remote.UpdatedAt = s.now()
	importer.RepairUI(remote)
	s.store = remote
	s.log.Debug("store reloaded", "universities", len(remote.Universities))
	return true, s.save(ctx)
}

// active returns the active university. Must be called with s.mu held.
func (s *Service) active() (*models.University, error) {
	univ := s.store.FindUniversity(s.store.UI.ActiveUniversityID)
	if univ == nil {
		return nil, notFound("university", s.store.UI.ActiveUniversityID)
	}
	return univ, nil
}

// write is one backend call
type write struct {
	what string
	run  func(context.Context) error
}

func (s *Service) putUniversity(u models.University, position int) write {
	return write{"university " + u.ID, func(ctx context.Context) error {
		return s.adapter.UpsertUniversity(ctx, u.ID, u.Name, position)
	}}
}

func (s *Service) putSubject(universityID string, subject models.Subject, position int) write {
	return write{"subject " + subject.ID, func(ctx context.Context) error {
		return s.adapter.UpsertSubject(ctx, universityID, subject, position)
	}}
}

func (s *Service) putItem(it models.Item, position int) write {
	return write{"item " + it.ID, func(ctx context.Context) error {
		return s.adapter.UpsertItem(ctx, it, position)
	}}
}

// pushAll mirrors whole universities: parents first so children never
// reach the backend before what owns them. Every row carries its store
// index, so the concurrent writes of a wave keep the display order.
func (s *Service) pushAll(univs []models.University) [][]write {
	var universities, subjects, items []write
	for _, u := range univs {
		universities = append(universities, s.putUniversity(u, s.store.UniversityIndex(u.ID)))
		for i, subj := range u.Subjects {
			subjects = append(subjects, s.putSubject(u.ID, subj, i))
		}
		for i, it := range u.Items {
			items = append(items, s.putItem(it, i))
		}
	}
	return [][]write{universities, subjects, items}
}

// shifted re-puts the rows that moved up after a removal at index from, so
// their stored positions match the store again
func shifted[T any](rows []T, from int, put func(T, int) write) []write {
	var writes []write
	for i := from; i < len(rows); i++ {
		writes = append(writes, put(rows[i], i))
	}
	return writes
}

// commit stamps the store, saves the snapshot and runs the backend writes
// wave by wave. Must be called with s.mu held.
func (s *Service) commit(ctx context.Context, waves ...[]write) error {
	s.store.UpdatedAt = s.now()
	if err := s.save(ctx); err != nil {
		return err
	}
	return s.sync(ctx, waves...)
}

func (s *Service) save(ctx context.Context) error {
	if s.snapshot == nil {
		return nil
	}
	if err := s.snapshot.Save(ctx, s.store); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// sync runs each wave's writes concurrently. Failures are counted, never
// retried, and do not stop the other writes.
func (s *Service) sync(ctx context.Context, waves ...[]write) error {
	var (
		mu     sync.Mutex
		failed int
		total  int
		first  error
	)
	for _, wave := range waves {
		var g errgroup.Group
		g.SetLimit(s.limit)
		for _, w := range wave {
			w := w
			total++
			g.Go(func() error {
				if err := w.run(ctx); err != nil {
					s.log.Warn("remote write failed", "write", w.what, "error", err)
					mu.Lock()
					failed++
					if first == nil {
						first = err
					}
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()
	}
	if failed == 0 {
		return nil
	}
	return &SyncError{Failed: failed, Total: total, First: first}
}

package db

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDelay coalesces the bursts of writes a single transaction produces
const watchDelay = 150 * time.Millisecond

// Subscribe watches the sqlite database file (and its journal) for writes
// made by other processes. Postgres has no file to watch.
func (g *Gorm) Subscribe(ctx context.Context) (<-chan Event, error) {
	if g.db.Dialector.Name() != DriverSQLite || g.path == "" {
		return nil, ErrNotSupported
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(g.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	base := filepath.Base(g.path)
	watched := map[string]struct{}{
		base:              {},
		base + "-wal":     {},
		base + "-journal": {},
	}

	events := make(chan Event, 1)
	go func() {
		defer close(events)
		defer func() {
			if err := watcher.Close(); err != nil {
				g.log.Warn("watcher close failed", "error", err)
			}
		}()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// A pending event already asks for a refresh
			}
		}
		throttle := newThrottle(watchDelay)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				g.log.Warn("database watcher error", "error", err)
				throttle.Enqueue(Event{Path: g.path}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
					continue
				}
				if _, ok := watched[filepath.Base(evt.Name)]; !ok {
					continue
				}
				throttle.Enqueue(Event{Path: g.path}, send)
			}
		}
	}()
	return events, nil
}

// throttle delivers at most one event per delay window. send must not block;
// it runs under the throttle lock so nothing is sent after Stop returns.
type throttle struct {
	mu      sync.Mutex
	timer   *time.Timer
	last    Event
	delay   time.Duration
	stopped bool
}

func newThrottle(delay time.Duration) *throttle {
	return &throttle{delay: delay}
}

func (t *throttle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = ev
	if t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.stopped {
			return
		}
		t.timer = nil
		send(t.last)
	})
}

func (t *throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/balkashynov/fiches/internal/ids"
	"github.com/balkashynov/fiches/internal/importer"
	"github.com/balkashynov/fiches/internal/models"
)

// Source tells where a loaded store came from
type Source int

const (
	SourceBackend Source = iota
	SourceSnapshot
	SourceDefaults
)

func (s Source) String() string {
	switch s {
	case SourceBackend:
		return "backend"
	case SourceSnapshot:
		return "snapshot"
	default:
		return "defaults"
	}
}

// Loader builds the startup store
type Loader struct {
	Adapter  Adapter
	Snapshot *Snapshot
	IDs      ids.Generator
	Log      *slog.Logger
}

// Load prefers the backend, keeping the snapshot's UI state, then the
// snapshot alone, then the seeded demo dashboard. Backend and snapshot
// failures are logged and fall through to the next source.
func (l Loader) Load(ctx context.Context, now time.Time) (*models.Store, Source) {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}

	var local *models.Store
	if l.Snapshot != nil {
		var err error
		local, err = l.Snapshot.Load(ctx)
		if err != nil {
			log.Warn("snapshot unreadable", "path", l.Snapshot.Path(), "error", err)
			local = nil
		}
	}

	if l.Adapter != nil {
		remote, err := l.Adapter.FetchAll(ctx)
		switch {
		case err != nil:
			log.Warn("backend fetch failed, using local data", "error", err)
		case remote != nil:
			remote.UI = models.DefaultUI()
			if local != nil {
				remote.UI = local.UI
			}
			remote.UpdatedAt = now
			importer.RepairUI(remote)
			return remote, SourceBackend
		}
	}

	if local != nil {
		importer.RepairUI(local)
		return local, SourceSnapshot
	}

	gen := l.IDs
	if gen == nil {
		gen = ids.UUID{}
	}
	store := models.DefaultStore(gen.NewID, now)
	importer.RepairUI(store)
	return store, SourceDefaults
}

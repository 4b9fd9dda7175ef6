package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/balkashynov/fiches/internal/models"
)

// ErrInvalidSnapshot wraps every decoding or validation failure of a JSON snapshot
var ErrInvalidSnapshot = errors.New("invalid snapshot")

var validate = validator.New()

// ExportFilename names an export made on the given day
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("dashboard-refonte-%s.json", now.Format(models.DateLayout))
}

// Export writes the store as indented JSON
func Export(w io.Writer, store *models.Store) error {
	if store == nil {
		return errors.New("nothing to export")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(store)
}

// DecodeSnapshot parses and validates a JSON snapshot. Any failure aborts the
// whole import: the caller gets ErrInvalidSnapshot and no store.
func DecodeSnapshot(r io.Reader) (*models.Store, error) {
	var store models.Store
	if err := json.NewDecoder(r).Decode(&store); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if store.Version == 0 {
		store.Version = models.SchemaVersion
	}
	if store.Version > models.SchemaVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, store.Version)
	}
	if store.Universities == nil {
		store.Universities = []models.University{}
	}
	if err := validate.Struct(&store); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := checkReferences(&store); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	for i := range store.Universities {
		trimOwners(store.Universities[i].Subjects)
	}
	return &store, nil
}

// checkReferences enforces id uniqueness, subject references and the
// (subject, title) uniqueness of items
func checkReferences(store *models.Store) error {
	seen := make(map[string]struct{})
	claim := func(kind, id string) error {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate %s id %q", kind, id)
		}
		seen[id] = struct{}{}
		return nil
	}
	for _, u := range store.Universities {
		if err := claim("university", u.ID); err != nil {
			return err
		}
		subjects := make(map[string]struct{}, len(u.Subjects))
		for _, s := range u.Subjects {
			if err := claim("subject", s.ID); err != nil {
				return err
			}
			subjects[s.ID] = struct{}{}
		}
		keys := make(map[models.DedupKey]struct{}, len(u.Items))
		for _, it := range u.Items {
			if err := claim("item", it.ID); err != nil {
				return err
			}
			if _, ok := subjects[it.SubjectID]; !ok {
				return fmt.Errorf("item %q references unknown subject %q", it.ID, it.SubjectID)
			}
			if _, dup := keys[it.Key()]; dup {
				return fmt.Errorf("item %q duplicates title %q in its subject", it.ID, it.Title)
			}
			keys[it.Key()] = struct{}{}
		}
	}
	return nil
}

// RepairUI restores a usable UI state: a known view, and an active
// university that exists (the first one, or none when the store is empty)
func RepairUI(store *models.Store) {
	if !store.UI.View.Valid() {
		store.UI.View = models.ViewTable
	}
	if store.FindUniversity(store.UI.ActiveUniversityID) != nil {
		return
	}
	store.UI.ActiveUniversityID = ""
	if len(store.Universities) > 0 {
		store.UI.ActiveUniversityID = store.Universities[0].ID
	}
}

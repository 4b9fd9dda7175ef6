package commands

import (
	"fmt"
	"strings"

	"github.com/balkashynov/fiches/internal/actions"
	"github.com/balkashynov/fiches/internal/ids"
	"github.com/balkashynov/fiches/internal/models"
	"github.com/balkashynov/fiches/internal/selectors"
)

// shortID is the id prefix shown in listings
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// lookup finds one entry by exact id, then unique id prefix, then unique
// case-insensitive name
func lookup[T any](kind, ref string, list []T, id, name func(T) string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, fmt.Errorf("%s reference is empty", kind)
	}
	for _, v := range list {
		if id(v) == ref {
			return v, nil
		}
	}
	if ids.Valid(ref) {
		return zero, fmt.Errorf("%s %q %w", kind, ref, actions.ErrNotFound)
	}

	for _, pick := range []func(T) bool{
		func(v T) bool { return strings.HasPrefix(id(v), ref) },
		func(v T) bool { return strings.EqualFold(strings.TrimSpace(name(v)), ref) },
	} {
		var found []T
		for _, v := range list {
			if pick(v) {
				found = append(found, v)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			return zero, fmt.Errorf("%q matches %d %ss, use a longer id", ref, len(found), kind)
		}
	}
	return zero, fmt.Errorf("%s %q %w", kind, ref, actions.ErrNotFound)
}

// activeUniversity returns the selected university or an error when none is left
func activeUniversity(store *models.Store) (*models.University, error) {
	univ := selectors.ActiveUniversity(store)
	if univ == nil {
		return nil, fmt.Errorf("no university selected. Use 'fiches import' or 'fiches uni use'")
	}
	return univ, nil
}

func resolveItem(store *models.Store, ref string) (models.Item, error) {
	univ, err := activeUniversity(store)
	if err != nil {
		return models.Item{}, err
	}
	return lookup("item", ref, univ.Items,
		func(it models.Item) string { return it.ID },
		func(it models.Item) string { return it.Title })
}

func resolveSubject(store *models.Store, ref string) (models.Subject, error) {
	univ, err := activeUniversity(store)
	if err != nil {
		return models.Subject{}, err
	}
	return lookup("subject", ref, univ.Subjects,
		func(s models.Subject) string { return s.ID },
		func(s models.Subject) string { return s.Name })
}

func resolveUniversity(store *models.Store, ref string) (models.University, error) {
	return lookup("university", ref, store.Universities,
		func(u models.University) string { return u.ID },
		func(u models.University) string { return u.Name })
}

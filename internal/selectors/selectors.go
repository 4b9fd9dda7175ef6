// Package selectors derives read-only views from a models.Store.
//
// Every function is pure: it never mutates the store it is given. Functions
// whose result depends on the current date take it explicitly so callers (and
// tests) control "today".
package selectors

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/balkashynov/fiches/internal/models"
)

// ActiveUniversity returns the university named by ui.activeUniversityId, or nil
func ActiveUniversity(store *models.Store) *models.University {
	if store == nil || store.UI.ActiveUniversityID == "" {
		return nil
	}
	return store.FindUniversity(store.UI.ActiveUniversityID)
}

// SubjectByID looks a subject up in the active university
func SubjectByID(store *models.Store, subjectID string) *models.Subject {
	univ := ActiveUniversity(store)
	if univ == nil {
		return nil
	}
	return univ.FindSubject(subjectID)
}

// SubjectOwner returns the owner of a subject of the active university
func SubjectOwner(store *models.Store, subjectID string) string {
	if s := SubjectByID(store, subjectID); s != nil {
		return s.Owner
	}
	return ""
}

// FilteredItems applies the UI filters to the items of the active university.
// Order: subject, owner, status, priority, overdue, deadline presence.
func FilteredItems(store *models.Store, today time.Time) []models.Item {
	univ := ActiveUniversity(store)
	if univ == nil {
		return []models.Item{}
	}
	f := store.UI.Filters

	owners := make(map[string]string, len(univ.Subjects))
	for _, s := range univ.Subjects {
		owners[s.ID] = s.Owner
	}

	items := make([]models.Item, 0, len(univ.Items))
	for _, it := range univ.Items {
		if f.SubjectID != "" && it.SubjectID != f.SubjectID {
			continue
		}
		if f.Owner != "" {
			owner, ok := owners[it.SubjectID]
			if !ok || owner != f.Owner {
				continue
			}
		}
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		if f.Priority != "" && it.Priority != f.Priority {
			continue
		}
		if f.OverdueOnly && !IsOverdue(it, today) {
			continue
		}
		if !matchesDeadline(f.HasDeadline, it) {
			continue
		}
		items = append(items, it)
	}
	return items
}

func matchesDeadline(want models.TriState, it models.Item) bool {
	switch want {
	case models.Yes:
		return it.HasDeadline()
	case models.No:
		return !it.HasDeadline()
	case models.Any:
		return true
	}
	return true
}

// EffectiveProgress is 100 for validated items, the stored progress otherwise
func EffectiveProgress(it models.Item) int {
	if it.Status == models.StatusValidated {
		return 100
	}
	return it.Progress
}

// roundDiv divides and rounds half away from zero
func roundDiv(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// SubjectProgress averages the effective progress of a subject's items
// in the active university; 0 when the subject has no items.
func SubjectProgress(store *models.Store, subjectID string) int {
	univ := ActiveUniversity(store)
	if univ == nil {
		return 0
	}
	return subjectProgress(univ, subjectID)
}

func subjectProgress(univ *models.University, subjectID string) int {
	sum, n := 0, 0
	for _, it := range univ.Items {
		if it.SubjectID != subjectID {
			continue
		}
		sum += EffectiveProgress(it)
		n++
	}
	return roundDiv(sum, n)
}

// KPIs summarises the filtered items
type KPIs struct {
	Total            int                   `json:"total"`
	Validated        int                   `json:"validated"`
	ValidatedPercent int                   `json:"validatedPercent"`
	Overdue          int                   `json:"overdue"`
	ByStatus         map[models.Status]int `json:"byStatus"`
	AverageProgress  int                   `json:"averageProgress"`
}

// ComputeKPIs reflects the current filters, not the whole university
func ComputeKPIs(store *models.Store, today time.Time) KPIs {
	k := KPIs{ByStatus: make(map[models.Status]int, len(models.Statuses))}
	for _, s := range models.Statuses {
		k.ByStatus[s] = 0
	}
	if ActiveUniversity(store) == nil {
		return k
	}

	items := FilteredItems(store, today)
	progress := 0
	for _, it := range items {
		k.Total++
		switch it.Status {
		case models.StatusValidated:
			k.Validated++
			k.ByStatus[models.StatusValidated]++
		case models.StatusPending, models.StatusInProgress, models.StatusInReview:
			k.ByStatus[it.Status]++
		}
		if IsOverdue(it, today) {
			k.Overdue++
		}
		progress += EffectiveProgress(it)
	}
	k.ValidatedPercent = roundDiv(k.Validated*100, k.Total)
	k.AverageProgress = roundDiv(progress, k.Total)
	return k
}

// dateOf strips the time of day in the location of t
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsOverdue is true when the deadline's date is strictly before today's date
// and the item is not validated. Unparseable deadlines are never overdue.
func IsOverdue(it models.Item, today time.Time) bool {
	if !it.HasDeadline() || it.Status == models.StatusValidated {
		return false
	}
	deadline, ok := it.DeadlineDate(today.Location())
	if !ok {
		return false
	}
	return deadline.Before(dateOf(today))
}

// NearestDeadline returns the subject's item with the earliest parseable
// deadline; ties keep the stored order. Nil when none qualifies.
func NearestDeadline(store *models.Store, subjectID string) *models.Item {
	univ := ActiveUniversity(store)
	if univ == nil {
		return nil
	}
	return nearestDeadline(univ, subjectID, time.Local)
}

func nearestDeadline(univ *models.University, subjectID string, loc *time.Location) *models.Item {
	var (
		best     *models.Item
		bestDate time.Time
	)
	for i := range univ.Items {
		it := univ.Items[i]
		if it.SubjectID != subjectID {
			continue
		}
		d, ok := it.DeadlineDate(loc)
		if !ok {
			continue
		}
		if best == nil || d.Before(bestDate) {
			found := it
			best, bestDate = &found, d
		}
	}
	return best
}

// AllOwners lists the distinct, trimmed, non-empty owners of the active
// university's subjects in ascending order
func AllOwners(store *models.Store) []string {
	univ := ActiveUniversity(store)
	if univ == nil {
		return []string{}
	}
	seen := make(map[string]struct{})
	owners := []string{}
	for _, s := range univ.Subjects {
		owner := strings.TrimSpace(s.Owner)
		if owner == "" {
			continue
		}
		if _, ok := seen[owner]; ok {
			continue
		}
		seen[owner] = struct{}{}
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

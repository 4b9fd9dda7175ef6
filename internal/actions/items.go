package actions

import (
	"context"
	"strings"
	"time"

	"github.com/balkashynov/fiches/internal/models"
)

// ItemPatch lists the item fields to change; nil fields are left alone.
// id, subjectId, title and subjectNameCache cannot be patched.
type ItemPatch struct {
	Status    *models.Status
	Priority  *models.Priority
	Deadline  *string
	Progress  *int
	Comment   *string
	Professor *string
}

// IsZero reports whether the patch changes nothing
func (p ItemPatch) IsZero() bool {
	return p == ItemPatch{}
}

// normalizeDeadline validates a deadline and returns it as YYYY-MM-DD.
// Blank clears the deadline.
func normalizeDeadline(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	day, ok := models.ParseDate(value, time.UTC)
	if !ok {
		return "", invalid("deadline %q is not a YYYY-MM-DD date", value)
	}
	return day.Format(models.DateLayout), nil
}

// apply returns a patched copy of it. Progress is clamped to 0..100 and a
// validated item always ends at 100.
func (p ItemPatch) apply(it models.Item) (models.Item, error) {
	if p.Status != nil {
		if !p.Status.Valid() {
			return it, invalid("status %q", *p.Status)
		}
		it.Status = *p.Status
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return it, invalid("priority %q", *p.Priority)
		}
		it.Priority = *p.Priority
	}
	if p.Deadline != nil {
		deadline, err := normalizeDeadline(*p.Deadline)
		if err != nil {
			return it, err
		}
		it.Deadline = deadline
	}
	if p.Progress != nil {
		it.Progress = min(max(*p.Progress, 0), 100)
	}
	if p.Comment != nil {
		it.Comment = *p.Comment
	}
	if p.Professor != nil {
		it.Professor = strings.TrimSpace(*p.Professor)
	}
	if it.Status == models.StatusValidated {
		it.Progress = 100
	}
	return it, nil
}

// UpdateItem patches an item of the active university
func (s *Service) UpdateItem(ctx context.Context, itemID string, patch ItemPatch) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	univ, err := s.active()
	if err != nil {
		return models.Item{}, err
	}
	at := univ.ItemIndex(itemID)
	if at < 0 {
		return models.Item{}, notFound("item", itemID)
	}
	updated, err := patch.apply(univ.Items[at])
	if err != nil {
		return models.Item{}, err
	}
	updated.UpdatedAt = s.now()
	univ.Items[at] = updated
	return updated, s.commit(ctx, []write{s.putItem(updated, at)})
}

// MoveItemStatus changes only the status, as a kanban drop does
func (s *Service) MoveItemStatus(ctx context.Context, itemID string, status models.Status) (models.Item, error) {
	return s.UpdateItem(ctx, itemID, ItemPatch{Status: &status})
}

// DeleteItem removes an item of the active university
func (s *Service) DeleteItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	univ, err := s.active()
	if err != nil {
		return err
	}
	at := univ.ItemIndex(itemID)
	if at < 0 {
		return notFound("item", itemID)
	}
	univ.Items = append(univ.Items[:at], univ.Items[at+1:]...)
	return s.commit(ctx,
		[]write{s.drop("item", itemID, s.adapter.DeleteItem)},
		shifted(univ.Items, at, s.putItem),
	)
}

// AssignSubjectMeta sets the owner, method and remark of a subject
func (s *Service) AssignSubjectMeta(ctx context.Context, subjectID, owner string, method models.Method, remark string) (models.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	univ, err := s.active()
	if err != nil {
		return models.Subject{}, err
	}
	at := univ.SubjectIndex(subjectID)
	if at < 0 {
		return models.Subject{}, notFound("subject", subjectID)
	}
	if !method.Valid() {
		return models.Subject{}, invalid("method %q", method)
	}
	subject := &univ.Subjects[at]
	subject.Owner = strings.TrimSpace(owner)
	subject.Method = method
	subject.Remark = remark
	updated := *subject
	return updated, s.commit(ctx, []write{s.putSubject(univ.ID, updated, at)})
}

// SetSubjectDeadline gives every item of the subject the same deadline and
// returns how many items changed. A subject without items is a no-op.
func (s *Service) SetSubjectDeadline(ctx context.Context, subjectID, deadline string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	univ, err := s.active()
	if err != nil {
		return 0, err
	}
	if univ.FindSubject(subjectID) == nil {
		return 0, notFound("subject", subjectID)
	}
	deadline, err = normalizeDeadline(deadline)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var writes []write
	for i := range univ.Items {
		if univ.Items[i].SubjectID != subjectID {
			continue
		}
		univ.Items[i].Deadline = deadline
		univ.Items[i].UpdatedAt = now
		writes = append(writes, s.putItem(univ.Items[i], i))
	}
	if len(writes) == 0 {
		return 0, nil
	}
	return len(writes), s.commit(ctx, writes)
}

// DeleteSubject removes a subject and its items, returning how many items
// went with it
func (s *Service) DeleteSubject(ctx context.Context, subjectID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	univ, err := s.active()
	if err != nil {
		return 0, err
	}
	subjectAt := univ.SubjectIndex(subjectID)
	if subjectAt < 0 {
		return 0, notFound("subject", subjectID)
	}
	itemAt := len(univ.Items)
	for i, it := range univ.Items {
		if it.SubjectID == subjectID {
			itemAt = i
			break
		}
	}

	subjects := univ.Subjects[:0]
	for _, subj := range univ.Subjects {
		if subj.ID != subjectID {
			subjects = append(subjects, subj)
		}
	}
	univ.Subjects = subjects

	removed := 0
	items := univ.Items[:0]
	for _, it := range univ.Items {
		if it.SubjectID == subjectID {
			removed++
			continue
		}
		items = append(items, it)
	}
	univ.Items = items

	if univ.ID == s.store.UI.ActiveUniversityID && s.store.UI.Filters.SubjectID == subjectID {
		s.store.UI.Filters.SubjectID = ""
	}
	putSubject := func(subj models.Subject, i int) write { return s.putSubject(univ.ID, subj, i) }
	return removed, s.commit(ctx,
		[]write{s.drop("subject", subjectID, s.adapter.DeleteSubject)},
		shifted(univ.Subjects, subjectAt, putSubject),
		shifted(univ.Items, itemAt, s.putItem),
	)
}

// DeleteUniversity removes a university with everything it holds. When it
// was active, the first remaining university (if any) becomes active.
func (s *Service) DeleteUniversity(ctx context.Context, universityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.store.UniversityIndex(universityID)
	if at < 0 {
		return notFound("university", universityID)
	}
	s.store.Universities = append(s.store.Universities[:at], s.store.Universities[at+1:]...)

	if s.store.UI.ActiveUniversityID == universityID {
		s.store.UI.ActiveUniversityID = ""
		s.store.UI.Filters.SubjectID = ""
		if len(s.store.Universities) > 0 {
			s.store.UI.ActiveUniversityID = s.store.Universities[0].ID
		}
	}
	return s.commit(ctx,
		[]write{s.drop("university", universityID, s.adapter.DeleteUniversity)},
		shifted(s.store.Universities, at, s.putUniversity),
	)
}

// DeleteAll empties the dashboard and resets the UI state
func (s *Service) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var writes []write
	for _, u := range s.store.Universities {
		writes = append(writes, s.drop("university", u.ID, s.adapter.DeleteUniversity))
	}
	s.store.Universities = []models.University{}
	s.store.UI = models.DefaultUI()
	return s.commit(ctx, writes)
}

func (s *Service) drop(kind, id string, del func(context.Context, string) error) write {
	return write{"delete " + kind + " " + id, func(ctx context.Context) error {
		return del(ctx, id)
	}}
}

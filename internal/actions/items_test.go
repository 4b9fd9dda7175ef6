package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/fiches/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)

	it, err := s.UpdateItem(ctx, "i2", ItemPatch{
		Priority:  ptr(models.PriorityHigh),
		Deadline:  ptr("2026-11-02T08:00:00Z"),
		Progress:  ptr(65),
		Comment:   ptr("relire la partie 2"),
		Professor: ptr("  Pr. Leroy "),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, it.Priority)
	assert.Equal(t, "2026-11-02", it.Deadline)
	assert.Equal(t, 65, it.Progress)
	assert.Equal(t, "relire la partie 2", it.Comment)
	assert.Equal(t, "Pr. Leroy", it.Professor)
	assert.Equal(t, clock, it.UpdatedAt)
	assert.Equal(t, "B", it.Title)
	assert.Equal(t, models.StatusInProgress, it.Status, "absent fields untouched")

	assert.Equal(t, it, s.Snapshot().Universities[0].Items[1])
	mirrored := remote(t, s).Universities[0].Items[1]
	assert.Equal(t, "2026-11-02", mirrored.Deadline)
}

func TestValidatedForcesFullProgress(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)

	it, err := s.UpdateItem(ctx, "i2", ItemPatch{Status: ptr(models.StatusValidated), Progress: ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, 100, it.Progress)

	it, err = s.UpdateItem(ctx, "i2", ItemPatch{Progress: ptr(30)})
	require.NoError(t, err)
	assert.Equal(t, 100, it.Progress, "still validated")

	it, err = s.MoveItemStatus(ctx, "i1", models.StatusValidated)
	require.NoError(t, err)
	assert.Equal(t, 100, it.Progress)

	it, err = s.MoveItemStatus(ctx, "i1", models.StatusInReview)
	require.NoError(t, err)
	assert.Equal(t, 100, it.Progress, "leaving VALIDE keeps the progress")
}

func TestProgressIsClamped(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)

	it, err := s.UpdateItem(ctx, "i1", ItemPatch{Progress: ptr(150)})
	require.NoError(t, err)
	assert.Equal(t, 100, it.Progress)

	it, err = s.UpdateItem(ctx, "i1", ItemPatch{Progress: ptr(-5)})
	require.NoError(t, err)
	assert.Equal(t, 0, it.Progress)
}

func TestUpdateItemRejects(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)
	before := s.Snapshot()

	tests := []struct {
		name   string
		itemID string
		patch  ItemPatch
		want   error
	}{
		{"unknown item", "nope", ItemPatch{Progress: ptr(1)}, ErrNotFound},
		{"item of another university", "i5", ItemPatch{Progress: ptr(1)}, ErrNotFound},
		{"bad status", "i1", ItemPatch{Status: ptr(models.Status("DONE"))}, ErrInvalid},
		{"bad priority", "i1", ItemPatch{Priority: ptr(models.Priority("URGENT"))}, ErrInvalid},
		{"bad deadline", "i1", ItemPatch{Deadline: ptr("next week"), Progress: ptr(50)}, ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateItem(ctx, tt.itemID, tt.patch)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, before, s.Snapshot(), "failed updates change nothing")
}

func TestClearDeadline(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)
	_, err := s.UpdateItem(ctx, "i1", ItemPatch{Deadline: ptr("2026-10-01")})
	require.NoError(t, err)
	it, err := s.UpdateItem(ctx, "i1", ItemPatch{Deadline: ptr(" ")})
	require.NoError(t, err)
	assert.False(t, it.HasDeadline())
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)

	require.NoError(t, s.DeleteItem(ctx, "i2"))
	items := s.Snapshot().Universities[0].Items
	require.Len(t, items, 3)
	assert.Equal(t, []string{"i1", "i3", "i4"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Len(t, remote(t, s).Universities[0].Items, 3)

	assert.ErrorIs(t, s.DeleteItem(ctx, "i2"), ErrNotFound)
}

func TestDeleteThenUpdateKeepsRemoteOrder(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)

	require.NoError(t, s.DeleteItem(ctx, "i1"))
	require.NoError(t, s.DeleteItem(ctx, "i2"))
	_, err := s.UpdateItem(ctx, "i4", ItemPatch{Progress: ptr(20)})
	require.NoError(t, err)

	changed, err := s.Reload(ctx)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, []string{"i3", "i4"}, itemIDs(s.Snapshot().Universities[0]))

	_, err = s.DeleteSubject(ctx, "s1")
	require.NoError(t, err)
	_, err = s.AssignSubjectMeta(ctx, "s3", "Carla", models.MethodUnknown, "")
	require.NoError(t, err)

	changed, err = s.Reload(ctx)
	require.NoError(t, err)
	require.True(t, changed)
	paris := s.Snapshot().Universities[0]
	assert.Equal(t, []string{"s2", "s3"}, subjectIDs(paris))
	assert.Equal(t, []string{"i4"}, itemIDs(paris))

	require.NoError(t, s.DeleteUniversity(ctx, "u1"))
	_, err = s.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u2", s.Snapshot().Universities[0].ID)
}

func TestAssignSubjectMeta(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)

	subject, err := s.AssignSubjectMeta(ctx, "s3", "  Carla ", models.MethodAudioPolyACC, "à revoir")
	require.NoError(t, err)
	assert.Equal(t, models.Subject{ID: "s3", Name: "Physique", Owner: "Carla", Method: models.MethodAudioPolyACC, Remark: "à revoir"}, subject)
	assert.Equal(t, subject, remote(t, s).Universities[0].Subjects[2])

	_, err = s.AssignSubjectMeta(ctx, "s3", "", models.Method("VIDEO"), "")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.AssignSubjectMeta(ctx, "s4", "x", models.MethodUnknown, "")
	assert.ErrorIs(t, err, ErrNotFound, "subject of another university")
}

func TestSetSubjectDeadline(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)

	n, err := s.SetSubjectDeadline(ctx, "s1", "2026-12-20")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	for _, it := range s.Snapshot().Universities[0].Items {
		if it.SubjectID == "s1" {
			assert.Equal(t, "2026-12-20", it.Deadline)
			assert.Equal(t, clock, it.UpdatedAt)
		} else {
			assert.Empty(t, it.Deadline)
		}
	}

	n, err = s.SetSubjectDeadline(ctx, "s3", "2026-12-20")
	assert.NoError(t, err, "subject without items")
	assert.Equal(t, 0, n)

	_, err = s.SetSubjectDeadline(ctx, "s1", "20/13/2026")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.SetSubjectDeadline(ctx, "ghost", "")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err = s.SetSubjectDeadline(ctx, "s1", "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Empty(t, s.Snapshot().Universities[0].Items[0].Deadline)
}

func TestDeleteSubjectCascades(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)
	require.NoError(t, s.ApplyFilter(ctx, FilterSubject, "s1"))

	removed, err := s.DeleteSubject(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	store := s.Snapshot()
	assert.Len(t, store.Universities[0].Subjects, 2)
	require.Len(t, store.Universities[0].Items, 1)
	assert.Equal(t, "i4", store.Universities[0].Items[0].ID)
	assert.Empty(t, store.UI.Filters.SubjectID)

	mirrored := remote(t, s).Universities[0]
	assert.Len(t, mirrored.Subjects, 2)
	assert.Len(t, mirrored.Items, 1)

	_, err = s.DeleteSubject(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUniversity(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)

	require.NoError(t, s.SetActiveUniversity(ctx, "u2"))
	require.NoError(t, s.DeleteUniversity(ctx, "u2"))
	store := s.Snapshot()
	require.Len(t, store.Universities, 1)
	assert.Equal(t, "u1", store.UI.ActiveUniversityID, "falls back to the first remaining university")

	require.NoError(t, s.DeleteUniversity(ctx, "u1"))
	store = s.Snapshot()
	assert.Empty(t, store.Universities)
	assert.Equal(t, "", store.UI.ActiveUniversityID)
	assert.Nil(t, remote(t, s))

	assert.ErrorIs(t, s.DeleteUniversity(ctx, "u1"), ErrNotFound)
}

func TestDeleteInactiveUniversityKeepsActive(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)
	require.NoError(t, s.DeleteUniversity(ctx, "u2"))
	assert.Equal(t, "u1", s.Snapshot().UI.ActiveUniversityID)
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)
	require.NoError(t, s.ApplyFilter(ctx, FilterStatus, "valide"))
	require.NoError(t, s.SetView(ctx, "kanban"))

	require.NoError(t, s.DeleteAll(ctx))
	store := s.Snapshot()
	assert.Empty(t, store.Universities)
	assert.NotNil(t, store.Universities)
	assert.Equal(t, models.DefaultUI(), store.UI)
	assert.Nil(t, remote(t, s))

	_, err := s.UpdateItem(ctx, "i1", ItemPatch{Progress: ptr(1)})
	assert.ErrorIs(t, err, ErrNotFound, "no active university left")
}

package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/fiches/internal/db"
	"github.com/balkashynov/fiches/internal/models"
)

func TestApplyFilter(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)

	require.NoError(t, s.ApplyFilter(ctx, FilterSubject, "chimie"))
	require.NoError(t, s.ApplyFilter(ctx, FilterOwner, " Bob "))
	require.NoError(t, s.ApplyFilter(ctx, FilterStatus, "en cours"))
	require.NoError(t, s.ApplyFilter(ctx, FilterPriority, "high"))
	require.NoError(t, s.ApplyFilter(ctx, FilterOverdue, "yes"))
	require.NoError(t, s.ApplyFilter(ctx, "Deadline", "no"))

	assert.Equal(t, models.Filters{
		SubjectID:   "s2",
		Owner:       "Bob",
		Status:      models.StatusInProgress,
		Priority:    models.PriorityHigh,
		OverdueOnly: true,
		HasDeadline: models.No,
	}, s.Snapshot().UI.Filters)

	require.NoError(t, s.ApplyFilter(ctx, FilterStatus, "all"))
	require.NoError(t, s.ApplyFilter(ctx, FilterDeadline, "any"))
	require.NoError(t, s.ApplyFilter(ctx, FilterOverdue, ""))
	filters := s.Snapshot().UI.Filters
	assert.Equal(t, models.Status(""), filters.Status)
	assert.Equal(t, models.Any, filters.HasDeadline)
	assert.False(t, filters.OverdueOnly)
	assert.Equal(t, "Bob", filters.Owner, "other filters untouched")

	require.NoError(t, s.ClearFilters(ctx))
	assert.True(t, s.Snapshot().UI.Filters.IsZero())
}

func TestApplyFilterRejects(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)
	require.NoError(t, s.ApplyFilter(ctx, FilterOwner, "Alice"))

	assert.ErrorIs(t, s.ApplyFilter(ctx, "colour", "red"), ErrInvalid)
	assert.ErrorIs(t, s.ApplyFilter(ctx, FilterStatus, "finished"), ErrInvalid)
	assert.ErrorIs(t, s.ApplyFilter(ctx, FilterPriority, "9"), ErrInvalid)
	assert.ErrorIs(t, s.ApplyFilter(ctx, FilterOverdue, "maybe"), ErrInvalid)
	assert.ErrorIs(t, s.ApplyFilter(ctx, FilterSubject, "s4"), ErrNotFound, "subject of another university")

	assert.Equal(t, models.Filters{Owner: "Alice"}, s.Snapshot().UI.Filters)
}

func TestSetView(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)

	require.NoError(t, s.SetView(ctx, "Calendar"))
	assert.Equal(t, models.ViewCalendar, s.Snapshot().UI.View)
	assert.ErrorIs(t, s.SetView(ctx, "gantt"), ErrInvalid)
	assert.Equal(t, models.ViewCalendar, s.Snapshot().UI.View)
}

func TestSetActiveUniversity(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)
	require.NoError(t, s.ApplyFilter(ctx, FilterSubject, "s1"))
	require.NoError(t, s.ApplyFilter(ctx, FilterOwner, "Alice"))

	require.NoError(t, s.SetActiveUniversity(ctx, "u2"))
	ui := s.Snapshot().UI
	assert.Equal(t, "u2", ui.ActiveUniversityID)
	assert.Empty(t, ui.Filters.SubjectID)
	assert.Equal(t, "Alice", ui.Filters.Owner)

	assert.ErrorIs(t, s.SetActiveUniversity(ctx, "u9"), ErrNotFound)
	assert.Equal(t, "u2", s.Snapshot().UI.ActiveUniversityID)
}

func TestUIChangesDoNotWriteToBackend(t *testing.T) {
	flaky := &flakyAdapter{Memory: db.NewMemory()}
	s := newService(t, flaky)
	flaky.fails = func(string, string) bool { return true }
	flaky.calls = 0

	require.NoError(t, s.SetView(context.Background(), "kanban"))
	require.NoError(t, s.ApplyFilter(context.Background(), FilterOwner, "Bob"))
	assert.Equal(t, 0, flaky.calls)
}

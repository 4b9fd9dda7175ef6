package selectors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/fiches/internal/models"
)

func TestSearch(t *testing.T) {
	store := fixture()
	univ := ActiveUniversity(store)
	items := FilteredItems(store, today)

	assert.Equal(t, []string{"i3", "i4"}, ids(Search(univ, items, "chim")))
	assert.Equal(t, []string{"i2"}, ids(Search(univ, items, "adn")))
	assert.Len(t, Search(univ, items, "  "), 4)
}

func TestSortItems(t *testing.T) {
	items := FilteredItems(fixture(), today)

	assert.Equal(t, []string{"i2", "i3", "i1", "i4"}, ids(SortItems(items, SortTitle, false)))
	assert.Equal(t, []string{"i3", "i4", "i2", "i1"}, ids(SortItems(items, SortStatus, true)))
	assert.Equal(t, []string{"i3", "i1", "i4", "i2"}, ids(SortItems(items, SortPriority, false)))
	assert.Equal(t, []string{"i1", "i3", "i2", "i4"}, ids(SortItems(items, SortDeadline, false)))
	assert.Equal(t, []string{"i1", "i2", "i3", "i4"}, ids(SortItems(items, SortProgress, false)))
	assert.Equal(t, ids(items), ids(SortItems(items, SortNone, false)))

	_, err := ParseSortColumn("owner")
	assert.Error(t, err)
}

func TestGroupBySubject(t *testing.T) {
	store := fixture()
	groups := GroupBySubject(ActiveUniversity(store), FilteredItems(store, today))
	require.Len(t, groups, 2)
	assert.Equal(t, "Bio", groups[0].Subject.Name)
	assert.Equal(t, 25, groups[0].Progress)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "Chimie", groups[1].Subject.Name)
}

func TestKanbanColumns(t *testing.T) {
	cols := KanbanColumns(FilteredItems(fixture(), today))
	require.Len(t, cols, 4)
	assert.Equal(t, models.StatusPending, cols[0].Status)
	assert.Equal(t, []string{"i1"}, ids(cols[0].Items))
	assert.Empty(t, cols[2].Items)
	assert.Equal(t, []string{"i3", "i4"}, ids(cols[3].Items))
}

func TestCalendarMonth(t *testing.T) {
	store := fixture()
	grid := CalendarMonth(store, 2026, time.October, today)

	// 1 October 2026 is a Thursday: three leading blanks on a Monday-first grid
	require.Len(t, grid, 3+31)
	assert.True(t, grid[0].Date.IsZero())
	assert.Equal(t, 1, grid[3].Date.Day())

	cell := grid[3+today.Day()-2] // yesterday
	require.Len(t, cell.Entries, 2)
	assert.Equal(t, "i2", cell.Entries[0].Item.ID)
	assert.False(t, cell.Entries[0].SubjectDeadline)
	assert.True(t, cell.Entries[1].SubjectDeadline)
	assert.Equal(t, "Bio", cell.Entries[1].SubjectName)
}

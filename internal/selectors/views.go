package selectors

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/balkashynov/fiches/internal/models"
)

// Search keeps the items whose title or subject name contains term
// (case-insensitive). An empty term keeps everything.
func Search(univ *models.University, items []models.Item, term string) []models.Item {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || univ == nil {
		return items
	}
	names := make(map[string]string, len(univ.Subjects))
	for _, s := range univ.Subjects {
		names[s.ID] = strings.ToLower(s.Name)
	}
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(names[it.SubjectID], term) || strings.Contains(strings.ToLower(it.Title), term) {
			out = append(out, it)
		}
	}
	return out
}

// SortColumn is a sortable column of the table view
type SortColumn string

const (
	SortNone     SortColumn = ""
	SortTitle    SortColumn = "title"
	SortStatus   SortColumn = "status"
	SortPriority SortColumn = "priority"
	SortDeadline SortColumn = "deadline"
	SortProgress SortColumn = "progress"
)

// ParseSortColumn validates a column name
func ParseSortColumn(input string) (SortColumn, error) {
	c := SortColumn(strings.ToLower(strings.TrimSpace(input)))
	switch c {
	case SortNone, SortTitle, SortStatus, SortPriority, SortDeadline, SortProgress:
		return c, nil
	}
	return "", fmt.Errorf("unknown sort column %q", input)
}

// SortItems returns a stably sorted copy. Empty deadlines sort first.
func SortItems(items []models.Item, column SortColumn, descending bool) []models.Item {
	out := append([]models.Item(nil), items...)
	var less func(a, b models.Item) bool
	switch column {
	case SortTitle:
		less = func(a, b models.Item) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortStatus:
		less = func(a, b models.Item) bool { return a.Status.Rank() < b.Status.Rank() }
	case SortPriority:
		less = func(a, b models.Item) bool { return a.Priority.Rank() < b.Priority.Rank() }
	case SortDeadline:
		less = func(a, b models.Item) bool { return deadlineUnix(a) < deadlineUnix(b) }
	case SortProgress:
		less = func(a, b models.Item) bool { return EffectiveProgress(a) < EffectiveProgress(b) }
	case SortNone:
		return out
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func deadlineUnix(it models.Item) int64 {
	d, ok := it.DeadlineDate(time.UTC)
	if !ok {
		return 0
	}
	return d.Unix()
}

// SubjectGroup is one block of the table view
type SubjectGroup struct {
	Subject  models.Subject
	Progress int
	Items    []models.Item
}

// GroupBySubject groups items by subject in first-occurrence order.
// Items whose subject is missing are grouped under a placeholder subject
// named after their cached subject name.
func GroupBySubject(univ *models.University, items []models.Item) []SubjectGroup {
	if univ == nil {
		return nil
	}
	index := make(map[string]int)
	var groups []SubjectGroup
	for _, it := range items {
		pos, ok := index[it.SubjectID]
		if !ok {
			subject := models.Subject{ID: it.SubjectID, Name: it.SubjectNameCache}
			if s := univ.FindSubject(it.SubjectID); s != nil {
				subject = *s
			}
			groups = append(groups, SubjectGroup{
				Subject:  subject,
				Progress: subjectProgress(univ, it.SubjectID),
			})
			pos = len(groups) - 1
			index[it.SubjectID] = pos
		}
		groups[pos].Items = append(groups[pos].Items, it)
	}
	return groups
}

// KanbanColumn holds the items of one status
type KanbanColumn struct {
	Status models.Status
	Items  []models.Item
}

// KanbanColumns splits items into one column per status, in workflow order
func KanbanColumns(items []models.Item) []KanbanColumn {
	cols := make([]KanbanColumn, len(models.Statuses))
	for i, s := range models.Statuses {
		cols[i] = KanbanColumn{Status: s, Items: []models.Item{}}
	}
	for _, it := range items {
		if r := it.Status.Rank(); r >= 0 {
			cols[r].Items = append(cols[r].Items, it)
		}
	}
	return cols
}

// CalendarEntry is an item shown on a calendar day
type CalendarEntry struct {
	Item models.Item
	// SubjectDeadline marks the nearest deadline of a subject
	SubjectDeadline bool
	SubjectName     string
}

// CalendarDay is one cell of the month grid
type CalendarDay struct {
	Date    time.Time
	Entries []CalendarEntry
}

// CalendarMonth builds the Monday-first grid of a month. Leading cells before
// the first day are zero CalendarDay values. Filtered items are placed on
// their deadline, then each subject's nearest deadline is added once more,
// flagged as a subject deadline.
func CalendarMonth(store *models.Store, year int, month time.Month, today time.Time) []CalendarDay {
	loc := today.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysIn := first.AddDate(0, 1, -1).Day()
	lead := (int(first.Weekday()) + 6) % 7

	grid := make([]CalendarDay, lead, lead+daysIn)
	byDate := make(map[string]int, daysIn)
	for d := 1; d <= daysIn; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, loc)
		byDate[date.Format(models.DateLayout)] = len(grid)
		grid = append(grid, CalendarDay{Date: date})
	}

	place := func(e CalendarEntry) {
		d, ok := e.Item.DeadlineDate(loc)
		if !ok {
			return
		}
		if pos, ok := byDate[d.Format(models.DateLayout)]; ok {
			grid[pos].Entries = append(grid[pos].Entries, e)
		}
	}

	for _, it := range FilteredItems(store, today) {
		place(CalendarEntry{Item: it})
	}
	if univ := ActiveUniversity(store); univ != nil {
		for _, s := range univ.Subjects {
			if nearest := nearestDeadline(univ, s.ID, loc); nearest != nil {
				place(CalendarEntry{Item: *nearest, SubjectDeadline: true, SubjectName: s.Name})
			}
		}
	}
	return grid
}

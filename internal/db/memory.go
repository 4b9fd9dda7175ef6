package db

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/balkashynov/fiches/internal/models"
)

type memUniversity struct {
	id       string
	name     string
	position int
}

type memSubject struct {
	universityID string
	position     int
	subject      models.Subject
}

type memItem struct {
	position int
	item     models.Item
}

// Memory is the in-process backend used when no database is configured.
// Rows are returned by position; insertion order breaks ties, standing in
// for creation time.
type Memory struct {
	mu           sync.Mutex
	universities []memUniversity
	subjects     []memSubject
	items        []memItem
	subscribers  []chan Event
}

// NewMemory returns an empty in-memory backend
func NewMemory() *Memory {
	return &Memory{}
}

// byPosition returns a copy of rows stably sorted by position
func byPosition[T any](rows []T, position func(T) int) []T {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b T) int { return cmp.Compare(position(a), position(b)) })
	return out
}

func (m *Memory) FetchAll(ctx context.Context) (*models.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.universities) == 0 {
		return nil, nil
	}
	subjects := byPosition(m.subjects, func(s memSubject) int { return s.position })
	items := byPosition(m.items, func(it memItem) int { return it.position })

	store := &models.Store{Version: models.SchemaVersion, Universities: make([]models.University, 0, len(m.universities))}
	for _, u := range byPosition(m.universities, func(u memUniversity) int { return u.position }) {
		univ := models.University{ID: u.id, Name: u.name, Subjects: []models.Subject{}, Items: []models.Item{}}
		owned := make(map[string]struct{})
		for _, s := range subjects {
			if s.universityID == u.id {
				univ.Subjects = append(univ.Subjects, s.subject)
				owned[s.subject.ID] = struct{}{}
			}
		}
		for _, it := range items {
			if _, ok := owned[it.item.SubjectID]; ok {
				univ.Items = append(univ.Items, it.item)
			}
		}
		store.Universities = append(store.Universities, univ)
	}
	return store, nil
}

func (m *Memory) UpsertUniversity(ctx context.Context, id, name string, position int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.notify()

	row := memUniversity{id: id, name: name, position: position}
	for i := range m.universities {
		if m.universities[i].id == id {
			m.universities[i] = row
			return nil
		}
	}
	m.universities = append(m.universities, row)
	return nil
}

func (m *Memory) UpsertSubject(ctx context.Context, universityID string, subject models.Subject, position int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.notify()

	row := memSubject{universityID: universityID, position: position, subject: subject}
	for i := range m.subjects {
		if m.subjects[i].subject.ID == subject.ID {
			m.subjects[i] = row
			return nil
		}
	}
	m.subjects = append(m.subjects, row)
	return nil
}

func (m *Memory) UpsertItem(ctx context.Context, item models.Item, position int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.notify()

	row := memItem{position: position, item: item}
	for i := range m.items {
		if m.items[i].item.ID == item.ID {
			m.items[i] = row
			return nil
		}
	}
	m.items = append(m.items, row)
	return nil
}

func (m *Memory) DeleteUniversity(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.notify()

	subjects := make(map[string]struct{})
	kept := m.subjects[:0]
	for _, s := range m.subjects {
		if s.universityID == id {
			subjects[s.subject.ID] = struct{}{}
			continue
		}
		kept = append(kept, s)
	}
	m.subjects = kept
	m.dropItems(func(it models.Item) bool {
		_, owned := subjects[it.SubjectID]
		return owned
	})

	univs := m.universities[:0]
	for _, u := range m.universities {
		if u.id != id {
			univs = append(univs, u)
		}
	}
	m.universities = univs
	return nil
}

func (m *Memory) DeleteSubject(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.notify()

	kept := m.subjects[:0]
	for _, s := range m.subjects {
		if s.subject.ID != id {
			kept = append(kept, s)
		}
	}
	m.subjects = kept
	m.dropItems(func(it models.Item) bool { return it.SubjectID == id })
	return nil
}

func (m *Memory) DeleteItem(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.notify()

	m.dropItems(func(it models.Item) bool { return it.ID == id })
	return nil
}

func (m *Memory) dropItems(match func(models.Item) bool) {
	kept := m.items[:0]
	for _, it := range m.items {
		if !match(it.item) {
			kept = append(kept, it)
		}
	}
	m.items = kept
}

// Subscribe reports every write made through this backend
func (m *Memory) Subscribe(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 1)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.subscribers {
			if sub == ch {
				m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

// notify must be called with m.mu held. Slow subscribers miss events that
// would only repeat a pending one.
func (m *Memory) notify() {
	for _, sub := range m.subscribers {
		select {
		case sub <- Event{Path: "memory"}:
		default:
		}
	}
}

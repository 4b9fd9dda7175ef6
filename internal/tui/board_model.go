package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/fiches/internal/actions"
	"github.com/balkashynov/fiches/internal/db"
	"github.com/balkashynov/fiches/internal/models"
	"github.com/balkashynov/fiches/internal/parser"
	"github.com/balkashynov/fiches/internal/selectors"
)

// Focus represents what UI element has focus
type Focus int

const (
	FocusBoard Focus = iota
	FocusSearch
	FocusEdit
	FocusConfirm
)

// storeMsg carries the store after an action or a reload
type storeMsg struct {
	store *models.Store
	note  string
	err   error
}

// changeMsg signals that the backend changed outside this process
type changeMsg struct{}

// BoardModel is the interactive dashboard
type BoardModel struct {
	svc    *actions.Service
	events <-chan db.Event

	width  int
	height int

	store *models.Store
	today time.Time
	items []models.Item // visible items in table order

	// Table state
	selected   int
	page       int
	perPage    int
	sortColumn selectors.SortColumn
	descending bool

	// Kanban state
	column int
	row    int

	// Calendar state
	month time.Time // first day of the shown month
	day   int       // selected day of month

	focus  Focus
	search textinput.Model
	edit   textinput.Model
	query  string

	note string
	err  error
}

var sortCycle = []selectors.SortColumn{
	selectors.SortNone,
	selectors.SortDeadline,
	selectors.SortPriority,
	selectors.SortStatus,
	selectors.SortProgress,
	selectors.SortTitle,
}

// NewBoardModel creates the board for svc. events may be nil.
func NewBoardModel(svc *actions.Service, events <-chan db.Event) BoardModel {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "title or subject"
	search.CharLimit = 64

	edit := textinput.New()
	edit.Prompt = "Update: "
	edit.Placeholder = "+high status:valide 80% due:3days prof:Dupont comment"
	edit.CharLimit = 256

	today := svc.Now()
	m := BoardModel{
		svc:     svc,
		events:  events,
		store:   svc.Snapshot(),
		today:   today,
		perPage: 10,
		month:   time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()),
		day:     today.Day(),
		search:  search,
		edit:    edit,
	}
	m.refresh()
	return m
}

// Init starts listening for backend changes
func (m BoardModel) Init() tea.Cmd {
	return m.listen()
}

// listen waits for the next backend event
func (m BoardModel) listen() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return changeMsg{}
	}
}

// act runs an action off the UI loop and reports the resulting store
func (m BoardModel) act(note string, fn func(ctx context.Context) error) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		err := fn(context.Background())
		return storeMsg{store: svc.Snapshot(), note: note, err: err}
	}
}

func (m BoardModel) reload() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		changed, err := svc.Reload(context.Background())
		note := ""
		if changed {
			note = "Reloaded from database"
		}
		return storeMsg{store: svc.Snapshot(), note: note, err: err}
	}
}

// refresh recomputes the visible items and keeps the cursors in range
func (m *BoardModel) refresh() {
	m.today = m.svc.Now()
	items := selectors.FilteredItems(m.store, m.today)
	items = selectors.Search(selectors.ActiveUniversity(m.store), items, m.query)
	m.items = selectors.SortItems(items, m.sortColumn, m.descending)

	m.selected = min(m.selected, max(len(m.items)-1, 0))
	if m.perPage > 0 {
		m.page = m.selected / m.perPage
	}

	cols := selectors.KanbanColumns(m.items)
	m.column = min(max(m.column, 0), len(cols)-1)
	m.row = min(m.row, max(len(cols[m.column].Items)-1, 0))

	days := time.Date(m.month.Year(), m.month.Month()+1, 0, 0, 0, 0, 0, m.month.Location()).Day()
	m.day = min(max(m.day, 1), days)
}

// view returns the persisted view, table when unset
func (m BoardModel) view() models.View {
	if m.store.UI.View == "" {
		return models.ViewTable
	}
	return m.store.UI.View
}

// current returns the item under the cursor, if any
func (m BoardModel) current() (models.Item, bool) {
	switch m.view() {
	case models.ViewKanban:
		cols := selectors.KanbanColumns(m.items)
		if m.column < len(cols) && m.row < len(cols[m.column].Items) {
			return cols[m.column].Items[m.row], true
		}
	case models.ViewTable:
		if m.selected < len(m.items) {
			return m.items[m.selected], true
		}
	}
	return models.Item{}, false
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Height - header(5) - table header(2) - help(2) - borders(4)
		m.perPage = max(m.height-13, 3)
		m.refresh()
		return m, nil

	case storeMsg:
		m.store = msg.store
		m.note = msg.note
		m.err = nil
		if msg.err != nil {
			if actions.IsSyncWarning(msg.err) {
				m.note = "⚠️  Saved locally, but " + msg.err.Error()
			} else {
				m.err = msg.err
			}
		}
		m.refresh()
		return m, nil

	case changeMsg:
		return m, tea.Batch(m.reload(), m.listen())

	case tea.KeyMsg:
		switch m.focus {
		case FocusSearch:
			return m.handleSearchKeys(msg)
		case FocusEdit:
			return m.handleEditKeys(msg)
		case FocusConfirm:
			return m.handleConfirmKeys(msg)
		}
		return m.handleBoardKeys(msg)
	}
	return m, nil
}

func (m BoardModel) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		if msg.String() == "esc" && m.query != "" {
			m.query = ""
			m.search.SetValue("")
			m.refresh()
			return m, nil
		}
		return m, tea.Quit

	case "tab":
		next := models.Views[0]
		for i, v := range models.Views {
			if v == m.view() {
				next = models.Views[(i+1)%len(models.Views)]
			}
		}
		return m, m.act("View: "+string(next), func(ctx context.Context) error {
			return m.svc.SetView(ctx, string(next))
		})

	case "1", "2", "3":
		v := models.Views[int(msg.String()[0]-'1')]
		return m, m.act("View: "+string(v), func(ctx context.Context) error {
			return m.svc.SetView(ctx, string(v))
		})

	case "u":
		univs := m.store.Universities
		if len(univs) < 2 {
			return m, nil
		}
		next := univs[0]
		for i, u := range univs {
			if u.ID == m.store.UI.ActiveUniversityID {
				next = univs[(i+1)%len(univs)]
			}
		}
		m.selected, m.row = 0, 0
		return m, m.act("🏫 "+next.Name, func(ctx context.Context) error {
			return m.svc.SetActiveUniversity(ctx, next.ID)
		})

	case "o":
		value := "yes"
		if m.store.UI.Filters.OverdueOnly {
			value = "all"
		}
		return m, m.act("Overdue filter: "+value, func(ctx context.Context) error {
			return m.svc.ApplyFilter(ctx, actions.FilterOverdue, value)
		})

	case "x":
		return m, m.act("Filters cleared", m.svc.ClearFilters)

	case "r":
		return m, m.reload()

	case "s":
		for i, c := range sortCycle {
			if c == m.sortColumn {
				m.sortColumn = sortCycle[(i+1)%len(sortCycle)]
				break
			}
		}
		m.refresh()
		return m, nil

	case "S":
		m.descending = !m.descending
		m.refresh()
		return m, nil

	case "/":
		m.focus = FocusSearch
		return m, m.search.Focus()
	}

	switch m.view() {
	case models.ViewCalendar:
		return m.handleCalendarKeys(msg)
	case models.ViewKanban:
		m = m.handleKanbanNavigation(msg)
	default:
		m = m.handleTableNavigation(msg)
	}

	it, ok := m.current()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "n", "p":
		status := it.Status.Next()
		if msg.String() == "p" {
			status = it.Status.Prev()
		}
		if status == it.Status {
			return m, nil
		}
		return m, m.act(it.Title+" → "+status.Label(), func(ctx context.Context) error {
			_, err := m.svc.MoveItemStatus(ctx, it.ID, status)
			return err
		})

	case "+", "-":
		progress := it.Progress + 10
		if msg.String() == "-" {
			progress = it.Progress - 10
		}
		return m, m.act(it.Title+" progress updated", func(ctx context.Context) error {
			_, err := m.svc.UpdateItem(ctx, it.ID, actions.ItemPatch{Progress: &progress})
			return err
		})

	case "e", "enter":
		m.focus = FocusEdit
		m.edit.SetValue("")
		return m, m.edit.Focus()

	case "d":
		m.focus = FocusConfirm
		m.note = "Delete \"" + it.Title + "\"? y/n"
		return m, nil
	}
	return m, nil
}

func (m BoardModel) handleTableNavigation(msg tea.KeyMsg) BoardModel {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.items)-1 {
			m.selected++
		}
	case "left", "h":
		m.selected = max(m.selected-m.perPage, 0)
	case "right", "l":
		m.selected = min(m.selected+m.perPage, max(len(m.items)-1, 0))
	default:
		return m
	}
	m.page = m.selected / m.perPage
	return m
}

func (m BoardModel) handleKanbanNavigation(msg tea.KeyMsg) BoardModel {
	cols := selectors.KanbanColumns(m.items)
	switch msg.String() {
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(cols[m.column].Items)-1 {
			m.row++
		}
	case "left", "h":
		if m.column > 0 {
			m.column--
		}
	case "right", "l":
		if m.column < len(cols)-1 {
			m.column++
		}
	default:
		return m
	}
	m.row = min(m.row, max(len(cols[m.column].Items)-1, 0))
	return m
}

func (m BoardModel) handleCalendarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	date := time.Date(m.month.Year(), m.month.Month(), m.day, 0, 0, 0, 0, m.month.Location())
	switch msg.String() {
	case "left", "h":
		date = date.AddDate(0, 0, -1)
	case "right", "l":
		date = date.AddDate(0, 0, 1)
	case "up", "k":
		date = date.AddDate(0, 0, -7)
	case "down", "j":
		date = date.AddDate(0, 0, 7)
	case "[":
		date = time.Date(date.Year(), date.Month()-1, 1, 0, 0, 0, 0, date.Location())
	case "]":
		date = time.Date(date.Year(), date.Month()+1, 1, 0, 0, 0, 0, date.Location())
	case "t":
		date = m.today
	default:
		return m, nil
	}
	m.month = time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	m.day = date.Day()
	return m, nil
}

// handleSearchKeys handles key input when in search mode
func (m BoardModel) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = FocusBoard
		m.search.Blur()
		m.search.SetValue(m.query)
		return m, nil
	case tea.KeyEnter:
		m.focus = FocusBoard
		m.search.Blur()
		m.query = strings.TrimSpace(m.search.Value())
		m.selected, m.row = 0, 0
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// handleEditKeys applies an inline update expression to the current item
func (m BoardModel) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = FocusBoard
		m.edit.Blur()
		return m, nil
	case tea.KeyEnter:
		m.focus = FocusBoard
		m.edit.Blur()
		it, ok := m.current()
		if !ok {
			return m, nil
		}
		parsed := parser.ParseUpdate(m.edit.Value(), m.today)
		if len(parsed.Errors) > 0 {
			m.note = strings.Join(parsed.Errors, "; ")
			return m, nil
		}
		if parsed.IsEmpty() {
			return m, nil
		}
		patch := actions.ItemPatch{
			Status:    parsed.Status,
			Priority:  parsed.Priority,
			Deadline:  parsed.Deadline,
			Progress:  parsed.Progress,
			Comment:   parsed.Comment,
			Professor: parsed.Professor,
		}
		return m, m.act("✏️  Updated "+it.Title, func(ctx context.Context) error {
			_, err := m.svc.UpdateItem(ctx, it.ID, patch)
			return err
		})
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	return m, cmd
}

func (m BoardModel) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.focus = FocusBoard
	it, ok := m.current()
	if !ok || (msg.String() != "y" && msg.String() != "Y") {
		m.note = ""
		return m, nil
	}
	return m, m.act("🗑️  Deleted "+it.Title, func(ctx context.Context) error {
		return m.svc.DeleteItem(ctx, it.ID)
	})
}

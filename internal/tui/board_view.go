package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/fiches/internal/models"
	"github.com/balkashynov/fiches/internal/parser"
	"github.com/balkashynov/fiches/internal/selectors"
)

var weekdays = []string{"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam", "Dim"}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// pad renders s in a cell of exactly n columns
func pad(s string, n int) string {
	return lipgloss.NewStyle().Width(n).MaxWidth(n).Render(truncate(s, n))
}

// View renders the TUI
func (m BoardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var body string
	switch m.view() {
	case models.ViewKanban:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderKanban(m.width*70/100), " ", m.renderDetails(m.width*30/100-1))
	case models.ViewCalendar:
		body = m.renderCalendar(m.width - 2)
	default:
		leftWidth := m.width * 65 / 100
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderTable(leftWidth), " ", m.renderDetails(m.width-leftWidth-1))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatusLine(),
		m.renderHelpBar(),
	)
}

// renderHeader shows the university tabs, the filters and the KPIs
func (m BoardModel) renderHeader() string {
	var tabs []string
	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorAccentMain)).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Padding(0, 1)
	for _, u := range m.store.Universities {
		if u.ID == m.store.UI.ActiveUniversityID {
			tabs = append(tabs, active.Render(u.Name))
		} else {
			tabs = append(tabs, inactive.Render(u.Name))
		}
	}
	if len(tabs) == 0 {
		tabs = append(tabs, inactive.Render("No university. Run 'fiches import <file.xlsx>'"))
	}

	k := selectors.ComputeKPIs(m.store, m.today)
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	kpis := fmt.Sprintf("%s items  %s validated (%d%%)  %s overdue  avg %s",
		accent.Render(fmt.Sprint(k.Total)),
		accent.Render(fmt.Sprint(k.Validated)), k.ValidatedPercent,
		lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Bold(true).Render(fmt.Sprint(k.Overdue)),
		progressBar(k.AverageProgress, 10)+fmt.Sprintf(" %d%%", k.AverageProgress))

	var filters []string
	f := m.store.UI.Filters
	if f.SubjectID != "" {
		name := f.SubjectID
		if s := selectors.SubjectByID(m.store, f.SubjectID); s != nil {
			name = s.Name
		}
		filters = append(filters, "subject="+name)
	}
	if f.Owner != "" {
		filters = append(filters, "owner="+f.Owner)
	}
	if f.Status != "" {
		filters = append(filters, "status="+f.Status.Label())
	}
	if f.Priority != "" {
		filters = append(filters, "priority="+f.Priority.Label())
	}
	if f.OverdueOnly {
		filters = append(filters, "overdue")
	}
	if f.HasDeadline != models.Any {
		filters = append(filters, "deadline="+f.HasDeadline.String())
	}
	if m.query != "" {
		filters = append(filters, "search="+m.query)
	}
	if m.sortColumn != selectors.SortNone {
		dir := "↑"
		if m.descending {
			dir = "↓"
		}
		filters = append(filters, "sort="+string(m.sortColumn)+dir)
	}
	filterLine := "Filters: none"
	if len(filters) > 0 {
		filterLine = "Filters: " + strings.Join(filters, " · ")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		strings.Join(tabs, " "),
		kpis,
		muted.Render(filterLine+"  ·  view: "+string(m.view())),
	)
}

// renderTable renders the item table with pagination
func (m BoardModel) renderTable(width int) string {
	var b strings.Builder
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright))

	if len(m.items) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).Render("No items found"))
		return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).Width(width).Render(b.String())
	}

	available := width - 6
	statusWidth, prioWidth, progressWidth, dueWidth := 12, 8, 5, 12
	subjectWidth := max(available/4, 8)
	titleWidth := max(available-subjectWidth-statusWidth-prioWidth-progressWidth-dueWidth-5, 10)

	b.WriteString(headerStyle.Render(strings.Join([]string{
		pad("SUBJECT", subjectWidth), pad("TITLE", titleWidth), pad("STATUS", statusWidth),
		pad("PRIO", prioWidth), pad("%", progressWidth), pad("DEADLINE", dueWidth),
	}, " ")))
	b.WriteString("\n")

	univ := selectors.ActiveUniversity(m.store)
	start := m.page * m.perPage
	end := min(start+m.perPage, len(m.items))
	for i := start; i < end; i++ {
		it := m.items[i]
		subject := it.SubjectNameCache
		if univ != nil {
			if s := univ.FindSubject(it.SubjectID); s != nil {
				subject = s.Name
			}
		}
		due := "-"
		dueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
		if d, ok := it.DeadlineDate(m.today.Location()); ok {
			due = d.Format("02/01/2006")
			dueStyle = lipgloss.NewStyle()
			if selectors.IsOverdue(it, m.today) {
				dueStyle = dueStyle.Foreground(lipgloss.Color(ColorError)).Bold(true)
			}
		}

		row := strings.Join([]string{
			pad(subject, subjectWidth),
			pad(it.Title, titleWidth),
			lipgloss.NewStyle().Foreground(statusColor(it.Status)).Render(pad(it.Status.Label(), statusWidth)),
			lipgloss.NewStyle().Foreground(priorityColor(it.Priority)).Render(pad(it.Priority.Label(), prioWidth)),
			pad(fmt.Sprintf("%d", selectors.EffectiveProgress(it)), progressWidth),
			dueStyle.Render(pad(due, dueWidth)),
		}, " ")

		if i == m.selected {
			row = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).
				Background(lipgloss.Color(ColorCardBackground)).Bold(true).Render("▶ " + row)
		} else {
			row = "  " + row
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	if m.perPage < len(m.items) {
		totalPages := (len(m.items) + m.perPage - 1) / m.perPage
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).
			Render(fmt.Sprintf("Page %d/%d (%d items)", m.page+1, totalPages, len(m.items))))
	}

	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).Width(width).Render(b.String())
}

// renderKanban renders one column per status
func (m BoardModel) renderKanban(width int) string {
	cols := selectors.KanbanColumns(m.items)
	colWidth := max(width/len(cols)-2, 12)
	visible := max(m.height-12, 3)

	var rendered []string
	for c, col := range cols {
		var b strings.Builder
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(statusColor(col.Status)).
			Render(fmt.Sprintf("%s (%d)", col.Status.Label(), len(col.Items))))
		b.WriteString("\n")

		// keep the selected card in view
		start := 0
		if c == m.column && m.row >= visible {
			start = m.row - visible + 1
		}
		for r := start; r < len(col.Items) && r < start+visible; r++ {
			it := col.Items[r]
			card := pad(it.Title, colWidth-2)
			if c == m.column && r == m.row {
				card = lipgloss.NewStyle().Background(lipgloss.Color(ColorAccentMain)).
					Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true).Render(card)
			}
			b.WriteString(card)
			b.WriteString("\n")
		}
		if hidden := len(col.Items) - visible; hidden > 0 {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Render(fmt.Sprintf("+%d more", hidden)))
		}

		border := lipgloss.Color(ColorBorder)
		if c == m.column {
			border = lipgloss.Color(ColorAccentBright)
		}
		rendered = append(rendered, lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(border).Width(colWidth).Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderCalendar renders the month grid and the entries of the selected day
func (m BoardModel) renderCalendar(width int) string {
	grid := selectors.CalendarMonth(m.store, m.month.Year(), m.month.Month(), m.today)
	cellWidth := max(width/7-1, 6)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright)).
		Render(m.month.Format("January 2006")))
	b.WriteString("\n")

	var header []string
	for _, d := range weekdays {
		header = append(header, pad(d, cellWidth))
	}
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render(strings.Join(header, " ")))
	b.WriteString("\n")

	var selected []selectors.CalendarEntry
	var week []string
	for i, day := range grid {
		cell := pad("", cellWidth)
		if !day.Date.IsZero() {
			label := fmt.Sprintf("%2d", day.Date.Day())
			if n := len(day.Entries); n > 0 {
				label += fmt.Sprintf(" •%d", n)
			}
			style := lipgloss.NewStyle()
			for _, e := range day.Entries {
				if selectors.IsOverdue(e.Item, m.today) {
					style = style.Foreground(lipgloss.Color(ColorError))
					break
				}
			}
			if day.Date.Year() == m.today.Year() && day.Date.YearDay() == m.today.YearDay() {
				style = style.Underline(true)
			}
			if day.Date.Day() == m.day {
				style = style.Background(lipgloss.Color(ColorAccentMain)).Bold(true)
				selected = day.Entries
			}
			cell = style.Render(pad(label, cellWidth))
		}
		week = append(week, cell)
		if (i+1)%7 == 0 || i == len(grid)-1 {
			b.WriteString(strings.Join(week, " "))
			b.WriteString("\n")
			week = nil
		}
	}

	b.WriteString("\n")
	if len(selected) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Italic(true).Render("Nothing due on this day"))
	}
	for _, e := range selected {
		if e.SubjectDeadline {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning)).Render("◆ " + e.SubjectName + " (subject deadline)"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(statusColor(e.Item.Status)).Render("• " + e.Item.Title + "  " + e.Item.Status.Label()))
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).Width(width).Render(b.String())
}

// renderDetails renders the panel with the selected item's details
func (m BoardModel) renderDetails(width int) string {
	var b strings.Builder
	it, ok := m.current()
	if !ok {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentMain)).Bold(true).
			Align(lipgloss.Center).Width(width-2).Render("fiches"))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).
			Align(lipgloss.Center).Width(width-2).Render("Select an item to view details"))
	} else {
		label := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText)).
			Width(width-2).Render("📋 "+it.Title))
		b.WriteString("\n\n")

		if s := selectors.SubjectByID(m.store, it.SubjectID); s != nil {
			b.WriteString(label.Render("Subject: ") + s.Name + "\n")
			if s.Owner != "" {
				b.WriteString(label.Render("Owner: ") + s.Owner + "\n")
			}
			if s.Method != models.MethodUnknown {
				b.WriteString(label.Render("Method: ") + s.Method.Label() + "\n")
			}
			b.WriteString(label.Render("Subject progress: ") +
				progressBar(selectors.SubjectProgress(m.store, s.ID), 10) +
				fmt.Sprintf(" %d%%", selectors.SubjectProgress(m.store, s.ID)) + "\n")
		}
		b.WriteString(label.Render("Status: ") + lipgloss.NewStyle().Foreground(statusColor(it.Status)).Bold(true).Render(it.Status.Label()) + "\n")
		b.WriteString(label.Render("Priority: ") + lipgloss.NewStyle().Foreground(priorityColor(it.Priority)).Render(it.Priority.Label()) + "\n")
		progress := selectors.EffectiveProgress(it)
		b.WriteString(label.Render("Progress: ") + progressBar(progress, 10) + fmt.Sprintf(" %d%%", progress) + "\n")
		if it.HasDeadline() {
			b.WriteString(label.Render("Deadline: ") + parser.FormatDeadline(it, m.today) + "\n")
		}
		if it.Professor != "" {
			b.WriteString(label.Render("Professor: ") + it.Professor + "\n")
		}
		if it.Comment != "" {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).
				Width(width-2).Render(it.Comment))
		}
	}

	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).Width(width).Render(b.String())
}

// renderStatusLine shows the input being typed, the last note or error
func (m BoardModel) renderStatusLine() string {
	style := lipgloss.NewStyle().Padding(0, 1).Width(m.width - 2)
	switch m.focus {
	case FocusSearch:
		return style.Foreground(lipgloss.Color(ColorPrimaryText)).Background(lipgloss.Color(ColorBorder)).Render(m.search.View())
	case FocusEdit:
		return style.Foreground(lipgloss.Color(ColorPrimaryText)).Background(lipgloss.Color(ColorBorder)).Render(m.edit.View())
	}
	if m.err != nil {
		return style.Foreground(lipgloss.Color(ColorError)).Render("❌ Error: " + m.err.Error())
	}
	return style.Foreground(lipgloss.Color(ColorSuccess)).Render(m.note)
}

// renderHelpBar renders the help bar with hotkey hints
func (m BoardModel) renderHelpBar() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width)

	helpText := "↑/↓ nav · n/p status · +/- progress · e edit · d delete · / search · s sort · o overdue · x clear · u uni · tab view · q quit"
	if m.view() == models.ViewCalendar {
		helpText = "←/→ day · ↑/↓ week · [/] month · t today · o overdue · x clear · u uni · tab view · q quit"
	}
	return helpStyle.Render(helpText)
}

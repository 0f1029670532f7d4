package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/stonecharioteer/codex-todo/internal/dateexpr"
	"github.com/stonecharioteer/codex-todo/internal/storage"
)

const (
	appTitle      = "Codex TODO"
	doneGlyph     = "✓"
	createdLayout = "2006-01-02 15:04:05"

	minTitleWidth = 12
	maxTitleWidth = 60
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#AD8CFF"}).
			PaddingBottom(1)
	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#AD8CFF"}).
			Padding(0, 1)
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
)

func newTaskTable() table.Model {
	t := table.New(
		table.WithColumns(taskColumns(nil, 0)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// taskColumns sizes the Title column to the widest title, bounded by the
// terminal width when it is known.
func taskColumns(tasks []storage.Task, width int) []table.Column {
	idWidth := len("ID")
	titleWidth := minTitleWidth
	for _, t := range tasks {
		idWidth = max(idWidth, len(strconv.Itoa(t.ID)))
		titleWidth = max(titleWidth, runewidth.StringWidth(t.Title))
	}
	titleWidth = min(titleWidth, maxTitleWidth)

	fixed := []table.Column{
		{Title: "Due", Width: len(dateexpr.Layout)},
		{Title: "Done", Width: 4},
		{Title: "Created At", Width: len(createdLayout)},
	}
	if width > 0 {
		// each column carries one cell of padding on both sides
		used := idWidth + 2
		for _, c := range fixed {
			used += c.Width + 2
		}
		titleWidth = max(minTitleWidth, min(titleWidth, width-used-2))
	}

	return append([]table.Column{
		{Title: "ID", Width: idWidth},
		{Title: "Title", Width: titleWidth},
	}, fixed...)
}

func taskRows(tasks []storage.Task) []table.Row {
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, taskRow(t))
	}
	return rows
}

// taskRow renders ID, Title, Due, Done and Created At cells.
func taskRow(t storage.Task) table.Row {
	due := ""
	if t.Due.Valid {
		due = dateexpr.Format(t.Due.Time)
	}
	done := ""
	if t.Completed {
		done = doneGlyph
	}
	created := ""
	if !t.CreatedAt.IsZero() {
		created = t.CreatedAt.Local().Format(createdLayout)
	}
	return table.Row{strconv.Itoa(t.ID), t.Title, due, done, created}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(appTitle))
	b.WriteString("\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")
	if len(m.tasks) == 0 {
		b.WriteString(statusStyle.Render("No todos yet. Press 'a' to add one."))
		b.WriteString("\n")
	}

	switch s := surfaceFor(m.mode); {
	case s.input:
		b.WriteString(paneStyle.Render(m.input.View()))
		b.WriteString("\n")
	case s.calendar:
		b.WriteString(paneStyle.Render(m.calendar.View()))
		b.WriteString("\n")
	}

	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.helpFor(m.mode)))

	return b.String()
}

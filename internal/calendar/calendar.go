// Package calendar provides a month grid date picker for Bubble Tea programs.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stonecharioteer/codex-todo/internal/dateexpr"
)

// DateSelectedMsg is emitted when the cursor rests on a day and the user confirms.
type DateSelectedMsg struct {
	Date time.Time
}

// KeyMap holds the picker's own bindings. Anything else is cursor movement.
type KeyMap struct {
	Confirm   key.Binding
	NextMonth key.Binding
	PrevMonth key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
}

// DefaultKeyMap returns enter to confirm, n/pgdown and p/pgup to page.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick date")),
		NextMonth: key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n/pgdn", "next month")),
		PrevMonth: key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p/pgup", "prev month")),
		Up:        key.NewBinding(key.WithKeys("up", "k")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Left:      key.NewBinding(key.WithKeys("left", "h")),
		Right:     key.NewBinding(key.WithKeys("right", "l")),
	}
}

var weekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#AD8CFF"})
	weekdayStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
	cellStyle    = lipgloss.NewStyle().Width(5).Align(lipgloss.Right)
	cursorStyle  = cellStyle.Reverse(true)
	todayStyle   = cellStyle.Bold(true).Underline(true)
)

// Model is the picker state. The zero value is not usable; call New.
type Model struct {
	KeyMap KeyMap

	year  int
	month time.Month
	// weeks holds day numbers, Monday first; 0 marks a blank cell.
	weeks   [][7]int
	row     int
	col     int
	focused bool
	now     func() time.Time
}

// New returns a picker showing the month containing now().
func New(now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	today := now()
	m := Model{KeyMap: DefaultKeyMap(), now: now}
	m.Build(today.Year(), today.Month())
	return m
}

// Build lays out the given month and places the cursor on today when it is
// visible, otherwise on the first day of the month.
func (m *Model) Build(year int, month time.Month) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	m.year, m.month = first.Year(), first.Month()
	m.weeks = layout(m.year, m.month)

	today := dateexpr.Date(m.now())
	target := 1
	if today.Year() == m.year && today.Month() == m.month {
		target = today.Day()
	}
	for r, week := range m.weeks {
		for c, d := range week {
			if d == target {
				m.row, m.col = r, c
				return
			}
		}
	}
}

// layout splits a month into Monday-first week rows.
func layout(year int, month time.Month) [][7]int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// time.Weekday is Sunday=0; shift so Monday=0.
	col := (int(first.Weekday()) + 6) % 7

	var weeks [][7]int
	var week [7]int
	for d := 1; d <= dateexpr.DaysIn(year, month); d++ {
		week[col] = d
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

// PageForward shows the next month, rolling December into January.
func (m *Model) PageForward() {
	if m.month == time.December {
		m.Build(m.year+1, time.January)
		return
	}
	m.Build(m.year, m.month+1)
}

// PageBackward shows the previous month, rolling January into December.
func (m *Model) PageBackward() {
	if m.month == time.January {
		m.Build(m.year-1, time.December)
		return
	}
	m.Build(m.year, m.month-1)
}

// Selected returns the date under the cursor, or false on a blank cell.
func (m Model) Selected() (time.Time, bool) {
	d := m.weeks[m.row][m.col]
	if d == 0 {
		return time.Time{}, false
	}
	return time.Date(m.year, m.month, d, 0, 0, 0, 0, time.UTC), true
}

// Confirm returns a command emitting DateSelectedMsg, or nil on a blank cell.
func (m Model) Confirm() tea.Cmd {
	sel, ok := m.Selected()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return DateSelectedMsg{Date: sel}
	}
}

func (m Model) Year() int { return m.year }

func (m Model) Month() time.Month { return m.month }

// Cursor returns the (week row, weekday column) under the cursor.
func (m Model) Cursor() (int, int) { return m.row, m.col }

func (m Model) Weeks() [][7]int { return m.weeks }

func (m Model) Focused() bool { return m.focused }

func (m *Model) Focus() { m.focused = true }

func (m *Model) Blur() { m.focused = false }

// Reset rebuilds the picker on the current month.
func (m *Model) Reset() {
	today := m.now()
	m.Build(today.Year(), today.Month())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.KeyMap.Confirm):
		return m, m.Confirm()
	case key.Matches(keyMsg, m.KeyMap.NextMonth):
		m.PageForward()
	case key.Matches(keyMsg, m.KeyMap.PrevMonth):
		m.PageBackward()
	case key.Matches(keyMsg, m.KeyMap.Up):
		m.move(-1, 0)
	case key.Matches(keyMsg, m.KeyMap.Down):
		m.move(1, 0)
	case key.Matches(keyMsg, m.KeyMap.Left):
		m.move(0, -1)
	case key.Matches(keyMsg, m.KeyMap.Right):
		m.move(0, 1)
	}
	return m, nil
}

// move shifts the cursor within the grid. Blank cells are reachable, as in
// any table, but cannot be confirmed.
func (m *Model) move(dr, dc int) {
	m.row = max(0, min(len(m.weeks)-1, m.row+dr))
	m.col = max(0, min(6, m.col+dc))
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %d", m.month, m.year)))
	b.WriteString("\n")
	for _, wd := range weekdays {
		b.WriteString(cellStyle.Inherit(weekdayStyle).Render(wd))
	}
	b.WriteString("\n")

	today := dateexpr.Date(m.now())
	for r, week := range m.weeks {
		for c, d := range week {
			text := ""
			if d != 0 {
				text = fmt.Sprintf("%d", d)
			}
			style := cellStyle
			switch {
			case r == m.row && c == m.col && m.focused:
				style = cursorStyle
			case d != 0 && today.Equal(time.Date(m.year, m.month, d, 0, 0, 0, 0, time.UTC)):
				style = todayStyle
			}
			b.WriteString(style.Render(text))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

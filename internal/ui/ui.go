package ui

import (
	"database/sql"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/stonecharioteer/codex-todo/internal/calendar"
	"github.com/stonecharioteer/codex-todo/internal/config"
	"github.com/stonecharioteer/codex-todo/internal/dateexpr"
	"github.com/stonecharioteer/codex-todo/internal/storage"
)

// TaskStore is the persistence the UI drives. *storage.Store implements it.
type TaskStore interface {
	Insert(title string, due sql.NullTime) error
	ListTasks() ([]storage.Task, error)
	ToggleCompleted(id int) error
	SetDueDate(id int, due sql.NullTime) error
	DeleteTask(id int) error
}

type Model struct {
	store    TaskStore
	keys     keyMap
	tasks    []storage.Task
	table    table.Model
	input    textinput.Model
	calendar calendar.Model
	help     help.Model
	mode     inputMode
	status   string
	// err is a storage failure; it ends the program and is returned by Run.
	err   error
	now   func() time.Time
	width int
}

func Run(store TaskStore, cfg config.Config) error {
	m, err := New(store, cfg.Keys, time.Now)
	if err != nil {
		return err
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

// New builds the idle model and loads the task table.
func New(store TaskStore, keys config.Keymap, now func() time.Time) (Model, error) {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 60

	cal := calendar.New(now)

	m := Model{
		store:    store,
		keys:     newKeyMap(keys),
		table:    newTaskTable(),
		input:    ti,
		calendar: cal,
		help:     help.New(),
		mode:     modeIdle{},
		status:   "Press 'a' to add, 't' to toggle, 'd' to delete.",
		now:      now,
	}
	m.calendar.KeyMap = m.keys.Picker
	if err := m.refresh(); err != nil {
		return m, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case calendar.DateSelectedMsg:
		if _, ok := m.mode.(modePickingDate); !ok {
			return m, nil
		}
		due := sql.NullTime{Time: msg.Date, Valid: true}
		m.status = "Due " + dateexpr.Format(msg.Date) + " staged for the next todo"
		cmd := m.enterMode(modeAdding{due: due})
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode.(type) {
		case modeIdle:
			return m.updateIdle(msg)
		case modePickingDate:
			return m.updatePicking(msg)
		default:
			return m.updateInput(msg)
		}
	}
	return m, nil
}

func (m Model) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add):
		m.status = "Add mode: type a title and press Enter"
		cmd := m.enterMode(modeAdding{})
		return m, cmd
	case key.Matches(msg, m.keys.Calendar):
		m.status = "Pick a due date for the next todo"
		cmd := m.enterMode(modePickingDate{})
		return m, cmd
	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.highlighted()
		if !ok {
			return m, nil
		}
		if err := m.store.ToggleCompleted(t.ID); err != nil {
			return m.fail(err)
		}
		log.Debug().Int("id", t.ID).Msg("toggled task")
		m.status = "Toggled task"
		return m.refreshed()
	case key.Matches(msg, m.keys.Delete):
		t, ok := m.highlighted()
		if !ok {
			return m, nil
		}
		m.status = "Confirm delete"
		cmd := m.enterMode(modeConfirmingDelete{taskID: t.ID, title: t.Title})
		return m, cmd
	case key.Matches(msg, m.keys.EditDue):
		t, ok := m.highlighted()
		if !ok {
			return m, nil
		}
		m.status = "Edit due date: slash command or YYYY-MM-DD"
		cmd := m.enterMode(modeEditingDue{taskID: t.ID, current: t.Due})
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updatePicking(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.status = "Cancelled"
		cmd := m.enterMode(modeIdle{})
		return m, cmd
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.calendar, cmd = m.calendar.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.status = "Cancelled"
		cmd := m.enterMode(modeIdle{})
		return m, cmd
	case key.Matches(msg, m.keys.Confirm):
		return m.submit(strings.TrimSpace(m.input.Value()))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit interprets the input text according to the active mode and always
// returns to idle.
func (m Model) submit(raw string) (tea.Model, tea.Cmd) {
	switch mode := m.mode.(type) {
	case modeAdding:
		title, due, ok := dateexpr.ExtractTitleAndDue(raw, m.now())
		effective := mode.due
		if ok {
			effective = sql.NullTime{Time: due, Valid: true}
		}
		if title == "" {
			m.status = ""
			break
		}
		if err := m.store.Insert(title, effective); err != nil {
			return m.fail(err)
		}
		log.Debug().Str("title", title).Bool("due", effective.Valid).Msg("added task")
		m.status = "Added task"
		m.enterMode(modeIdle{})
		if err := m.refresh(); err != nil {
			return m.fail(err)
		}
		m.table.SetCursor(len(m.tasks) - 1)
		return m, nil

	case modeEditingDue:
		due := sql.NullTime{}
		if raw != "" {
			d, ok := dateexpr.Parse(raw, m.now())
			if ok {
				due = sql.NullTime{Time: d, Valid: true}
			} else {
				// An unrecognized expression clears the date, same as empty input.
				log.Warn().Int("id", mode.taskID).Str("input", raw).Msg("unparsable due date, clearing")
			}
		}
		if err := m.store.SetDueDate(mode.taskID, due); err != nil {
			return m.fail(err)
		}
		log.Debug().Int("id", mode.taskID).Bool("due", due.Valid).Msg("set due date")
		if due.Valid {
			m.status = "Due date set to " + dateexpr.Format(due.Time)
		} else {
			m.status = "Due date cleared"
		}

	case modeConfirmingDelete:
		if answer := strings.ToLower(raw); answer == "y" || answer == "yes" {
			if err := m.store.DeleteTask(mode.taskID); err != nil {
				return m.fail(err)
			}
			log.Debug().Int("id", mode.taskID).Msg("deleted task")
			m.status = "Deleted task"
		} else {
			m.status = "Delete cancelled"
		}
	}

	m.enterMode(modeIdle{})
	return m.refreshed()
}

// enterMode switches modes and puts the input, calendar and table into the
// state the new mode's surface requires.
func (m *Model) enterMode(next inputMode) tea.Cmd {
	m.mode = next
	s := surfaceFor(next)

	m.input.SetValue("")
	m.input.Placeholder = s.placeholder

	switch {
	case s.input:
		m.table.Blur()
		m.calendar.Blur()
		return m.input.Focus()
	case s.calendar:
		m.input.Blur()
		m.table.Blur()
		m.calendar.Reset()
		m.calendar.Focus()
	default:
		m.input.Blur()
		m.calendar.Blur()
		m.table.Focus()
	}
	return nil
}

func (m Model) highlighted() (storage.Task, bool) {
	if len(m.tasks) == 0 {
		return storage.Task{}, false
	}
	return m.tasks[clampCursor(m.table.Cursor(), len(m.tasks))], true
}

// refresh reloads every task and rebuilds the table rows.
func (m *Model) refresh() error {
	tasks, err := m.store.ListTasks()
	if err != nil {
		return err
	}
	m.tasks = tasks
	m.table.SetColumns(taskColumns(m.tasks, m.width))
	m.table.SetRows(taskRows(m.tasks))
	m.table.SetCursor(clampCursor(m.table.Cursor(), len(m.tasks)))
	return nil
}

func (m Model) refreshed() (tea.Model, tea.Cmd) {
	if err := m.refresh(); err != nil {
		return m.fail(err)
	}
	return m, nil
}

// fail records a storage error and stops the program.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	log.Error().Err(err).Msg("storage operation failed")
	m.err = err
	return m, tea.Quit
}

// Err returns the storage error that stopped the program, if any.
func (m Model) Err() error {
	return m.err
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.input.Width = max(10, width-10)
	m.help.Width = width
	m.table.SetColumns(taskColumns(m.tasks, width))
	// header, pane (calendar is the tallest), status and help
	m.table.SetHeight(max(3, height-14))
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/stonecharioteer/codex-todo/internal/calendar"
	"github.com/stonecharioteer/codex-todo/internal/config"
)

type keyMap struct {
	Add      key.Binding
	Toggle   key.Binding
	Delete   key.Binding
	Calendar key.Binding
	EditDue  key.Binding
	Quit     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Picker   calendar.KeyMap
}

func newKeyMap(k config.Keymap) keyMap {
	picker := calendar.DefaultKeyMap()
	picker.Confirm = binding(k.Confirm, "pick date")
	picker.NextMonth = binding(k.NextMonth, "next month")
	picker.PrevMonth = binding(k.PrevMonth, "prev month")

	return keyMap{
		Add:      binding(k.Add, "add"),
		Toggle:   binding(k.Toggle, "toggle done"),
		Delete:   binding(k.Delete, "delete"),
		Calendar: binding(k.Calendar, "due date"),
		EditDue:  binding(k.EditDue, "edit due"),
		Quit:     binding(k.Quit, "quit"),
		Confirm:  binding(k.Confirm, "submit"),
		Cancel:   binding(k.Cancel, "cancel"),
		Picker:   picker,
	}
}

// binding turns a space separated key list from the config into a key.Binding.
func binding(keys, help string) key.Binding {
	ks := strings.Fields(keys)
	return key.NewBinding(
		key.WithKeys(ks...),
		key.WithHelp(strings.Join(ks, "/"), help),
	)
}

// helpFor lists the bindings that do something in the given mode.
func (k keyMap) helpFor(mode inputMode) []key.Binding {
	switch mode.(type) {
	case modeIdle:
		return []key.Binding{k.Add, k.Toggle, k.Delete, k.Calendar, k.EditDue, k.Quit}
	case modePickingDate:
		return []key.Binding{k.Picker.Confirm, k.Picker.NextMonth, k.Picker.PrevMonth, k.Cancel}
	default:
		return []key.Binding{k.Confirm, k.Cancel}
	}
}

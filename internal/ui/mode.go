package ui

import (
	"database/sql"
	"fmt"

	"github.com/stonecharioteer/codex-todo/internal/dateexpr"
)

// inputMode is one of the modeX types below. Each carries only the state its
// interaction needs, so no two modes can be half-active at once.
type inputMode interface {
	isInputMode()
}

type modeIdle struct{}

// modeAdding reads a new task title; due is staged by the calendar picker.
type modeAdding struct {
	due sql.NullTime
}

type modePickingDate struct{}

type modeEditingDue struct {
	taskID  int
	current sql.NullTime
}

type modeConfirmingDelete struct {
	taskID int
	title  string
}

func (modeIdle) isInputMode()             {}
func (modeAdding) isInputMode()           {}
func (modePickingDate) isInputMode()      {}
func (modeEditingDue) isInputMode()       {}
func (modeConfirmingDelete) isInputMode() {}

// surface describes what the bottom pane shows for a mode.
type surface struct {
	input       bool
	calendar    bool
	placeholder string
}

func surfaceFor(mode inputMode) surface {
	switch mode := mode.(type) {
	case modeAdding:
		if mode.due.Valid {
			return surface{input: true, placeholder: fmt.Sprintf("New todo (due %s)", dateexpr.Format(mode.due.Time))}
		}
		return surface{input: true, placeholder: "New todo"}
	case modePickingDate:
		return surface{calendar: true}
	case modeEditingDue:
		if mode.current.Valid {
			return surface{input: true, placeholder: fmt.Sprintf("Set due date (current %s, leave empty to clear)", dateexpr.Format(mode.current.Time))}
		}
		return surface{input: true, placeholder: "Set due date (slash/ISO, leave empty to clear)"}
	case modeConfirmingDelete:
		return surface{input: true, placeholder: fmt.Sprintf("Delete '%s'? (y/n)", mode.title)}
	default:
		return surface{}
	}
}

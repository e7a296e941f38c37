package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/freezers/internal/ui"
)

// ------- layout constants -------
const (
	listWidth = 40
	logRows   = 6
	modalW    = 36
)

// newInput builds a text input with a steady cursor; forms here are
// redrawn on every keystroke so blinking adds nothing.
func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newSpinner() spinner.Model {
	return spinner.New(spinner.WithSpinner(spinner.Dot))
}

// modal renders the "Wait please..." card with its cancel hint, centred in
// a width x height area.
func modal(width, height int, sp spinner.Model) string {
	t := ui.Current()
	card := t.Box(true).Width(modalW).Render(
		sp.View() + " Wait please...\n\n" + t.Muted.Render("esc  Cancel"),
	)
	if width <= 0 || height <= 0 {
		return card
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette + symbols + borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Warn, Selected lipgloss.Style
	Focused, Blurred                                     lipgloss.Style

	// Levels colours log lines: trace, debug, info, warn, error.
	Levels [5]lipgloss.Style

	Border             lipgloss.Border
	BorderColor        lipgloss.TerminalColor
	FocusedBorderColor lipgloss.TerminalColor
	SymOK, SymFail     string
	SymWarn            string
}

var current = build("classic")

// SetTheme switches the palette: classic, neon or mono.
func SetTheme(name string) { current = build(name) }

// Current exposes what renderers need.
func Current() Theme { return current }

func build(name string) Theme {
	plain := lipgloss.NewStyle()
	fg := func(c string) lipgloss.Style { return plain.Foreground(lipgloss.Color(c)) }

	switch strings.ToLower(name) {
	case "neon":
		return Theme{
			Title: fg("13").Bold(true), Muted: plain.Faint(true), Accent: fg("14"),
			Success: fg("10"), Error: fg("9").Bold(true), Warn: fg("11"),
			Selected: fg("13").Bold(true).Reverse(true),
			Focused:  fg("14"), Blurred: plain.Faint(true),
			Levels: [5]lipgloss.Style{fg("#800080"), fg("#0000ff"), fg("#008000"), fg("#ffff00"), fg("#ff0000")},
			Border: lipgloss.RoundedBorder(), BorderColor: lipgloss.Color("5"), FocusedBorderColor: lipgloss.Color("14"),
			SymOK: "✔", SymFail: "✖", SymWarn: "▲",
		}
	case "mono":
		return Theme{
			Title: plain.Bold(true), Muted: plain, Accent: plain,
			Success: plain, Error: plain.Bold(true), Warn: plain,
			Selected: plain.Reverse(true),
			Focused:  plain.Underline(true), Blurred: plain,
			Levels: [5]lipgloss.Style{plain, plain, plain, plain, plain.Bold(true)},
			Border: lipgloss.NormalBorder(), BorderColor: lipgloss.NoColor{}, FocusedBorderColor: lipgloss.NoColor{},
			SymOK: "ok", SymFail: "x", SymWarn: "!",
		}
	default: // classic
		return Theme{
			Title: plain.Bold(true), Muted: plain.Faint(true), Accent: fg("12"),
			Success: fg("42"), Error: fg("9").Bold(true), Warn: fg("214"),
			Selected: plain.Bold(true).Reverse(true),
			Focused:  fg("12"), Blurred: plain.Faint(true),
			Levels: [5]lipgloss.Style{fg("#800080"), fg("#0000ff"), fg("#008000"), fg("#ffff00"), fg("#ff0000")},
			Border: lipgloss.RoundedBorder(), BorderColor: lipgloss.Color("8"), FocusedBorderColor: lipgloss.Color("12"),
			SymOK: "✔", SymFail: "✖", SymWarn: "▲",
		}
	}
}

// Box is the framed container used for panels; focused boxes get the
// accent border colour.
func (t Theme) Box(focused bool) lipgloss.Style {
	c := t.BorderColor
	if focused {
		c = t.FocusedBorderColor
	}
	return lipgloss.NewStyle().Border(t.Border).BorderForeground(c).Padding(0, 1)
}

package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Field is one labelled row of a panel.
type Field struct {
	Label, Value string
}

// Panel draws a framed box using the current theme.
func Panel(w io.Writer, title string, lines []string) {
	t := Current()
	body := lines
	if title != "" {
		body = append([]string{t.Title.Render(title), ""}, lines...)
	}
	fmt.Fprintln(w, t.Box(false).Render(strings.Join(body, "\n")))
}

// Fields aligns labels in a column, muted labels and plain values.
func Fields(fields []Field) []string {
	width := 0
	for _, f := range fields {
		if n := lipgloss.Width(f.Label); n > width {
			width = n
		}
	}
	t := Current()
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		label := f.Label + strings.Repeat(" ", width-lipgloss.Width(f.Label))
		out = append(out, t.Muted.Render(label)+"  "+f.Value)
	}
	return out
}

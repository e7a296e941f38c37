package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/freezers/internal/ui"
)

// Level orders log entries; it indexes Theme.Levels.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	return [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}[l]
}

func (l Level) zerolog() zerolog.Level {
	return [...]zerolog.Level{zerolog.TraceLevel, zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel, zerolog.ErrorLevel}[l]
}

// LogMsg asks the app to record a line in the log panel and the log file.
type LogMsg struct {
	Level     Level
	Component string
	Text      string
}

func logCmd(level Level, component, format string, args ...any) tea.Cmd {
	text := fmt.Sprintf(format, args...)
	return func() tea.Msg { return LogMsg{Level: level, Component: component, Text: text} }
}

func errorCmd(component string, err error) tea.Cmd {
	return logCmd(LevelError, component, "%v", err)
}

// maxLogEntries bounds the panel history.
const maxLogEntries = 200

type entry struct {
	level Level
	text  string
	at    time.Time
}

// Log is the bottom panel listing recent events, newest first.
type Log struct {
	entries []entry
}

// Add records one line.
func (l *Log) Add(level Level, text string) {
	l.entries = append(l.entries, entry{level: level, text: text, at: time.Now()})
	if n := len(l.entries) - maxLogEntries; n > 0 {
		l.entries = l.entries[n:]
	}
}

// Clear drops every line.
func (l *Log) Clear() { l.entries = nil }

// Len is the number of lines held.
func (l Log) Len() int { return len(l.entries) }

// Last returns the newest line, if any.
func (l Log) Last() (Level, string, bool) {
	if len(l.entries) == 0 {
		return 0, "", false
	}
	e := l.entries[len(l.entries)-1]
	return e.level, e.text, true
}

// View renders up to rows lines, newest first.
func (l Log) View(width, rows int) string {
	t := ui.Current()
	lines := make([]string, 0, rows)
	for i := len(l.entries) - 1; i >= 0 && len(lines) < rows; i-- {
		e := l.entries[i]
		line := fmt.Sprintf("%s %-5s %s", e.at.Format(time.TimeOnly), e.level, e.text)
		style := t.Levels[e.level]
		if width > 0 {
			style = style.MaxWidth(width)
		}
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n")
}

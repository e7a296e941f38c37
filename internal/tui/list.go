package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/freezers/internal/client"
	"github.com/idilsaglam/freezers/internal/ui"
)

// freezerItem adapts a freezer id to bubbles/list.Item
type freezerItem string

func (i freezerItem) FilterValue() string { return string(i) }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(freezerItem)
	t := ui.Current()
	prefix := "  "
	line := string(it)
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
		line = t.Accent.Render(line)
	}
	fmt.Fprintln(w, prefix+line)
}

type listState int

const (
	listLoading listState = iota
	listReady
)

// PageMsg carries one page of freezer ids.
type PageMsg struct {
	gen int
	IDs []string
	Err error
}

// PingMsg is sent when the user opens a freezer from the list.
type PingMsg struct{ ID string }

// RemoveMsg drops an id, e.g. after it was deleted.
type RemoveMsg struct{ ID string }

var (
	openBind    = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open"))
	refreshBind = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
)

// List pages through freezer ids, loading the next page when the cursor
// runs past the end.
type List struct {
	state     listState
	freezers  []string
	exhausted bool
	pageSize  int
	gen       int // bumped on refresh so late pages are dropped

	client *client.Client
	list   list.Model
}

// NewList builds the panel and the command loading the first page.
func NewList(c *client.Client, pageSize int) (List, tea.Cmd) {
	l := list.New(nil, itemDelegate{}, listWidth, 10)
	t := ui.Current()
	l.Title = "Freezers"
	l.Styles.Title = t.Title
	l.Styles.HelpStyle = t.Muted
	l.Styles.PaginationStyle = t.Muted
	l.SetShowHelp(false)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("freezer", "freezers")
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	m := List{
		state:    listLoading,
		pageSize: pageSize,
		client:   c,
		list:     l,
	}
	spin := m.list.StartSpinner()
	return m, tea.Batch(spin, m.fetch(0))
}

func (m List) fetch(offset int) tea.Cmd {
	c, limit, gen := m.client, m.pageSize, m.gen
	return func() tea.Msg {
		ids, err := c.FreezersBy(context.Background(), limit, offset)
		return PageMsg{gen: gen, IDs: ids, Err: err}
	}
}

// Loading reports whether a page request is pending.
func (m List) Loading() bool { return m.state == listLoading }

// Freezers returns the ids loaded so far.
func (m List) Freezers() []string { return m.freezers }

// Filtering reports whether the filter input has the keyboard.
func (m List) Filtering() bool { return m.list.SettingFilter() }

// SetSize fits the panel into width x height cells.
func (m *List) SetSize(width, height int) { m.list.SetSize(width, height) }

// ScrollEnd asks for the next page unless one is pending or the server
// has run out.
func (m List) ScrollEnd() (List, tea.Cmd) {
	if m.state == listLoading || m.exhausted {
		return m, nil
	}
	m.state = listLoading
	spin := m.list.StartSpinner()
	return m, tea.Batch(spin, m.fetch(len(m.freezers)))
}

// Refresh drops everything and reloads from the first page.
func (m List) Refresh() (List, tea.Cmd) {
	m.gen++
	m.freezers = nil
	m.exhausted = false
	m.state = listLoading
	cmd := m.list.SetItems(nil)
	spin := m.list.StartSpinner()
	return m, tea.Batch(cmd, spin, m.fetch(0))
}

func (m *List) syncItems() tea.Cmd {
	items := make([]list.Item, len(m.freezers))
	for i, id := range m.freezers {
		items[i] = freezerItem(id)
	}
	return m.list.SetItems(items)
}

func (m List) Update(msg tea.Msg) (List, tea.Cmd) {
	switch msg := msg.(type) {
	case PageMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.list.StopSpinner()
		m.state = listReady
		if msg.Err != nil {
			return m, errorCmd("list", msg.Err)
		}
		m.freezers = append(m.freezers, msg.IDs...)
		m.exhausted = len(msg.IDs) < m.pageSize
		cmd := m.syncItems()
		return m, cmd

	case RemoveMsg:
		for i, id := range m.freezers {
			if id == msg.ID {
				m.freezers = append(m.freezers[:i:i], m.freezers[i+1:]...)
				cmd := m.syncItems()
				return m, cmd
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.list.SettingFilter() {
			break
		}
		switch {
		case key.Matches(msg, openBind):
			if it, ok := m.list.SelectedItem().(freezerItem); ok {
				id := string(it)
				return m, func() tea.Msg { return PingMsg{ID: id} }
			}
			return m, nil
		case key.Matches(msg, refreshBind):
			return m.Refresh()
		case m.atEnd(msg):
			var cmd, more tea.Cmd
			m.list, cmd = m.list.Update(msg)
			m, more = m.ScrollEnd()
			return m, tea.Batch(cmd, more)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// atEnd reports whether msg tries to move past the last loaded item.
func (m List) atEnd(msg tea.KeyMsg) bool {
	if m.list.IsFiltered() || len(m.freezers) == 0 {
		return false
	}
	if key.Matches(msg, m.list.KeyMap.CursorDown) {
		return m.list.Index() == len(m.freezers)-1
	}
	if key.Matches(msg, m.list.KeyMap.NextPage) || key.Matches(msg, m.list.KeyMap.GoToEnd) {
		return m.list.Paginator.OnLastPage()
	}
	return false
}

// View shows the loading banner above the list.
func (m List) View() string {
	t := ui.Current()
	head := ""
	if m.state == listLoading {
		head = t.Accent.Render("LOADING...")
	} else if m.exhausted {
		head = t.Muted.Render(fmt.Sprintf("%d loaded, end of list", len(m.freezers)))
	}
	return head + "\n" + m.list.View()
}

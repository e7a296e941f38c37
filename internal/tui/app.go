package tui

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/freezers/internal/client"
	"github.com/idilsaglam/freezers/internal/ui"
)

// Options configure the interactive client.
type Options struct {
	Host     string
	Login    string
	PageSize int
	Timeout  time.Duration

	// AutoLogin submits the login form on start when Login is set.
	AutoLogin bool

	// HTTPClient is shared by every client built; nil gets a fresh one
	// per login.
	HTTPClient *http.Client
	Logger     zerolog.Logger

	// OnLogin runs after a successful login, e.g. to save the profile.
	OnLogin func(host, login string) error
}

type appState int

const (
	stateLogin appState = iota
	stateWaitLogin
	stateReady
)

type panel int

const (
	focusList panel = iota
	focusPreview
)

type loginResponseMsg struct {
	seq int
	err error
}

type submitMsg struct{}

var (
	loginBind  = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "login"))
	fieldBind  = key.NewBinding(key.WithKeys("tab", "shift+tab", "up", "down"), key.WithHelp("tab", "next field"))
	switchBind = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel"))
	quitBind   = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	clearBind  = key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear log"))
	forceQuit  = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
)

// App is the top-level model: a login form, a wait modal while the login
// request runs, then the list and preview side by side.
type App struct {
	state appState
	opts  Options

	host, login textinput.Model
	loginField  int

	client *client.Client
	cancel context.CancelFunc
	seq    int

	list    List
	preview Preview
	focus   panel

	log     Log
	logger  zerolog.Logger
	spinner spinner.Model
	help    help.Model

	width, height int
}

// NewApp builds the model in the Login state.
func NewApp(opts Options) App {
	if opts.Host == "" {
		opts.Host = client.DefaultAPI
	}
	m := App{
		state:   stateLogin,
		opts:    opts,
		host:    newInput("host", 200),
		login:   newInput("login", 120),
		logger:  opts.Logger.With().Str("component", "app").Logger(),
		spinner: newSpinner(),
		help:    help.New(),
	}
	m.host.SetValue(opts.Host)
	m.login.SetValue(opts.Login)
	m.loginField = 1
	m.login.Focus()
	return m
}

// State names the current top-level state.
func (m App) State() string {
	return [...]string{"Login", "Waiting for Login", "Ready"}[m.state]
}

func (m App) title() string { return "Freezers Client - " + m.State() }

func (m App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle(m.title())}
	if m.opts.AutoLogin && strings.TrimSpace(m.opts.Login) != "" {
		cmds = append(cmds, func() tea.Msg { return submitMsg{} })
	}
	return tea.Batch(cmds...)
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case LogMsg:
		m.record(msg)
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, forceQuit) {
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	}

	switch m.state {
	case stateLogin:
		return m.updateLogin(msg)
	case stateWaitLogin:
		return m.updateWait(msg)
	default:
		return m.updateReady(msg)
	}
}

func (m *App) record(msg LogMsg) {
	m.log.Add(msg.Level, msg.Text)
	component := msg.Component
	if component == "" {
		component = "app"
	}
	m.logger.WithLevel(msg.Level.zerolog()).Str("component", component).Msg(msg.Text)
}

func (m App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submitMsg:
		return m.submit()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, loginBind):
			return m.submit()
		case key.Matches(msg, fieldBind):
			m.loginField = 1 - m.loginField
			if m.loginField == 0 {
				m.login.Blur()
				m.host.Focus()
			} else {
				m.host.Blur()
				m.login.Focus()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.loginField == 0 {
			m.host, cmd = m.host.Update(msg)
		} else {
			m.login, cmd = m.login.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// submit validates the form and starts the login request.
func (m App) submit() (tea.Model, tea.Cmd) {
	login := strings.TrimSpace(m.login.Value())
	if login == "" {
		m.record(LogMsg{Level: LevelError, Component: "app", Text: "Login cannot be empty"})
		return m, nil
	}
	host := strings.TrimSpace(m.host.Value())
	if host == "" {
		host = client.DefaultAPI
		m.host.SetValue(host)
	}

	m.client = client.New(host, m.opts.HTTPClient, m.opts.Timeout, m.opts.Logger)
	m.state = stateWaitLogin
	m.seq++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	c, seq := m.client, m.seq
	m.logger.Info().Str("host", host).Str("login", login).Msg("logging in")
	return m, tea.Batch(
		tea.SetWindowTitle(m.title()),
		m.spinner.Tick,
		func() tea.Msg {
			defer cancel()
			return loginResponseMsg{seq: seq, err: c.Login(ctx, login)}
		},
	)
}

func (m App) updateWait(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, cancelBind) {
			m.cancel()
			m.cancel = nil
			m.seq++
			m.state = stateLogin
			return m, tea.SetWindowTitle(m.title())
		}

	case loginResponseMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.cancel = nil
		if msg.err != nil {
			m.state = stateLogin
			m.record(LogMsg{Level: LevelError, Component: "app", Text: msg.err.Error()})
			return m, tea.SetWindowTitle(m.title())
		}
		return m.ready()
	}
	return m, nil
}

// ready builds both panels once the login succeeded.
func (m App) ready() (tea.Model, tea.Cmd) {
	var listCmd, previewCmd tea.Cmd
	m.list, listCmd = NewList(m.client, m.opts.PageSize)
	m.preview, previewCmd = NewPreview(m.client)
	m.state = stateReady
	m.focus = focusList
	m.resize()

	login := strings.TrimSpace(m.login.Value())
	m.record(LogMsg{Level: LevelInfo, Component: "app", Text: "logged in as " + login})
	if m.opts.OnLogin != nil {
		if err := m.opts.OnLogin(m.client.API(), login); err != nil {
			m.record(LogMsg{Level: LevelWarn, Component: "app", Text: "save profile: " + err.Error()})
		}
	}
	return m, tea.Batch(tea.SetWindowTitle(m.title()), listCmd, previewCmd)
}

func (m App) updateReady(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, switchBind):
			m.focus = 1 - m.focus
			return m, nil
		case key.Matches(msg, clearBind):
			m.log.Clear()
			return m, nil
		case m.focus == focusList && !m.list.Filtering() && key.Matches(msg, quitBind):
			return m, tea.Quit
		}
		if m.focus == focusList {
			m.list, cmd = m.list.Update(msg)
		} else {
			m.preview, cmd = m.preview.Update(msg)
		}
		return m, cmd

	case PingMsg:
		m.preview, cmd = m.preview.Update(FetchRequestMsg{ID: msg.ID})
		return m, cmd

	case DeletedMsg:
		m.list, cmd = m.list.Update(RemoveMsg{ID: msg.ID})
		return m, cmd
	}

	var listCmd, previewCmd tea.Cmd
	m.list, listCmd = m.list.Update(msg)
	m.preview, previewCmd = m.preview.Update(msg)
	return m, tea.Batch(listCmd, previewCmd)
}

// Panel geometry; boxes add a border and one column of padding per side.
func (m App) mainHeight() int { return max(m.height-(logRows+2)-1, 6) }

func (m *App) resize() {
	if m.state != stateReady || m.width == 0 {
		return
	}
	inner := m.mainHeight() - 2
	m.list.SetSize(listWidth-4, inner-1)
	m.preview.SetSize(max(m.width-listWidth-4, 10), inner)
}

func (m App) keys() []key.Binding {
	switch m.state {
	case stateLogin:
		return []key.Binding{loginBind, fieldBind, forceQuit}
	case stateWaitLogin:
		return []key.Binding{cancelBind, forceQuit}
	}
	if m.focus == focusList {
		return []key.Binding{switchBind, openBind, refreshBind, clearBind, quitBind}
	}
	if m.preview.Loading() {
		return []key.Binding{switchBind, cancelBind}
	}
	return []key.Binding{switchBind, prevBind, nextBind, submitBind, updateBind, deleteBind}
}

func (m App) View() string {
	t := ui.Current()
	mainH := m.mainHeight()

	var body string
	switch m.state {
	case stateLogin:
		body = lipgloss.Place(m.width, mainH, lipgloss.Center, lipgloss.Center, m.loginView())
	case stateWaitLogin:
		body = modal(m.width, mainH, m.spinner)
	default:
		left := t.Box(m.focus == focusList).Width(listWidth - 2).Height(mainH - 2).Render(m.list.View())
		right := t.Box(m.focus == focusPreview).Width(max(m.width-listWidth-2, 12)).Height(mainH - 2).Render(m.preview.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	logBox := t.Box(false).Width(max(m.width-2, 20)).Render(m.log.View(m.width-4, logRows))
	return lipgloss.JoinVertical(lipgloss.Left, body, logBox, m.help.ShortHelpView(m.keys()))
}

func (m App) loginView() string {
	t := ui.Current()
	lines := []string{t.Title.Render("Freezers Client"), ""}
	lines = append(lines, ui.Fields([]ui.Field{
		{Label: "host", Value: m.host.View()},
		{Label: "login", Value: m.login.View()},
	})...)
	if level, text, ok := m.log.Last(); ok && level == LevelError {
		lines = append(lines, "", t.Error.Render(text))
	}
	return t.Box(true).Width(60).Render(strings.Join(lines, "\n"))
}

package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/freezers/internal/client"
	"github.com/idilsaglam/freezers/internal/imageview"
	"github.com/idilsaglam/freezers/internal/model"
	"github.com/idilsaglam/freezers/internal/ui"
)

const unauthorized = "unauthorized access - try login with high privileges"

type previewState int

const (
	previewReady previewState = iota
	previewLoading
)

// Requests into the preview.
type (
	FetchRequestMsg    struct{ ID string }
	ModalExitMsg       struct{}
	InputOwnerMsg      struct{ Value string }
	InputModelMsg      struct{ Value string }
	InputYearMsg       struct{ Year uint }
	InputProductMsg    struct{ Value string }
	StartAddProductMsg struct{}
	StartUpdateMsg     struct{}
	StartDeleteMsg     struct{}
)

// ChangeProductMsg sets the amount of product line Index.
type ChangeProductMsg struct {
	Index  int
	Amount uint
}

// DeletedMsg tells the app a freezer is gone.
type DeletedMsg struct{ ID string }

// Responses; seq ties each one to the request that produced it.
type (
	infoMsg struct {
		seq     int
		image   []byte
		art     string
		artErr  error
		freezer model.Freezer
		err     error
	}
	updateMsg struct {
		seq     int
		freezer *model.Freezer
		err     error
	}
	deleteMsg struct {
		seq int
		id  string
		ok  bool
		err error
	}
	addProductMsg struct {
		seq     int
		name    string
		product *model.Product
		err     error
	}
)

var (
	updateBind = key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "update"))
	deleteBind = key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete"))
	cancelBind = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	nextBind   = key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next field"))
	prevBind   = key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "prev field"))
	submitBind = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add product"))
)

// field indexes; product amount rows follow fieldAmounts.
const (
	fieldOwner = iota
	fieldModel
	fieldYear
	fieldProduct
	fieldAmounts
)

type info struct {
	image []byte
	art   string
	draft model.Draft
}

// Preview shows one freezer and edits it.
type Preview struct {
	state    previewState
	onCancel previewState
	seq      int
	cancel   context.CancelFunc

	info      *info
	yearErr   bool
	amountErr []bool

	owner, modelName, year, product textinput.Model
	amounts                         []textinput.Model
	focus                           int

	spinner spinner.Model
	vp      viewport.Model
	client  *client.Client
	width   int
	height  int
}

// NewPreview starts empty and idle.
func NewPreview(c *client.Client) (Preview, tea.Cmd) {
	m := Preview{
		state:     previewReady,
		owner:     newInput("None", 120),
		modelName: newInput("Name cannot be empty", 120),
		year:      newInput(strconv.Itoa(model.MaxYear()), 4),
		product:   newInput("new product", 120),
		spinner:   newSpinner(),
		vp:        viewport.New(0, 0),
		client:    c,
	}
	return m, nil
}

// Loading reports whether a request is pending.
func (m Preview) Loading() bool { return m.state == previewLoading }

// Draft returns the freezer being edited.
func (m Preview) Draft() (model.Draft, bool) {
	if m.info == nil {
		return model.Draft{}, false
	}
	return m.info.draft, true
}

// ProductInput is the text of the "new product" field.
func (m Preview) ProductInput() string { return m.product.Value() }

// SetSize fits the panel into width x height cells.
func (m *Preview) SetSize(width, height int) {
	m.width, m.height = width, height
	m.vp.Width, m.vp.Height = width, height
	m.layout()
}

func (m Preview) artBox() (cols, rows int) {
	cols, rows = m.width-2, m.height/3
	if cols <= 0 {
		cols = 40
	}
	if rows <= 0 {
		rows = 12
	}
	return cols, min(rows, 20)
}

// begin moves to Loading and runs req with a cancellable context.
func (m *Preview) begin(req func(ctx context.Context, seq int) tea.Msg) tea.Cmd {
	m.onCancel = m.state
	m.state = previewLoading
	m.seq++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	seq := m.seq
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		defer cancel()
		return req(ctx, seq)
	})
}

// abort drops the pending request and rolls back.
func (m *Preview) abort() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.seq++
	m.state = m.onCancel
}

// resolve accepts a response if it belongs to the pending request.
func (m *Preview) resolve(seq int) bool {
	if m.state != previewLoading || seq != m.seq {
		return false
	}
	m.state = previewReady
	m.cancel = nil
	return true
}

func (m Preview) fetchInfo(id string) func(ctx context.Context, seq int) tea.Msg {
	c := m.client
	cols, rows := m.artBox()
	return func(ctx context.Context, seq int) tea.Msg {
		out := infoMsg{seq: seq}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			b, err := c.ImageBytes(gctx, id)
			out.image = b
			return err
		})
		g.Go(func() error {
			f, err := c.Freezer(gctx, id)
			out.freezer = f
			return err
		})
		if out.err = g.Wait(); out.err != nil {
			return out
		}
		out.art, out.artErr = imageview.Preview(out.image, cols, rows)
		return out
	}
}

func (m Preview) Update(msg tea.Msg) (Preview, tea.Cmd) {
	var cmd tea.Cmd
	m, cmd = m.update(msg)
	m.layout()
	return m, cmd
}

func (m Preview) update(msg tea.Msg) (Preview, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.state != previewLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FetchRequestMsg:
		if m.state == previewLoading {
			m.abort()
		}
		cmd := m.begin(m.fetchInfo(msg.ID))
		return m, cmd

	case ModalExitMsg:
		if m.state == previewLoading {
			m.abort()
		}
		return m, nil

	case infoMsg:
		if !m.resolve(msg.seq) {
			return m, nil
		}
		if msg.err != nil {
			return m, errorCmd("preview", msg.err)
		}
		m.info = &info{image: msg.image, art: msg.art, draft: model.NewDraft(msg.freezer)}
		m.loadInputs()
		if msg.artErr != nil {
			return m, logCmd(LevelWarn, "preview", "image of `%s`: %v", msg.freezer.Name, msg.artErr)
		}
		return m, nil

	case updateMsg:
		if !m.resolve(msg.seq) {
			return m, nil
		}
		switch {
		case msg.err != nil:
			return m, errorCmd("preview", msg.err)
		case msg.freezer == nil:
			return m, logCmd(LevelWarn, "preview", unauthorized)
		}
		if m.info != nil {
			m.info.draft = model.NewDraft(*msg.freezer)
			m.loadInputs()
		}
		return m, logCmd(LevelInfo, "preview", "updated `%s`", msg.freezer.Name)

	case deleteMsg:
		if !m.resolve(msg.seq) {
			return m, nil
		}
		switch {
		case msg.err != nil:
			return m, errorCmd("preview", msg.err)
		case !msg.ok:
			return m, logCmd(LevelWarn, "preview", unauthorized)
		}
		m.info = nil
		m.loadInputs()
		id := msg.id
		return m, tea.Batch(
			func() tea.Msg { return DeletedMsg{ID: id} },
			logCmd(LevelInfo, "preview", "deleted `%s`", id),
		)

	case addProductMsg:
		if !m.resolve(msg.seq) {
			return m, nil
		}
		switch {
		case msg.err != nil:
			return m, errorCmd("preview", msg.err)
		case msg.product == nil:
			return m, logCmd(LevelError, "preview", "Not found product `%s`", msg.name)
		}
		if m.info == nil {
			return m, nil
		}
		name := msg.product.Name
		if i := m.info.draft.IndexOf(name); i >= 0 {
			return m, logCmd(LevelError, "preview", "already exists `%s` at `%d`", name, i)
		}
		m.info.draft.Lines = append(m.info.draft.Lines, model.Line{Product: name, Amount: msg.product.Default})
		m.product.SetValue("")
		m.loadInputs()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.state == previewLoading {
		return m, nil
	}
	return m.edit(msg)
}

// edit applies user edits; only reachable in Ready.
func (m Preview) edit(msg tea.Msg) (Preview, tea.Cmd) {
	if _, ok := msg.(StartAddProductMsg); ok {
		name := strings.TrimSpace(m.product.Value())
		if name == "" {
			return m, logCmd(LevelError, "preview", "Product name cannot be empty")
		}
		c := m.client
		cmd := m.begin(func(ctx context.Context, seq int) tea.Msg {
			p, err := c.Product(ctx, name)
			return addProductMsg{seq: seq, name: name, product: p, err: err}
		})
		return m, cmd
	}

	if m.info == nil {
		return m, nil
	}
	d := &m.info.draft

	switch msg := msg.(type) {
	case InputOwnerMsg:
		if msg.Value == "" {
			d.Owner = nil
		} else {
			owner := msg.Value
			d.Owner = &owner
		}
		syncValue(&m.owner, msg.Value)

	case InputModelMsg:
		d.Model.Name = msg.Value
		syncValue(&m.modelName, msg.Value)

	case InputYearMsg:
		if !model.ValidYear(msg.Year) {
			m.yearErr = true
			return m, nil
		}
		d.Model.Year = msg.Year
		m.yearErr = false
		syncValue(&m.year, strconv.FormatUint(uint64(msg.Year), 10))

	case InputProductMsg:
		syncValue(&m.product, msg.Value)

	case ChangeProductMsg:
		if msg.Index < 0 || msg.Index >= len(d.Lines) {
			return m, nil
		}
		d.Lines[msg.Index].Amount = msg.Amount
		m.amountErr[msg.Index] = false
		syncValue(&m.amounts[msg.Index], strconv.FormatUint(uint64(msg.Amount), 10))

	case StartUpdateMsg:
		if m.yearErr {
			return m, logCmd(LevelError, "preview", "year must be between %d and %d", model.MinYear, model.MaxYear())
		}
		for i, bad := range m.amountErr {
			if bad {
				return m, logCmd(LevelError, "preview", "amount of `%s` is not a number", d.Lines[i].Product)
			}
		}
		c, f := m.client, d.Freezer()
		cmd := m.begin(func(ctx context.Context, seq int) tea.Msg {
			out, err := c.UpdateFreezer(ctx, f)
			return updateMsg{seq: seq, freezer: out, err: err}
		})
		return m, cmd

	case StartDeleteMsg:
		c, id := m.client, d.Name
		cmd := m.begin(func(ctx context.Context, seq int) tea.Msg {
			ok, err := c.DeleteFreezer(ctx, id)
			return deleteMsg{seq: seq, id: id, ok: ok, err: err}
		})
		return m, cmd
	}
	return m, nil
}

func syncValue(ti *textinput.Model, v string) {
	if ti.Value() != v {
		ti.SetValue(v)
	}
}

func (m Preview) handleKey(msg tea.KeyMsg) (Preview, tea.Cmd) {
	if m.state == previewLoading {
		if key.Matches(msg, cancelBind) {
			return m.update(ModalExitMsg{})
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, updateBind):
		return m.update(StartUpdateMsg{})
	case key.Matches(msg, deleteBind):
		return m.update(StartDeleteMsg{})
	case m.info == nil:
		return m, nil
	case key.Matches(msg, nextBind):
		m.setFocus(m.focus + 1)
		return m, nil
	case key.Matches(msg, prevBind):
		m.setFocus(m.focus - 1)
		return m, nil
	case key.Matches(msg, submitBind):
		if m.focus == fieldProduct {
			return m.update(StartAddProductMsg{})
		}
		m.setFocus(m.focus + 1)
		return m, nil
	}

	in := m.input(m.focus)
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	v := in.Value()

	switch {
	case m.focus == fieldOwner:
		m, _ = m.update(InputOwnerMsg{Value: v})
	case m.focus == fieldModel:
		m, _ = m.update(InputModelMsg{Value: v})
	case m.focus == fieldYear:
		y, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			m.yearErr = true
			break
		}
		m, _ = m.update(InputYearMsg{Year: uint(y)})
	case m.focus == fieldProduct:
		m, _ = m.update(InputProductMsg{Value: v})
	default:
		i := m.focus - fieldAmounts
		n, err := strconv.ParseUint(v, 10, 0)
		if err != nil {
			m.amountErr[i] = true
			break
		}
		m, _ = m.update(ChangeProductMsg{Index: i, Amount: uint(n)})
	}
	return m, cmd
}

func (m *Preview) input(i int) *textinput.Model {
	switch i {
	case fieldOwner:
		return &m.owner
	case fieldModel:
		return &m.modelName
	case fieldYear:
		return &m.year
	case fieldProduct:
		return &m.product
	}
	return &m.amounts[i-fieldAmounts]
}

func (m *Preview) setFocus(i int) {
	last := fieldAmounts + len(m.amounts) - 1
	i = max(0, min(i, last))
	m.input(m.focus).Blur()
	m.focus = i
	m.input(m.focus).Focus()
}

// loadInputs rebuilds every input from the current draft.
func (m *Preview) loadInputs() {
	if m.info == nil {
		for _, ti := range []*textinput.Model{&m.owner, &m.modelName, &m.year, &m.product} {
			ti.SetValue("")
			ti.Blur()
		}
		m.amounts, m.amountErr, m.focus, m.yearErr = nil, nil, fieldOwner, false
		return
	}
	d := m.info.draft
	m.owner.SetValue(d.OwnerOrEmpty())
	m.modelName.SetValue(d.Model.Name)
	m.year.SetValue(strconv.FormatUint(uint64(d.Model.Year), 10))
	m.yearErr = false

	m.amounts = make([]textinput.Model, len(d.Lines))
	m.amountErr = make([]bool, len(d.Lines))
	for i, l := range d.Lines {
		ti := newInput("0", 20)
		ti.SetValue(strconv.FormatUint(uint64(l.Amount), 10))
		m.amounts[i] = ti
	}
	m.focus = min(m.focus, fieldAmounts+len(m.amounts)-1)
	for i := 0; i < fieldAmounts+len(m.amounts); i++ {
		m.input(i).Blur()
	}
	m.input(m.focus).Focus()
}

// layout renders the form into the viewport, keeping the focused row
// visible.
func (m *Preview) layout() {
	if m.info == nil {
		return
	}
	content, line := m.render()
	m.vp.SetContent(content)
	switch {
	case line < m.vp.YOffset:
		m.vp.SetYOffset(line)
	case m.vp.Height > 0 && line >= m.vp.YOffset+m.vp.Height:
		m.vp.SetYOffset(line - m.vp.Height + 1)
	}
}

func (m Preview) render() (string, int) {
	t := ui.Current()
	d := m.info.draft
	var lines []string
	focusLine := 0

	if m.info.art != "" {
		lines = append(lines, strings.Split(m.info.art, "\n")...)
		lines = append(lines, "")
	}

	year := m.year.View()
	if m.yearErr {
		year += "  " + t.Error.Render(fmt.Sprintf("%d..%d", model.MinYear, model.MaxYear()))
	}
	base := len(lines)
	lines = append(lines, ui.Fields([]ui.Field{
		{Label: "name", Value: t.Title.Render(d.Name)},
		{Label: "owner", Value: m.owner.View()},
		{Label: "model", Value: m.modelName.View()},
		{Label: "year", Value: year},
	})...)
	if m.focus < fieldProduct {
		focusLine = base + 1 + m.focus
	}

	lines = append(lines, "", t.Title.Render("PRODUCTS")+"  "+m.product.View())
	if m.focus == fieldProduct {
		focusLine = len(lines) - 1
	}

	rows := make([]ui.Field, len(d.Lines))
	for i, l := range d.Lines {
		v := m.amounts[i].View()
		if m.amountErr[i] {
			v += "  " + t.Error.Render("not a number")
		}
		rows[i] = ui.Field{Label: "  " + l.Product, Value: v}
	}
	base = len(lines)
	lines = append(lines, ui.Fields(rows)...)
	if m.focus >= fieldAmounts {
		focusLine = base + m.focus - fieldAmounts
	}

	lines = append(lines, "", t.Accent.Render("ctrl+s UPDATE")+"   "+t.Error.Render("ctrl+d DELETE"))
	return strings.Join(lines, "\n"), focusLine
}

func (m Preview) View() string {
	if m.state == previewLoading {
		return modal(m.width, m.height, m.spinner)
	}
	if m.info == nil {
		return ui.Current().Muted.Render("Select a freezer from the list.")
	}
	return m.vp.View()
}

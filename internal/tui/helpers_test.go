package tui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/freezers/internal/client"
	"github.com/idilsaglam/freezers/internal/fakeapi"
	"github.com/idilsaglam/freezers/internal/model"
)

// run executes cmd and flattens batches. Spinner ticks are dropped so
// tests never wait on animation timers.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, run(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// escapes reports messages a panel hands up to the app.
func escapes(msg tea.Msg) bool {
	switch msg.(type) {
	case LogMsg, PingMsg, DeletedMsg:
		return true
	}
	return false
}

// drive feeds cmd's results back into m until nothing is left, returning
// the final model and the messages meant for the parent.
func drive[M any](t *testing.T, m M, update func(M, tea.Msg) (M, tea.Cmd), cmd tea.Cmd) (M, []tea.Msg) {
	t.Helper()
	var up []tea.Msg
	queue := run(cmd)
	for i := 0; len(queue) > 0; i++ {
		if i > 200 {
			t.Fatal("model did not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		if escapes(msg) {
			up = append(up, msg)
			continue
		}
		var next tea.Cmd
		m, next = update(m, msg)
		queue = append(queue, run(next)...)
	}
	return m, up
}

func listUpdate(m List, msg tea.Msg) (List, tea.Cmd)          { return m.Update(msg) }
func previewUpdate(m Preview, msg tea.Msg) (Preview, tea.Cmd) { return m.Update(msg) }

// settle drives the app, which consumes every message itself.
func settle(t *testing.T, m App, cmd tea.Cmd) App {
	t.Helper()
	queue := run(cmd)
	for i := 0; len(queue) > 0; i++ {
		if i > 500 {
			t.Fatal("app did not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		if _, quit := msg.(tea.QuitMsg); quit {
			continue
		}
		next, c := m.Update(msg)
		m = next.(App)
		queue = append(queue, run(c)...)
	}
	return m
}

func press(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func typed(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func logTexts(msgs []tea.Msg, level Level) []string {
	var out []string
	for _, m := range msgs {
		if l, ok := m.(LogMsg); ok && l.Level == level {
			out = append(out, l.Text)
		}
	}
	return out
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newFixture serves a small inventory and returns a client for it.
func newFixture(t *testing.T, freezers int) (*fakeapi.Server, *client.Client, string) {
	t.Helper()
	api := fakeapi.New()
	owner := "alice"
	img := pngBytes(t)
	for i := 1; i <= freezers; i++ {
		f := model.Freezer{
			Name:     freezerID(i),
			Model:    model.Model{Name: "Atlant", Year: 2010},
			Products: map[string]uint{"peas": 2, "milk": 3},
		}
		if i == 1 {
			f.Owner = &owner
		}
		api.AddFreezer(f, img)
	}
	api.AddProduct(model.Product{Name: "ice", Default: 5})
	api.AddProduct(model.Product{Name: "milk", Default: 1})
	api.Admin("root")

	srv := api.Start()
	t.Cleanup(srv.Close)
	host := srv.URL + "/api"
	return api, client.New(host, nil, 5*time.Second, zerolog.Nop()), host
}

func freezerID(i int) string {
	return "f-" + string(rune('a'+i-1))
}

package cli

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idilsaglam/freezers/internal/config"
	"github.com/idilsaglam/freezers/internal/fakeapi"
	"github.com/idilsaglam/freezers/internal/model"
	"github.com/idilsaglam/freezers/internal/tui"
)

type result struct {
	code           int
	stdout, stderr string
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvHost, "")
	t.Setenv(config.EnvLogin, "")
}

func execute(t *testing.T, c *command, args ...string) result {
	t.Helper()
	var out, errb bytes.Buffer
	c.stdout, c.stderr = &out, &errb
	code := c.run(context.Background(), args)
	return result{code: code, stdout: out.String(), stderr: errb.String()}
}

func cli(t *testing.T, args ...string) result {
	t.Helper()
	return execute(t, newCommand(nil, nil), args...)
}

func testImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// serve starts an inventory with f-a (owned by alice), f-b and f-c.
func serve(t *testing.T) (*fakeapi.Server, string) {
	t.Helper()
	isolate(t)
	api := fakeapi.New()
	owner := "alice"
	img := testImage(t)
	for _, id := range []string{"f-a", "f-b", "f-c"} {
		f := model.Freezer{
			Name:     id,
			Model:    model.Model{Name: "Atlant", Year: 2010},
			Products: map[string]uint{"milk": 3, "peas": 2},
		}
		if id == "f-a" {
			f.Owner = &owner
		}
		api.AddFreezer(f, img)
	}
	api.AddProduct(model.Product{Name: "ice", Default: 5})
	api.Admin("root")
	srv := api.Start()
	t.Cleanup(srv.Close)
	return api, srv.URL + "/api"
}

func TestUsageErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"nope"}},
		{"unknown flag", []string{"ls", "--bogus"}},
		{"missing id", []string{"show"}},
		{"too many ids", []string{"rm", "a", "b"}},
		{"negative limit", []string{"ls", "--limit", "-1"}},
		{"bad log level", []string{"ls", "--log-level", "loud"}},
		{"nothing to set", []string{"set", "f-a"}},
		{"year out of range", []string{"set", "f-a", "--year", "1990"}},
		{"bad product", []string{"set", "f-a", "--product", "milk"}},
		{"empty login", []string{"auth", "login"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := cli(t, tt.args...)
			if r.code != ExitUsage {
				t.Errorf("code = %d, want %d (stderr %q)", r.code, ExitUsage, r.stderr)
			}
			if !strings.Contains(r.stderr, "--help") {
				t.Errorf("stderr = %q, want a help hint", r.stderr)
			}
		})
	}
}

func TestHelp(t *testing.T) {
	isolate(t)
	r := cli(t, "--help")
	if r.code != ExitOK || !strings.Contains(r.stdout, "freezers") {
		t.Errorf("code = %d, stdout = %q", r.code, r.stdout)
	}
}

func TestList(t *testing.T) {
	_, host := serve(t)

	r := cli(t, "ls", "--host", host, "--limit", "2")
	if r.code != ExitOK {
		t.Fatalf("code = %d, stderr = %q", r.code, r.stderr)
	}
	for _, want := range []string{"f-a", "f-b", "--offset 2"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, r.stdout)
		}
	}
	if strings.Contains(r.stdout, "f-c") {
		t.Errorf("stdout has more than one page:\n%s", r.stdout)
	}

	r = cli(t, "ls", "--host", host, "--offset", "2")
	if !strings.Contains(r.stdout, "f-c") || strings.Contains(r.stdout, "f-a") {
		t.Errorf("offset page:\n%s", r.stdout)
	}

	r = cli(t, "ls", "--host", host, "--all")
	if !strings.Contains(r.stdout, "f-a") || !strings.Contains(r.stdout, "f-c") {
		t.Errorf("--all:\n%s", r.stdout)
	}
}

func TestShow(t *testing.T) {
	_, host := serve(t)

	r := cli(t, "show", "f-a", "--host", host)
	if r.code != ExitOK {
		t.Fatalf("code = %d, stderr = %q", r.code, r.stderr)
	}
	for _, want := range []string{"f-a", "alice", "Atlant", "2010", "milk", "peas"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, r.stdout)
		}
	}
	if strings.Index(r.stdout, "milk") > strings.Index(r.stdout, "peas") {
		t.Error("products are not sorted by name")
	}

	r = cli(t, "show", "missing", "--host", host)
	if r.code != ExitError || !strings.Contains(r.stderr, "404") {
		t.Errorf("code = %d, stderr = %q", r.code, r.stderr)
	}
}

func TestSet(t *testing.T) {
	api, host := serve(t)

	r := cli(t, "set", "f-a", "--host", host, "--year", "2015")
	if r.code != ExitError || !strings.Contains(r.stderr, unauthorized) {
		t.Fatalf("anonymous set: code = %d, stderr = %q", r.code, r.stderr)
	}

	r = cli(t, "set", "f-a", "--host", host, "--login", "root",
		"--owner", "", "--year", "2015", "--product", "milk=7", "--product", "ice=2")
	if r.code != ExitOK {
		t.Fatalf("code = %d, stderr = %q", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, "updated `f-a`") {
		t.Errorf("stdout = %q", r.stdout)
	}

	f, _ := api.Freezer("f-a")
	if f.Owner != nil {
		t.Errorf("Owner = %q, want cleared", *f.Owner)
	}
	if f.Model.Year != 2015 || f.Model.Name != "Atlant" {
		t.Errorf("Model = %+v", f.Model)
	}
	want := map[string]uint{"milk": 7, "peas": 2, "ice": 2}
	for name, n := range want {
		if f.Products[name] != n {
			t.Errorf("Products[%s] = %d, want %d", name, f.Products[name], n)
		}
	}

	r = cli(t, "set", "f-a", "--host", host, "--login", "root", "--product", "caviar=1")
	if r.code != ExitError || !strings.Contains(r.stderr, "Not found product `caviar`") {
		t.Errorf("unknown product: code = %d, stderr = %q", r.code, r.stderr)
	}
}

func TestRemove(t *testing.T) {
	api, host := serve(t)

	if r := cli(t, "rm", "f-b", "--host", host); r.code != ExitError {
		t.Errorf("anonymous rm: code = %d", r.code)
	}

	t.Setenv(config.EnvLogin, "root")
	r := cli(t, "rm", "f-b", "--host", host)
	if r.code != ExitOK || !strings.Contains(r.stdout, "deleted `f-b`") {
		t.Fatalf("code = %d, stdout = %q, stderr = %q", r.code, r.stdout, r.stderr)
	}
	if _, ok := api.Freezer("f-b"); ok {
		t.Error("f-b still stored")
	}
}

func TestProduct(t *testing.T) {
	_, host := serve(t)

	r := cli(t, "product", "ice", "--host", host)
	if r.code != ExitOK || !strings.Contains(r.stdout, "5") {
		t.Errorf("code = %d, stdout = %q", r.code, r.stdout)
	}

	r = cli(t, "product", "caviar", "--host", host)
	if r.code != ExitError || !strings.Contains(r.stderr, "Not found product `caviar`") {
		t.Errorf("code = %d, stderr = %q", r.code, r.stderr)
	}
}

func TestImage(t *testing.T) {
	_, host := serve(t)

	out := filepath.Join(t.TempDir(), "f-a.png")
	r := cli(t, "image", "f-a", "--host", host, "-o", out)
	if r.code != ExitOK {
		t.Fatalf("code = %d, stderr = %q", r.code, r.stderr)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, testImage(t)) {
		t.Error("saved image differs from the served one")
	}

	r = cli(t, "image", "f-a", "--host", host, "--cols", "4")
	if r.code != ExitOK || !strings.Contains(r.stdout, "▀") {
		t.Errorf("code = %d, stdout = %q", r.code, r.stdout)
	}
}

func TestAuthFlow(t *testing.T) {
	_, host := serve(t)

	r := cli(t, "auth", "status")
	if !strings.Contains(r.stdout, "not logged in") {
		t.Errorf("status before login = %q", r.stdout)
	}

	r = cli(t, "auth", "login", "bob", "--host", host)
	if r.code != ExitOK {
		t.Fatalf("login: code = %d, stderr = %q", r.code, r.stderr)
	}

	p, err := config.LoadProfile()
	if err != nil || p == nil || p.Login != "bob" || p.Host != host {
		t.Fatalf("profile = %+v, err = %v", p, err)
	}

	r = cli(t, "auth", "status")
	if !strings.Contains(r.stdout, "bob") || !strings.Contains(r.stdout, host) {
		t.Errorf("status = %q", r.stdout)
	}

	// the saved host is picked up without --host
	if r := cli(t, "ls"); r.code != ExitOK || !strings.Contains(r.stdout, "f-a") {
		t.Errorf("ls from profile: code = %d, stderr = %q", r.code, r.stderr)
	}

	if r := cli(t, "auth", "logout"); r.code != ExitOK {
		t.Fatalf("logout: code = %d", r.code)
	}
	if r := cli(t, "auth", "status"); !strings.Contains(r.stdout, "not logged in") {
		t.Errorf("status after logout = %q", r.stdout)
	}
}

func TestLoginFailure(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such user", http.StatusForbidden)
	}))
	defer srv.Close()

	r := cli(t, "ls", "--host", srv.URL, "--login", "eve")
	if r.code != ExitError || !strings.Contains(r.stderr, "403") {
		t.Errorf("code = %d, stderr = %q", r.code, r.stderr)
	}
}

func TestInteractiveOptions(t *testing.T) {
	isolate(t)
	if err := config.SaveProfile("http://inventory:1228/api", "bob"); err != nil {
		t.Fatal(err)
	}

	var got tui.Options
	c := newCommand(nil, nil)
	c.runTUI = func(_ context.Context, opts tui.Options) error {
		got = opts
		return nil
	}
	logFile := filepath.Join(t.TempDir(), "ui.log")
	r := execute(t, c, "--page-size", "5", "--log-file", logFile)
	if r.code != ExitOK {
		t.Fatalf("code = %d, stderr = %q", r.code, r.stderr)
	}

	if got.Host != "http://inventory:1228/api" || got.Login != "bob" || !got.AutoLogin {
		t.Errorf("options = %+v", got)
	}
	if got.PageSize != 5 || got.OnLogin == nil {
		t.Errorf("PageSize = %d, OnLogin set = %v", got.PageSize, got.OnLogin != nil)
	}
	if b, err := os.ReadFile(logFile); err != nil || !strings.Contains(string(b), "starting") {
		t.Errorf("log file = %q, err = %v", b, err)
	}
}

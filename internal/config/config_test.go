package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/idilsaglam/freezers/internal/client"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(EnvHome, t.TempDir())
	t.Setenv(EnvHost, "")
	t.Setenv(EnvLogin, "")
}

func TestLoadProfileEmpty(t *testing.T) {
	isolate(t)

	p, err := LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if p != nil {
		t.Errorf("LoadProfile() = %+v, want nil", p)
	}
}

func TestSaveLoadDeleteProfile(t *testing.T) {
	isolate(t)

	if err := SaveProfile("http://h:1/api", "  bob "); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	p, err := LoadProfile()
	if err != nil || p == nil {
		t.Fatalf("LoadProfile() = %v, %v", p, err)
	}
	if p.Host != "http://h:1/api" || p.Login != "bob" || p.Source != "file" {
		t.Errorf("LoadProfile() = %+v", p)
	}
	if p.SavedAt.IsZero() {
		t.Error("SavedAt is zero")
	}

	if err := DeleteProfile(); err != nil {
		t.Fatalf("DeleteProfile() error = %v", err)
	}
	if p, _ := LoadProfile(); p != nil {
		t.Errorf("LoadProfile() after delete = %+v", p)
	}
}

func TestSaveProfileRejectsEmptyLogin(t *testing.T) {
	isolate(t)
	if err := SaveProfile("h", "   "); err == nil {
		t.Error("SaveProfile(empty) error = nil")
	}
}

func TestEnvOverridesProfile(t *testing.T) {
	isolate(t)
	if err := SaveProfile("http://file/api", "filer"); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvLogin, "envy")

	p, err := LoadProfile()
	if err != nil {
		t.Fatal(err)
	}
	if p.Login != "envy" || p.Host != "http://file/api" || p.Source != "env" {
		t.Errorf("LoadProfile() = %+v", p)
	}
}

func TestResolve(t *testing.T) {
	isolate(t)

	s, err := Resolve(Flags{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if s.Host != client.DefaultAPI || s.PageSize != DefaultPageSize || s.LogLevel != zerolog.InfoLevel {
		t.Errorf("defaults = %+v", s)
	}

	if err := SaveProfile("http://saved/api", "saved"); err != nil {
		t.Fatal(err)
	}
	s, err = Resolve(Flags{Login: "flag", PageSize: 5, Timeout: time.Second, LogLevel: "DEBUG", Theme: "neon"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if s.Host != "http://saved/api" {
		t.Errorf("Host = %q, want saved host", s.Host)
	}
	if s.Login != "flag" || s.PageSize != 5 || s.Timeout != time.Second || s.LogLevel != zerolog.DebugLevel || s.Theme != "neon" {
		t.Errorf("Resolve() = %+v", s)
	}
}

func TestResolveRejectsBadValues(t *testing.T) {
	isolate(t)

	tests := []struct {
		name  string
		flags Flags
	}{
		{"negative page", Flags{PageSize: -1}},
		{"negative timeout", Flags{Timeout: -time.Second}},
		{"bad level", Flags{LogLevel: "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Resolve(tt.flags); err == nil {
				t.Error("Resolve() error = nil")
			}
		})
	}
}

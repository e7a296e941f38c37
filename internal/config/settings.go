package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/idilsaglam/freezers/internal/client"
)

// DefaultPageSize is how many freezer ids the list asks for at a time.
const DefaultPageSize = 30

// Settings is the resolved runtime configuration.
type Settings struct {
	Host     string
	Login    string
	PageSize int
	Timeout  time.Duration
	LogFile  string
	LogLevel zerolog.Level
	Theme    string
	NoColor  bool
}

// Flags holds raw command-line values; empty means "not given".
type Flags struct {
	Host     string
	Login    string
	PageSize int
	Timeout  time.Duration
	LogFile  string
	LogLevel string
	Theme    string
	NoColor  bool
}

// Resolve merges flags over the environment, the saved profile and the
// defaults, in that order.
func Resolve(f Flags) (Settings, error) {
	s := Settings{
		Host:     client.DefaultAPI,
		PageSize: DefaultPageSize,
		Timeout:  30 * time.Second,
		LogFile:  DefaultLogFile(),
		LogLevel: zerolog.InfoLevel,
		Theme:    "classic",
		NoColor:  f.NoColor,
	}

	p, err := LoadProfile()
	if err != nil {
		return s, err
	}
	if p != nil {
		if p.Host != "" {
			s.Host = p.Host
		}
		s.Login = p.Login
	}

	if f.Host != "" {
		s.Host = f.Host
	}
	if f.Login != "" {
		s.Login = f.Login
	}
	if f.PageSize < 0 {
		return s, fmt.Errorf("page size must be positive, got %d", f.PageSize)
	}
	if f.PageSize > 0 {
		s.PageSize = f.PageSize
	}
	if f.Timeout < 0 {
		return s, fmt.Errorf("timeout must be positive, got %s", f.Timeout)
	}
	if f.Timeout > 0 {
		s.Timeout = f.Timeout
	}
	if f.LogFile != "" {
		s.LogFile = f.LogFile
	}
	if f.LogLevel != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(f.LogLevel))
		if err != nil {
			return s, fmt.Errorf("log level: %w", err)
		}
		s.LogLevel = lvl
	}
	if f.Theme != "" {
		s.Theme = f.Theme
	}
	return s, nil
}

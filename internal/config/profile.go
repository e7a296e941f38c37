package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/idilsaglam/freezers/internal/store/jsonstore"
)

const (
	profileFileName = "profile.json"
	logFileName     = "freezers.log"

	EnvHome  = "FREEZERS_HOME"
	EnvHost  = "FREEZERS_HOST"
	EnvLogin = "FREEZERS_LOGIN"
)

// Profile remembers where and as whom the user last logged in.
type Profile struct {
	Host    string    `json:"host"`
	Login   string    `json:"login"`
	Source  string    `json:"source"`   // "env" | "file"
	SavedAt time.Time `json:"saved_at"` // when we saved to file
}

// Dir is the per-user state directory, ~/.freezers unless FREEZERS_HOME is set.
func Dir() (string, error) {
	if env := strings.TrimSpace(os.Getenv(EnvHome)); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".freezers"), nil
}

func profilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, profileFileName), nil
}

// DefaultLogFile is where the interactive client logs.
func DefaultLogFile() string {
	dir, err := Dir()
	if err != nil {
		return logFileName
	}
	return filepath.Join(dir, logFileName)
}

// LoadProfile returns the saved profile with FREEZERS_HOST and
// FREEZERS_LOGIN laid over it. A nil profile means nothing is known.
func LoadProfile() (*Profile, error) {
	var p *Profile

	path, err := profilePath()
	if err != nil {
		return nil, err
	}
	var stored Profile
	found, err := jsonstore.Load(path, &stored)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	if found {
		stored.Source = "file"
		p = &stored
	}

	host := strings.TrimSpace(os.Getenv(EnvHost))
	login := strings.TrimSpace(os.Getenv(EnvLogin))
	if host == "" && login == "" {
		return p, nil
	}
	if p == nil {
		p = &Profile{}
	}
	if host != "" {
		p.Host = host
	}
	if login != "" {
		p.Login = login
	}
	p.Source = "env"
	return p, nil
}

// SaveProfile records a successful login.
func SaveProfile(host, login string) error {
	login = strings.TrimSpace(login)
	if login == "" {
		return fmt.Errorf("empty login")
	}
	path, err := profilePath()
	if err != nil {
		return err
	}
	p := Profile{
		Host:    strings.TrimSpace(host),
		Login:   login,
		Source:  "file",
		SavedAt: time.Now(),
	}
	// owner-only: the login is the only credential the API asks for
	return jsonstore.Save(path, p, 0o600)
}

// DeleteProfile forgets the saved profile.
func DeleteProfile() error {
	path, err := profilePath()
	if err != nil {
		return err
	}
	return jsonstore.Remove(path)
}

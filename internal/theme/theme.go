// Package theme persists the light/dark preference and follows changes made
// by other running instances.
package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Theme is the color scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Key is the single preference key in the store.
const Key = "theme"

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Parse accepts "light" or "dark".
func Parse(s string) (Theme, bool) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), true
	default:
		return "", false
	}
}

// Preferred picks the stored theme when there is one and falls back to the
// terminal background otherwise.
func Preferred(stored Theme, ok bool, systemDark bool) Theme {
	if ok {
		return stored
	}
	if systemDark {
		return Dark
	}
	return Light
}

// Store keeps the preference in a small JSON file.
type Store struct {
	path string
}

// NewStore returns a store at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath is theme.json under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "postdeck", "theme.json"), nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored theme. ok is false when nothing valid is stored.
func (s *Store) Load() (Theme, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var prefs map[string]string
	if err := json.Unmarshal(data, &prefs); err != nil {
		return "", false, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	t, ok := Parse(prefs[Key])
	return t, ok, nil
}

// Save writes the theme, replacing the file atomically.
func (s *Store) Save(t Theme) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(map[string]string{Key: string(t)}, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".theme-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Package settings persists the user's Jenkins settings.
// Username, hostname and theme are stored in ~/.config/jenky/settings.toml;
// the API key lives in the OS keyring.
package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Settings holds the plain (non-secret) user settings.
type Settings struct {
	Username string `toml:"username"`
	Hostname string `toml:"hostname"`
	Theme    string `toml:"theme"`
}

const (
	defaultSettingsPath = "~/.config/jenky/settings.toml"
	defaultTheme        = "Nightfox"
)

// DefaultPath returns the default settings file path.
func DefaultPath() string {
	return defaultSettingsPath
}

// Load reads settings from the given path. A missing file yields empty settings.
func Load(path string) (Settings, error) {
	s := Settings{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return s, fmt.Errorf("resolve path: %w", err)
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("open settings: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}

	if err := toml.Unmarshal(bytes, &s); err != nil {
		return Settings{Theme: defaultTheme}, fmt.Errorf("parse settings: %w", err)
	}

	s.Username = strings.TrimSpace(s.Username)
	s.Hostname = strings.TrimSpace(s.Hostname)
	if strings.TrimSpace(s.Theme) == "" {
		s.Theme = defaultTheme
	}
	return s, nil
}

// Save writes settings to the given path, creating directories as needed.
func Save(path string, s Settings) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	bytes, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Update loads the settings at path, applies fn, and saves the result.
func Update(path string, fn func(*Settings)) (Settings, error) {
	s, err := Load(path)
	if err != nil {
		return Settings{}, err
	}
	fn(&s)
	if err := Save(path, s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultSettingsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

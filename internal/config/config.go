package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the tool-level knobs jenky reads at startup.
type Config struct {
	DataDir        string
	LogLevel       string
	RequestTimeout time.Duration
	ParamsMaxAge   time.Duration
	HistoryMaxAge  time.Duration
	MinScore       int
}

const (
	defaultConfigPath     = "~/.config/jenky/config.toml"
	defaultDataDir        = "~/.local/share/jenky"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 30 * time.Second
	defaultParamsMaxAge   = 24 * time.Hour
	defaultHistoryMaxAge  = 2 * time.Minute
	defaultMinScore       = -50
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DataDir:        mustExpand(defaultDataDir),
		LogLevel:       defaultLogLevel,
		RequestTimeout: defaultRequestTimeout,
		ParamsMaxAge:   defaultParamsMaxAge,
		HistoryMaxAge:  defaultHistoryMaxAge,
		MinScore:       defaultMinScore,
	}
}

// Load locates and parses the jenky config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		DataDir        string `toml:"data_dir"`
		LogLevel       string `toml:"log_level"`
		RequestTimeout string `toml:"request_timeout"`
		ParamsMaxAge   string `toml:"params_max_age"`
		HistoryMaxAge  string `toml:"history_max_age"`
		MinScore       *int   `toml:"min_score"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if dir := strings.TrimSpace(raw.DataDir); dir != "" {
		cfg.DataDir = mustExpand(dir)
	}
	if level := strings.ToLower(strings.TrimSpace(raw.LogLevel)); level != "" {
		cfg.LogLevel = level
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ParamsMaxAge, err = parseDuration("params_max_age", raw.ParamsMaxAge, cfg.ParamsMaxAge); err != nil {
		return Config{}, err
	}
	if cfg.HistoryMaxAge, err = parseDuration("history_max_age", raw.HistoryMaxAge, cfg.HistoryMaxAge); err != nil {
		return Config{}, err
	}
	if raw.MinScore != nil {
		cfg.MinScore = *raw.MinScore
	}

	return cfg, nil
}

// LogPath returns the path to the jenky log file.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "jenky.log")
}

// CachePath returns the path to the SQLite cache database.
func (c Config) CachePath() string {
	return filepath.Join(c.dataDir(), "cache.db")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse config: %s must be positive, got %s", field, trimmed)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading "~" and returns an absolute path.
func ExpandPath(path string) (string, error) {
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

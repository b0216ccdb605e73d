// Package config handles loading and parsing the jenky configuration file.
//
// # Overview
//
// The config file holds tool-level knobs only: where jenky keeps its cache and
// log, how long Jenkins requests may take, and how long cached data stays fresh.
// Jenkins credentials live elsewhere (see package settings).
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/jenky/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - Config file: ~/.config/jenky/config.toml
//   - Data directory: ~/.local/share/jenky
//   - Log file: <data_dir>/jenky.log
//   - Cache database: <data_dir>/cache.db
//   - Request timeout: 30s
//   - Job parameter freshness: 24h
//   - Build history freshness: 2m
//   - Fuzzy filter minimum score: -50
//
// # TOML Format
//
//	data_dir = "~/.local/share/jenky"
//	log_level = "debug"
//	request_timeout = "30s"
//	params_max_age = "24h"
//	history_max_age = "2m"
//	min_score = -50
//
// Durations use Go duration syntax and must be positive. Tilde expansion is
// performed for data_dir.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors and invalid durations
//
// Missing config files are NOT an error.
package config

package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// StaleTaskAge is how long a task claim blocks new claims for the same key.
const StaleTaskAge = 10 * time.Minute

// Cache is an age-indexed key/value store. Values are stored as JSON.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for ages and task claims.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// Open opens (creating if needed) the cache database at path.
func Open(path string, opts ...Option) (*Cache, error) {
	if path == "" {
		return nil, errors.New("cache: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("cache: pragma %q: %w", p, err)
		}
	}

	c := &Cache{db: db, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: migration: %w", err)
	}
	return c, nil
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
CREATE TABLE IF NOT EXISTS entries (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
  key        TEXT PRIMARY KEY,
  pid        INTEGER NOT NULL,
  started_at INTEGER NOT NULL
);
`)
	return err
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Set stores value under key and stamps it with the current time.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), c.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("cache: store %s: %w", key, err)
	}
	return nil
}

// Load decodes the entry for key into dest. It reports false when the entry
// is missing or older than maxAge. A maxAge of zero accepts any age.
func (c *Cache) Load(ctx context.Context, key string, maxAge time.Duration, dest any) (bool, error) {
	var (
		value     string
		updatedMs int64
	)
	row := c.db.QueryRowContext(ctx, `SELECT value, updated_at FROM entries WHERE key = ?`, key)
	if err := row.Scan(&value, &updatedMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("cache: load %s: %w", key, err)
	}
	if maxAge > 0 && c.now().Sub(time.UnixMilli(updatedMs)) > maxAge {
		return false, nil
	}
	if err := json.Unmarshal([]byte(value), dest); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

// Age reports how long ago key was stored.
func (c *Cache) Age(ctx context.Context, key string) (time.Duration, bool, error) {
	var updatedMs int64
	row := c.db.QueryRowContext(ctx, `SELECT updated_at FROM entries WHERE key = ?`, key)
	if err := row.Scan(&updatedMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("cache: age %s: %w", key, err)
	}
	age := c.now().Sub(time.UnixMilli(updatedMs))
	if age < 0 {
		age = 0
	}
	return age, true, nil
}

// Fresh reports whether key exists and is no older than maxAge. A maxAge of
// zero means any stored entry is fresh.
func (c *Cache) Fresh(ctx context.Context, key string, maxAge time.Duration) (bool, error) {
	age, ok, err := c.Age(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return maxAge <= 0 || age <= maxAge, nil
}

// Fetch loads key into dest, calling fn and storing its result when the
// entry is missing or stale.
func (c *Cache) Fetch(ctx context.Context, key string, maxAge time.Duration, dest any, fn func(context.Context) (any, error)) error {
	ok, err := c.Load(ctx, key, maxAge, dest)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	value, err := fn(ctx)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, value); err != nil {
		return err
	}
	// Round-trip through JSON so dest matches what a later Load returns.
	_, err = c.Load(ctx, key, 0, dest)
	return err
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("cache: delete %s: %w", key, err)
	}
	return nil
}

// ClearPrefix removes every key starting with prefix and returns how many
// entries were removed.
func (c *Cache) ClearPrefix(ctx context.Context, prefix string) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM entries WHERE substr(key, 1, length(?)) = ?`, prefix, prefix)
	if err != nil {
		return 0, fmt.Errorf("cache: clear %s*: %w", prefix, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache: clear %s*: %w", prefix, err)
	}
	return n, nil
}

// ClaimTask atomically marks key as running for pid. It reports false when a
// claim younger than StaleTaskAge already exists.
func (c *Cache) ClaimTask(ctx context.Context, key string, pid int) (bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("cache: claim %s: %w", key, err)
	}
	defer func() { _ = tx.Rollback() }()

	now := c.now()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tasks WHERE key = ? AND started_at < ?`,
		key, now.Add(-StaleTaskAge).UnixMilli(),
	); err != nil {
		return false, fmt.Errorf("cache: claim %s: %w", key, err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO tasks (key, pid, started_at) VALUES (?, ?, ?)`,
		key, pid, now.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("cache: claim %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cache: claim %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("cache: claim %s: %w", key, err)
	}
	return n == 1, nil
}

// ReleaseTask drops the claim on key.
func (c *Cache) ReleaseTask(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM tasks WHERE key = ?`, key); err != nil {
		return fmt.Errorf("cache: release %s: %w", key, err)
	}
	return nil
}

// TaskRunning reports whether a non-stale claim exists for key.
func (c *Cache) TaskRunning(ctx context.Context, key string) (bool, error) {
	var startedMs int64
	row := c.db.QueryRowContext(ctx, `SELECT started_at FROM tasks WHERE key = ?`, key)
	if err := row.Scan(&startedMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("cache: task %s: %w", key, err)
	}
	return c.now().Sub(time.UnixMilli(startedMs)) < StaleTaskAge, nil
}

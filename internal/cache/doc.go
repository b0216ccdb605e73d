// Package cache stores Jenkins responses between invocations.
//
// Every jenky command is a short-lived process, so anything worth keeping
// across keystrokes lives in a single SQLite file under the data directory.
// The database has two tables:
//
//	entries(key, value, updated_at)   JSON value plus a millisecond timestamp
//	tasks(key, pid, started_at)       claims held by detached refreshes
//
// # Freshness
//
// Callers decide how old is too old. Load and Fresh take a maximum age; zero
// accepts any stored entry. Ages come from the injected clock (WithClock),
// which tests use to move time forward.
//
// # Keys
//
//	jobs                  job list (no expiry until cleared)
//	<job>_params          parameter definitions
//	build_history_<job>   recent builds
//
// ClearPrefix("jobs") is what the "Clear job cache" action runs.
//
// # Task claims
//
// ClaimTask is an insert-or-ignore inside a transaction, so two processes
// racing for the same key cannot both win. A claim older than StaleTaskAge
// is treated as abandoned and replaced.
package cache

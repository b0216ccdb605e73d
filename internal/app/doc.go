// Package app provides the composition root for jenky.
//
// # Overview
//
// Every command opens one App. It loads the tool configuration, builds the
// injected slog logger, opens the SQLite cache, reads settings and the API
// key, and creates the Jenkins client once the credentials are complete.
// Menus and actions only ever see what App hands them.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Open()     │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()           Tool configuration
//	       ├─────> logging.New()           File logger
//	       ├─────> cache.Open()            SQLite cache and task claims
//	       └─────> Reload()                Settings, keyring, Jenkins client
//
//	Items(flow, query) ──> menu.Env ──> MainFlow / SettingsFlow / BuildFlow
//	Executor()         ──> action.Executor.Run(arg)
//	RefreshParams(job) ──> refresh.RunClaimed (child of a detached refresh)
//
// # Refresh Modes
//
// One-shot commands use RefreshDetached: a stale parameter cache spawns a
// "jenky refresh --params <job>" child and the command returns at once with
// an "Updating parameter options..." notice. The interactive mode uses
// RefreshInProcess, where refreshes are goroutines bound to the App's
// lifetime and Close waits for them.
//
// # Error Handling
//
// Fatal errors (returned from Open):
//   - Configuration file invalid
//   - Log file or cache database cannot be opened
//   - Settings file unreadable
//
// Recoverable errors (logged, the settings menu stays usable):
//   - Keyring read failures
//   - An invalid hostname that prevents building a client
package app

// Package refresh keeps slow Jenkins lookups off the interactive path.
//
// Parameter definitions are cached for a day. When a build menu finds them
// stale it asks a Coordinator, which reports one of three states and starts
// at most one refresh per task key:
//
//	Fresh       cached value is inside its window
//	Refreshing  value is stale and a refresh is in flight
//	Idle        value is stale and nothing could be started
//
// Two Runner implementations exist. Group runs refreshes as goroutines and
// suits the long-lived TUI. Detached spawns "jenky refresh --params <job>" so
// one-shot commands can exit immediately; the child calls RunClaimed, which
// releases the claim taken in the cache task table.
package refresh

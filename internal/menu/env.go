package menu

import (
	"log/slog"
	"time"

	"github.com/five82/jenky/internal/cache"
	"github.com/five82/jenky/internal/jenkins"
	"github.com/five82/jenky/internal/refresh"
	"github.com/five82/jenky/internal/settings"
)

// Env carries everything a menu may need. Jenkins is nil when the
// credentials are incomplete. Refresh may be nil, in which case missing
// parameter definitions are fetched in the foreground.
type Env struct {
	Creds   settings.Credentials
	Jenkins jenkins.API
	Cache   *cache.Cache
	Refresh *refresh.Coordinator
	Log     *slog.Logger

	MinScore      int
	ParamsMaxAge  time.Duration
	HistoryMaxAge time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (e *Env) logger() *slog.Logger {
	if e.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Log
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

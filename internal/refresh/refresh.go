package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/jenky/internal/cache"
	"github.com/five82/jenky/internal/jenkins"
)

// Status describes a cache key from the point of view of a menu.
type Status int

const (
	// Idle means the entry is missing or stale and nothing is refreshing it.
	Idle Status = iota
	// Fresh means the entry is within its freshness window.
	Fresh
	// Refreshing means the entry is stale and a refresh is in flight.
	Refreshing
)

func (s Status) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Refreshing:
		return "refreshing"
	default:
		return "idle"
	}
}

// Request names one refresh. Only job parameter refreshes exist.
type Request struct {
	Job string
}

// Key is the task key used to deduplicate refreshes.
func (r Request) Key() string {
	return "update_job_params_" + r.Job
}

// Work performs a refresh.
type Work func(ctx context.Context, req Request) error

// Runner starts refreshes without blocking the caller.
type Runner interface {
	Running(ctx context.Context, key string) bool
	Launch(ctx context.Context, req Request) error
}

// JobParams returns the Work that fetches a job's parameter definitions and
// stores them under cache.ParamsKey.
func JobParams(api jenkins.API, c *cache.Cache) Work {
	return func(ctx context.Context, req Request) error {
		defs, err := api.GetJobParameters(ctx, req.Job)
		if err != nil {
			return err
		}
		return c.Set(ctx, cache.ParamsKey(req.Job), defs)
	}
}

// Coordinator decides whether a stale cache entry needs a refresh and starts
// at most one per key.
type Coordinator struct {
	cache  *cache.Cache
	runner Runner
	log    *slog.Logger
}

// NewCoordinator builds a Coordinator. A nil logger discards output.
func NewCoordinator(c *cache.Cache, runner Runner, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{cache: c, runner: runner, log: logger}
}

// Status reports the state of cacheKey without starting anything.
func (c *Coordinator) Status(ctx context.Context, cacheKey string, maxAge time.Duration, req Request) Status {
	fresh, err := c.cache.Fresh(ctx, cacheKey, maxAge)
	if err != nil {
		c.log.Warn("cache freshness check failed", "key", cacheKey, "error", err)
	}
	if fresh {
		return Fresh
	}
	if c.runner.Running(ctx, req.Key()) {
		return Refreshing
	}
	return Idle
}

// Ensure is Status plus a launch when the entry is stale and idle. A failed
// launch is logged and reported as Idle.
func (c *Coordinator) Ensure(ctx context.Context, cacheKey string, maxAge time.Duration, req Request) Status {
	status := c.Status(ctx, cacheKey, maxAge, req)
	if status != Idle {
		return status
	}
	if err := c.runner.Launch(ctx, req); err != nil {
		c.log.Error("refresh launch failed", "task", req.Key(), "error", err)
		return Idle
	}
	c.log.Debug("refresh launched", "task", req.Key())
	return Refreshing
}

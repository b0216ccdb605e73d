package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/five82/jenky/internal/cache"
)

// Detached runs each refresh as a separate "jenky refresh" process so a
// one-shot command can exit while the refresh continues. Claims in the cache
// task table keep concurrent invocations from starting duplicates.
type Detached struct {
	cache *cache.Cache
	log   *slog.Logger
	// Executable is the binary to run; empty means os.Executable().
	Executable string
	// Args returns the arguments for req, excluding the executable.
	Args  func(Request) []string
	start func(*exec.Cmd) error
}

// NewDetached builds a Detached runner. args must produce a command line that
// ends with RunClaimed being called for the request.
func NewDetached(c *cache.Cache, args func(Request) []string, logger *slog.Logger) *Detached {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Detached{cache: c, log: logger, Args: args, start: startDetached}
}

// Running reports whether a live claim exists for key.
func (d *Detached) Running(ctx context.Context, key string) bool {
	running, err := d.cache.TaskRunning(ctx, key)
	if err != nil {
		d.log.Warn("task lookup failed", "task", key, "error", err)
		return false
	}
	return running
}

// Launch claims req's key and starts the child process. Losing the claim to
// another invocation is not an error.
func (d *Detached) Launch(ctx context.Context, req Request) error {
	key := req.Key()
	claimed, err := d.cache.ClaimTask(ctx, key, os.Getpid())
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	exe := d.Executable
	if exe == "" {
		exe, err = os.Executable()
		if err != nil {
			_ = d.cache.ReleaseTask(ctx, key)
			return fmt.Errorf("locate executable: %w", err)
		}
	}
	if d.Args == nil {
		_ = d.cache.ReleaseTask(ctx, key)
		return errors.New("detached refresh: no argument builder")
	}

	cmd := exec.Command(exe, d.Args(req)...)
	if err := d.start(cmd); err != nil {
		_ = d.cache.ReleaseTask(ctx, key)
		return fmt.Errorf("start refresh %s: %w", key, err)
	}
	d.log.Debug("detached refresh started", "task", key, "exe", exe)
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// RunClaimed runs work for req inside the child process and releases the
// claim afterwards, whatever the outcome.
func RunClaimed(ctx context.Context, c *cache.Cache, req Request, work Work) error {
	err := work(ctx, req)
	if relErr := c.ReleaseTask(context.WithoutCancel(ctx), req.Key()); relErr != nil {
		err = errors.Join(err, relErr)
	}
	return err
}

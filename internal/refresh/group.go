package refresh

import (
	"context"
	"log/slog"
	"sync"
)

// Group runs refreshes as goroutines in the current process. At most one
// goroutine runs per task key.
type Group struct {
	work Work
	log  *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

// NewGroup builds a Group that runs work. A nil logger discards output.
func NewGroup(work Work, logger *slog.Logger) *Group {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Group{work: work, log: logger, inflight: make(map[string]struct{})}
}

// Running reports whether a refresh for key is in flight.
func (g *Group) Running(_ context.Context, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inflight[key]
	return ok
}

// Launch starts req unless a refresh with the same key is in flight. The
// goroutine stops early when ctx is cancelled.
func (g *Group) Launch(ctx context.Context, req Request) error {
	key := req.Key()
	g.mu.Lock()
	if _, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		return nil
	}
	g.inflight[key] = struct{}{}
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer func() {
			g.mu.Lock()
			delete(g.inflight, key)
			g.mu.Unlock()
		}()
		if err := g.work(ctx, req); err != nil {
			g.log.Warn("refresh failed", "task", key, "error", err)
			return
		}
		g.log.Debug("refresh finished", "task", key)
	}()
	return nil
}

// Wait blocks until every launched refresh has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/five82/jenky/internal/action"
	"github.com/five82/jenky/internal/cache"
	"github.com/five82/jenky/internal/config"
	"github.com/five82/jenky/internal/jenkins"
	"github.com/five82/jenky/internal/logging"
	"github.com/five82/jenky/internal/menu"
	"github.com/five82/jenky/internal/refresh"
	"github.com/five82/jenky/internal/settings"
)

// RefreshMode selects how background parameter refreshes run.
type RefreshMode int

const (
	// RefreshDetached spawns "jenky refresh" child processes so one-shot
	// commands can exit before the refresh finishes.
	RefreshDetached RefreshMode = iota
	// RefreshInProcess runs refreshes as goroutines owned by the App.
	RefreshInProcess
)

// Options configure the jenky application.
type Options struct {
	ConfigPath   string
	SettingsPath string // empty uses default ~/.config/jenky/settings.toml
	Refresh      RefreshMode

	// Secrets defaults to the OS keyring.
	Secrets settings.SecretStore
	// Logger overrides the file logger built from the config.
	Logger *slog.Logger
	// Opener replaces the system browser for open actions.
	Opener func(url string) error
}

// App is the composition root shared by every command.
type App struct {
	Config   config.Config
	Settings settings.Settings
	Creds    settings.Credentials
	Log      *slog.Logger
	Cache    *cache.Cache

	opts    Options
	secrets settings.SecretStore
	closers []io.Closer

	// mu guards Settings, Creds and client, which Reload replaces while
	// interactive renders read them.
	mu     sync.RWMutex
	client jenkins.API

	// group is set in RefreshInProcess mode.
	group  *refresh.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// Open loads configuration, settings and credentials and opens the cache.
func Open(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load jenky config: %w", err)
	}

	a := &App{Config: cfg, opts: opts, secrets: opts.Secrets}
	if a.secrets == nil {
		a.secrets = settings.NewKeyring()
	}

	a.Log = opts.Logger
	if a.Log == nil {
		logger, closer, err := logging.New(cfg.LogPath(), cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("init logging: %w", err)
		}
		a.Log = logger
		a.closers = append(a.closers, closer)
	}

	a.Cache, err = cache.Open(cfg.CachePath())
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}
	a.closers = append(a.closers, a.Cache)

	a.ctx, a.cancel = context.WithCancel(context.WithoutCancel(ctx))
	if opts.Refresh == RefreshInProcess {
		a.group = refresh.NewGroup(a.refreshWork, a.Log)
	}
	if err := a.Reload(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Reload re-reads settings and credentials and rebuilds the Jenkins client.
// Interactive mode calls it after every settings action.
func (a *App) Reload() error {
	s, err := settings.Load(a.opts.SettingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	creds, err := settings.LoadCredentials(s, a.secrets)
	if err != nil {
		// A broken keyring is survivable; the settings menu still works.
		a.Log.Warn("read api key failed", "error", err)
	}
	var client jenkins.API
	if creds.Complete() {
		client, err = a.NewClient(creds)
		if err != nil {
			a.Log.Warn("jenkins client unavailable", "hostname", creds.Hostname, "error", err)
		}
	}
	a.mu.Lock()
	a.Settings = s
	a.Creds = creds
	a.client = client
	a.mu.Unlock()
	return nil
}

// Client returns the Jenkins client, or nil while the credentials are
// incomplete.
func (a *App) Client() jenkins.API {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client
}

// NewClient builds a Jenkins client with the configured timeout.
func (a *App) NewClient(creds settings.Credentials) (jenkins.API, error) {
	if !creds.Complete() {
		return nil, settings.ErrIncomplete
	}
	client, err := jenkins.NewClient(creds.Hostname, creds.Username, creds.APIKey,
		jenkins.WithTimeout(a.Config.RequestTimeout))
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Env returns the menu environment for the current credentials.
func (a *App) Env() *menu.Env {
	a.mu.RLock()
	creds, client := a.Creds, a.client
	a.mu.RUnlock()
	env := &menu.Env{
		Creds:         creds,
		Jenkins:       client,
		Cache:         a.Cache,
		Log:           a.Log,
		MinScore:      a.Config.MinScore,
		ParamsMaxAge:  a.Config.ParamsMaxAge,
		HistoryMaxAge: a.Config.HistoryMaxAge,
	}
	env.Refresh = refresh.NewCoordinator(a.Cache, a.runner(), a.Log)
	return env
}

func (a *App) runner() refresh.Runner {
	if a.group != nil {
		return boundRunner{ctx: a.ctx, Runner: a.group}
	}
	return refresh.NewDetached(a.Cache, a.refreshArgs, a.Log)
}

// boundRunner launches refreshes under the app's lifetime rather than the
// context of the render that asked for them.
type boundRunner struct {
	ctx context.Context
	refresh.Runner
}

func (b boundRunner) Launch(_ context.Context, req refresh.Request) error {
	return b.Runner.Launch(b.ctx, req)
}

func (a *App) refreshWork(ctx context.Context, req refresh.Request) error {
	client := a.Client()
	if client == nil {
		return settings.ErrIncomplete
	}
	return refresh.JobParams(client, a.Cache)(ctx, req)
}

// refreshArgs is the child command line for a detached refresh. Path flags
// are forwarded so the child sees the same config and settings.
func (a *App) refreshArgs(req refresh.Request) []string {
	args := []string{"refresh", "--params", req.Job}
	if a.opts.ConfigPath != "" {
		args = append(args, "--config", a.opts.ConfigPath)
	}
	if a.opts.SettingsPath != "" {
		args = append(args, "--settings", a.opts.SettingsPath)
	}
	return args
}

// Items renders flow for the raw query.
func (a *App) Items(ctx context.Context, flow menu.Flow, raw string) []menu.Item {
	env := a.Env()
	switch flow {
	case menu.FlowSettings:
		return menu.SettingsFlow(ctx, env, raw)
	case menu.FlowBuild:
		return menu.BuildFlow(ctx, env, raw)
	default:
		return menu.MainFlow(ctx, env, raw)
	}
}

// Executor returns an action executor bound to the app's settings, secrets
// and cache.
func (a *App) Executor() *action.Executor {
	opts := []action.Option{action.WithLogger(a.Log)}
	if a.opts.Opener != nil {
		opts = append(opts, action.WithOpener(a.opts.Opener))
	}
	return action.New(a.opts.SettingsPath, a.secrets, a.Cache, a.NewClient, opts...)
}

// Run executes an action string and reloads the settings it may have
// changed.
func (a *App) Run(ctx context.Context, arg string) (action.Result, error) {
	res, err := a.Executor().Run(ctx, arg)
	if reloadErr := a.Reload(); reloadErr != nil {
		a.Log.Warn("reload after action failed", "error", reloadErr)
	}
	return res, err
}

// RefreshParams refetches the parameter definitions of job. It is the body
// of the "jenky refresh" child process and always releases the task claim.
func (a *App) RefreshParams(ctx context.Context, job string) error {
	req := refresh.Request{Job: job}
	client := a.Client()
	if client == nil {
		err := fmt.Errorf("refresh %s: %w", job, settings.ErrIncomplete)
		if relErr := a.Cache.ReleaseTask(ctx, req.Key()); relErr != nil {
			err = errors.Join(err, relErr)
		}
		return err
	}
	a.Log.Info("refreshing job parameters", "job", job)
	if err := refresh.RunClaimed(ctx, a.Cache, req, refresh.JobParams(client, a.Cache)); err != nil {
		a.Log.Warn("parameter refresh failed", "job", job, "error", err)
		return err
	}
	return nil
}

// SaveTheme persists the interactive theme choice.
func (a *App) SaveTheme(name string) error {
	s, err := settings.Update(a.opts.SettingsPath, func(s *settings.Settings) {
		s.Theme = name
	})
	if err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	a.mu.Lock()
	a.Settings = s
	a.mu.Unlock()
	return nil
}

// Close stops in-process refreshes and releases the cache and log file.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.group != nil {
		a.group.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

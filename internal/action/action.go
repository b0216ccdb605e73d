package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pkg/browser"

	"github.com/five82/jenky/internal/cache"
	"github.com/five82/jenky/internal/jenkins"
	"github.com/five82/jenky/internal/menu"
	"github.com/five82/jenky/internal/query"
	"github.com/five82/jenky/internal/settings"
)

// Nav asks the host to show another flow. The zero Nav means stay put.
type Nav struct {
	Flow  menu.Flow
	Query string
}

// IsZero reports whether n requests no navigation.
func (n Nav) IsZero() bool {
	return n.Flow == "" && n.Query == ""
}

// Result is what an executed action reports back to the user.
type Result struct {
	Message string
	Nav     Nav
	// Failed marks results whose Message describes a failure.
	Failed bool
}

// ClientFactory builds a Jenkins client for complete credentials.
type ClientFactory func(settings.Credentials) (jenkins.API, error)

// Executor runs terminal action strings.
type Executor struct {
	settingsPath string
	secrets      settings.SecretStore
	cache        *cache.Cache
	newClient    ClientFactory
	open         func(string) error
	log          *slog.Logger
}

// Option customizes an Executor.
type Option func(*Executor)

// WithOpener replaces the system browser used by open actions.
func WithOpener(open func(url string) error) Option {
	return func(e *Executor) {
		if open != nil {
			e.open = open
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.log = logger
		}
	}
}

// New builds an Executor. settingsPath is where username and hostname are
// saved; secrets holds the API key.
func New(settingsPath string, secrets settings.SecretStore, c *cache.Cache, newClient ClientFactory, opts ...Option) *Executor {
	e := &Executor{
		settingsPath: settingsPath,
		secrets:      secrets,
		cache:        c,
		newClient:    newClient,
		open:         browser.OpenURL,
		log:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes arg. Errors are returned only for unknown actions and for
// failures to persist settings or open URLs; build failures are reported
// through Result.
func (e *Executor) Run(ctx context.Context, arg string) (Result, error) {
	act, err := query.ParseAction(arg)
	switch {
	case errors.Is(err, query.ErrMalformedParams):
		e.log.Debug("ignoring malformed build params", "arg", arg, "error", err)
	case err != nil:
		return Result{}, err
	}

	switch act.Kind {
	case query.ActionSetting:
		return e.saveSetting(act.Setting, act.Value)
	case query.ActionClearJobCache:
		n, err := e.cache.ClearPrefix(ctx, cache.JobsKey)
		if err != nil {
			return Result{}, err
		}
		e.log.Info("job cache cleared", "entries", n)
		return Result{Message: "The job cache has been cleared."}, nil
	case query.ActionBuild:
		return e.build(ctx, act.Job, act.Params), nil
	case query.ActionOpen:
		if err := e.open(act.URL); err != nil {
			return Result{}, fmt.Errorf("open %s: %w", act.URL, err)
		}
		return Result{Message: fmt.Sprintf("Opened %s.", act.URL)}, nil
	case query.ActionSettingsMenu:
		return Result{Nav: Nav{Flow: menu.FlowSettings}}, nil
	}
	return Result{}, fmt.Errorf("%w: %q", query.ErrMalformedQuery, arg)
}

func (e *Executor) saveSetting(field query.Field, value string) (Result, error) {
	switch field {
	case query.FieldUsername:
		if _, err := settings.Update(e.settingsPath, func(s *settings.Settings) { s.Username = value }); err != nil {
			return Result{}, err
		}
		e.log.Info("username saved", "username", value)
		return Result{Message: fmt.Sprintf("Username set as %q.", value)}, nil
	case query.FieldHostname:
		if _, err := settings.Update(e.settingsPath, func(s *settings.Settings) { s.Hostname = value }); err != nil {
			return Result{}, err
		}
		e.log.Info("hostname saved", "hostname", value)
		return Result{Message: fmt.Sprintf("Hostname set as %q.", value)}, nil
	case query.FieldAPIKey:
		if err := settings.SaveAPIKey(e.secrets, value); err != nil {
			return Result{}, err
		}
		e.log.Info("api key saved")
		return Result{Message: "API Key has been set."}, nil
	}
	return Result{}, fmt.Errorf("%w: unknown setting %q", query.ErrMalformedQuery, field)
}

func (e *Executor) build(ctx context.Context, job string, chosen query.Params) Result {
	api, err := e.client()
	if err != nil {
		return buildFailed(job, err)
	}
	defs, err := e.paramDefinitions(ctx, api, job)
	if err != nil {
		return buildFailed(job, err)
	}
	params := resolveParams(defs, chosen)

	queueURL, err := api.BuildJob(ctx, job, params, "")
	if err != nil {
		e.log.Error("build failed", "job", job, "error", err)
		return buildFailed(job, err)
	}
	e.log.Info("build queued", "job", job, "queue", queueURL, "params", len(params))
	return Result{Message: fmt.Sprintf("Build Success: %s build queued.", job)}
}

func buildFailed(job string, err error) Result {
	if errors.Is(err, jenkins.ErrNotFound) {
		return Result{Message: fmt.Sprintf("Build Failed: %q job could not be found.", job), Failed: true}
	}
	return Result{Message: fmt.Sprintf("Build Failed: %v", err), Failed: true}
}

func (e *Executor) client() (jenkins.API, error) {
	s, err := settings.Load(e.settingsPath)
	if err != nil {
		return nil, err
	}
	creds, err := settings.LoadCredentials(s, e.secrets)
	if err != nil {
		return nil, err
	}
	if !creds.Complete() {
		return nil, settings.ErrIncomplete
	}
	return e.newClient(creds)
}

// paramDefinitions prefers cached definitions of any age and fetches them
// when nothing is cached.
func (e *Executor) paramDefinitions(ctx context.Context, api jenkins.API, job string) ([]jenkins.ParameterDefinition, error) {
	var defs []jenkins.ParameterDefinition
	err := e.cache.Fetch(ctx, cache.ParamsKey(job), 0, &defs, func(ctx context.Context) (any, error) {
		return api.GetJobParameters(ctx, job)
	})
	return defs, err
}

// resolveParams picks the chosen value of every defined parameter, falling
// back to its default. Boolean sentinels become bools.
func resolveParams(defs []jenkins.ParameterDefinition, chosen query.Params) map[string]any {
	params := make(map[string]any, len(defs))
	for _, def := range defs {
		if v, ok := chosen.Get(def.Name); ok {
			params[def.Name] = query.Coerce(v)
			continue
		}
		switch v := def.Default().(type) {
		case nil:
			params[def.Name] = ""
		case string:
			params[def.Name] = query.Coerce(v)
		default:
			params[def.Name] = v
		}
	}
	return params
}

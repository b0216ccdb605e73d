package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/five82/jenky/internal/cache"
	"github.com/five82/jenky/internal/jenkins"
	"github.com/five82/jenky/internal/query"
	"github.com/five82/jenky/internal/refresh"
)

// buildQuery is the parsed input of the build flow.
type buildQuery struct {
	query.State
	Configured bool
}

func kindIs(k query.Kind) func(buildQuery) bool {
	return func(q buildQuery) bool { return q.Kind == k }
}

var buildRoutes = Registry[buildQuery]{
	{Name: "initial", Match: func(q buildQuery) bool { return !q.Configured }, Build: func(_ context.Context, env *Env, _ buildQuery) []Item {
		return initialItems(env)
	}},
	{Name: "history", Match: kindIs(query.KindHistory), Build: historyMenu},
	{Name: "set-param", Match: kindIs(query.KindSetParam), Build: setParamMenu},
	{Name: "build-job", Match: kindIs(query.KindBuild), Build: buildJobMenu},
	{Name: "initial-build", Match: kindIs(query.KindJob), Build: initialBuildMenu},
	{Name: "empty", Match: kindIs(query.KindEmpty), Build: emptyMenu},
}

// BuildFlow renders the build entry point for a job query. A bare Jenkins
// job URL is accepted in place of the job name.
func BuildFlow(ctx context.Context, env *Env, raw string) []Item {
	if job, ok := query.JobFromURL(raw); ok {
		raw = job
	}
	state, err := query.Parse(raw)
	switch {
	case errors.Is(err, query.ErrMalformedParams):
		env.logger().Debug("ignoring malformed params", "query", raw, "error", err)
	case err != nil:
		env.logger().Warn("malformed query", "query", raw, "error", err)
		return []Item{errorItem("Malformed query.", err)}
	}
	return buildRoutes.Render(ctx, env, buildQuery{State: state, Configured: env.Creds.Complete()})
}

func emptyMenu(context.Context, *Env, buildQuery) []Item {
	return []Item{{
		Title:    "No job name given.",
		Subtitle: "Please enter a valid job name.",
		Icon:     IconError,
	}}
}

func initialBuildMenu(_ context.Context, _ *Env, q buildQuery) []Item {
	return []Item{
		{
			Title:        fmt.Sprintf("Build %s job.", q.Job),
			Subtitle:     "Enter the build menu to set parameters and start a build.",
			Autocomplete: query.BuildState(q.Job, nil).Encode(),
		},
		{
			Title:        "Build History.",
			Subtitle:     "View recent builds and re-run them.",
			Autocomplete: query.HistoryState(q.Job).Encode(),
		},
	}
}

func buildJobMenu(ctx context.Context, env *Env, q buildQuery) []Item {
	var items []Item
	status := ensureParams(ctx, env, q.Job)
	if status == refresh.Refreshing {
		items = append(items, Item{
			Title:        "Updating parameter options...",
			Subtitle:     "This should only take a minute. You can continue using the currently cached data.",
			Autocomplete: q.Encode(),
			Icon:         IconInfo,
		})
	}

	defs := cachedParams(ctx, env, q.Job)
	searching := q.Input != ""
	if searching {
		defs = filter(q.Input, defs, func(d jenkins.ParameterDefinition) string { return d.Name }, env.MinScore)
	} else {
		items = append(items, Item{
			Title:    fmt.Sprintf("Build %s", q.Job),
			Subtitle: "Start a job build using the parameters you've set (and defaults otherwise).",
			Valid:    true,
			Arg:      query.BuildAction(q.Job, q.Params).String(),
		})
	}

	for _, def := range defs {
		value, ok := q.Params.Get(def.Name)
		if ok {
			value = query.Display(value)
		} else {
			value = defaultDisplay(def)
		}
		if def.Type == jenkins.TypePassword && ok {
			value = maskAll(value)
		}
		items = append(items, Item{
			UID:          def.Name,
			Title:        fmt.Sprintf("%s (%s)", def.Name, value),
			Subtitle:     fmt.Sprintf("%s: %s", jenkins.TypeLabel(def.Type), description(def)),
			Autocomplete: query.SetParamState(q.Job, q.Params, def.Name).Encode(),
		})
	}
	return items
}

// ensureParams keeps the parameter cache warm. Without a coordinator the
// definitions are fetched in the foreground when missing or stale.
func ensureParams(ctx context.Context, env *Env, job string) refresh.Status {
	key := cache.ParamsKey(job)
	req := refresh.Request{Job: job}
	if env.Refresh != nil {
		return env.Refresh.Ensure(ctx, key, env.ParamsMaxAge, req)
	}
	if fresh, _ := env.Cache.Fresh(ctx, key, env.ParamsMaxAge); fresh {
		return refresh.Fresh
	}
	if env.Jenkins == nil {
		return refresh.Idle
	}
	if err := refresh.JobParams(env.Jenkins, env.Cache)(ctx, req); err != nil {
		env.logger().Warn("fetch parameters", "job", job, "error", err)
		return refresh.Idle
	}
	return refresh.Fresh
}

func cachedParams(ctx context.Context, env *Env, job string) []jenkins.ParameterDefinition {
	var defs []jenkins.ParameterDefinition
	if _, err := env.Cache.Load(ctx, cache.ParamsKey(job), 0, &defs); err != nil {
		env.logger().Warn("load cached parameters", "job", job, "error", err)
		return nil
	}
	return defs
}

func defaultDisplay(def jenkins.ParameterDefinition) string {
	v := def.Default()
	if v == nil {
		return "No default"
	}
	value := query.Display(query.FormatValue(v))
	if def.Type == jenkins.TypePassword && value != "" {
		return maskAll(value)
	}
	return value
}

func description(def jenkins.ParameterDefinition) string {
	if strings.TrimSpace(def.Description) == "" {
		return "No description available."
	}
	return def.Description
}

func maskAll(s string) string {
	if s == "" {
		return ""
	}
	return strings.Repeat("•", 8)
}

package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/five82/jenky/internal/cache"
	"github.com/five82/jenky/internal/jenkins"
	"github.com/five82/jenky/internal/query"
)

func historyMenu(ctx context.Context, env *Env, q buildQuery) []Item {
	if env.Jenkins == nil {
		return initialItems(env)
	}
	var builds []jenkins.Build
	err := env.Cache.Fetch(ctx, cache.HistoryKey(q.Job), env.HistoryMaxAge, &builds, func(ctx context.Context) (any, error) {
		return env.Jenkins.GetBuildHistory(ctx, q.Job)
	})
	if err != nil {
		env.logger().Error("load build history", "job", q.Job, "error", err)
		if errors.Is(err, jenkins.ErrNotFound) {
			return []Item{{Title: fmt.Sprintf("%q job could not be found.", q.Job), Subtitle: err.Error(), Icon: IconError}}
		}
		return []Item{errorItem("Could not load build history.", err)}
	}

	builds = filter(q.Input, builds, func(b jenkins.Build) string { return b.Name }, env.MinScore)
	items := make([]Item, 0, len(builds))
	for _, b := range builds {
		items = append(items, Item{
			UID:          b.URL,
			Title:        b.ShortName(q.Job),
			Subtitle:     paramSummary(b.Parameters),
			Arg:          query.OpenAction(b.URL).String(),
			Valid:        b.URL != "",
			Autocomplete: rerunQuery(env, q.Job, b.Parameters),
		})
	}
	if len(items) == 0 {
		items = append(items, Item{Title: fmt.Sprintf("No recent builds that match %q.", q.Input)})
	}
	return items
}

func paramSummary(params []jenkins.ParameterValue) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Name+":"+p.ValueString())
	}
	return strings.Join(parts, ", ")
}

// rerunQuery returns the build menu query preloaded with a past build's
// parameters. Parameters without a value are skipped, and so are values the
// params part cannot carry; those fall back to the job's defaults.
func rerunQuery(env *Env, job string, params []jenkins.ParameterValue) string {
	var chosen query.Params
	for _, p := range params {
		if p.Value == nil {
			continue
		}
		value := query.FormatValue(p.Value)
		if !query.Encodable(p.Name) || !query.Encodable(value) {
			env.logger().Warn("skipping history parameter with a delimiter", "job", job, "param", p.Name)
			continue
		}
		chosen = chosen.With(p.Name, value)
	}
	return query.BuildState(job, chosen).Encode()
}

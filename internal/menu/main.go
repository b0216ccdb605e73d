package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/five82/jenky/internal/cache"
	"github.com/five82/jenky/internal/jenkins"
	"github.com/five82/jenky/internal/query"
)

// mainQuery is the parsed input of the main flow.
type mainQuery struct {
	Query      string
	Configured bool
}

var mainRoutes = Registry[mainQuery]{
	{Name: "initial", Match: func(q mainQuery) bool { return !q.Configured }, Build: initialMenu},
	{Name: "settings", Match: func(q mainQuery) bool { return q.Query == query.SettingsShortcut }, Build: settingsShortcut},
	{Name: "jobs", Match: always[mainQuery], Build: jobsMenu},
}

// MainFlow renders the main entry point: onboarding, the settings shortcut,
// or the searchable job list.
func MainFlow(ctx context.Context, env *Env, raw string) []Item {
	q := mainQuery{Query: strings.TrimSpace(raw), Configured: env.Creds.Complete()}
	return mainRoutes.Render(ctx, env, q)
}

func initialMenu(_ context.Context, env *Env, _ mainQuery) []Item {
	return initialItems(env)
}

func initialItems(env *Env) []Item {
	subtitle := "It looks like some things still need to be configured before we can begin."
	if missing := env.Creds.Missing(); len(missing) > 0 {
		subtitle = "Missing " + strings.Join(missing, ", ") + "."
	}
	return []Item{
		{Title: "Welcome to Jenky!", Subtitle: subtitle},
		{
			Title:    "Go to settings menu.",
			Subtitle: "You'll need to configure username, api key, and hostname to get up and running.",
			Valid:    true,
			Arg:      query.SettingsMenuArg,
			Icon:     IconSettings,
		},
	}
}

func settingsShortcut(ctx context.Context, env *Env, _ mainQuery) []Item {
	return settingsItems(ctx, env)
}

func jobsMenu(ctx context.Context, env *Env, q mainQuery) []Item {
	if env.Jenkins == nil {
		return initialItems(env)
	}
	var jobs []jenkins.Job
	err := env.Cache.Fetch(ctx, cache.JobsKey, 0, &jobs, func(ctx context.Context) (any, error) {
		return env.Jenkins.GetJobs(ctx)
	})
	if err != nil {
		env.logger().Error("load jobs", "error", err)
		return []Item{errorItem("Could not load jobs.", err)}
	}

	jobs = filter(q.Query, jobs, func(j jenkins.Job) string { return j.Name }, env.MinScore)
	items := make([]Item, 0, len(jobs))
	for _, job := range jobs {
		name := job.Name
		if name == "" {
			name = "Unknown Job Name"
		}
		items = append(items, Item{
			UID:          job.Name,
			Title:        name,
			Subtitle:     fmt.Sprintf("%s · %s", job.Status(), job.URL),
			Arg:          query.OpenAction(job.URL).String(),
			Valid:        job.URL != "",
			Autocomplete: job.Name,
			Flow:         FlowBuild,
		})
	}
	if len(items) == 0 {
		items = append(items, Item{Title: fmt.Sprintf("No jobs found matching %q.", q.Query)})
	}
	return items
}

package menu

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dustin/go-humanize"

	"github.com/five82/jenky/internal/cache"
	"github.com/five82/jenky/internal/query"
	"github.com/five82/jenky/internal/settings"
)

var settingsRoutes = Registry[query.SettingsState]{
	{Name: "username", Match: fieldIs(query.FieldUsername), Build: usernameMenu},
	{Name: "api-key", Match: fieldIs(query.FieldAPIKey), Build: apiKeyMenu},
	{Name: "hostname", Match: fieldIs(query.FieldHostname), Build: hostnameMenu},
	{Name: "settings", Match: always[query.SettingsState], Build: settingsMenu},
}

func fieldIs(f query.Field) func(query.SettingsState) bool {
	return func(s query.SettingsState) bool { return s.Field == f }
}

// SettingsFlow renders the settings entry point.
func SettingsFlow(ctx context.Context, env *Env, raw string) []Item {
	return settingsRoutes.Render(ctx, env, query.ParseSettings(raw))
}

func settingsMenu(ctx context.Context, env *Env, _ query.SettingsState) []Item {
	return settingsItems(ctx, env)
}

func settingsItems(ctx context.Context, env *Env) []Item {
	return []Item{
		{
			Title:    "Welcome to the Settings menu.",
			Subtitle: "Configure your Jenkins username, api key and hostname via the options below.",
		},
		settingItem("Set Username", "Set your Jenkins username to be used for authentication.",
			query.FieldUsername, env.Creds.Username),
		settingItem("Set API Key", "Set your Jenkins API key securely in the system keyring.",
			query.FieldAPIKey, settings.MaskSecret(env.Creds.APIKey)),
		settingItem("Set Hostname", "Set your Jenkins instance's base URL (e.g. 'https://jenkins.example.com').",
			query.FieldHostname, env.Creds.Hostname),
		{
			Title:    "Clear job cache",
			Subtitle: jobCacheSubtitle(ctx, env),
			Valid:    true,
			Arg:      query.ClearJobCacheAction().String(),
		},
	}
}

func settingItem(title, desc string, field query.Field, current string) Item {
	if current == "" {
		current = "not set"
	}
	return Item{
		Title:        title,
		Subtitle:     fmt.Sprintf("%s Current: %s", desc, current),
		Autocomplete: query.Join([]string{field.Keyword(), ""}, query.MenuDelimiter),
		Flow:         FlowSettings,
	}
}

func jobCacheSubtitle(ctx context.Context, env *Env) string {
	const base = "Forget the cached job list so it is fetched again."
	if env.Cache == nil {
		return base
	}
	age, ok, err := env.Cache.Age(ctx, cache.JobsKey)
	if err != nil {
		env.logger().Warn("job cache age", "error", err)
		return base
	}
	if !ok {
		return base + " No jobs cached."
	}
	now := env.now()
	return fmt.Sprintf("%s Last fetched %s.", base, humanize.RelTime(now.Add(-age), now, "ago", "from now"))
}

func usernameMenu(_ context.Context, _ *Env, s query.SettingsState) []Item {
	if s.Value == "" {
		return []Item{{
			Title:    "Set your Jenkins username.",
			Subtitle: "Whatever you normally use to sign into your Jenkins instance.",
		}}
	}
	return []Item{{
		Title:    fmt.Sprintf("Set username to %q.", s.Value),
		Subtitle: "Press enter to save.",
		Valid:    true,
		Arg:      query.SettingAction(query.FieldUsername, s.Value).String(),
	}}
}

func apiKeyMenu(_ context.Context, _ *Env, s query.SettingsState) []Item {
	if s.Value == "" {
		return []Item{{
			Title:    "Set your Jenkins API key.",
			Subtitle: "Create one under your user's Configure page in Jenkins.",
		}}
	}
	return []Item{{
		Title:    fmt.Sprintf("Set API key to %s.", settings.MaskSecret(s.Value)),
		Subtitle: "Press enter to save it in the system keyring.",
		Valid:    true,
		Arg:      query.SettingAction(query.FieldAPIKey, s.Value).String(),
	}}
}

func hostnameMenu(_ context.Context, _ *Env, s query.SettingsState) []Item {
	if s.Value == "" {
		return []Item{{
			Title:    "Set your Jenkins hostname.",
			Subtitle: "The base URL of your Jenkins instance, e.g. https://jenkins.example.com.",
		}}
	}
	if !validHostname(s.Value) {
		return []Item{{
			Title:    fmt.Sprintf("%q is not a valid hostname.", s.Value),
			Subtitle: "Use a full http or https URL, e.g. https://jenkins.example.com.",
			Icon:     IconWarning,
		}}
	}
	return []Item{{
		Title:    fmt.Sprintf("Set hostname to %q.", s.Value),
		Subtitle: "Press enter to save.",
		Valid:    true,
		Arg:      query.SettingAction(query.FieldHostname, s.Value).String(),
	}}
}

func validHostname(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

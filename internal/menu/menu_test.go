package menu

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/jenky/internal/cache"
	"github.com/five82/jenky/internal/jenkins"
	"github.com/five82/jenky/internal/query"
	"github.com/five82/jenky/internal/refresh"
	"github.com/five82/jenky/internal/settings"
)

type fakeJenkins struct {
	mu         sync.Mutex
	jobs       []jenkins.Job
	params     map[string][]jenkins.ParameterDefinition
	history    map[string][]jenkins.Build
	jobCalls   int
	paramCalls int
}

var _ jenkins.API = (*fakeJenkins)(nil)

func (f *fakeJenkins) GetJobs(context.Context) ([]jenkins.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobCalls++
	return f.jobs, nil
}

func (f *fakeJenkins) GetJobInfo(_ context.Context, name string) (jenkins.JobInfo, error) {
	return jenkins.JobInfo{Name: name}, nil
}

func (f *fakeJenkins) GetJobParameters(_ context.Context, name string) ([]jenkins.ParameterDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paramCalls++
	defs, ok := f.params[name]
	if !ok {
		return nil, jenkins.ErrNotFound
	}
	return defs, nil
}

func (f *fakeJenkins) BuildJob(context.Context, string, map[string]any, string) (string, error) {
	return "", nil
}

func (f *fakeJenkins) GetBuildHistory(_ context.Context, name string) ([]jenkins.Build, error) {
	builds, ok := f.history[name]
	if !ok {
		return nil, &jenkins.Error{Op: "build history", Kind: jenkins.KindNotFound, StatusCode: 404}
	}
	return builds, nil
}

type launchRecorder struct {
	launched []refresh.Request
	running  map[string]bool
}

func (r *launchRecorder) Running(_ context.Context, key string) bool { return r.running[key] }

func (r *launchRecorder) Launch(_ context.Context, req refresh.Request) error {
	r.launched = append(r.launched, req)
	r.running[req.Key()] = true
	return nil
}

type testEnv struct {
	*Env
	api   *fakeJenkins
	cache *cache.Cache
	clock time.Time
}

func (e *testEnv) advance(d time.Duration) { e.clock = e.clock.Add(d) }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	te := &testEnv{
		api: &fakeJenkins{
			jobs: []jenkins.Job{
				{Name: "deploy", URL: "https://ci.example.com/job/deploy/", Color: "blue"},
				{Name: "build-docs", URL: "https://ci.example.com/job/build-docs/", Color: "red_anime"},
				{Name: "release", URL: "https://ci.example.com/job/release/", Color: "notbuilt"},
			},
			params: map[string][]jenkins.ParameterDefinition{
				"deploy": {
					{Name: "ENV", Type: jenkins.TypeChoice, Description: "Target environment", Choices: []string{"a", "b", "c"},
						DefaultParameterValue: &jenkins.ParameterValue{Name: "ENV", Value: "a"}},
					{Name: "X", Type: jenkins.TypeBoolean,
						DefaultParameterValue: &jenkins.ParameterValue{Name: "X", Value: false}},
					{Name: "TOKEN", Type: jenkins.TypePassword},
					{Name: "TAG", Type: jenkins.TypeString},
					{Name: "FILE", Type: "FileParameterDefinition"},
				},
			},
			history: map[string][]jenkins.Build{
				"deploy": {
					{Name: "deploy #12", URL: "https://ci.example.com/job/deploy/12/", Parameters: []jenkins.ParameterValue{
						{Name: "ENV", Value: "b"},
						{Name: "X", Value: false},
						{Name: "TOKEN", Value: nil},
					}},
					{Name: "deploy #11", URL: "https://ci.example.com/job/deploy/11/"},
				},
			},
		},
		clock: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), cache.WithClock(func() time.Time { return te.clock }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	te.cache = c
	te.Env = &Env{
		Creds:         settings.Credentials{Username: "alice", APIKey: "secret-1234", Hostname: "https://ci.example.com"},
		Jenkins:       te.api,
		Cache:         c,
		MinScore:      -50,
		ParamsMaxAge:  24 * time.Hour,
		HistoryMaxAge: 2 * time.Minute,
		Now:           func() time.Time { return te.clock },
	}
	return te
}

func (e *testEnv) cacheParams(t *testing.T, job string) {
	t.Helper()
	require.NoError(t, e.cache.Set(context.Background(), cache.ParamsKey(job), e.api.params[job]))
}

func titles(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func TestRegistryFirstMatchAndFallback(t *testing.T) {
	reg := Registry[int]{
		{Name: "positive", Match: func(n int) bool { return n > 0 }, Build: func(context.Context, *Env, int) []Item {
			return []Item{{Title: "positive"}}
		}},
		{Name: "big", Match: func(n int) bool { return n > 10 }, Build: func(context.Context, *Env, int) []Item {
			return []Item{{Title: "big"}}
		}},
	}
	route, ok := reg.Resolve(20)
	require.True(t, ok)
	assert.Equal(t, "positive", route.Name)

	items := reg.Render(context.Background(), &Env{}, -1)
	require.Len(t, items, 1)
	assert.Equal(t, "Could not get appropriate menu.", items[0].Title)
	assert.Equal(t, IconWarning, items[0].Icon)
	assert.False(t, items[0].Valid)
}

func TestMainFlowUnconfigured(t *testing.T) {
	te := newTestEnv(t)
	te.Creds = settings.Credentials{Username: "alice"}

	for _, q := range []string{"", "s", "deploy"} {
		items := MainFlow(context.Background(), te.Env, q)
		require.Len(t, items, 2, q)
		assert.Equal(t, "Welcome to Jenky!", items[0].Title)
		assert.Equal(t, "Missing api key, hostname.", items[0].Subtitle)
		assert.Equal(t, query.SettingsMenuArg, items[1].Arg)
		assert.True(t, items[1].Valid)
		assert.Equal(t, IconSettings, items[1].Icon)
	}
}

func TestMainFlowSettingsShortcut(t *testing.T) {
	te := newTestEnv(t)
	items := MainFlow(context.Background(), te.Env, " s ")

	require.Len(t, items, 5)
	assert.Equal(t, "Welcome to the Settings menu.", items[0].Title)
	assert.Equal(t, "Username | ", items[1].Autocomplete)
	assert.Equal(t, FlowSettings, items[1].Flow)
	assert.Contains(t, items[1].Subtitle, "alice")
	assert.Contains(t, items[2].Subtitle, "•••••••1234")
	assert.NotContains(t, items[2].Subtitle, "secret")
	assert.Equal(t, "API Key | ", items[2].Autocomplete)
	assert.Equal(t, "Hostname | ", items[3].Autocomplete)
	assert.Equal(t, "jenky_action:clear_job_cache", items[4].Arg)
	assert.Contains(t, items[4].Subtitle, "No jobs cached.")
}

func TestMainFlowJobsFilteredAndCached(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	items := MainFlow(ctx, te.Env, "")
	assert.Equal(t, []string{"deploy", "build-docs", "release"}, titles(items))
	assert.Equal(t, "failing, building · https://ci.example.com/job/build-docs/", items[1].Subtitle)

	items = MainFlow(ctx, te.Env, "dep")
	require.Len(t, items, 1)
	assert.Equal(t, "deploy", items[0].Title)
	assert.Equal(t, "deploy", items[0].Autocomplete)
	assert.Equal(t, FlowBuild, items[0].Flow)
	assert.Equal(t, "jenky_action:open:https://ci.example.com/job/deploy/", items[0].Arg)
	assert.True(t, items[0].Valid)

	items = MainFlow(ctx, te.Env, "zzzz")
	require.Len(t, items, 1)
	assert.Equal(t, `No jobs found matching "zzzz".`, items[0].Title)

	assert.Equal(t, 1, te.api.jobCalls, "job list must come from the cache after the first fetch")

	te.advance(30 * 24 * time.Hour)
	MainFlow(ctx, te.Env, "")
	assert.Equal(t, 1, te.api.jobCalls, "job list never expires")

	items = SettingsFlow(ctx, te.Env, "")
	assert.Contains(t, items[4].Subtitle, "Last fetched")
}

func TestSettingsFlowEditors(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	items := SettingsFlow(ctx, te.Env, "Username | bob")
	require.Len(t, items, 1)
	assert.True(t, items[0].Valid)
	assert.Equal(t, "jenky_setting:username:bob", items[0].Arg)

	items = SettingsFlow(ctx, te.Env, "Username | ")
	require.Len(t, items, 1)
	assert.False(t, items[0].Valid)

	items = SettingsFlow(ctx, te.Env, "API Key | abcdefgh")
	require.Len(t, items, 1)
	assert.Equal(t, "Set API key to ••••efgh.", items[0].Title)
	assert.Equal(t, "jenky_setting:api_key:abcdefgh", items[0].Arg)

	items = SettingsFlow(ctx, te.Env, "Hostname | ftp://ci")
	require.Len(t, items, 1)
	assert.False(t, items[0].Valid)
	assert.Equal(t, IconWarning, items[0].Icon)

	items = SettingsFlow(ctx, te.Env, "Hostname | https://ci.example.com")
	require.Len(t, items, 1)
	assert.Equal(t, "jenky_setting:hostname:https://ci.example.com", items[0].Arg)
}

func TestBuildFlowEmptyAndMalformed(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	items := BuildFlow(ctx, te.Env, "")
	require.Len(t, items, 1)
	assert.Equal(t, "No job name given.", items[0].Title)
	assert.Equal(t, IconError, items[0].Icon)

	items = BuildFlow(ctx, te.Env, "deploy | Set Param | ")
	require.Len(t, items, 1)
	assert.Equal(t, "Malformed query.", items[0].Title)
	assert.False(t, items[0].Valid)
}

func TestBuildFlowUnconfigured(t *testing.T) {
	te := newTestEnv(t)
	te.Creds = settings.Credentials{}
	items := BuildFlow(context.Background(), te.Env, "deploy | Build | ")
	require.Len(t, items, 2)
	assert.Equal(t, query.SettingsMenuArg, items[1].Arg)
}

func TestInitialBuildMenu(t *testing.T) {
	te := newTestEnv(t)
	for _, q := range []string{"deploy", "https://ci.example.com/job/deploy/"} {
		items := BuildFlow(context.Background(), te.Env, q)
		require.Len(t, items, 2, q)
		assert.Equal(t, "Build deploy job.", items[0].Title)
		assert.Equal(t, "deploy | Build | ", items[0].Autocomplete)
		assert.Equal(t, "Build History.", items[1].Title)
		assert.Equal(t, "deploy | Build History | ", items[1].Autocomplete)
	}
}

func TestBuildJobShowsDefaultsAndChosenValues(t *testing.T) {
	te := newTestEnv(t)
	te.cacheParams(t, "deploy")

	items := BuildFlow(context.Background(), te.Env, "deploy | Build | ")
	require.Len(t, items, 6)
	assert.Equal(t, "Build deploy", items[0].Title)
	assert.Equal(t, "jenky_action:build:deploy::params", items[0].Arg)
	assert.True(t, items[0].Valid)
	assert.Equal(t, "ENV (a)", items[1].Title)
	assert.Equal(t, "Choice Parameter: Target environment", items[1].Subtitle)
	assert.Equal(t, "deploy | Set Param | ENV | ", items[1].Autocomplete)
	assert.Equal(t, "X (false)", items[2].Title)
	assert.Equal(t, "TOKEN (No default)", items[3].Title)
	assert.Equal(t, "Password Parameter: No description available.", items[3].Subtitle)
	assert.Equal(t, 0, te.api.paramCalls, "fresh cache must not be refetched")

	items = BuildFlow(context.Background(), te.Env, "deploy | params::X::jenkybooltrue::TOKEN::hunter2 | Build | ")
	assert.Equal(t, "jenky_action:build:deploy::params::X::jenkybooltrue::TOKEN::hunter2", items[0].Arg)
	assert.Equal(t, "X (true)", items[2].Title)
	assert.Equal(t, "TOKEN (••••••••)", items[3].Title)
	assert.Equal(t, "deploy | params::X::jenkybooltrue::TOKEN::hunter2 | Set Param | X | ", items[2].Autocomplete)
}

func TestBuildJobFilterHidesBuildItem(t *testing.T) {
	te := newTestEnv(t)
	te.cacheParams(t, "deploy")

	items := BuildFlow(context.Background(), te.Env, "deploy | Build | ENV")
	require.Len(t, items, 1)
	assert.Equal(t, "ENV (a)", items[0].Title)
}

func TestBuildJobFetchesMissingParamsWithoutCoordinator(t *testing.T) {
	te := newTestEnv(t)
	items := BuildFlow(context.Background(), te.Env, "deploy | Build | ")
	assert.Len(t, items, 6)
	assert.Equal(t, 1, te.api.paramCalls)
}

func TestBuildJobStaleParamsLaunchesOneRefresh(t *testing.T) {
	te := newTestEnv(t)
	te.cacheParams(t, "deploy")
	te.advance(25 * time.Hour)

	runner := &launchRecorder{running: map[string]bool{}}
	te.Refresh = refresh.NewCoordinator(te.cache, runner, nil)

	items := BuildFlow(context.Background(), te.Env, "deploy | Build | ")
	require.Len(t, runner.launched, 1)
	assert.Equal(t, "deploy", runner.launched[0].Job)
	assert.Equal(t, "Updating parameter options...", items[0].Title)
	assert.Equal(t, IconInfo, items[0].Icon)
	assert.Equal(t, "Build deploy", items[1].Title)
	assert.Equal(t, "ENV (a)", items[2].Title, "stale data is still shown")

	BuildFlow(context.Background(), te.Env, "deploy | Build | ")
	assert.Len(t, runner.launched, 1, "a running refresh must not be launched again")
	assert.Equal(t, 0, te.api.paramCalls)
}

func TestSetParamBooleanRoundTrip(t *testing.T) {
	te := newTestEnv(t)
	te.cacheParams(t, "deploy")

	items := BuildFlow(context.Background(), te.Env, "deploy | Set Param | X | ")
	assert.Equal(t, []string{"Choose a boolean for X (false).", "True", "False", "Cancel parameter set."}, titles(items))

	next := items[1].Autocomplete
	assert.Equal(t, "deploy | params::X::jenkybooltrue | Build | ", next)
	parts := query.Split(next, query.MenuDelimiter)
	raw := query.ParseParams(query.Split(parts[1], query.ParamDelimiter))
	assert.Equal(t, map[string]string{"X": query.BoolTrue}, raw)

	state, err := query.Parse(next)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"X": true}, state.Params.Values())

	items = BuildFlow(context.Background(), te.Env, next)
	assert.Equal(t, "X (true)", items[2].Title)
}

func TestSetParamChoice(t *testing.T) {
	te := newTestEnv(t)
	te.cacheParams(t, "deploy")

	items := BuildFlow(context.Background(), te.Env, "deploy | params::TAG::v1 | Set Param | ENV | ")
	require.Len(t, items, 5)
	assert.Equal(t, "Choose a value for ENV (a).", items[0].Title)
	assert.Equal(t, "deploy | params::TAG::v1::ENV::a | Build | ", items[0].Autocomplete)
	assert.Equal(t, []string{"a", "b", "c"}, titles(items[1:4]))
	assert.Equal(t, "deploy | params::TAG::v1::ENV::c | Build | ", items[3].Autocomplete)
	assert.Equal(t, "Cancel parameter set.", items[4].Title)
	assert.Equal(t, "deploy | params::TAG::v1 | Build | ", items[4].Autocomplete)
}

func TestSetParamStringUsesTypedInput(t *testing.T) {
	te := newTestEnv(t)
	te.cacheParams(t, "deploy")

	items := BuildFlow(context.Background(), te.Env, "deploy | params::TAG::v1 | Set Param | TAG | v2")
	require.Len(t, items, 2)
	assert.Equal(t, "Type in your value for TAG (v1).", items[0].Title)
	assert.Equal(t, "deploy | params::TAG::v2 | Build | ", items[0].Autocomplete)

	items = BuildFlow(context.Background(), te.Env, "deploy | params::TAG::v1 | Set Param | TAG | ")
	assert.Equal(t, "deploy | params::TAG::v1 | Build | ", items[0].Autocomplete)
}

func TestSetParamRejectsDelimiterInput(t *testing.T) {
	te := newTestEnv(t)
	te.cacheParams(t, "deploy")
	ctx := context.Background()

	for _, q := range []string{
		"deploy | params::ENV::b | Set Param | TAG | a::b",
		"deploy | params::ENV::b | Set Param | TAG | a | b",
		"deploy | params::ENV::b | Set Param | TOKEN | x::y",
	} {
		items := BuildFlow(ctx, te.Env, q)
		require.Len(t, items, 2, q)
		assert.Equal(t, IconWarning, items[0].Icon, q)
		assert.Empty(t, items[0].Autocomplete, q)
		assert.False(t, items[0].Valid, q)
		assert.Equal(t, "deploy | params::ENV::b | Build | ", items[1].Autocomplete, q)
	}

	items := BuildFlow(ctx, te.Env, "deploy | params::ENV::b | Set Param | TAG | a-b")
	next := items[0].Autocomplete
	assert.Equal(t, "deploy | params::ENV::b::TAG::a-b | Build | ", next)
	state, err := query.Parse(next)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ENV": "b", "TAG": "a-b"}, state.Params.Values())
}

func TestSetParamChoiceWithDelimiterIsNotSelectable(t *testing.T) {
	te := newTestEnv(t)
	te.api.params["deploy"][0].Choices = []string{"a", "host::1"}
	te.cacheParams(t, "deploy")

	items := BuildFlow(context.Background(), te.Env, "deploy | Set Param | ENV | ")
	require.Len(t, items, 4)
	assert.Equal(t, "deploy | params::ENV::a | Build | ", items[1].Autocomplete)
	assert.Equal(t, "host::1", items[2].Title)
	assert.Equal(t, IconWarning, items[2].Icon)
	assert.Empty(t, items[2].Autocomplete)
}

func TestSetParamUnknownTypeAndName(t *testing.T) {
	te := newTestEnv(t)
	te.cacheParams(t, "deploy")

	items := BuildFlow(context.Background(), te.Env, "deploy | Set Param | FILE | ")
	require.Len(t, items, 2)
	assert.Equal(t, IconError, items[0].Icon)
	assert.Contains(t, items[0].Title, "Unknown parameter type")

	items = BuildFlow(context.Background(), te.Env, "deploy | Set Param | NOPE | ")
	require.Len(t, items, 2)
	assert.Equal(t, `Unknown parameter "NOPE".`, items[0].Title)
	assert.Equal(t, "deploy | Build | ", items[1].Autocomplete)
}

func TestBuildHistory(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	items := BuildFlow(ctx, te.Env, "deploy | Build History | ")
	require.Len(t, items, 2)
	assert.Equal(t, "#12", items[0].Title)
	assert.Equal(t, "ENV:b, X:false, TOKEN:", items[0].Subtitle)
	assert.Equal(t, "deploy | params::ENV::b::X::jenkyboolfalse | Build | ", items[0].Autocomplete)
	assert.Equal(t, "jenky_action:open:https://ci.example.com/job/deploy/12/", items[0].Arg)
	assert.Equal(t, "deploy | Build | ", items[1].Autocomplete)

	state, err := query.Parse(items[0].Autocomplete)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ENV": "b", "X": false}, state.Params.Values())

	items = BuildFlow(ctx, te.Env, "deploy | Build History | zzz")
	require.Len(t, items, 1)
	assert.Equal(t, `No recent builds that match "zzz".`, items[0].Title)

	items = BuildFlow(ctx, te.Env, "ghost | Build History | ")
	require.Len(t, items, 1)
	assert.Equal(t, IconError, items[0].Icon)
	assert.Equal(t, `"ghost" job could not be found.`, items[0].Title)
}

func TestBuildHistorySkipsDelimiterValues(t *testing.T) {
	te := newTestEnv(t)
	te.api.history["deploy"] = []jenkins.Build{
		{Name: "deploy #13", URL: "https://ci.example.com/job/deploy/13/", Parameters: []jenkins.ParameterValue{
			{Name: "ENV", Value: "b"},
			{Name: "TAG", Value: "::1"},
			{Name: "NOTE", Value: "a | b"},
		}},
	}

	items := BuildFlow(context.Background(), te.Env, "deploy | Build History | ")
	require.Len(t, items, 1)
	next := items[0].Autocomplete
	assert.Equal(t, "deploy | params::ENV::b | Build | ", next)

	state, err := query.Parse(next)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ENV": "b"}, state.Params.Values())
}

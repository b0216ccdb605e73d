package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/five82/jenky/internal/settings"
)

type memSecrets struct {
	mu      sync.Mutex
	secrets map[string]string
}

func (m *memSecrets) Get(account string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.secrets[account]
	if !ok {
		return "", settings.ErrSecretNotFound
	}
	return s, nil
}

func (m *memSecrets) Set(account, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.secrets == nil {
		m.secrets = map[string]string{}
	}
	m.secrets[account] = secret
	return nil
}

type env struct {
	dir     string
	config  string
	secrets *memSecrets
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("data_dir = %q\n", filepath.Join(dir, "data"))
	if err := os.WriteFile(config, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env{dir: dir, config: config, secrets: &memSecrets{}}
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := &cli{secrets: e.secrets}
	root := c.rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	full := append([]string{"--config", e.config, "--settings", filepath.Join(e.dir, "settings.toml")}, args...)
	root.SetArgs(full)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestJobs_UnconfiguredJSON(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "jobs", "--format", "json")
	if err != nil {
		t.Fatalf("jobs returned error: %v", err)
	}
	var doc struct {
		Items []struct {
			Title string `json:"title"`
			Arg   string `json:"arg"`
			Valid bool   `json:"valid"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(doc.Items) != 2 || doc.Items[0].Title != "Welcome to Jenky!" {
		t.Fatalf("items = %+v, want welcome menu", doc.Items)
	}
	if doc.Items[1].Arg != "jenky-settings" || !doc.Items[1].Valid {
		t.Fatalf("second item = %+v, want settings action", doc.Items[1])
	}
}

func TestAction_SavesSettings(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "action", "jenky_setting:username:alice")
	if err != nil {
		t.Fatalf("action returned error: %v", err)
	}
	if strings.TrimSpace(out) != `Username set as "alice".` {
		t.Fatalf("output = %q", out)
	}
	s, err := settings.Load(filepath.Join(e.dir, "settings.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Username != "alice" {
		t.Fatalf("Username = %q, want alice", s.Username)
	}
}

func TestAction_SettingsMenuRendersItems(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "action", "jenky-settings")
	if err != nil {
		t.Fatalf("action returned error: %v", err)
	}
	if !strings.Contains(out, "Set Username") || !strings.Contains(out, "Clear job cache") {
		t.Fatalf("output missing settings items:\n%s", out)
	}
}

func TestAction_BuildWithoutCredentialsFails(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "action", "jenky_action:build:deploy::params")
	if err == nil || !strings.HasPrefix(err.Error(), "Build Failed:") {
		t.Fatalf("err = %v, want a Build Failed error", err)
	}
}

func TestAction_Malformed(t *testing.T) {
	e := newEnv(t)
	if _, err := e.run(t, "action", "nonsense"); err == nil {
		t.Fatal("action should reject unknown action strings")
	}
}

func TestSettings_EditorQuery(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "settings", "Hostname", "|", "https://ci.example.com")
	if err != nil {
		t.Fatalf("settings returned error: %v", err)
	}
	if !strings.Contains(out, "jenky_setting:hostname:https://ci.example.com") {
		t.Fatalf("output missing hostname action:\n%s", out)
	}
}

func TestRefresh_RequiresParams(t *testing.T) {
	e := newEnv(t)
	if _, err := e.run(t, "refresh"); err == nil {
		t.Fatal("refresh without --params should fail")
	}
}

func TestLog_FiltersByLevel(t *testing.T) {
	e := newEnv(t)
	logPath := filepath.Join(e.dir, "data", "jenky.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	lines := strings.Join([]string{
		`time=2026-10-17T10:00:00Z level=DEBUG msg="cache hit" key=jobs`,
		`time=2026-10-17T10:00:01Z level=WARN msg="refresh failed" task=update_job_params_deploy`,
	}, "\n") + "\n"
	if err := os.WriteFile(logPath, []byte(lines), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, err := e.run(t, "log", "--level", "warn")
	if err != nil {
		t.Fatalf("log returned error: %v", err)
	}
	if strings.Contains(out, "cache hit") || !strings.Contains(out, "refresh failed") {
		t.Fatalf("log output = %q, want only the warning", out)
	}
}

func TestUnknownFormat(t *testing.T) {
	e := newEnv(t)
	if _, err := e.run(t, "jobs", "--format", "yaml"); err == nil {
		t.Fatal("unknown format should fail")
	}
}

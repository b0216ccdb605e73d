package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if s.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", s.Theme, defaultTheme)
	}
	if s.Username != "" || s.Hostname != "" {
		t.Fatalf("Settings = %#v, want empty credentials", s)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "jenky")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	body := "username = \" alice \"\nhostname = \"https://ci.example.com\"\ntheme = \"Slate\"\n"
	if err := os.WriteFile(filepath.Join(dir, "settings.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if s.Username != "alice" {
		t.Fatalf("Username = %q, want alice", s.Username)
	}
	if s.Hostname != "https://ci.example.com" {
		t.Fatalf("Hostname = %q", s.Hostname)
	}
	if s.Theme != "Slate" {
		t.Fatalf("Theme = %q, want Slate", s.Theme)
	}
}

func TestLoad_InvalidTOMLReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte("username = ["), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if s.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want default on error", s.Theme)
	}
}

func TestUpdate_CreatesDirectoriesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "settings.toml")

	if _, err := Update(path, func(s *Settings) { s.Username = "bob" }); err != nil {
		t.Fatalf("Update username: %v", err)
	}
	if _, err := Update(path, func(s *Settings) { s.Hostname = "https://jenkins.local" }); err != nil {
		t.Fatalf("Update hostname: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if s.Username != "bob" || s.Hostname != "https://jenkins.local" {
		t.Fatalf("Settings = %#v, want both fields persisted", s)
	}
}

func TestLoadCredentials_UsesKeyring(t *testing.T) {
	keyring.MockInit()
	secrets := NewKeyring()

	creds, err := LoadCredentials(Settings{Username: "alice", Hostname: "https://ci"}, secrets)
	if err != nil {
		t.Fatalf("LoadCredentials returned error: %v", err)
	}
	if creds.Complete() {
		t.Fatalf("Complete = true without api key")
	}
	if got := creds.Missing(); len(got) != 1 || got[0] != "api key" {
		t.Fatalf("Missing = %v, want [api key]", got)
	}

	if err := SaveAPIKey(secrets, " secret-token "); err != nil {
		t.Fatalf("SaveAPIKey: %v", err)
	}
	creds, err = LoadCredentials(Settings{Username: "alice", Hostname: "https://ci"}, secrets)
	if err != nil {
		t.Fatalf("LoadCredentials returned error: %v", err)
	}
	if !creds.Complete() || creds.APIKey != "secret-token" {
		t.Fatalf("Credentials = %#v, want complete with trimmed key", creds)
	}
}

func TestKeyring_GetMissingReturnsSentinel(t *testing.T) {
	keyring.MockInit()
	_, err := Keyring{Service: "jenky-test"}.Get("nobody")
	if !errors.Is(err, ErrSecretNotFound) {
		t.Fatalf("Get error = %v, want ErrSecretNotFound", err)
	}
}

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"abc":        "•••",
		"abcdefgh12": "••••••gh12",
	}
	for in, want := range cases {
		if got := MaskSecret(in); got != want {
			t.Fatalf("MaskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

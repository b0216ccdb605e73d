package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/jenky/internal/menu"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("Unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(Unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestThemesCoverJobStatuses(t *testing.T) {
	statuses := []string{"passing", "failing", "unstable", "aborted", "disabled", "not built", "unknown", "building"}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, status := range statuses {
			if th.StatusColors[status] == "" {
				t.Errorf("theme %s has no color for %q", name, status)
			}
		}
	}
}

func TestStatusStyle_Building(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()

	got := styles.StatusStyle("failing, building").GetBackground()
	want := styles.StatusStyle("building").GetBackground()
	if got != want {
		t.Fatalf("building background = %v, want %v", got, want)
	}
	if !styles.HasStatus("failing, building") || !styles.HasStatus("not built") {
		t.Fatal("HasStatus should accept known statuses")
	}
	if styles.HasStatus("http://jenkins/job/a/") {
		t.Fatal("HasStatus should reject non-status text")
	}
}

func TestIconStyle(t *testing.T) {
	styles := GetTheme("Kanagawa").Styles()
	if got, want := styles.IconStyle(menu.IconError).GetForeground(), styles.DangerText.GetForeground(); got != want {
		t.Fatalf("error icon foreground = %v, want %v", got, want)
	}
	if got, want := styles.IconStyle(menu.IconNone).GetForeground(), styles.Text.GetForeground(); got != want {
		t.Fatalf("plain foreground = %v, want %v", got, want)
	}
}

func TestThemesDefineComponentColors(t *testing.T) {
	for _, name := range ThemeNames() {
		theme := GetTheme(name)
		if theme.Border == "" || theme.BorderFocus == "" || theme.Surface == "" || theme.SelectionBg == "" {
			t.Errorf("theme %s is missing component colors: %+v", name, theme)
		}
		styles := theme.Styles()
		if styles.Modal.GetBorderStyle() != lipgloss.RoundedBorder() {
			t.Errorf("theme %s modal border is not rounded", name)
		}
		if got := styles.Modal.GetBorderTopForeground(); got != lipgloss.Color(theme.BorderFocus) {
			t.Errorf("theme %s modal border color = %v, want %s", name, got, theme.BorderFocus)
		}
	}
}

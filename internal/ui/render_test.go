package ui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/five82/jenky/internal/menu"
)

func sampleItems() []menu.Item {
	return []menu.Item{
		{UID: "deploy", Title: "deploy", Subtitle: "passing · http://jenkins/job/deploy/", Arg: "jenky_action:open:http://jenkins/job/deploy/", Valid: true, Autocomplete: "deploy", Flow: menu.FlowBuild},
		{Title: "Build History.", Autocomplete: "deploy | Build History | "},
		{Title: "Malformed query.", Subtitle: "unknown keyword", Icon: menu.IconError},
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, sampleItems()); err != nil {
		t.Fatalf("RenderJSON returned error: %v", err)
	}

	var doc struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(doc.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(doc.Items))
	}
	first := doc.Items[0]
	if first["uid"] != "deploy" || first["valid"] != true || first["arg"] != "jenky_action:open:http://jenkins/job/deploy/" {
		t.Fatalf("first item = %v", first)
	}
	if _, ok := first["Flow"]; ok {
		t.Fatal("flow must not be serialized")
	}
	if _, ok := doc.Items[1]["arg"]; ok {
		t.Fatal("empty arg should be omitted")
	}
	if doc.Items[2]["icon"] != "error" || doc.Items[2]["valid"] != false {
		t.Fatalf("third item = %v", doc.Items[2])
	}
}

func TestRenderJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, nil); err != nil {
		t.Fatalf("RenderJSON returned error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "{\n  \"items\": []\n}" {
		t.Fatalf("RenderJSON(nil) = %q", got)
	}
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, sampleItems(), GetTheme("Nightfox")); err != nil {
		t.Fatalf("RenderText returned error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Title",
		"deploy",
		"action: jenky_action:open:http://jenkins/job/deploy/",
		"deploy | Build History |",
		"Malformed query.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderText output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "yaml", sampleItems(), GetTheme("")); err == nil {
		t.Fatal("Render should reject unknown formats")
	}
	if err := Render(&buf, "JSON", sampleItems(), GetTheme("")); err != nil {
		t.Fatalf("Render(JSON) returned error: %v", err)
	}
}

func TestVisibleRange(t *testing.T) {
	tests := []struct {
		n, selected, limit int
		start, end         int
	}{
		{5, 0, 0, 0, 5},
		{5, 4, 10, 0, 5},
		{10, 0, 3, 0, 3},
		{10, 5, 3, 3, 6},
		{10, 9, 3, 7, 10},
	}
	for _, tt := range tests {
		start, end := visibleRange(tt.n, tt.selected, tt.limit)
		if start != tt.start || end != tt.end {
			t.Errorf("visibleRange(%d, %d, %d) = [%d, %d), want [%d, %d)", tt.n, tt.selected, tt.limit, start, end, tt.start, tt.end)
		}
	}
}

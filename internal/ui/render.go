package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/jenky/internal/menu"
)

// Output formats for one-shot commands.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Render writes items in format.
func Render(w io.Writer, format string, items []menu.Item, theme Theme) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return RenderText(w, items, theme)
	case FormatJSON:
		return RenderJSON(w, items)
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}

// RenderJSON writes {"items":[...]}.
func RenderJSON(w io.Writer, items []menu.Item) error {
	if items == nil {
		items = []menu.Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Items []menu.Item `json:"items"`
	}{items})
}

// RenderText writes items as a table. The last column is what to run next:
// the action for valid items, otherwise the autocomplete query.
func RenderText(w io.Writer, items []menu.Item, theme Theme) error {
	styles := theme.Styles()
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		rows = append(rows, []string{
			styles.FaintText.Render(fmt.Sprint(i + 1)),
			styles.IconStyle(item.Icon).Render(iconGlyph(item.Icon) + item.Title),
			renderSubtitle(styles, item.Subtitle),
			renderNext(styles, item),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Border))).
		Headers("#", "Title", "Subtitle", "Next").
		Rows(rows...)

	_, err := fmt.Fprintln(w, t)
	return err
}

func renderNext(styles Styles, item menu.Item) string {
	switch {
	case item.Valid && item.Arg != "":
		return styles.SuccessText.Render("action: " + item.Arg)
	case item.Autocomplete != "":
		prefix := ""
		if item.Flow != "" {
			prefix = string(item.Flow) + ": "
		}
		return styles.AccentText.Render(prefix + item.Autocomplete)
	default:
		return ""
	}
}

// renderSubtitle colors a leading job status ("failing · url").
func renderSubtitle(styles Styles, subtitle string) string {
	status, rest, ok := strings.Cut(subtitle, " · ")
	if !ok || !styles.HasStatus(status) {
		return styles.MutedText.Render(subtitle)
	}
	return styles.StatusStyle(status).Render(status) + " " + styles.MutedText.Render(rest)
}

func iconGlyph(icon menu.Icon) string {
	switch icon {
	case menu.IconError:
		return "✗ "
	case menu.IconWarning:
		return "! "
	case menu.IconInfo:
		return "i "
	case menu.IconSettings:
		return "⚙ "
	default:
		return ""
	}
}

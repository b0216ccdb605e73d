package ui

import (
	"strings"

	"github.com/five82/jenky/internal/menu"
)

// Lines used by everything but the item list: header, input, a blank,
// status and help.
const chromeLines = 5

var flowTitles = map[menu.Flow]string{
	menu.FlowMain:     "Jobs",
	menu.FlowSettings: "Settings",
	menu.FlowBuild:    "Build",
}

// renderMain renders the header, query input, items and footer.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderItems())
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.theme.Styles().Footer.Render(m.help.View(m.keys)))

	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{
		bg.Render("jenky", styles.Logo),
		bg.Render(flowTitles[m.flow], styles.AccentText),
		bg.Render(m.theme.Name, styles.FaintText),
	}
	line := bg.Space() + bg.Join(parts, " · ")
	if m.width > 0 {
		return bg.FillLine(line, m.width)
	}
	return line
}

func (m Model) renderItems() string {
	styles := m.theme.Styles()
	if !m.loaded && len(m.items) == 0 {
		return styles.MutedText.Render("Loading...") + "\n"
	}
	if len(m.items) == 0 {
		return styles.MutedText.Render("Nothing to show.") + "\n"
	}

	start, end := visibleRange(len(m.items), m.selected, m.visibleItems())
	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.renderItem(m.items[i], i == m.selected))
	}
	return b.String()
}

func (m Model) renderItem(item menu.Item, selected bool) string {
	styles := m.theme.Styles()
	marker := "  "
	if selected {
		marker = "▌ "
	}

	title := marker + iconGlyph(item.Icon) + item.Title
	if item.Valid {
		title += " ↵"
	}
	subtitle := "  " + item.Subtitle

	if selected {
		sel := NewBgStyle(m.theme.SelectionBg)
		title = sel.Render(title, styles.Selected.Bold(true))
		subtitle = sel.Render(subtitle, styles.Selected)
		if m.width > 0 {
			title = sel.FillLine(title, m.width)
			subtitle = sel.FillLine(subtitle, m.width)
		}
		return title + "\n" + subtitle + "\n"
	}
	return styles.IconStyle(item.Icon).Render(title) + "\n  " + renderSubtitle(styles, item.Subtitle) + "\n"
}

func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	switch {
	case m.status == "":
		return ""
	case m.statusFailed:
		return styles.DangerText.Render(m.status)
	default:
		return styles.SuccessText.Render(m.status)
	}
}

// visibleItems is how many two-line items fit; zero height shows all.
func (m Model) visibleItems() int {
	if m.height <= 0 {
		return 0
	}
	return max((m.height-chromeLines)/2, 1)
}

// visibleRange returns the window [start, end) of n items that keeps
// selected on screen. limit <= 0 means no limit.
func visibleRange(n, selected, limit int) (int, int) {
	if limit <= 0 || n <= limit {
		return 0, n
	}
	start := selected - limit + 1
	start = max(start, 0)
	start = min(start, n-limit)
	return start, start + limit
}

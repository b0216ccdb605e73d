package ui

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/five82/jenky/internal/logtail"
)

// FormatLogLines rewrites slog text lines for reading and colors them by
// level. Continuation lines keep the color of the entry they belong to.
func FormatLogLines(lines []string, theme Theme) []string {
	if len(lines) == 0 {
		return nil
	}
	styles := theme.Styles()
	out := make([]string, 0, len(lines))
	level := slog.LevelInfo
	for _, line := range lines {
		if l, ok := logtail.LineLevel(line); ok {
			level = l
		}
		style := styles.Text
		switch {
		case level >= slog.LevelError:
			style = styles.DangerText
		case level >= slog.LevelWarn:
			style = styles.WarningText
		case level < slog.LevelInfo:
			style = styles.FaintText
		}
		out = append(out, style.Render(formatLogLine(line)))
	}
	return out
}

// formatLogLine turns `time=... level=WARN msg="x" k=v` into
// "2006-01-02 15:04:05 WARN x – k=v" in local time. Other lines are
// returned unchanged.
func formatLogLine(line string) string {
	rest, ok := strings.CutPrefix(line, "time=")
	if !ok {
		return line
	}
	ts, rest, _ := strings.Cut(rest, " ")
	rest, ok = strings.CutPrefix(rest, "level=")
	if !ok {
		return line
	}
	level, rest, _ := strings.Cut(rest, " ")

	if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		ts = parsed.In(time.Local).Format("2006-01-02 15:04:05")
	}

	header := ts + " " + strings.ToUpper(level)
	rest, ok = strings.CutPrefix(rest, "msg=")
	if !ok {
		return strings.TrimSpace(header + " " + rest)
	}
	msg, attrs := cutValue(rest)
	header += " " + msg
	if attrs = strings.TrimSpace(attrs); attrs != "" {
		header += " – " + attrs
	}
	return header
}

// cutValue splits one slog text value, quoted or bare, from the rest.
func cutValue(s string) (value, rest string) {
	if strings.HasPrefix(s, `"`) {
		quoted, err := strconv.QuotedPrefix(s)
		if err == nil {
			if unquoted, err := strconv.Unquote(quoted); err == nil {
				return unquoted, s[len(quoted):]
			}
		}
	}
	value, rest, _ = strings.Cut(s, " ")
	return value, rest
}

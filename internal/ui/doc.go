// Package ui renders menu items for the terminal.
//
// # One-shot Output
//
// Render writes items either as a lipgloss table (RenderText) or as the
// launcher-style JSON document {"items":[...]} (RenderJSON). The text table's
// last column shows what to run next: the action string of a valid item, or
// the autocomplete query prefixed with its flow.
//
// # Interactive Mode
//
// Model is a Bubble Tea program that plays the launcher:
//
//   - a query input box whose value is the current query
//   - the item list for the current flow (jobs, settings or build)
//   - Tab autocompletes the selected item, switching flow when the item
//     names one
//   - Enter runs the selected item's action, or autocompletes when it has
//     none
//   - Esc returns to the jobs flow
//
// Items load off the update loop through Host and are re-requested every
// RefreshTick (2s by default), so the "Updating parameter options..." notice
// disappears once a background refresh has filled the cache. Results for a
// query the user has already left are dropped.
//
// # Themes
//
// Nightfox, Kanagawa and Slate are available. Ctrl+T cycles them and the
// choice is saved through Host.SaveTheme. Job statuses in subtitles are
// drawn as colored badges.
//
// # Log Output
//
// FormatLogLines reformats slog text lines for "jenky log" and colors them
// by level.
package ui

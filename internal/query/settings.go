package query

import "strings"

// Settings flow keywords.
const (
	KeywordUsername = "Username"
	KeywordAPIKey   = "API Key"
	KeywordHostname = "Hostname"
	// SettingsShortcut opens the settings menu from the main flow.
	SettingsShortcut = "s"
)

// Field names a configurable setting.
type Field string

const (
	FieldNone     Field = ""
	FieldUsername Field = "username"
	FieldAPIKey   Field = "api_key"
	FieldHostname Field = "hostname"
)

// Keyword returns the settings-flow keyword that opens the field's editor.
func (f Field) Keyword() string {
	switch f {
	case FieldUsername:
		return KeywordUsername
	case FieldAPIKey:
		return KeywordAPIKey
	case FieldHostname:
		return KeywordHostname
	default:
		return ""
	}
}

// SettingsState is a parsed settings-flow query such as "Username | alice".
type SettingsState struct {
	Field Field
	Value string
}

// ParseSettings parses a settings-flow query. Anything that does not start
// with a settings keyword is the settings overview.
func ParseSettings(q string) SettingsState {
	head, value, _ := strings.Cut(q, MenuDelimiter)
	var field Field
	switch strings.TrimSpace(head) {
	case KeywordUsername:
		field = FieldUsername
	case KeywordAPIKey:
		field = FieldAPIKey
	case KeywordHostname:
		field = FieldHostname
	default:
		return SettingsState{}
	}
	return SettingsState{Field: field, Value: strings.TrimSpace(value)}
}

// Encode renders s back into a settings-flow query.
func (s SettingsState) Encode() string {
	if s.Field == FieldNone {
		return ""
	}
	return Join([]string{s.Field.Keyword(), s.Value}, MenuDelimiter)
}

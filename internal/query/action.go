package query

import (
	"fmt"
	"strings"
)

// Action string prefixes.
const (
	settingPrefix = "jenky_setting:"
	actionPrefix  = "jenky_action:"

	// SettingsMenuArg asks the host to open the settings flow.
	SettingsMenuArg = "jenky-settings"

	clearJobCacheAction = "clear_job_cache"
	buildAction         = "build:"
	openAction          = "open:"
)

// ActionKind identifies a terminal action.
type ActionKind int

const (
	ActionSetting ActionKind = iota + 1
	ActionClearJobCache
	ActionBuild
	ActionOpen
	ActionSettingsMenu
)

// Action is a parsed terminal action string.
type Action struct {
	Kind ActionKind
	// Setting and Value are set for ActionSetting.
	Setting Field
	Value   string
	// Job and Params are set for ActionBuild.
	Job    string
	Params Params
	// URL is set for ActionOpen.
	URL string
}

// SettingAction returns the action that saves value into field.
func SettingAction(field Field, value string) Action {
	return Action{Kind: ActionSetting, Setting: field, Value: value}
}

// BuildAction returns the action that triggers a build of job.
func BuildAction(job string, params Params) Action {
	return Action{Kind: ActionBuild, Job: job, Params: params}
}

// OpenAction returns the action that opens url.
func OpenAction(url string) Action {
	return Action{Kind: ActionOpen, URL: url}
}

// ClearJobCacheAction returns the action that drops the cached job list.
func ClearJobCacheAction() Action {
	return Action{Kind: ActionClearJobCache}
}

// String renders a as an action string.
func (a Action) String() string {
	switch a.Kind {
	case ActionSetting:
		return settingPrefix + string(a.Setting) + ":" + a.Value
	case ActionClearJobCache:
		return actionPrefix + clearJobCacheAction
	case ActionBuild:
		return actionPrefix + buildAction + a.Job + ParamDelimiter + a.Params.Encode()
	case ActionOpen:
		return actionPrefix + openAction + a.URL
	case ActionSettingsMenu:
		return SettingsMenuArg
	default:
		return ""
	}
}

// ParseAction parses an action string. A build action with a broken params
// list is returned with empty Params alongside ErrMalformedParams.
func ParseAction(arg string) (Action, error) {
	arg = strings.TrimSpace(arg)
	switch {
	case arg == SettingsMenuArg:
		return Action{Kind: ActionSettingsMenu}, nil

	case strings.HasPrefix(arg, settingPrefix):
		rest := strings.TrimPrefix(arg, settingPrefix)
		name, value, ok := strings.Cut(rest, ":")
		if !ok {
			return Action{}, fmt.Errorf("%w: setting action %q has no value", ErrMalformedQuery, arg)
		}
		field := Field(name)
		switch field {
		case FieldUsername, FieldAPIKey, FieldHostname:
		default:
			return Action{}, fmt.Errorf("%w: unknown setting %q", ErrMalformedQuery, name)
		}
		return SettingAction(field, strings.TrimSpace(value)), nil

	case strings.HasPrefix(arg, actionPrefix):
		rest := strings.TrimPrefix(arg, actionPrefix)
		switch {
		case rest == clearJobCacheAction:
			return ClearJobCacheAction(), nil
		case strings.HasPrefix(rest, openAction):
			return OpenAction(strings.TrimPrefix(rest, openAction)), nil
		case strings.HasPrefix(rest, buildAction):
			return parseBuild(strings.TrimPrefix(rest, buildAction))
		}
	}
	return Action{}, fmt.Errorf("%w: unknown action %q", ErrMalformedQuery, arg)
}

func parseBuild(s string) (Action, error) {
	parts := Split(s, ParamDelimiter)
	job := parts[0]
	if job == "" {
		return Action{}, fmt.Errorf("%w: build action has no job name", ErrMalformedQuery)
	}
	params, err := decodeList(parts[1:])
	if err != nil {
		return BuildAction(job, nil), err
	}
	return BuildAction(job, params), nil
}

package jenkins

import (
	"fmt"
	"strings"
)

// Parameter definition classes understood by the build menus.
const (
	TypeString   = "StringParameterDefinition"
	TypeBoolean  = "BooleanParameterDefinition"
	TypeChoice   = "ChoiceParameterDefinition"
	TypePassword = "PasswordParameterDefinition"
)

var typeLabels = map[string]string{
	TypeBoolean:  "Boolean Parameter",
	TypeString:   "String Parameter",
	TypeChoice:   "Choice Parameter",
	TypePassword: "Password Parameter",
}

// TypeLabel returns a human label for a parameter definition type.
func TypeLabel(t string) string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	if t == "" {
		return "No type"
	}
	return t
}

// Job mirrors an entry of the jobs list in /api/json.
type Job struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Color string `json:"color"`
}

// Status turns the Jenkins ball color into a short status word.
func (j Job) Status() string {
	color := strings.TrimSpace(j.Color)
	building := strings.HasSuffix(color, "_anime")
	color = strings.TrimSuffix(color, "_anime")

	var status string
	switch color {
	case "blue", "green":
		status = "passing"
	case "red":
		status = "failing"
	case "yellow":
		status = "unstable"
	case "disabled", "grey":
		status = "disabled"
	case "aborted":
		status = "aborted"
	case "notbuilt":
		status = "not built"
	default:
		status = "unknown"
	}
	if building {
		return status + ", building"
	}
	return status
}

// ServerInfo mirrors the subset of /api/json jenky reads.
type ServerInfo struct {
	Jobs []Job `json:"jobs"`
}

// ParameterValue is a name/value pair. Value is a string or a bool depending on
// the parameter type.
type ParameterValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// ValueString renders Value for display and query encoding.
func (p ParameterValue) ValueString() string {
	switch v := p.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}

// ParameterDefinition describes one build parameter of a job.
type ParameterDefinition struct {
	Name                  string          `json:"name"`
	Type                  string          `json:"type"`
	Description           string          `json:"description"`
	DefaultParameterValue *ParameterValue `json:"defaultParameterValue,omitempty"`
	Choices               []string        `json:"choices,omitempty"`
}

// Default returns the default value, or nil when the job defines none.
func (p ParameterDefinition) Default() any {
	if p.DefaultParameterValue == nil {
		return nil
	}
	return p.DefaultParameterValue.Value
}

// action is one element of a job's or build's "actions" (or "property") array.
// Jenkins mixes unrelated shapes in these arrays; only the fields jenky needs are decoded.
type action struct {
	Class                string                `json:"_class"`
	ParameterDefinitions []ParameterDefinition `json:"parameterDefinitions"`
	Parameters           []ParameterValue      `json:"parameters"`
}

// JobInfo mirrors /job/<name>/api/json.
type JobInfo struct {
	Name        string   `json:"name"`
	FullName    string   `json:"fullName"`
	URL         string   `json:"url"`
	Color       string   `json:"color"`
	Description string   `json:"description"`
	Buildable   bool     `json:"buildable"`
	Actions     []action `json:"actions"`
	Property    []action `json:"property"`
}

// ParameterDefinitions returns the job's parameter definitions. Older Jenkins
// releases report them under actions, newer ones under property.
func (j JobInfo) ParameterDefinitions() []ParameterDefinition {
	for _, group := range [][]action{j.Actions, j.Property} {
		for _, a := range group {
			if a.ParameterDefinitions != nil {
				return a.ParameterDefinitions
			}
		}
	}
	return nil
}

// Build is one entry of a job's build history.
type Build struct {
	Name       string           `json:"name"`
	URL        string           `json:"url"`
	Parameters []ParameterValue `json:"parameters"`
}

// ShortName strips the leading job name from the build display name. Jobs
// in folders display as "team » deploy #12".
func (b Build) ShortName(job string) string {
	name := strings.TrimPrefix(b.Name, job+" ")
	if i := strings.LastIndex(name, folderSeparator); name == b.Name && i >= 0 {
		leaf := job[strings.LastIndex(job, "/")+1:]
		name = strings.TrimPrefix(name[i+len(folderSeparator):], leaf+" ")
	}
	if name == "" {
		return "No Build Name"
	}
	return name
}

// folderSeparator joins folder and job names in display names.
const folderSeparator = " » "

type buildHistory struct {
	Builds []struct {
		URL             string   `json:"url"`
		FullDisplayName string   `json:"fullDisplayName"`
		Actions         []action `json:"actions"`
	} `json:"builds"`
}

func (h buildHistory) records() []Build {
	out := make([]Build, 0, len(h.Builds))
	for _, b := range h.Builds {
		rec := Build{Name: b.FullDisplayName, URL: b.URL}
		for _, a := range b.Actions {
			if a.Parameters != nil {
				rec.Parameters = a.Parameters
				break
			}
		}
		out = append(out, rec)
	}
	return out
}

// crumb mirrors /crumbIssuer/api/json.
type crumb struct {
	Crumb             string `json:"crumb"`
	CrumbRequestField string `json:"crumbRequestField"`
}

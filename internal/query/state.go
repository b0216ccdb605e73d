package query

import (
	"fmt"
	"strings"
)

// Kind identifies a navigation state of the build flow.
type Kind int

const (
	KindEmpty Kind = iota
	KindJob
	KindBuild
	KindSetParam
	KindHistory
)

func (k Kind) String() string {
	switch k {
	case KindJob:
		return "job"
	case KindBuild:
		return "build"
	case KindSetParam:
		return "set-param"
	case KindHistory:
		return "history"
	default:
		return "empty"
	}
}

// State is a parsed build-flow query.
type State struct {
	Kind   Kind
	Job    string
	Params Params
	// Param is the parameter being edited in KindSetParam.
	Param string
	// Input is the free text after the keyword (and parameter name).
	Input string
}

// Parse parses a build-flow query. Structural violations return
// ErrMalformedQuery. A broken params part returns a usable State with empty
// Params together with ErrMalformedParams.
func Parse(q string) (State, error) {
	if strings.TrimSpace(q) == "" {
		return State{Kind: KindEmpty}, nil
	}
	parts := Split(q, MenuDelimiter)
	s := State{Job: parts[0]}
	if s.Job == "" {
		return State{}, fmt.Errorf("%w: missing job name in %q", ErrMalformedQuery, q)
	}

	rest := parts[1:]
	var paramsErr error
	hasParams := false
	if len(rest) > 0 && IsParamsPart(rest[0]) {
		hasParams = true
		s.Params, paramsErr = DecodeParams(rest[0])
		if paramsErr != nil {
			s.Params = nil
		}
		rest = rest[1:]
	}

	if len(rest) == 0 || (len(rest) == 1 && rest[0] == "") {
		s.Kind = KindJob
		if hasParams {
			s.Kind = KindBuild
		}
		return s, paramsErr
	}

	switch rest[0] {
	case KeywordHistory:
		s.Kind = KindHistory
		s.Input = Join(rest[1:], MenuDelimiter)
	case KeywordBuild:
		s.Kind = KindBuild
		s.Input = Join(rest[1:], MenuDelimiter)
	case KeywordSetParam:
		if len(rest) < 2 || rest[1] == "" {
			return State{}, fmt.Errorf("%w: %q has no parameter name", ErrMalformedQuery, q)
		}
		s.Kind = KindSetParam
		s.Param = rest[1]
		s.Input = Join(rest[2:], MenuDelimiter)
	default:
		return State{}, fmt.Errorf("%w: unknown keyword %q", ErrMalformedQuery, rest[0])
	}
	return s, paramsErr
}

// Encode renders s back into a query. States that take input end with a
// trailing delimiter so the user can keep typing.
func (s State) Encode() string {
	switch s.Kind {
	case KindEmpty:
		return ""
	case KindJob:
		return s.Job
	case KindHistory:
		return Join([]string{s.Job, KeywordHistory, s.Input}, MenuDelimiter)
	}

	parts := []string{s.Job}
	if len(s.Params) > 0 {
		parts = append(parts, s.Params.Encode())
	}
	switch s.Kind {
	case KindBuild:
		parts = append(parts, KeywordBuild, s.Input)
	case KindSetParam:
		parts = append(parts, KeywordSetParam, s.Param, s.Input)
	}
	return Join(parts, MenuDelimiter)
}

// BuildState returns the build menu state for job with params.
func BuildState(job string, params Params) State {
	return State{Kind: KindBuild, Job: job, Params: params}
}

// SetParamState returns the editor state for one parameter.
func SetParamState(job string, params Params, param string) State {
	return State{Kind: KindSetParam, Job: job, Params: params, Param: param}
}

// HistoryState returns the build history state for job.
func HistoryState(job string) State {
	return State{Kind: KindHistory, Job: job}
}

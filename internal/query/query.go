// Package query implements jenky's query micro-language.
//
// A query is the only navigation state carried between invocations. Its
// grammar, with parts separated by MenuDelimiter and surrounding whitespace
// ignored:
//
//	query    = job [ "|" params ] [ "|" keyword { "|" input } ]
//	params   = "params" { "::" name "::" value }
//	keyword  = "Build" | "Build History" | "Set Param" "|" name
//
// Boolean parameter values travel as the sentinels jenkybooltrue and
// jenkyboolfalse because the whole channel is text.
package query

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MenuDelimiter separates navigation stages.
	MenuDelimiter = "|"
	// ParamDelimiter separates name/value pairs inside a params part.
	ParamDelimiter = "::"
	// ParamsToken opens a parameter sub-query.
	ParamsToken = "params"

	KeywordBuild    = "Build"
	KeywordHistory  = "Build History"
	KeywordSetParam = "Set Param"

	BoolTrue  = "jenkybooltrue"
	BoolFalse = "jenkyboolfalse"
)

var (
	// ErrMalformedQuery means the query structure fits no navigation state.
	ErrMalformedQuery = errors.New("malformed query")
	// ErrMalformedParams means a params part had a wrong leading token or an
	// odd number of elements. The state is still usable with empty params.
	ErrMalformedParams = errors.New("malformed parameter list")
)

// Split splits query on delimiter and trims every part.
func Split(query, delimiter string) []string {
	raw := strings.Split(query, delimiter)
	parts := make([]string, len(raw))
	for i, p := range raw {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Join is the inverse of Split for trimmed parts.
func Join(parts []string, delimiter string) string {
	return strings.Join(parts, " "+delimiter+" ")
}

// Encodable reports whether value can travel inside a params part. Values
// containing either delimiter would split into extra parts.
func Encodable(value string) bool {
	return !strings.Contains(value, MenuDelimiter) && !strings.Contains(value, ParamDelimiter)
}

// EncodeBool returns the text sentinel for b.
func EncodeBool(b bool) string {
	if b {
		return BoolTrue
	}
	return BoolFalse
}

// IsBoolSentinel reports whether value is one of the boolean sentinels.
func IsBoolSentinel(value string) bool {
	return value == BoolTrue || value == BoolFalse
}

// Coerce turns boolean sentinels into bools and leaves other values alone.
func Coerce(value string) any {
	switch value {
	case BoolTrue:
		return true
	case BoolFalse:
		return false
	default:
		return value
	}
}

// FormatValue renders a parameter value for the query channel.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		return EncodeBool(val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// Display renders a parameter value for humans: sentinels become true/false.
func Display(value string) string {
	switch value {
	case BoolTrue:
		return "true"
	case BoolFalse:
		return "false"
	default:
		return value
	}
}

package query

import (
	"fmt"
	"strings"
)

// Param is one chosen parameter value as carried in a query.
type Param struct {
	Name  string
	Value string
}

// Params is an ordered list of chosen values; names are unique.
type Params []Param

// Get returns the chosen value for name.
func (p Params) Get(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// With returns a copy of p with name set to value. An existing entry keeps its
// position.
func (p Params) With(name, value string) Params {
	out := make(Params, 0, len(p)+1)
	replaced := false
	for _, param := range p {
		if param.Name == name {
			param.Value = value
			replaced = true
		}
		out = append(out, param)
	}
	if !replaced {
		out = append(out, Param{Name: name, Value: value})
	}
	return out
}

// Map returns the raw name to value mapping.
func (p Params) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, param := range p {
		m[param.Name] = param.Value
	}
	return m
}

// Values returns the mapping with boolean sentinels coerced to bools.
func (p Params) Values() map[string]any {
	m := make(map[string]any, len(p))
	for _, param := range p {
		m[param.Name] = Coerce(param.Value)
	}
	return m
}

// Encode renders p as a params part: "params::A::1::B::2". Empty p encodes
// as the bare "params" token.
func (p Params) Encode() string {
	var b strings.Builder
	b.WriteString(ParamsToken)
	for _, param := range p {
		b.WriteString(ParamDelimiter)
		b.WriteString(param.Name)
		b.WriteString(ParamDelimiter)
		b.WriteString(param.Value)
	}
	return b.String()
}

// IsParamsPart reports whether part is a parameter sub-query.
func IsParamsPart(part string) bool {
	return part == ParamsToken || strings.HasPrefix(part, ParamsToken+ParamDelimiter)
}

// DecodeParams parses a params part produced by Params.Encode.
func DecodeParams(part string) (Params, error) {
	if strings.TrimSpace(part) == "" {
		return nil, nil
	}
	return decodeList(Split(part, ParamDelimiter))
}

// ParseParams zips a split parameter list into a mapping. The first element
// must be "params" and the rest must pair up; anything else yields an empty
// mapping.
func ParseParams(parts []string) map[string]string {
	params, err := decodeList(parts)
	if err != nil {
		return map[string]string{}
	}
	return params.Map()
}

func decodeList(parts []string) (Params, error) {
	if len(parts) == 0 {
		return nil, nil
	}
	if parts[0] != ParamsToken {
		return nil, fmt.Errorf("%w: leading token %q", ErrMalformedParams, parts[0])
	}
	rest := parts[1:]
	if len(rest)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrMalformedParams, len(rest))
	}
	var params Params
	for i := 0; i < len(rest); i += 2 {
		params = params.With(rest[i], rest[i+1])
	}
	return params, nil
}

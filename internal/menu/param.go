package menu

import (
	"context"
	"fmt"

	"github.com/five82/jenky/internal/jenkins"
	"github.com/five82/jenky/internal/query"
)

func setParamMenu(ctx context.Context, env *Env, q buildQuery) []Item {
	back := query.BuildState(q.Job, q.Params).Encode()
	set := func(value string) string {
		return query.BuildState(q.Job, q.Params.With(q.Param, value)).Encode()
	}

	var items []Item
	def, found := findParam(cachedParams(ctx, env, q.Job), q.Param)
	if !found {
		items = append(items, Item{
			Title:        fmt.Sprintf("Unknown parameter %q.", q.Param),
			Subtitle:     fmt.Sprintf("%s has no such parameter, or its definitions are still loading.", q.Job),
			Autocomplete: back,
			Icon:         IconError,
		})
	} else {
		items = append(items, paramEditor(def, q, set)...)
	}

	return append(items, Item{
		Title:        "Cancel parameter set.",
		Subtitle:     "Return to the main build menu.",
		Autocomplete: back,
		Icon:         IconWarning,
	})
}

func paramEditor(def jenkins.ParameterDefinition, q buildQuery, set func(string) string) []Item {
	current, chosen := q.Params.Get(def.Name)
	if !chosen {
		current = query.FormatValue(def.Default())
	}
	shown := query.Display(current)
	if !chosen && def.Default() == nil {
		shown = "No default"
	}
	typed := q.Input
	if typed == "" {
		typed = current
	}

	switch def.Type {
	case jenkins.TypeString:
		if !query.Encodable(typed) {
			return []Item{unencodableItem(def.Name)}
		}
		return []Item{{
			Title:        fmt.Sprintf("Type in your value for %s (%s).", def.Name, shown),
			Subtitle:     description(def),
			Autocomplete: set(typed),
		}}

	case jenkins.TypePassword:
		if !query.Encodable(typed) {
			return []Item{unencodableItem(def.Name)}
		}
		return []Item{{
			Title:        fmt.Sprintf("Type in your password value for %s.", def.Name),
			Subtitle:     description(def),
			Autocomplete: set(typed),
		}}

	case jenkins.TypeChoice:
		first := Item{
			Title:    fmt.Sprintf("Choose a value for %s (%s).", def.Name, shown),
			Subtitle: description(def),
		}
		if query.Encodable(current) {
			first.Autocomplete = set(current)
		}
		items := []Item{first}
		for _, choice := range def.Choices {
			if !query.Encodable(choice) {
				items = append(items, Item{Title: choice, Subtitle: delimiterHint, Icon: IconWarning})
				continue
			}
			items = append(items, Item{Title: choice, Autocomplete: set(choice)})
		}
		return items

	case jenkins.TypeBoolean:
		return []Item{
			{
				Title:        fmt.Sprintf("Choose a boolean for %s (%s).", def.Name, shown),
				Subtitle:     description(def),
				Autocomplete: set(current),
			},
			{Title: "True", Autocomplete: set(query.BoolTrue)},
			{Title: "False", Autocomplete: set(query.BoolFalse)},
		}

	default:
		return []Item{{
			Title:        fmt.Sprintf("Unknown parameter type: %s", jenkins.TypeLabel(def.Type)),
			Subtitle:     "This parameter type cannot be set from jenky.",
			Autocomplete: q.Encode(),
			Icon:         IconError,
		}}
	}
}

var delimiterHint = fmt.Sprintf("Values containing %q or %q cannot be set from jenky.", query.MenuDelimiter, query.ParamDelimiter)

func unencodableItem(name string) Item {
	return Item{
		Title:    fmt.Sprintf("The value for %s cannot be used.", name),
		Subtitle: delimiterHint,
		Icon:     IconWarning,
	}
}

func findParam(defs []jenkins.ParameterDefinition, name string) (jenkins.ParameterDefinition, bool) {
	for _, def := range defs {
		if def.Name == name {
			return def, true
		}
	}
	return jenkins.ParameterDefinition{}, false
}

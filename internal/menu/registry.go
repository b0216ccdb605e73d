package menu

import "context"

// Route pairs a predicate over a parsed query with the menu it selects.
type Route[S any] struct {
	Name  string
	Match func(S) bool
	Build func(context.Context, *Env, S) []Item
}

// Registry is an ordered list of routes; the first match wins.
type Registry[S any] []Route[S]

// Resolve returns the first route matching s.
func (r Registry[S]) Resolve(s S) (Route[S], bool) {
	for _, route := range r {
		if route.Match(s) {
			return route, true
		}
	}
	return Route[S]{}, false
}

// Render builds the items of the route matching s, or the single fallback
// item when nothing matches.
func (r Registry[S]) Render(ctx context.Context, env *Env, s S) []Item {
	route, ok := r.Resolve(s)
	if !ok {
		env.logger().Warn("no menu matched", "state", s)
		return []Item{noMenuItem()}
	}
	env.logger().Debug("menu selected", "menu", route.Name)
	return route.Build(ctx, env, s)
}

func always[S any](S) bool { return true }

package menu

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// filter returns the items whose key fuzzy-matches pattern with at least
// minScore, best match first. An empty pattern keeps everything in order.
func filter[T any](pattern string, items []T, key func(T) string, minScore int) []T {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return items
	}
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = key(item)
	}
	var out []T
	for _, m := range fuzzy.Find(pattern, keys) {
		if m.Score < minScore {
			continue
		}
		out = append(out, items[m.Index])
	}
	return out
}

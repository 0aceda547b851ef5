// Package search narrows a collection to the items matching a free-text
// query and debounces query changes typed by the user.
package search

import (
	"strings"

	"github.com/dmitrijs2005/qaforum/internal/client/models"
)

// Filter returns the items whose search fields contain query, ignoring case.
// A blank query matches everything. items is never modified.
func Filter[T models.Resource](items []T, query string) []T {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if needle == "" || matches(it, needle) {
			out = append(out, it)
		}
	}
	return out
}

func matches(r models.Resource, needle string) bool {
	for _, f := range r.SearchFields() {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Highlight calls mark for every case-insensitive occurrence of query in
// text and returns text with the marked segments substituted. The query is
// matched literally.
func Highlight(text, query string, mark func(string) string) string {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return text
	}

	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		// Case folding changed byte offsets; fall back to no highlight.
		return text
	}

	var b strings.Builder
	rest := 0
	for {
		i := strings.Index(lower[rest:], needle)
		if i < 0 {
			break
		}
		start := rest + i
		end := start + len(needle)
		b.WriteString(text[rest:start])
		b.WriteString(mark(text[start:end]))
		rest = end
	}
	b.WriteString(text[rest:])
	return b.String()
}

// ABOUTME: Case-insensitive substring filter shared by every search
// ABOUTME: Empty queries keep the whole collection
package crm

import "strings"

// filter keeps items whose joined fields contain query, case-insensitively.
// An empty query keeps everything.
func filter[T any](items []T, query string, fields func(T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	var out []T
	for _, item := range items {
		if strings.Contains(strings.ToLower(strings.Join(fields(item), " ")), q) {
			out = append(out, item)
		}
	}
	return out
}

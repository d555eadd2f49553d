// Package utils provides shared utilities for text and logging.
package utils

// Truncate returns s truncated to at most limit runes, with a single
// ellipsis rune appended when truncation happened. A limit of 0 or less
// returns s unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

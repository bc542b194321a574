// Package utils provides shared utilities for text and logging.
package utils

// Truncate shortens s to at most max runes and appends "..." when anything
// was cut. Counting runes keeps multibyte characters intact; catalog
// descriptions contain them. A non-positive max returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

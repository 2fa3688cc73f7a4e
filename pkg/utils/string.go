package utils

import "strings"

// Truncate shortens s to maxLen bytes plus "..." and replaces newlines with
// spaces so the result fits on one line.
func Truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

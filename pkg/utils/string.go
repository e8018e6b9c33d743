package utils

import "fmt"

// Truncate shortens s to at most maxLen runes, appending an ellipsis when
// anything was cut. Transcript and answer previews can carry multibyte
// text, so it counts runes rather than bytes.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// Plural formats a count with its unit, adding an "s" for anything but one.
func Plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

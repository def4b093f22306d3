package printer

import "strings"

// ProgressBar renders a percentage as a fixed width text bar.
// Examples: "[##########----------]" for 50 with width 20.
func ProgressBar(percent int, width int) string {
	if width <= 0 {
		return ""
	}
	percent = max(0, min(100, percent))

	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

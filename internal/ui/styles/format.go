package styles

import (
	"github.com/charmbracelet/x/ansi"
)

// TruncateString truncates a possibly styled string to maxWidth cells,
// ending with an ellipsis when anything was cut.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if ansi.StringWidth(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "…")
}

// Package color centralizes terminal color policy for the --color flag.
package color

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Enabled reports whether colored output should be produced for the given
// mode ("auto", "always", "never") and destination writer. In auto mode a
// non-terminal destination or a set NO_COLOR variable disables color.
func Enabled(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		return IsTerminal(out)
	}
}

// IsTerminal reports whether out is attached to a character device.
func IsTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Configure sets the global lipgloss color profile for the mode. Call it
// before any rendering: "always" forces TrueColor so colors survive piped
// output, "never" forces Ascii, and "auto" keeps lipgloss's own TTY-based
// detection.
func Configure(mode string) {
	switch mode {
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

package formatter

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// createMarkdownRenderer initializes a glamour markdown renderer for the
// given color mode. Returns nil when markdown should render as plain text.
func createMarkdownRenderer(colorMode string) *glamour.TermRenderer {
	var opts []glamour.TermRendererOption

	switch colorMode {
	case "never":
		return nil
	case "always":
		// Force TrueColor so colors survive piped output.
		opts = append(opts,
			glamour.WithAutoStyle(),
			glamour.WithColorProfile(termenv.TrueColor),
			glamour.WithWordWrap(0),
		)
	default: // "auto"
		opts = append(opts,
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0),
		)
	}

	mdRenderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil
	}
	return mdRenderer
}

// renderMarkdown renders markdown text, falling back to the plain text on
// any failure.
func renderMarkdown(mdRenderer *glamour.TermRenderer, text string) string {
	if mdRenderer == nil {
		return text
	}
	rendered, err := mdRenderer.Render(text)
	if err != nil {
		return text
	}
	// glamour pads with blank lines; trim them.
	return strings.TrimSpace(rendered)
}

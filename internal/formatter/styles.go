package formatter

import "github.com/charmbracelet/lipgloss"

// Semantic styles for terminal output. The exact colors route through the
// global lipgloss color profile, which internal/color configures from the
// --color flag; with colors off these render as plain text.
var (
	successIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).SetString("✓")
	errorIcon   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).SetString("✗")

	infoStyle     = lipgloss.NewStyle()
	toolStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	subagentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	systemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// Iteration summaries print inside a rounded box.
	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

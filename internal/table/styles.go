package table

import "github.com/charmbracelet/lipgloss"

// Palette shared with the console's ui package.
const (
	colorAccent    = "86"
	colorHighlight = "205"
	colorDanger    = "196"
	colorMuted     = "241"
	colorText      = "252"
)

var styles = struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
	Hint     lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Danger   lipgloss.Style
	Empty    lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
	Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorHighlight)).Padding(0, 1),
	Cell:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorText)).Padding(0, 1),
	Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorHighlight)).Padding(0, 1),
	Border:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
	Hint:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
	Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
	Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent)),
	Danger:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorDanger)),
	Empty:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)).Italic(true),
}

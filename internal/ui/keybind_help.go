package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// RenderKeybindHelp produces the transient help bar shown after SPC: the
// pending sequence followed by the keys that can complete it on page.
func RenderKeybindHelp(keyHandler *KeyHandler, page Page) string {
	if keyHandler == nil {
		return ""
	}
	bindings := NewKeyMap(keyHandler, page).ShortHelp()
	if len(bindings) == 0 {
		return ""
	}

	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHighlight)).Bold(true)
	h.Styles.ShortDesc = Styles.Muted
	h.Styles.ShortSeparator = Styles.Muted

	prefix := keyHandler.CurrentSeq()
	if prefix == "" {
		prefix = keyHandler.LeaderSeq
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccent)).
		Padding(0, 1)
	return box.Render(Styles.Muted.Render(prefix) + " " + h.ShortHelpView(bindings))
}

// RenderPageHelp is the one-line reminder of the page keys shown when no
// leader sequence is pending.
func RenderPageHelp(page Page, searching bool) string {
	if searching {
		return Styles.Hint.Render("type to search · enter/esc done")
	}
	hint := "SPC menu · tab next page · q quit"
	if page != PageDashboard {
		hint = "/ search · 1-9 sort · j/k move · " + hint
	}
	return Styles.Hint.Render(hint)
}

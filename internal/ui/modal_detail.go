package ui

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"forecastconsole/internal/table"
)

// DetailModal shows one record as highlighted JSON with scrollback.
// Esc or q dismisses.
type DetailModal struct {
	Title    string
	record   table.Record
	style    string
	viewport viewport.Model
}

var _ View = (*DetailModal)(nil)

const (
	defaultDetailWidth  = 72
	defaultDetailHeight = 18
)

// NewDetailModal renders rec with the named glamour style ("dark", "light",
// "notty").
func NewDetailModal(title string, rec table.Record, style string) *DetailModal {
	vp := viewport.New(defaultDetailWidth, defaultDetailHeight)
	vp.Style = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(0, 1)
	if style == "" {
		style = "dark"
	}
	d := &DetailModal{Title: title, record: rec, style: style, viewport: vp}
	d.refreshContent()
	return d
}

// Init implements View.
func (d *DetailModal) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (d *DetailModal) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return d, dismiss
		}
	case tea.WindowSizeMsg:
		d.viewport.Width = max(msg.Width-sidebarWidth-6, 40)
		d.viewport.Height = max(msg.Height-8, 8)
		d.refreshContent()
		return d, nil
	}
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return d, cmd
}

// View implements View.
func (d *DetailModal) View() string {
	header := Styles.Title.Render(d.Title) + Styles.Hint.Render("  ↑/↓ scroll  Esc: close")
	return header + "\n" + d.viewport.View()
}

// Content returns the rendered body, before the viewport clips it.
func (d *DetailModal) Content() string {
	return renderRecord(d.record, d.style, d.viewport.Width-4)
}

func (d *DetailModal) refreshContent() {
	d.viewport.SetContent(d.Content())
	d.viewport.GotoTop()
}

// renderRecord formats rec as an indented JSON code block through glamour.
// It falls back to the plain JSON when rendering fails.
func renderRecord(rec table.Record, style string, width int) string {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", rec)
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return string(raw)
	}
	out, err := r.Render("```json\n" + string(raw) + "\n```\n")
	if err != nil {
		return string(raw)
	}
	return out
}

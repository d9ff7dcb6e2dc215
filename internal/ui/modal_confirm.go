package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"forecastconsole/internal/jsonutil"
	"forecastconsole/internal/table"
)

// ConfirmModal asks a yes/no question. Enter or y confirms; esc or n cancels.
type ConfirmModal struct {
	Title     string
	Label     string
	Details   string
	OnConfirm func() tea.Msg
}

var _ View = (*ConfirmModal)(nil)

// NewConfirmModal creates a confirmation modal.
func NewConfirmModal(title, label string, onConfirm func() tea.Msg) *ConfirmModal {
	return &ConfirmModal{Title: title, Label: label, OnConfirm: onConfirm}
}

// WithDetails adds warning details to the modal.
func (m *ConfirmModal) WithDetails(details string) *ConfirmModal {
	m.Details = details
	return m
}

// NewDeleteConfirmModal confirms the delete of rec from the page described
// by spec.
func NewDeleteConfirmModal(spec *PageSpec, rec table.Record, id int) *ConfirmModal {
	label := fmt.Sprintf("%s #%d", spec.Singular, id)
	if name := jsonutil.ToString(rec[spec.NameKey]); spec.NameKey != "" && name != "" {
		label += ": " + name
	}
	page := spec.Page
	return NewConfirmModal(
		fmt.Sprintf("Delete %s?", spec.Singular),
		label,
		func() tea.Msg { return ConfirmDeleteMsg{Page: page, ID: id} },
	).WithDetails("This cannot be undone.")
}

// Init implements View.
func (m *ConfirmModal) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *ConfirmModal) Update(msg tea.Msg) (View, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc", "n":
			return m, dismiss
		case "enter", "y":
			if m.OnConfirm != nil {
				return m, m.OnConfirm
			}
		}
	}
	return m, nil
}

// View implements View.
func (m *ConfirmModal) View() string {
	content := Styles.TitleWarning.Render(m.Title) + "\n\n"
	content += Styles.Label.Render(m.Label)
	if m.Details != "" {
		content += "\n" + Styles.Details.Render(m.Details)
	}
	content += "\n\n" + Styles.Hint.Render("y/Enter: confirm  n/Esc: cancel")
	return Styles.BoxDanger.Render(content)
}

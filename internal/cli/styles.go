package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains the lipgloss styles for command output.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the default output styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Label:   lipgloss.NewStyle().Width(18).Foreground(lipgloss.Color("8")),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		Muted:   lipgloss.NewStyle().Faint(true),
		Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

// field renders a "label value" line.
func (s Styles) field(label string, value any) string {
	return s.Label.Render(label) + s.Value.Render(fmt.Sprint(value)) + "\n"
}

package tui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the tree view.
type Styles struct {
	Header   lipgloss.Style
	Columns  lipgloss.Style
	Selected lipgloss.Style
	Metadata lipgloss.Style
	Code     lipgloss.Style
	Warning  lipgloss.Style
	Status   lipgloss.Style
	DepsPane lipgloss.Style
}

func defaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		Columns: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("229")),
		Metadata: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		Code: lipgloss.NewStyle().
			Foreground(lipgloss.Color("108")),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		DepsPane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1),
	}
}

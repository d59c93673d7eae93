// Package styles holds the terminal palette. Colors adapt to light and dark
// backgrounds.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	Primary   = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"} // teal, the grid
	Secondary = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"} // amber, pending tiles
	Success   = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	Warning   = lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FB923C"}
	Error     = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	Muted     = lipgloss.AdaptiveColor{Light: "#78716C", Dark: "#A8A29E"}
	Text      = lipgloss.AdaptiveColor{Light: "#1C1917", Dark: "#F5F5F4"}

	Title = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)

	// Label is the fixed-width left column of forms and meters.
	Label = lipgloss.NewStyle().Foreground(Muted).Width(14)

	ActiveItem   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	InactiveItem = lipgloss.NewStyle().Foreground(Muted)
	StatusBar    = lipgloss.NewStyle().Foreground(Muted).Italic(true).MarginTop(1)
	ErrorText    = lipgloss.NewStyle().Foreground(Error).Bold(true)

	Border = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Padding(1, 2)
)

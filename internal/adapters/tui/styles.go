package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Private brand colors.
	colorIris  = lipgloss.Color("#5D3FD3")
	colorSlate = lipgloss.Color("#667085")
	colorWhite = lipgloss.Color("#FFFFFF")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(colorIris).
			Foreground(colorWhite)

	runningStyle = lipgloss.NewStyle().
			Foreground(colorIris).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Amber

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // Green

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // Red

	pendingStyle = lipgloss.NewStyle().
			Foreground(colorSlate)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSlate).
			Faint(true)
)

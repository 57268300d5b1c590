// Package tui provides an interactive progress view for duration calculation runs.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// NewModel creates a model that follows the run driven by ctrl.
func NewModel(ctrl Controller) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorIris)

	return &Model{
		ctrl:     ctrl,
		status:   ctrl.Status(),
		spinner:  s,
		interval: DefaultPollInterval,
	}
}

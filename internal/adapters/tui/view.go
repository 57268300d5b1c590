package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/patterneta/internal/core/domain"
)

const (
	defaultBarWidth = 40
	barMargin       = 20
)

// View renders the progress view.
func (m *Model) View() string {
	lines := []string{
		titleStyle.Render("PATTERN DURATIONS"),
		"",
		m.phaseLine(),
		m.progressLine(),
		pendingStyle.Render(fmt.Sprintf("%d durations cached", m.status.CacheSize)),
	}
	if m.notice != "" {
		lines = append(lines, "", m.notice)
	}
	lines = append(lines, "", helpStyle.Render("p pause • r resume • s stop • q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m *Model) phaseLine() string {
	var line string
	switch {
	case !m.status.Running && m.status.LastOutcome == domain.OutcomeFailed:
		line = failedStyle.Render("✗ failed")
	case !m.status.Running:
		line = doneStyle.Render("✓ " + outcomeLabel(m.status))
	case m.status.Paused:
		line = pausedStyle.Render("‖ paused")
	default:
		line = m.spinner.View() + runningStyle.Render(" calculating")
	}
	if m.status.RunID != "" {
		line += pendingStyle.Render("  run " + shortID(m.status.RunID))
	}
	return line
}

func (m *Model) progressLine() string {
	width := defaultBarWidth
	if m.width > 0 && m.width-barMargin < width {
		width = max(m.width-barMargin, 1)
	}

	filled := 0
	if m.status.Total > 0 {
		filled = min(width*m.status.Completed/m.status.Total, width)
	}

	bar := runningStyle.Render(strings.Repeat("█", filled)) + pendingStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %d/%d patterns", bar, m.status.Completed, m.status.Total)
}

func outcomeLabel(s domain.Status) string {
	if s.LastOutcome == domain.OutcomeNone {
		return "idle"
	}
	return string(s.LastOutcome)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

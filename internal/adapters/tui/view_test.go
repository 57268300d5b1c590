package tui_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/patterneta/internal/adapters/tui"
	"go.trai.ch/patterneta/internal/core/domain"
)

func TestView_Running(t *testing.T) {
	m := tui.NewModel(&fakeController{status: running()})
	out := m.View()

	assert.Contains(t, out, "PATTERN DURATIONS")
	assert.Contains(t, out, "calculating")
	assert.Contains(t, out, "run 01234567")
	assert.Contains(t, out, "5/20 patterns")
	assert.Contains(t, out, "7 durations cached")
	assert.Contains(t, out, "q quit")
}

func TestView_Paused(t *testing.T) {
	status := running()
	status.Paused = true
	m := tui.NewModel(&fakeController{status: status})

	assert.Contains(t, m.View(), "paused")
}

func TestView_Finished(t *testing.T) {
	tests := []struct {
		outcome domain.RunOutcome
		want    string
	}{
		{outcome: domain.OutcomeCompleted, want: "✓ completed"},
		{outcome: domain.OutcomeCancelled, want: "✓ cancelled"},
		{outcome: domain.OutcomeFailed, want: "✗ failed"},
		{outcome: domain.OutcomeNone, want: "✓ idle"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			m := tui.NewModel(&fakeController{status: domain.Status{LastOutcome: tt.outcome}})
			assert.Contains(t, m.View(), tt.want)
		})
	}
}

func TestView_NarrowWindow(t *testing.T) {
	m := tui.NewModel(&fakeController{status: running()})
	m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})

	assert.Contains(t, m.View(), "5/20 patterns")
}

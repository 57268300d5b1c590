package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/patterneta/internal/core/domain"
)

// DefaultPollInterval is how often the model refreshes the run status.
const DefaultPollInterval = 200 * time.Millisecond

// Controller is the part of the duration service the view drives.
type Controller interface {
	Status() domain.Status
	Pause() bool
	Resume() bool
	Stop() bool
}

// MsgStatus carries a fresh status snapshot.
type MsgStatus domain.Status

// Model represents the progress view state.
type Model struct {
	ctrl     Controller
	status   domain.Status
	spinner  spinner.Model
	interval time.Duration
	width    int
	notice   string
	done     bool
}

// Init starts the spinner and the status poll.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case MsgStatus:
		m.status = domain.Status(msg)
		if !m.status.Running {
			m.done = true
			return m, tea.Quit
		}
		return m, m.poll()
	}
	return m, nil
}

// Status returns the last status snapshot the model received.
func (m *Model) Status() domain.Status {
	return m.status
}

// Done reports whether the run finished while the view was open.
func (m *Model) Done() bool {
	return m.done
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "p":
		m.notice = noticeFor(m.ctrl.Pause(), "pausing after the current batch", "nothing to pause")
	case "r":
		m.notice = noticeFor(m.ctrl.Resume(), "resumed", "nothing to resume")
	case "s":
		m.notice = noticeFor(m.ctrl.Stop(), "stopping", "nothing to stop")
	case "q", "ctrl+c":
		m.ctrl.Stop()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) poll() tea.Cmd {
	ctrl := m.ctrl
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return MsgStatus(ctrl.Status())
	})
}

func noticeFor(accepted bool, ok, rejected string) string {
	if accepted {
		return ok
	}
	return rejected
}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"influencerflow/workflow"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case TickMsg:
		return m, tea.Batch(pollStatus(m.Client), pollCallState(m.Client), tickCmd())
	case StatusUpdateMsg:
		return m.handleStatusUpdate(msg)
	case CallStateMsg:
		return m.handleCallState(msg)
	case StartWorkflowMsg:
		return m.handleWorkflowStarted(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "w", "W":
		if m.Connected && (m.Status == nil || m.Status.State != workflow.StateRunning) {
			return m, triggerWorkflow(m.Client)
		}
	}
	return m, nil
}

// handleStatusUpdate syncs workflow state from the API
func (m Model) handleStatusUpdate(msg StatusUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Connected = false
		m.Err = msg.Err
		return m, nil
	}
	m.Connected = true
	m.Err = nil
	m.Status = msg.Status
	return m, nil
}

// handleCallState syncs the call tracker snapshot
func (m Model) handleCallState(msg CallStateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		// Workflow status poll already tracks connectivity.
		return m, nil
	}
	m.CallState = msg.Snapshot
	return m, nil
}

// handleWorkflowStarted processes the start request outcome
func (m Model) handleWorkflowStarted(msg StartWorkflowMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Err = msg.Err
		return m, nil
	}
	return m, pollStatus(m.Client)
}

package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"influencerflow/calltrack"
	"influencerflow/workflow"
)

// Model represents the TUI client state (thin client over the API)
type Model struct {
	Client *APIClient

	// Local UI state (synced from the API)
	Status    *workflow.StatusResponse
	CallState *calltrack.Snapshot
	Err       error

	// Connection status
	Connected bool
}

// NewModel creates a new TUI model
func NewModel(apiURL string) Model {
	return Model{
		Client: NewAPIClient(apiURL),
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	// Start polling immediately
	return tea.Batch(
		pollStatus(m.Client),
		pollCallState(m.Client),
		tickCmd(),
	)
}

// getStateText returns the appropriate state message
func (m Model) getStateText() string {
	if !m.Connected {
		return ErrorStyle.Render("❌ Not connected to API server")
	}
	if m.Status == nil {
		return InfoStyle.Render("⏳ Waiting for status...")
	}

	switch m.Status.State {
	case workflow.StateIdle:
		return HighlightStyle.Render("👋 Ready to start!") + "\n\n" +
			InfoStyle.Render("Press 'w' to run the demo workflow")
	case workflow.StateRunning:
		stage := "starting"
		if n := len(m.Status.Progress); n > 0 {
			last := m.Status.Progress[n-1]
			stage = fmt.Sprintf("%s (%s)", last.Stage, last.Status)
		}
		return StatusStyle.Render(fmt.Sprintf("⏳ Workflow running: %s", stage))
	case workflow.StateComplete:
		return HighlightStyle.Render("✅ COMPLETE")
	case workflow.StateError:
		errMsg := m.Status.Error
		if errMsg == "" && m.Err != nil {
			errMsg = m.Err.Error()
		}
		return ErrorStyle.Render(fmt.Sprintf("❌ Error: %s", errMsg))
	default:
		return ""
	}
}

// callStateText summarizes the call tracker line
func (m Model) callStateText() string {
	snap := m.CallState
	if snap == nil {
		return ""
	}
	switch {
	case snap.IsFetchingDetails:
		return StatusStyle.Render(fmt.Sprintf("📞 Call %s: fetching details...", snap.LastCallID))
	case snap.IsPolling:
		return StatusStyle.Render(fmt.Sprintf("📞 Call %s: %s", snap.ActiveCallID, snap.StatusMessage))
	case snap.ErrorMessage != "":
		return ErrorStyle.Render("📞 " + snap.ErrorMessage)
	case snap.Artifacts != nil:
		return InfoStyle.Render(fmt.Sprintf("📞 Last call %s: %d transcript lines, recording %ds",
			snap.Artifacts.CallID, len(snap.Artifacts.Transcript), snap.Artifacts.RecordingDuration))
	default:
		return ""
	}
}

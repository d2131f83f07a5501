package workflow

import (
	"fmt"
	"sync"
	"time"

	"influencerflow/types"
)

// State is the orchestrator's coarse lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateComplete State = "complete"
	StateError    State = "error"
)

// LogEntry is one timestamped progress line.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// StatusResponse is the snapshot handed to API callers and the demo client.
type StatusResponse struct {
	State    State                 `json:"state"`
	Progress []types.ProgressEvent `json:"progress"`
	Logs     []LogEntry            `json:"logs"`
	Result   *types.WorkflowResult `json:"result,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// Manager holds the orchestrator state with thread-safe access. Readers only
// ever see snapshot copies.
type Manager struct {
	mu sync.RWMutex

	currentState State
	progress     []types.ProgressEvent
	result       *types.WorkflowResult
	lastErr      error

	// Logs (ring buffer)
	logs    []LogEntry
	maxLogs int
}

// NewManager creates a new state manager.
func NewManager() *Manager {
	return &Manager{
		currentState: StateIdle,
		maxLogs:      50, // Keep last 50 log entries
	}
}

// Begin resets the manager for a fresh run.
func (m *Manager) Begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentState = StateRunning
	m.progress = nil
	m.result = nil
	m.lastErr = nil
}

// AddProgress records a stage transition (thread-safe).
func (m *Manager) AddProgress(ev types.ProgressEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = append(m.progress, ev)
	m.addLogLocked(fmt.Sprintf("stage %s: %s", ev.Stage, ev.Status))
}

// AddLog adds a log entry (thread-safe).
func (m *Manager) AddLog(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addLogLocked(message)
}

func (m *Manager) addLogLocked(message string) {
	m.logs = append(m.logs, LogEntry{Timestamp: time.Now(), Message: message})
	if len(m.logs) > m.maxLogs {
		m.logs = m.logs[len(m.logs)-m.maxLogs:]
	}
}

// SetResult records a completed run.
func (m *Manager) SetResult(result *types.WorkflowResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = result
	m.currentState = StateComplete
	m.addLogLocked("workflow complete")
}

// SetError records a failed run.
func (m *Manager) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentState = StateError
	m.lastErr = err
	m.addLogLocked(fmt.Sprintf("Error: %v", err))
}

// GetState returns the current lifecycle state (thread-safe).
func (m *Manager) GetState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState
}

// GetStatus returns a snapshot of the current state (thread-safe).
func (m *Manager) GetStatus() StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resp := StatusResponse{
		State:    m.currentState,
		Progress: append([]types.ProgressEvent{}, m.progress...),
		Logs:     append([]LogEntry{}, m.logs...),
		Result:   m.result,
	}
	if m.lastErr != nil {
		resp.Error = m.lastErr.Error()
	}
	return resp
}

package tui

import (
	"time"

	"influencerflow/calltrack"
	"influencerflow/workflow"
)

// StatusUpdateMsg carries a fresh workflow status poll result
type StatusUpdateMsg struct {
	Status *workflow.StatusResponse
	Err    error
}

// CallStateMsg carries a fresh call-tracking poll result
type CallStateMsg struct {
	Snapshot *calltrack.Snapshot
	Err      error
}

// StartWorkflowMsg is the outcome of a start request
type StartWorkflowMsg struct {
	Err error
}

// TickMsg drives the poll loop
type TickMsg struct {
	Time time.Time
}

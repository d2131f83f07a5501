package types

import "time"

// Workflow stages, in execution order.
const (
	StageCampaign  = "campaign"
	StageDiscovery = "discovery"
	StageScoring   = "scoring"
	StageOutreach  = "outreach"
)

// Stage statuses carried on progress events.
const (
	StageRunning   = "running"
	StageCompleted = "completed"
	StageErrored   = "error"
)

// ProgressEvent is emitted on every stage transition. It is the only side
// channel to subscribers during a run.
type ProgressEvent struct {
	Stage    string        `json:"stage"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration,omitempty"`
	Note     string        `json:"note,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// WorkflowResult is the final output of one orchestrated run.
type WorkflowResult struct {
	Campaign    *GeneratedCampaign `json:"campaign"`
	Matches     []CreatorMatch     `json:"matches"`
	Summary     OutreachSummary    `json:"outreachSummary"`
	Confidence  float64            `json:"confidence"`
	Suggestions []string           `json:"suggestions,omitempty"`
	StartedAt   time.Time          `json:"startedAt"`
	CompletedAt time.Time          `json:"completedAt"`
}

package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"influencerflow/types"
)

// pollStatus creates a command to poll workflow status
func pollStatus(client *APIClient) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus()
		return StatusUpdateMsg{
			Status: status,
			Err:    err,
		}
	}
}

// pollCallState creates a command to poll the call tracker
func pollCallState(client *APIClient) tea.Cmd {
	return func() tea.Msg {
		snap, err := client.GetCallState()
		return CallStateMsg{
			Snapshot: snap,
			Err:      err,
		}
	}
}

// triggerWorkflow creates a command to start a demo run
func triggerWorkflow(client *APIClient) tea.Cmd {
	return func() tea.Msg {
		err := client.StartWorkflow(demoRequirements())
		return StartWorkflowMsg{Err: err}
	}
}

// tickCmd creates a command that ticks every 500ms for polling
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// demoRequirements is the canned brief the demo runs with.
func demoRequirements() types.BusinessRequirements {
	return types.BusinessRequirements{
		CompanyName:          "Peak Provisions",
		Industry:             "fitness",
		ProductService:       "plant-based protein bars",
		BusinessGoals:        []string{"brand awareness", "product launch"},
		TargetAudience:       "health-conscious 20-35 year olds",
		CampaignObjective:    "launch the new protein bar line",
		BudgetRange:          types.BudgetRange{Min: 10000, Max: 50000},
		Timeline:             "6 weeks",
		PreferredPlatforms:   []string{"instagram", "tiktok"},
		OutreachCount:        5,
		PersonalizedOutreach: true,
	}
}

package tui

import (
	"fmt"
	"strings"

	"influencerflow/workflow"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	// Title
	b.WriteString(TitleStyle.Render("🤝 InfluencerFlow Demo"))
	b.WriteString("\n\n")

	// Current state
	b.WriteString(m.getStateText())
	b.WriteString("\n\n")

	// Call tracker line
	if call := m.callStateText(); call != "" {
		b.WriteString(call)
		b.WriteString("\n\n")
	}

	// Logs
	if m.Status != nil && len(m.Status.Logs) > 0 {
		b.WriteString(InfoStyle.Render("📝 Recent Activity:"))
		b.WriteString("\n")
		logs := m.Status.Logs
		if len(logs) > 8 {
			logs = logs[len(logs)-8:]
		}
		for _, entry := range logs {
			b.WriteString(InfoStyle.Render("   " + entry.Message))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Result summary
	if m.Status != nil && m.Status.State == workflow.StateComplete && m.Status.Result != nil {
		b.WriteString(BoxStyle.Render(m.formatResult()))
		b.WriteString("\n\n")
	}

	// Help text
	if m.Status != nil && m.Status.State == workflow.StateComplete {
		b.WriteString(HighlightStyle.Render("Press 'w' to run again | 'q' to exit"))
	} else {
		b.WriteString(InfoStyle.Render("Press 'w' to start | Press 'q' or Ctrl+C to quit"))
	}

	return b.String()
}

// formatResult renders the completed run summary
func (m Model) formatResult() string {
	result := m.Status.Result
	var b strings.Builder

	b.WriteString(HighlightStyle.Render("Workflow Result"))
	b.WriteString("\n\n")

	if result.Campaign != nil {
		b.WriteString(fmt.Sprintf("Campaign: %s\n", StatusStyle.Render(result.Campaign.Title)))
		b.WriteString(fmt.Sprintf("Method: %s\n", result.Campaign.Method))
	}
	b.WriteString(fmt.Sprintf("Matches: %d\n", len(result.Matches)))
	b.WriteString(fmt.Sprintf("Outreach: %d sent, %d failed\n", result.Summary.TotalSent, result.Summary.TotalFailed))
	b.WriteString(fmt.Sprintf("Confidence: %.2f\n", result.Confidence))

	if len(result.Suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, s := range result.Suggestions {
			b.WriteString(fmt.Sprintf("  • %s\n", s))
		}
	}

	return b.String()
}

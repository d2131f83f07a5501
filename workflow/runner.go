// Package workflow sequences the stage services into one pipeline run:
// campaign, discovery, scoring, outreach. Stages run strictly in order and
// are never retried by the orchestrator; fallback happens inside each stage.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"influencerflow/agents"
	"influencerflow/config"
	"influencerflow/ratelimit"
	"influencerflow/types"
)

// ErrCampaignIdentifier is the single unrecoverable pipeline condition: the
// campaign stage yielded no usable identifier.
var ErrCampaignIdentifier = errors.New("campaign stage produced no usable identifier")

// ProgressSink receives every stage transition event.
type ProgressSink interface {
	PublishProgress(ev types.ProgressEvent)
}

// Runner executes the complete workflow.
type Runner struct {
	campaign  *agents.CampaignAgent
	discovery *agents.DiscoveryAgent
	scoring   *agents.ScoringAgent
	outreach  *agents.OutreachAgent
	limiter   *ratelimit.Limiter
	manager   *Manager
	sinks     []ProgressSink
	now       func() time.Time
}

// NewRunner creates a workflow runner.
func NewRunner(campaign *agents.CampaignAgent, discovery *agents.DiscoveryAgent, scoring *agents.ScoringAgent, outreach *agents.OutreachAgent, limiter *ratelimit.Limiter, manager *Manager) *Runner {
	return &Runner{
		campaign:  campaign,
		discovery: discovery,
		scoring:   scoring,
		outreach:  outreach,
		limiter:   limiter,
		manager:   manager,
		now:       time.Now,
	}
}

// AddSink registers an additional progress consumer (e.g. the Kafka publisher).
func (r *Runner) AddSink(sink ProgressSink) {
	r.sinks = append(r.sinks, sink)
}

// Manager exposes the runner's state manager.
func (r *Runner) Manager() *Manager {
	return r.manager
}

func (r *Runner) emit(ev types.ProgressEvent) {
	r.manager.AddProgress(ev)
	for _, sink := range r.sinks {
		sink.PublishProgress(ev)
	}
}

// Run executes one workflow over the given requirements. The only error it
// returns is the fatal missing-campaign-identifier case; every other failure
// is absorbed by stage fallbacks or reported as a partial result.
func (r *Runner) Run(ctx context.Context, req types.BusinessRequirements) (*types.WorkflowResult, error) {
	r.manager.Begin()
	startedAt := r.now()
	consumedBefore := r.limiter.Consumed()

	// Stage 1: campaign generation. Missing identifier aborts the run.
	r.emit(types.ProgressEvent{Stage: types.StageCampaign, Status: types.StageRunning})
	stageStart := r.now()
	campaign := r.campaign.Generate(ctx, req)
	if campaign == nil || campaign.ID == "" {
		err := ErrCampaignIdentifier
		r.emit(types.ProgressEvent{
			Stage:    types.StageCampaign,
			Status:   types.StageErrored,
			Duration: r.now().Sub(stageStart),
			Error:    err.Error(),
		})
		r.manager.SetError(err)
		return nil, err
	}
	r.emit(types.ProgressEvent{
		Stage:    types.StageCampaign,
		Status:   types.StageCompleted,
		Duration: r.now().Sub(stageStart),
		Note:     campaign.Title,
	})

	// Stage 2: discovery.
	r.emit(types.ProgressEvent{Stage: types.StageDiscovery, Status: types.StageRunning})
	stageStart = r.now()
	creators, _ := r.discovery.Discover(ctx, *campaign)
	r.emit(types.ProgressEvent{
		Stage:    types.StageDiscovery,
		Status:   types.StageCompleted,
		Duration: r.now().Sub(stageStart),
		Note:     fmt.Sprintf("%d candidates", len(creators)),
	})

	if len(creators) == 0 {
		// Zero candidates short-circuits scoring and outreach: both are marked
		// completed with a skip annotation and the run returns a partial result.
		log.Println("⚠️  Workflow: discovery returned no candidates, skipping scoring and outreach")
		r.emit(types.ProgressEvent{Stage: types.StageScoring, Status: types.StageCompleted, Note: "skipped: no candidates"})
		r.emit(types.ProgressEvent{Stage: types.StageOutreach, Status: types.StageCompleted, Note: "skipped: no candidates"})

		result := &types.WorkflowResult{
			Campaign:   campaign,
			Matches:    []types.CreatorMatch{},
			Summary:    types.OutreachSummary{Outreaches: []types.OutreachResult{}},
			Confidence: clampConfidence(campaign.Confidence * 0.5),
			Suggestions: []string{
				"Broaden the campaign niches or platforms",
				"Lower the minimum follower requirement",
				"Relax the location targeting",
			},
			StartedAt:   startedAt,
			CompletedAt: r.now(),
		}
		r.manager.SetResult(result)
		return result, nil
	}

	// Stage 3: scoring.
	r.emit(types.ProgressEvent{Stage: types.StageScoring, Status: types.StageRunning})
	stageStart = r.now()
	matches := r.scoring.Score(ctx, *campaign, creators)
	r.emit(types.ProgressEvent{
		Stage:    types.StageScoring,
		Status:   types.StageCompleted,
		Duration: r.now().Sub(stageStart),
		Note:     fmt.Sprintf("%d matches scored", len(matches)),
	})

	// Stage 4: outreach.
	r.emit(types.ProgressEvent{Stage: types.StageOutreach, Status: types.StageRunning})
	stageStart = r.now()
	summary := r.outreach.Run(ctx, *campaign, matches, req)
	r.emit(types.ProgressEvent{
		Stage:    types.StageOutreach,
		Status:   types.StageCompleted,
		Duration: r.now().Sub(stageStart),
		Note:     fmt.Sprintf("%d sent, %d failed", summary.TotalSent, summary.TotalFailed),
	})

	confidence := blendConfidence(campaign.Confidence, matches)
	if r.limiter.Consumed() > consumedBefore {
		// Live backend calls contributed, not only fallbacks.
		confidence += config.LiveAIConfidenceNudge
	}

	result := &types.WorkflowResult{
		Campaign:    campaign,
		Matches:     matches,
		Summary:     summary,
		Confidence:  clampConfidence(confidence),
		StartedAt:   startedAt,
		CompletedAt: r.now(),
	}
	r.manager.SetResult(result)
	log.Printf("✅ Workflow complete: %d matches, %d contacted, confidence %.2f",
		len(matches), summary.TotalSent, result.Confidence)
	return result, nil
}

// blendConfidence averages the campaign stage's own confidence with the mean
// candidate score (normalized to 0-1).
func blendConfidence(campaignConfidence float64, matches []types.CreatorMatch) float64 {
	if len(matches) == 0 {
		return campaignConfidence
	}
	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	meanScore := sum / float64(len(matches)) / 100
	return (campaignConfidence + meanScore) / 2
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

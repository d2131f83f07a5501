package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"influencerflow/agents"
	"influencerflow/config"
	"influencerflow/ratelimit"
	"influencerflow/store"
	"influencerflow/types"
)

// pipelineBackend scripts every stage the runner drives and counts calls so
// tests can assert which stages actually ran.
type pipelineBackend struct {
	campaign    *types.GeneratedCampaign
	campaignErr error

	creators []types.Creator

	campaignCalls int
	analysisCalls int
	discoverCalls int
	scoreCalls    int
	messageCalls  int
}

func (p *pipelineBackend) GenerateCampaign(ctx context.Context, req types.BusinessRequirements) (*types.GeneratedCampaign, error) {
	p.campaignCalls++
	if p.campaignErr != nil {
		return nil, p.campaignErr
	}
	return p.campaign, nil
}

func (p *pipelineBackend) AnalyzeQuery(ctx context.Context, query, conversationContext string) (*types.QueryAnalysis, error) {
	p.analysisCalls++
	return &types.QueryAnalysis{QueryType: "general_search", Confidence: 0.8}, nil
}

func (p *pipelineBackend) DiscoverCreators(ctx context.Context, criteria types.DiscoveryCriteria) ([]types.Creator, error) {
	p.discoverCalls++
	return p.creators, nil
}

func (p *pipelineBackend) ScoreCreator(ctx context.Context, campaign types.GeneratedCampaign, creator types.Creator) (*types.CreatorMatch, error) {
	p.scoreCalls++
	return &types.CreatorMatch{Creator: creator, Score: 80, Method: types.MethodAIGenerated}, nil
}

func (p *pipelineBackend) GenerateOutreachMessage(ctx context.Context, campaign types.GeneratedCampaign, match types.CreatorMatch, req types.BusinessRequirements) (*types.OutreachMessage, error) {
	p.messageCalls++
	return &types.OutreachMessage{Subject: "s", Message: "m", Method: types.MethodAIGenerated}, nil
}

func newTestRunner(p *pipelineBackend) (*Runner, *ratelimit.Limiter) {
	limiter := ratelimit.New(1000, config.RateLimitWindow, time.Millisecond)
	st := store.NewMemory()
	runner := NewRunner(
		agents.NewCampaignAgent(limiter, p),
		agents.NewDiscoveryAgent(limiter, p),
		agents.NewScoringAgent(limiter, p),
		agents.NewOutreachAgent(limiter, p, st),
		limiter,
		NewManager(),
	)
	return runner, limiter
}

func creatorSet(n int) []types.Creator {
	creators := make([]types.Creator, 0, n)
	for i := 0; i < n; i++ {
		creators = append(creators, types.Creator{
			ID:   string(rune('a' + i)),
			Name: "Creator " + string(rune('A'+i)),
		})
	}
	return creators
}

func TestRunAbortsOnMissingCampaignIdentifier(t *testing.T) {
	p := &pipelineBackend{
		campaign: &types.GeneratedCampaign{Title: "No identifier"},
		creators: creatorSet(3),
	}
	runner, _ := newTestRunner(p)

	_, err := runner.Run(context.Background(), types.BusinessRequirements{OutreachCount: 3})
	if !errors.Is(err, ErrCampaignIdentifier) {
		t.Fatalf("Run error = %v, want ErrCampaignIdentifier", err)
	}
	if p.analysisCalls != 0 || p.discoverCalls != 0 || p.scoreCalls != 0 || p.messageCalls != 0 {
		t.Errorf("later stages ran after fatal campaign failure: analysis=%d discover=%d score=%d message=%d",
			p.analysisCalls, p.discoverCalls, p.scoreCalls, p.messageCalls)
	}
	if state := runner.Manager().GetState(); state != StateError {
		t.Errorf("state = %q, want %q", state, StateError)
	}
}

func TestRunSkipsScoringAndOutreachWhenNoCandidates(t *testing.T) {
	p := &pipelineBackend{
		campaign: &types.GeneratedCampaign{ID: "camp-1", Title: "Launch", Confidence: 0.8},
		creators: nil,
	}
	runner, _ := newTestRunner(p)

	result, err := runner.Run(context.Background(), types.BusinessRequirements{OutreachCount: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Summary.TotalSent != 0 {
		t.Errorf("totalSent = %d, want 0", result.Summary.TotalSent)
	}
	if p.scoreCalls != 0 || p.messageCalls != 0 {
		t.Errorf("scoring/outreach ran despite empty discovery: score=%d message=%d", p.scoreCalls, p.messageCalls)
	}
	if len(result.Suggestions) == 0 {
		t.Error("partial result missing remediation suggestions")
	}
	if result.Confidence >= 0.8 {
		t.Errorf("confidence = %v, want reduced below campaign confidence", result.Confidence)
	}

	status := runner.Manager().GetStatus()
	sawSkip := map[string]bool{}
	for _, ev := range status.Progress {
		if ev.Stage == types.StageScoring || ev.Stage == types.StageOutreach {
			if ev.Status != types.StageCompleted {
				t.Errorf("stage %s status = %q, want completed with skip note", ev.Stage, ev.Status)
			}
			if ev.Note == "skipped: no candidates" {
				sawSkip[ev.Stage] = true
			}
		}
	}
	if !sawSkip[types.StageScoring] || !sawSkip[types.StageOutreach] {
		t.Errorf("missing skip annotations: %v", sawSkip)
	}
}

func TestRunOutreachBoundedByCandidates(t *testing.T) {
	p := &pipelineBackend{
		campaign: &types.GeneratedCampaign{ID: "camp-1", Confidence: 0.85},
		creators: creatorSet(3),
	}
	runner, _ := newTestRunner(p)

	result, err := runner.Run(context.Background(), types.BusinessRequirements{
		OutreachCount:        5,
		PersonalizedOutreach: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := len(result.Summary.Outreaches); got != 3 {
		t.Errorf("outreaches = %d, want 3 (bounded by discovery, not requested 5)", got)
	}
}

func TestRunStageOrderIsFixed(t *testing.T) {
	p := &pipelineBackend{
		campaign: &types.GeneratedCampaign{ID: "camp-1", Confidence: 0.85},
		creators: creatorSet(2),
	}
	runner, _ := newTestRunner(p)

	if _, err := runner.Run(context.Background(), types.BusinessRequirements{OutreachCount: 2}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{types.StageCampaign, types.StageDiscovery, types.StageScoring, types.StageOutreach}
	var started []string
	for _, ev := range runner.Manager().GetStatus().Progress {
		if ev.Status == types.StageRunning {
			started = append(started, ev.Stage)
		}
	}
	if len(started) != len(want) {
		t.Fatalf("started stages = %v, want %v", started, want)
	}
	for i := range want {
		if started[i] != want[i] {
			t.Fatalf("stage order = %v, want %v", started, want)
		}
	}
}

func TestRunConfidenceNudgedByConsumedAdmissions(t *testing.T) {
	p := &pipelineBackend{
		campaign: &types.GeneratedCampaign{ID: "camp-1", Confidence: 0.8},
		creators: creatorSet(2),
	}
	runner, _ := newTestRunner(p)

	result, err := runner.Run(context.Background(), types.BusinessRequirements{OutreachCount: 2, PersonalizedOutreach: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// campaign 0.8 blended with mean score 0.8 = 0.8, plus the live-AI nudge.
	want := 0.8 + config.LiveAIConfidenceNudge
	if diff := result.Confidence - want; diff > 0.0001 || diff < -0.0001 {
		t.Errorf("confidence = %v, want %v", result.Confidence, want)
	}
}

func TestRunConfidenceNeverExceedsOne(t *testing.T) {
	p := &pipelineBackend{
		campaign: &types.GeneratedCampaign{ID: "camp-1", Confidence: 1.0},
		creators: creatorSet(1),
	}
	runner, _ := newTestRunner(p)

	result, err := runner.Run(context.Background(), types.BusinessRequirements{OutreachCount: 1, PersonalizedOutreach: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Confidence > 1 {
		t.Errorf("confidence = %v, want clamped to 1", result.Confidence)
	}
}

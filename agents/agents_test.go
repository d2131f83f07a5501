package agents

import (
	"context"
	"errors"
	"time"

	"influencerflow/backend"
	"influencerflow/config"
	"influencerflow/ratelimit"
	"influencerflow/types"
)

// fakeBackend scripts per-operation behavior for stage tests.
type fakeBackend struct {
	campaign    *types.GeneratedCampaign
	campaignErr error

	analysis    *types.QueryAnalysis
	analysisErr error

	creators     []types.Creator
	discoverErr  error
	discoverSeen []types.DiscoveryCriteria

	scores   map[string]*types.CreatorMatch
	scoreErr error

	message    *types.OutreachMessage
	messageErr error

	strategy    *types.NegotiationStrategy
	strategyErr error

	followUp    *types.OutreachMessage
	followUpErr error
}

func (f *fakeBackend) GenerateCampaign(ctx context.Context, req types.BusinessRequirements) (*types.GeneratedCampaign, error) {
	if f.campaignErr != nil {
		return nil, f.campaignErr
	}
	return f.campaign, nil
}

func (f *fakeBackend) AnalyzeQuery(ctx context.Context, query, conversationContext string) (*types.QueryAnalysis, error) {
	if f.analysisErr != nil {
		return nil, f.analysisErr
	}
	return f.analysis, nil
}

func (f *fakeBackend) DiscoverCreators(ctx context.Context, criteria types.DiscoveryCriteria) ([]types.Creator, error) {
	f.discoverSeen = append(f.discoverSeen, criteria)
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	return f.creators, nil
}

func (f *fakeBackend) ScoreCreator(ctx context.Context, campaign types.GeneratedCampaign, creator types.Creator) (*types.CreatorMatch, error) {
	if f.scoreErr != nil {
		return nil, f.scoreErr
	}
	match, ok := f.scores[creator.ID]
	if !ok {
		return nil, errors.New("no scripted score")
	}
	out := *match
	out.Creator = creator
	return &out, nil
}

func (f *fakeBackend) GenerateOutreachMessage(ctx context.Context, campaign types.GeneratedCampaign, match types.CreatorMatch, req types.BusinessRequirements) (*types.OutreachMessage, error) {
	if f.messageErr != nil {
		return nil, f.messageErr
	}
	return f.message, nil
}

func (f *fakeBackend) GenerateNegotiationStrategy(ctx context.Context, nc types.NegotiationContext) (*types.NegotiationStrategy, error) {
	if f.strategyErr != nil {
		return nil, f.strategyErr
	}
	return f.strategy, nil
}

func (f *fakeBackend) GenerateFollowUpMessage(ctx context.Context, creator types.Creator, brand backend.BrandInfo, daysSince int, previousType, conversationContext string) (*types.OutreachMessage, error) {
	if f.followUpErr != nil {
		return nil, f.followUpErr
	}
	return f.followUp, nil
}

// testLimiter is generous enough that agent tests never wait.
func testLimiter() *ratelimit.Limiter {
	return ratelimit.New(1000, config.RateLimitWindow, time.Millisecond)
}

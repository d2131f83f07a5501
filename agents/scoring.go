package agents

import (
	"context"
	"log"
	"sort"
	"strings"

	"influencerflow/ratelimit"
	"influencerflow/types"
)

// ScoringBackend is the slice of the backend client the scoring stage uses.
type ScoringBackend interface {
	ScoreCreator(ctx context.Context, campaign types.GeneratedCampaign, creator types.Creator) (*types.CreatorMatch, error)
}

// ScoringAgent scores each discovered creator against the campaign and
// returns matches sorted by descending score.
type ScoringAgent struct {
	limiter *ratelimit.Limiter
	backend ScoringBackend
}

// NewScoringAgent creates the scoring stage service.
func NewScoringAgent(limiter *ratelimit.Limiter, backend ScoringBackend) *ScoringAgent {
	return &ScoringAgent{limiter: limiter, backend: backend}
}

// Score evaluates every creator, falling back per creator on failure, and
// returns matches ordered best-first.
func (a *ScoringAgent) Score(ctx context.Context, campaign types.GeneratedCampaign, creators []types.Creator) []types.CreatorMatch {
	matches := make([]types.CreatorMatch, 0, len(creators))
	for _, creator := range creators {
		matches = append(matches, a.scoreOne(ctx, campaign, creator))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

func (a *ScoringAgent) scoreOne(ctx context.Context, campaign types.GeneratedCampaign, creator types.Creator) types.CreatorMatch {
	if err := a.limiter.Admit(ctx, "scoring-agent"); err != nil {
		log.Printf("📊 Scoring Agent: admission aborted for %s (%v), using fallback score", creator.Name, err)
		return fallbackScore(campaign, creator)
	}

	match, err := a.backend.ScoreCreator(ctx, campaign, creator)
	if err != nil {
		log.Printf("📊 Scoring Agent: backend scoring failed for %s (%v), using fallback score", creator.Name, err)
		return fallbackScore(campaign, creator)
	}

	if match.RecommendedAction == "" {
		match.RecommendedAction = actionForScore(match.Score)
	}
	log.Printf("✅ Scoring Agent: %s scored %.0f", creator.Name, match.Score)
	return *match
}

// actionForScore maps an overall score to a recommendation tier.
func actionForScore(score float64) string {
	switch {
	case score >= 80:
		return types.ActionHighlyRecommend
	case score >= 65:
		return types.ActionRecommend
	case score >= 45:
		return types.ActionConsider
	default:
		return types.ActionNotRecommended
	}
}

// fallbackScore assesses the pairing from profile data alone: base 50, +10
// platform match, +10 follower threshold, +5 rate within budget.
func fallbackScore(campaign types.GeneratedCampaign, creator types.Creator) types.CreatorMatch {
	score := 50.0
	reasons := []string{"Fallback scoring: full AI analysis not performed."}
	strengths := []string{"Basic profile data available."}
	var concerns []string

	platformMatch := false
	for _, p := range campaign.Platforms {
		if strings.EqualFold(p, creator.Platform) {
			platformMatch = true
			break
		}
	}
	if platformMatch {
		score += 10
		reasons = append(reasons, "Platform match.")
		strengths = append(strengths, "Platform aligned with campaign.")
	} else {
		concerns = append(concerns, "Platform mismatch.")
	}

	minFollowers := campaign.MinFollowers
	if minFollowers == 0 {
		minFollowers = 5000
	}
	if creator.Metrics.Followers >= minFollowers {
		score += 10
		reasons = append(reasons, "Sufficient follower count.")
		strengths = append(strengths, "Meets minimum follower requirement.")
	} else {
		concerns = append(concerns, "Follower count below minimum.")
	}

	withinBudget := creator.Rates.Post <= campaign.BudgetMax
	if withinBudget {
		score += 5
		strengths = append(strengths, "Rate within campaign budget.")
	} else {
		concerns = append(concerns, "Stated rate may exceed campaign max budget.")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	costEfficiency := 50.0
	if withinBudget {
		costEfficiency = 70.0
	}

	return types.CreatorMatch{
		Creator:   creator,
		Score:     score,
		Reasoning: strings.Join(reasons, " "),
		Strengths: strengths,
		Concerns:  concerns,
		FitAnalysis: types.FitAnalysis{
			AudienceAlignment: score * 0.8,
			ContentQuality:    60,
			EngagementRateFit: score * 0.7,
			BrandSafety:       75,
			CostEfficiency:    costEfficiency,
		},
		RecommendedAction: actionForScore(score),
		EstimatedPerformance: types.EstimatedPerformance{
			ExpectedReach:      int(float64(creator.Metrics.Followers) * 0.7),
			ExpectedEngagement: int(float64(creator.Metrics.Followers) * creator.Metrics.EngagementRate / 100),
			ExpectedROI:        1.5,
		},
		Method: types.MethodFallback,
	}
}

// Package agents contains the pipeline stage services. Each stage acquires
// rate-limiter admission, calls the AI backend, and on any failure (auth
// absence included) synthesizes a deterministic local result so the pipeline
// can continue. Outputs carry a provenance method so reports can tell
// AI-derived data from heuristic data.
package agents

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"influencerflow/config"
	"influencerflow/ratelimit"
	"influencerflow/types"
)

const campaignAgentVersion = "campaign-builder-v1.0"

// CampaignBackend is the slice of the backend client the campaign stage uses.
type CampaignBackend interface {
	GenerateCampaign(ctx context.Context, req types.BusinessRequirements) (*types.GeneratedCampaign, error)
}

// CampaignAgent generates a campaign from business requirements.
type CampaignAgent struct {
	limiter *ratelimit.Limiter
	backend CampaignBackend
	now     func() time.Time
}

// NewCampaignAgent creates the campaign stage service.
func NewCampaignAgent(limiter *ratelimit.Limiter, backend CampaignBackend) *CampaignAgent {
	return &CampaignAgent{limiter: limiter, backend: backend, now: time.Now}
}

// Generate runs the campaign stage. It never returns an error: any backend or
// auth failure produces the offline fallback campaign instead.
func (a *CampaignAgent) Generate(ctx context.Context, req types.BusinessRequirements) *types.GeneratedCampaign {
	if err := a.limiter.Admit(ctx, "campaign-agent"); err != nil {
		log.Printf("🤖 Campaign Agent: admission aborted (%v), using fallback strategy", err)
		return a.fallbackCampaign(req)
	}

	campaign, err := a.backend.GenerateCampaign(ctx, req)
	if err != nil {
		log.Printf("🤖 Campaign Agent: backend call failed (%v), using fallback strategy", err)
		return a.fallbackCampaign(req)
	}

	if campaign.Confidence == 0 {
		campaign.Confidence = config.DefaultCampaignConfidence
	}
	if campaign.AgentVersion == "" {
		campaign.AgentVersion = campaignAgentVersion
	}
	if campaign.GeneratedAt == "" {
		campaign.GeneratedAt = a.now().Format(time.RFC3339)
	}
	log.Printf("✅ Campaign Agent: campaign generated: %s", campaign.Title)
	return campaign
}

// fallbackCampaign synthesizes a campaign from heuristics over the
// requirements: 80%/90% budget band, +7d start, 30d run, applications closing
// 3d before start.
func (a *CampaignAgent) fallbackCampaign(req types.BusinessRequirements) *types.GeneratedCampaign {
	log.Println("🤖 Campaign Agent: generating campaign using offline algorithmic strategy...")

	objective := "Campaign"
	if words := strings.Fields(req.CampaignObjective); len(words) > 0 {
		objective = words[0]
	}

	platforms := req.PreferredPlatforms
	if len(platforms) == 0 {
		platforms = []string{"instagram", "youtube"}
	}
	if len(platforms) > 2 {
		platforms = platforms[:2]
	}

	industry := req.Industry
	if industry == "" {
		industry = "general"
	}
	niches := []string{strings.ToLower(industry), "lifestyle"}

	start := a.now().AddDate(0, 0, 7)
	end := start.AddDate(0, 0, 30)
	deadline := start.AddDate(0, 0, -3)

	budgetMin := int(float64(req.BudgetRange.Min) * 0.8)
	budgetMax := int(float64(req.BudgetRange.Max) * 0.9)

	return &types.GeneratedCampaign{
		ID:           uuid.NewString(),
		Title:        fmt.Sprintf("%s %s Campaign", req.CompanyName, objective),
		Brand:        req.CompanyName,
		Description:  fmt.Sprintf("Algorithmic campaign to %s for %s.", req.CampaignObjective, req.ProductService),
		Brief:        fmt.Sprintf("This campaign supports %s's objectives for %s targeting %s using %s.", req.CompanyName, req.ProductService, req.TargetAudience, strings.Join(platforms, ", ")),
		Platforms:    platforms,
		MinFollowers: 10000,
		Niches:       niches,
		Locations:    []string{"India"},
		Deliverables: []string{"Post", "Story"},
		BudgetMin:    budgetMin,
		BudgetMax:    budgetMax,
		StartDate:    start.Format("2006-01-02"),
		EndDate:      end.Format("2006-01-02"),
		ApplicationDeadline: deadline.Format("2006-01-02"),
		Insights: types.CampaignInsights{
			Strategy:                "Default algorithmic strategy focusing on core requirements.",
			Reasoning:               "Generated because the AI backend was unavailable or returned an error.",
			SuccessFactors:          []string{"Clear call to action", "Targeted audience match"},
			PotentialChallenges:     []string{"Lower engagement than AI-optimized", "Generic content appeal"},
			OptimizationSuggestions: []string{"Manually refine creator list", "Customize outreach messages"},
		},
		Confidence:   config.FallbackCampaignConfidence,
		AgentVersion: campaignAgentVersion + "-fallback",
		GeneratedAt:  a.now().Format(time.RFC3339),
		Method:       types.MethodFallback,
	}
}

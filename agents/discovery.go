package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"influencerflow/ratelimit"
	"influencerflow/types"
)

// DiscoveryBackend is the slice of the backend client the discovery stage uses.
type DiscoveryBackend interface {
	AnalyzeQuery(ctx context.Context, query, conversationContext string) (*types.QueryAnalysis, error)
	DiscoverCreators(ctx context.Context, criteria types.DiscoveryCriteria) ([]types.Creator, error)
}

// DiscoveryAgent finds candidate creators for a campaign. It runs two
// dependent sub-calls: query analysis, then retrieval using the analysis. A
// failed analysis is replaced by a local heuristic and retrieval still runs;
// total failure returns an empty candidate set, never an error.
type DiscoveryAgent struct {
	limiter *ratelimit.Limiter
	backend DiscoveryBackend
}

// NewDiscoveryAgent creates the discovery stage service.
func NewDiscoveryAgent(limiter *ratelimit.Limiter, backend DiscoveryBackend) *DiscoveryAgent {
	return &DiscoveryAgent{limiter: limiter, backend: backend}
}

// Discover returns candidates for the campaign plus the query analysis that
// drove the search.
func (a *DiscoveryAgent) Discover(ctx context.Context, campaign types.GeneratedCampaign) ([]types.Creator, *types.QueryAnalysis) {
	query := buildDiscoveryQuery(campaign)

	analysis := a.analyzeQuery(ctx, query)

	criteria := types.DiscoveryCriteria{
		Platforms:    campaign.Platforms,
		Niches:       campaign.Niches,
		MinFollowers: campaign.MinFollowers,
		Locations:    campaign.Locations,
	}
	// The analysis refines, the campaign decides: only fill gaps from analysis.
	if len(criteria.Platforms) == 0 {
		criteria.Platforms = analysis.ExtractedCriteria.Platforms
	}
	if len(criteria.Niches) == 0 {
		criteria.Niches = analysis.ExtractedCriteria.Niches
	}

	if err := a.limiter.Admit(ctx, "discovery-agent"); err != nil {
		log.Printf("🔍 Discovery Agent: admission aborted (%v), returning empty candidate set", err)
		return []types.Creator{}, analysis
	}

	creators, err := a.backend.DiscoverCreators(ctx, criteria)
	if err != nil {
		log.Printf("🔍 Discovery Agent: retrieval failed (%v), returning empty candidate set", err)
		return []types.Creator{}, analysis
	}

	log.Printf("✅ Discovery Agent: found %d candidate creators", len(creators))
	return creators, analysis
}

func (a *DiscoveryAgent) analyzeQuery(ctx context.Context, query string) *types.QueryAnalysis {
	if err := a.limiter.Admit(ctx, "discovery-agent"); err != nil {
		log.Printf("🔍 Discovery Agent: admission aborted (%v), using heuristic analysis", err)
		return heuristicQueryAnalysis(query)
	}
	analysis, err := a.backend.AnalyzeQuery(ctx, query, "")
	if err != nil {
		log.Printf("🔍 Discovery Agent: query analysis failed (%v), using heuristic analysis", err)
		return heuristicQueryAnalysis(query)
	}
	return analysis
}

func buildDiscoveryQuery(campaign types.GeneratedCampaign) string {
	return fmt.Sprintf("find %s creators on %s with %d+ followers for campaign %q",
		strings.Join(campaign.Niches, ", "),
		strings.Join(campaign.Platforms, ", "),
		campaign.MinFollowers,
		campaign.Title)
}

// heuristicQueryAnalysis classifies the query by keyword when the backend is
// unavailable.
func heuristicQueryAnalysis(query string) *types.QueryAnalysis {
	log.Printf("🔍 Discovery Agent: generating heuristic analysis for query: %.50s...", query)
	lower := strings.ToLower(query)

	queryType := "general_search"
	switch {
	case strings.Contains(lower, "budget") || strings.Contains(lower, "cheap") || strings.Contains(lower, "affordable"):
		queryType = "budget_optimization"
	case strings.Contains(lower, "reach") || strings.Contains(lower, "followers") || strings.Contains(lower, "audience"):
		queryType = "reach_maximization"
	case strings.Contains(lower, "engagement") || strings.Contains(lower, "interact"):
		queryType = "engagement_focused"
	}

	var platforms []string
	for _, p := range []string{"instagram", "youtube", "tiktok"} {
		if strings.Contains(lower, p) {
			platforms = append(platforms, p)
		}
	}

	requirement := query
	if len(requirement) > 70 {
		requirement = requirement[:70]
	}

	return &types.QueryAnalysis{
		Intent:    "Basic understanding: user is looking for influencers.",
		QueryType: queryType,
		ExtractedCriteria: types.ExtractedCriteria{
			Platforms: platforms,
			Niches:    []string{"general"},
		},
		KeyRequirements: []string{requirement + "... (heuristic extraction)"},
		Confidence:      0.40,
		Method:          types.MethodFallback,
	}
}

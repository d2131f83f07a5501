package types

// Provenance markers carried on stage outputs so downstream consumers can tell
// AI-derived data from locally synthesized data.
const (
	MethodAIGenerated  = "ai_generated"
	MethodFallback     = "algorithmic_fallback"
	MethodTemplate     = "template_based"
)

// CampaignInsights captures the strategy reasoning attached to a generated campaign.
type CampaignInsights struct {
	Strategy                string   `json:"strategy"`
	Reasoning               string   `json:"reasoning"`
	SuccessFactors          []string `json:"successFactors"`
	PotentialChallenges     []string `json:"potentialChallenges"`
	OptimizationSuggestions []string `json:"optimizationSuggestions"`
}

// GeneratedCampaign is produced by the campaign stage. Every later stage keys
// off ID; an empty ID is fatal to the rest of the pipeline.
type GeneratedCampaign struct {
	ID                  string           `json:"id"`
	Title               string           `json:"title"`
	Brand               string           `json:"brand"`
	Description         string           `json:"description"`
	Brief               string           `json:"brief"`
	Platforms           []string         `json:"platforms"`
	MinFollowers        int              `json:"minFollowers"`
	Niches              []string         `json:"niches"`
	Locations           []string         `json:"locations"`
	Deliverables        []string         `json:"deliverables"`
	BudgetMin           int              `json:"budgetMin"`
	BudgetMax           int              `json:"budgetMax"`
	StartDate           string           `json:"startDate"`
	EndDate             string           `json:"endDate"`
	ApplicationDeadline string           `json:"applicationDeadline"`
	Insights            CampaignInsights `json:"aiInsights"`
	Confidence          float64          `json:"confidence"`
	AgentVersion        string           `json:"agentVersion,omitempty"`
	GeneratedAt         string           `json:"generatedAt,omitempty"`
	Method              string           `json:"method,omitempty"`
}

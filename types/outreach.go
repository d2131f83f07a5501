package types

// OutreachMessage is one generated outreach email (subject + body).
type OutreachMessage struct {
	Subject    string   `json:"subject"`
	Message    string   `json:"message"`
	Reasoning  string   `json:"reasoning,omitempty"`
	KeyPoints  []string `json:"keyPoints,omitempty"`
	NextSteps  []string `json:"nextSteps,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Method     string   `json:"method,omitempty"`
}

// Outreach send outcomes.
const (
	OutreachSent   = "sent"
	OutreachFailed = "failed"
)

// OutreachResult is the per-candidate outcome of the outreach stage.
type OutreachResult struct {
	CreatorID      string  `json:"creatorId"`
	CreatorName    string  `json:"creatorName"`
	ConversationID string  `json:"conversationId,omitempty"`
	Subject        string  `json:"subject,omitempty"`
	Status         string  `json:"status"`
	Score          float64 `json:"score"`
	Method         string  `json:"method,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// OutreachSummary aggregates the outreach stage for reporting.
type OutreachSummary struct {
	TotalSent   int              `json:"totalSent"`
	TotalFailed int              `json:"totalFailed"`
	Outreaches  []OutreachResult `json:"outreaches"`
}

// FollowUpStrategy selects tone and focus for a follow-up email based on how
// long a conversation has been quiet.
type FollowUpStrategy struct {
	Strategy string `json:"strategy"`
	Tone     string `json:"tone"`
	Focus    string `json:"focus"`
}

// RecommendedOffer is a suggested deal amount with its reasoning.
type RecommendedOffer struct {
	Amount    int    `json:"amount"`
	Reasoning string `json:"reasoning"`
}

// NegotiationStrategy is the guidance produced for one conversation.
type NegotiationStrategy struct {
	CurrentPhase       string           `json:"currentPhase"`
	SuggestedResponse  string           `json:"suggestedResponse"`
	NegotiationTactics []string         `json:"negotiationTactics"`
	RecommendedOffer   RecommendedOffer `json:"recommendedOffer"`
	NextSteps          []string         `json:"nextSteps"`
	Method             string           `json:"method,omitempty"`
}

// NegotiationContext describes the conversation a strategy is requested for.
type NegotiationContext struct {
	CreatorName                string  `json:"creatorName"`
	CreatorPlatform            string  `json:"creatorPlatform"`
	Status                     string  `json:"status"`
	Confidence                 float64 `json:"confidence"`
	BrandName                  string  `json:"brandName"`
	CampaignContext            string  `json:"campaignContext"`
	CurrentOffer               int     `json:"currentOffer,omitempty"`
	ConversationHistorySummary string  `json:"conversationHistorySummary,omitempty"`
}

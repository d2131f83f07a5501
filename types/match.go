package types

// Recommendation tiers, derived from the overall score.
const (
	ActionHighlyRecommend = "highly_recommend"
	ActionRecommend       = "recommend"
	ActionConsider        = "consider"
	ActionNotRecommended  = "not_recommended"
)

// FitAnalysis breaks a compatibility score into per-dimension sub-scores (0-100).
type FitAnalysis struct {
	AudienceAlignment float64 `json:"audienceAlignment"`
	ContentQuality    float64 `json:"contentQuality"`
	EngagementRateFit float64 `json:"engagementRateFit"`
	BrandSafety       float64 `json:"brandSafety"`
	CostEfficiency    float64 `json:"costEfficiency"`
}

// EstimatedPerformance is a rough projection of what a collaboration would yield.
type EstimatedPerformance struct {
	ExpectedReach      int     `json:"expectedReach"`
	ExpectedEngagement int     `json:"expectedEngagement"`
	ExpectedROI        float64 `json:"expectedROI"`
}

// CreatorMatch pairs a creator with a campaign compatibility score (0-100).
// The pipeline always operates on matches sorted by descending score.
type CreatorMatch struct {
	Creator              Creator              `json:"creator"`
	Score                float64              `json:"score"`
	Reasoning            string               `json:"reasoning"`
	Strengths            []string             `json:"strengths,omitempty"`
	Concerns             []string             `json:"concerns,omitempty"`
	FitAnalysis          FitAnalysis          `json:"fitAnalysis"`
	RecommendedAction    string               `json:"recommendedAction"`
	EstimatedPerformance EstimatedPerformance `json:"estimatedPerformance"`
	Method               string               `json:"method,omitempty"`
}

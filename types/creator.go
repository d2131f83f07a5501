package types

// CreatorMetrics holds audience and engagement numbers for a creator profile.
type CreatorMetrics struct {
	Followers      int     `json:"followers"`
	EngagementRate float64 `json:"engagementRate"`
	AvgLikes       int     `json:"avgLikes"`
	AvgComments    int     `json:"avgComments"`
}

// CreatorRates holds the creator's published pricing.
type CreatorRates struct {
	Post int `json:"post"`
}

// Creator is a candidate partner returned by the discovery service.
type Creator struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Username     string         `json:"username"`
	Platform     string         `json:"platform"`
	Niche        []string       `json:"niche"`
	Location     string         `json:"location"`
	Bio          string         `json:"bio,omitempty"`
	Verified     bool           `json:"verified"`
	Rating       float64        `json:"rating,omitempty"`
	ResponseTime string         `json:"responseTime,omitempty"`
	Metrics      CreatorMetrics `json:"metrics"`
	Rates        CreatorRates   `json:"rates"`
	Phone        string         `json:"phone,omitempty"`
}

// ExtractedCriteria is the structured search criteria pulled out of a free-text query.
type ExtractedCriteria struct {
	Platforms     []string `json:"platforms,omitempty"`
	Niches        []string `json:"niches,omitempty"`
	FollowerRange string   `json:"followerRange,omitempty"`
	Budget        string   `json:"budget,omitempty"`
	Location      string   `json:"location,omitempty"`
}

// QueryAnalysis is the first discovery sub-call's output: intent plus criteria.
type QueryAnalysis struct {
	Intent            string            `json:"intent"`
	QueryType         string            `json:"queryType"`
	ExtractedCriteria ExtractedCriteria `json:"extractedCriteria"`
	KeyRequirements   []string          `json:"keyRequirements,omitempty"`
	Confidence        float64           `json:"confidence"`
	Method            string            `json:"method,omitempty"`
}

// DiscoveryCriteria is the concrete filter set sent to the candidate retrieval call.
type DiscoveryCriteria struct {
	Platforms    []string `json:"platforms"`
	Niches       []string `json:"niches"`
	MinFollowers int      `json:"minFollowers"`
	Locations    []string `json:"locations,omitempty"`
}

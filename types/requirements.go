package types

// BudgetRange is the spend band a brand is willing to commit to a campaign.
type BudgetRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// BusinessRequirements is the immutable input to a workflow run.
// It is created by the caller and consumed once; nothing in the pipeline mutates it.
type BusinessRequirements struct {
	CompanyName          string      `json:"companyName"`
	Industry             string      `json:"industry"`
	ProductService       string      `json:"productService"`
	BusinessGoals        []string    `json:"businessGoals"`
	TargetAudience       string      `json:"targetAudience"`
	Demographics         string      `json:"demographics,omitempty"`
	CampaignObjective    string      `json:"campaignObjective"`
	KeyMessage           string      `json:"keyMessage,omitempty"`
	BudgetRange          BudgetRange `json:"budgetRange"`
	Timeline             string      `json:"timeline"`
	PreferredPlatforms   []string    `json:"preferredPlatforms"`
	ContentTypes         []string    `json:"contentTypes,omitempty"`
	SpecialRequirements  string      `json:"specialRequirements,omitempty"`
	OutreachCount        int         `json:"outreachCount"`
	PersonalizedOutreach bool        `json:"personalizedOutreach"`
}

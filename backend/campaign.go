package backend

import (
	"context"
	"fmt"
	"net/http"

	"influencerflow/types"
)

type campaignResponse struct {
	Success  bool                     `json:"success"`
	Campaign *types.GeneratedCampaign `json:"campaign"`
	Method   string                   `json:"method"`
	Error    string                   `json:"error"`
}

// GenerateCampaign asks the backend to build a campaign from business
// requirements. A campaign lacking an identifier is rejected here so callers
// never see a half-usable result.
func (c *Client) GenerateCampaign(ctx context.Context, req types.BusinessRequirements) (*types.GeneratedCampaign, error) {
	var resp campaignResponse
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/campaign/generate", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Campaign == nil {
		return nil, fmt.Errorf("campaign generation unsuccessful: %s", resp.Error)
	}
	if resp.Campaign.ID == "" {
		return nil, fmt.Errorf("campaign response missing identifier")
	}
	if resp.Campaign.Method == "" {
		resp.Campaign.Method = resp.Method
	}
	return resp.Campaign, nil
}

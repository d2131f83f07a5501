package backend

import (
	"context"
	"fmt"
	"net/http"

	"influencerflow/types"
)

type scoreRequest struct {
	Campaign types.GeneratedCampaign `json:"campaign"`
	Creator  types.Creator           `json:"creator"`
}

type scoreResponse struct {
	Success      bool                `json:"success"`
	CreatorMatch *types.CreatorMatch `json:"creatorMatch"`
	Method       string              `json:"method"`
	Error        string              `json:"error"`
}

// ScoreCreator asks the backend for a campaign/creator compatibility
// assessment: overall score, reasoning, and fit breakdown.
func (c *Client) ScoreCreator(ctx context.Context, campaign types.GeneratedCampaign, creator types.Creator) (*types.CreatorMatch, error) {
	payload := scoreRequest{Campaign: campaign, Creator: creator}
	var resp scoreResponse
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/creator/score", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.CreatorMatch == nil {
		return nil, fmt.Errorf("creator scoring unsuccessful: %s", resp.Error)
	}
	match := resp.CreatorMatch
	if match.Method == "" {
		match.Method = resp.Method
	}
	// The backend scores the pairing; the creator profile is ours to attach.
	match.Creator = creator
	return match, nil
}

package backend

import (
	"context"
	"fmt"
	"net/http"

	"influencerflow/types"
)

type negotiationResponse struct {
	Success bool                       `json:"success"`
	Insight *types.NegotiationStrategy `json:"insight"`
	Method  string                     `json:"method"`
	Error   string                     `json:"error"`
}

// GenerateNegotiationStrategy asks the backend for stage-aware negotiation
// guidance for one conversation.
func (c *Client) GenerateNegotiationStrategy(ctx context.Context, nc types.NegotiationContext) (*types.NegotiationStrategy, error) {
	var resp negotiationResponse
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/negotiation/generate-strategy", nc, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Insight == nil {
		return nil, fmt.Errorf("negotiation strategy unsuccessful: %s", resp.Error)
	}
	if resp.Insight.Method == "" {
		resp.Insight.Method = resp.Method
	}
	return resp.Insight, nil
}

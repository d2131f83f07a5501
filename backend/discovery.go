package backend

import (
	"context"
	"fmt"
	"net/http"

	"influencerflow/types"
)

type analyzeQueryRequest struct {
	Query               string `json:"query"`
	ConversationContext string `json:"conversationContext,omitempty"`
}

type analyzeQueryResponse struct {
	Success  bool                 `json:"success"`
	Analysis *types.QueryAnalysis `json:"analysis"`
	Method   string               `json:"method"`
	Error    string               `json:"error"`
}

// AnalyzeQuery runs the first discovery sub-call: turn a free-text search
// query (plus optional conversation context) into structured criteria.
func (c *Client) AnalyzeQuery(ctx context.Context, query, conversationContext string) (*types.QueryAnalysis, error) {
	payload := analyzeQueryRequest{Query: query, ConversationContext: conversationContext}
	var resp analyzeQueryResponse
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/creator/analyze-query", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Analysis == nil {
		return nil, fmt.Errorf("query analysis unsuccessful: %s", resp.Error)
	}
	if resp.Analysis.Method == "" {
		resp.Analysis.Method = resp.Method
	}
	return resp.Analysis, nil
}

type discoverResponse struct {
	Success  bool            `json:"success"`
	Creators []types.Creator `json:"creators"`
	Error    string          `json:"error"`
}

// DiscoverCreators runs the second discovery sub-call: retrieve candidates
// matching the given platform/niche/follower/location criteria.
func (c *Client) DiscoverCreators(ctx context.Context, criteria types.DiscoveryCriteria) ([]types.Creator, error) {
	var resp discoverResponse
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/creator/discover", criteria, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("creator discovery unsuccessful: %s", resp.Error)
	}
	return resp.Creators, nil
}

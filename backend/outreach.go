package backend

import (
	"context"
	"fmt"
	"net/http"

	"influencerflow/types"
)

type outreachMessageRequest struct {
	Campaign     types.GeneratedCampaign    `json:"campaign"`
	CreatorMatch types.CreatorMatch         `json:"creatorMatch"`
	Requirements types.BusinessRequirements `json:"requirements"`
}

// messageEnvelope is the shared response shape of the message-generation
// endpoints: the content fields are inlined next to the success flag.
type messageEnvelope struct {
	Success    bool     `json:"success"`
	Subject    string   `json:"subject"`
	Message    string   `json:"message"`
	Reasoning  string   `json:"reasoning"`
	KeyPoints  []string `json:"keyPoints"`
	NextSteps  []string `json:"nextSteps"`
	Confidence float64  `json:"confidence"`
	Method     string   `json:"method"`
	Error      string   `json:"error"`
}

func (e *messageEnvelope) toMessage() *types.OutreachMessage {
	return &types.OutreachMessage{
		Subject:    e.Subject,
		Message:    e.Message,
		Reasoning:  e.Reasoning,
		KeyPoints:  e.KeyPoints,
		NextSteps:  e.NextSteps,
		Confidence: e.Confidence,
		Method:     e.Method,
	}
}

// GenerateOutreachMessage asks the backend for a personalized outreach email
// for one scored match.
func (c *Client) GenerateOutreachMessage(ctx context.Context, campaign types.GeneratedCampaign, match types.CreatorMatch, req types.BusinessRequirements) (*types.OutreachMessage, error) {
	payload := outreachMessageRequest{Campaign: campaign, CreatorMatch: match, Requirements: req}
	var resp messageEnvelope
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/outreach/generate-message", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Message == "" {
		return nil, fmt.Errorf("outreach generation unsuccessful: %s", resp.Error)
	}
	return resp.toMessage(), nil
}

type followUpRequest struct {
	Creator              types.Creator `json:"creator"`
	BrandInfo            BrandInfo     `json:"brandInfo"`
	DaysSinceLastContact int           `json:"daysSinceLastContact"`
	PreviousEmailType    string        `json:"previousEmailType"`
	ConversationContext  string        `json:"conversationContext,omitempty"`
}

// BrandInfo is the brand side of an outreach or follow-up request.
type BrandInfo struct {
	Name                string            `json:"name"`
	Industry            string            `json:"industry"`
	CampaignGoals       []string          `json:"campaignGoals,omitempty"`
	Budget              types.BudgetRange `json:"budget"`
	Timeline            string            `json:"timeline,omitempty"`
	ContentRequirements []string          `json:"contentRequirements,omitempty"`
}

// GenerateFollowUpMessage asks the backend for a follow-up email tuned to how
// long the conversation has been quiet.
func (c *Client) GenerateFollowUpMessage(ctx context.Context, creator types.Creator, brand BrandInfo, daysSince int, previousType, conversationContext string) (*types.OutreachMessage, error) {
	payload := followUpRequest{
		Creator:              creator,
		BrandInfo:            brand,
		DaysSinceLastContact: daysSince,
		PreviousEmailType:    previousType,
		ConversationContext:  conversationContext,
	}
	var resp messageEnvelope
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/outreach/follow-up-message", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Message == "" {
		return nil, fmt.Errorf("follow-up generation unsuccessful: %s", resp.Error)
	}
	return resp.toMessage(), nil
}

package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"influencerflow/ratelimit"
	"influencerflow/store"
	"influencerflow/types"
)

// OutreachBackend is the slice of the backend client the outreach stage uses.
type OutreachBackend interface {
	GenerateOutreachMessage(ctx context.Context, campaign types.GeneratedCampaign, match types.CreatorMatch, req types.BusinessRequirements) (*types.OutreachMessage, error)
}

// OutreachAgent contacts the top-scored candidates: generate a message
// (AI-personalized or template), persist the conversation record, then send.
type OutreachAgent struct {
	limiter *ratelimit.Limiter
	backend OutreachBackend
	store   store.OutreachStore
}

// NewOutreachAgent creates the outreach stage service.
func NewOutreachAgent(limiter *ratelimit.Limiter, backend OutreachBackend, st store.OutreachStore) *OutreachAgent {
	return &OutreachAgent{limiter: limiter, backend: backend, store: st}
}

// Run contacts at most req.OutreachCount candidates, taking matches in their
// given (best-first) order. Fewer candidates than the requested count means
// fewer outreaches, never padding.
func (a *OutreachAgent) Run(ctx context.Context, campaign types.GeneratedCampaign, matches []types.CreatorMatch, req types.BusinessRequirements) types.OutreachSummary {
	count := req.OutreachCount
	if count <= 0 || count > len(matches) {
		count = len(matches)
	}

	summary := types.OutreachSummary{Outreaches: make([]types.OutreachResult, 0, count)}
	for _, match := range matches[:count] {
		result := a.contact(ctx, campaign, match, req)
		if result.Status == types.OutreachSent {
			summary.TotalSent++
		} else {
			summary.TotalFailed++
		}
		summary.Outreaches = append(summary.Outreaches, result)
	}

	log.Printf("📨 Outreach Agent: %d sent, %d failed", summary.TotalSent, summary.TotalFailed)
	return summary
}

func (a *OutreachAgent) contact(ctx context.Context, campaign types.GeneratedCampaign, match types.CreatorMatch, req types.BusinessRequirements) types.OutreachResult {
	result := types.OutreachResult{
		CreatorID:   match.Creator.ID,
		CreatorName: match.Creator.Name,
		Score:       match.Score,
	}

	message := a.buildMessage(ctx, campaign, match, req)
	result.Subject = message.Subject
	result.Method = message.Method

	conversationID, err := a.store.CreateConversation(ctx, store.ConversationRecord{
		CampaignID:  campaign.ID,
		CreatorID:   match.Creator.ID,
		CreatorName: match.Creator.Name,
		Subject:     message.Subject,
		Status:      "contacted",
	})
	if err != nil {
		log.Printf("❌ Outreach Agent: failed to persist record for %s: %v", match.Creator.Name, err)
		result.Status = types.OutreachFailed
		result.Error = fmt.Sprintf("persist outreach record: %v", err)
		return result
	}
	result.ConversationID = conversationID

	if err := a.store.SendMessage(ctx, conversationID, message.Subject, message.Message); err != nil {
		log.Printf("❌ Outreach Agent: failed to send to %s: %v", match.Creator.Name, err)
		result.Status = types.OutreachFailed
		result.Error = fmt.Sprintf("send message: %v", err)
		return result
	}

	result.Status = types.OutreachSent
	return result
}

// buildMessage prefers AI personalization when requested; template copy is
// both the opt-out path and the fallback.
func (a *OutreachAgent) buildMessage(ctx context.Context, campaign types.GeneratedCampaign, match types.CreatorMatch, req types.BusinessRequirements) *types.OutreachMessage {
	if !req.PersonalizedOutreach {
		log.Printf("📝 Outreach Agent: using template for %s", match.Creator.Name)
		return templateOutreach(campaign, match, req)
	}

	if err := a.limiter.Admit(ctx, "outreach-agent"); err != nil {
		log.Printf("📝 Outreach Agent: admission aborted for %s (%v), using template", match.Creator.Name, err)
		return templateOutreach(campaign, match, req)
	}

	message, err := a.backend.GenerateOutreachMessage(ctx, campaign, match, req)
	if err != nil {
		log.Printf("📝 Outreach Agent: AI generation failed for %s (%v), using template", match.Creator.Name, err)
		return templateOutreach(campaign, match, req)
	}

	log.Printf("✨ Outreach Agent: AI outreach generated for %s", match.Creator.Name)
	return message
}

// templateOutreach is the deterministic outreach email.
func templateOutreach(campaign types.GeneratedCampaign, match types.CreatorMatch, req types.BusinessRequirements) *types.OutreachMessage {
	creator := match.Creator
	niches := strings.Join(creator.Niche, " and ")
	if niches == "" {
		niches = "your niche"
	}
	reasoning := match.Reasoning
	if reasoning == "" {
		reasoning = "your unique content and audience fit our campaign goals."
	}

	subject := fmt.Sprintf("Partnership Opportunity: %s x %s", campaign.Brand, creator.Name)
	body := fmt.Sprintf(`Hi %s,

I hope this message finds you well! I'm reaching out from %s because we've been following your %s content in the %s space, and we're genuinely impressed by your engagement and authentic voice.

We're launching our %q campaign and believe your audience of %d+ followers would be a perfect fit for our %s. Your content style and focus align perfectly with our campaign objectives.

We'd love to discuss a collaboration that would be mutually beneficial. Our campaign budget allows for competitive compensation, and we're flexible on content format and timing to match your style.

Would you be interested in learning more about this partnership opportunity?

Best regards,
%s Partnership Team

P.S. We chose you specifically because %s`,
		creator.Name, campaign.Brand, creator.Platform, niches,
		campaign.Title, creator.Metrics.Followers, req.ProductService,
		campaign.Brand, reasoning)

	return &types.OutreachMessage{
		Subject: subject,
		Message: body,
		Method:  types.MethodTemplate,
	}
}

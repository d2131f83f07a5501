package agents

import (
	"context"
	"fmt"
	"log"
	"math"

	"influencerflow/backend"
	"influencerflow/ratelimit"
	"influencerflow/store"
	"influencerflow/types"
)

// NegotiationContextFor builds a negotiation context from a stored
// conversation. A nil record yields a context with brand fields only.
func NegotiationContextFor(rec *store.ConversationRecord, brandName, campaignContext string) types.NegotiationContext {
	nc := types.NegotiationContext{
		BrandName:       brandName,
		CampaignContext: campaignContext,
	}
	if rec != nil {
		nc.CreatorName = rec.CreatorName
		nc.Status = rec.Status
		nc.CurrentOffer = rec.CurrentOffer
	}
	return nc
}

// NegotiationBackend is the slice of the backend client the negotiation stage uses.
type NegotiationBackend interface {
	GenerateNegotiationStrategy(ctx context.Context, nc types.NegotiationContext) (*types.NegotiationStrategy, error)
	GenerateFollowUpMessage(ctx context.Context, creator types.Creator, brand backend.BrandInfo, daysSince int, previousType, conversationContext string) (*types.OutreachMessage, error)
}

// NegotiationAgent produces deal guidance for an ongoing conversation. It is
// invoked per conversation rather than as part of the four-stage run, and its
// suggested response doubles as the script for a follow-up voice call.
type NegotiationAgent struct {
	limiter *ratelimit.Limiter
	backend NegotiationBackend
}

// NewNegotiationAgent creates the negotiation stage service.
func NewNegotiationAgent(limiter *ratelimit.Limiter, backend NegotiationBackend) *NegotiationAgent {
	return &NegotiationAgent{limiter: limiter, backend: backend}
}

// GenerateStrategy returns negotiation guidance, falling back to the
// algorithmic strategy on any failure.
func (a *NegotiationAgent) GenerateStrategy(ctx context.Context, nc types.NegotiationContext) *types.NegotiationStrategy {
	if err := a.limiter.Admit(ctx, "negotiation-agent"); err != nil {
		log.Printf("🤝 Negotiation Agent: admission aborted (%v), using fallback strategy", err)
		return fallbackStrategy(nc)
	}

	strategy, err := a.backend.GenerateNegotiationStrategy(ctx, nc)
	if err != nil {
		log.Printf("🤝 Negotiation Agent: backend call failed (%v), using fallback strategy", err)
		return fallbackStrategy(nc)
	}

	log.Printf("✅ Negotiation Agent: strategy generated for %s (phase %s)", nc.CreatorName, strategy.CurrentPhase)
	return strategy
}

// FollowUp generates a follow-up email for a quiet conversation, falling back
// to the deterministic template on any failure.
func (a *NegotiationAgent) FollowUp(ctx context.Context, creator types.Creator, brand backend.BrandInfo, daysSince int, previousType, conversationContext string) *types.OutreachMessage {
	if err := a.limiter.Admit(ctx, "negotiation-agent"); err != nil {
		log.Printf("🤝 Negotiation Agent: admission aborted (%v), using fallback follow-up", err)
		return fallbackFollowUp(creator, brand, daysSince)
	}

	message, err := a.backend.GenerateFollowUpMessage(ctx, creator, brand, daysSince, previousType, conversationContext)
	if err != nil {
		log.Printf("🤝 Negotiation Agent: follow-up generation failed (%v), using fallback", err)
		return fallbackFollowUp(creator, brand, daysSince)
	}
	return message
}

// FollowUpStrategyFor selects tone and focus by how long the conversation has
// been quiet.
func FollowUpStrategyFor(daysSinceLastContact int) types.FollowUpStrategy {
	switch {
	case daysSinceLastContact <= 3:
		return types.FollowUpStrategy{Strategy: "Wait Longer", Tone: "Patient", Focus: "Give space"}
	case daysSinceLastContact <= 7:
		return types.FollowUpStrategy{Strategy: "Gentle Reminder", Tone: "Friendly & Understanding", Focus: "Soft check-in + value"}
	case daysSinceLastContact <= 14:
		return types.FollowUpStrategy{Strategy: "Value-Added Follow-up", Tone: "Professional & Informative", Focus: "Share updates or improved offer"}
	case daysSinceLastContact <= 30:
		return types.FollowUpStrategy{Strategy: "Strategic Re-engagement", Tone: "Direct & Respectful", Focus: "Best offer or deadline"}
	default:
		return types.FollowUpStrategy{Strategy: "Relationship Preservation", Tone: "Gracious & Future-Focused", Focus: "Keep door open"}
	}
}

// fallbackStrategy suggests a rapport-first opener with a 10% bump over the
// current offer.
func fallbackStrategy(nc types.NegotiationContext) *types.NegotiationStrategy {
	creatorName := nc.CreatorName
	if creatorName == "" {
		creatorName = "Creator"
	}
	brandName := nc.BrandName
	if brandName == "" {
		brandName = "our brand"
	}
	baseOffer := nc.CurrentOffer
	if baseOffer == 0 {
		baseOffer = 10000
	}

	return &types.NegotiationStrategy{
		CurrentPhase:      "initial_interest",
		SuggestedResponse: fmt.Sprintf("Hi %s! Thanks for your interest in %s. Let's discuss a collaboration!", creatorName, brandName),
		NegotiationTactics: []string{
			"Build rapport",
			"Emphasize mutual value",
		},
		RecommendedOffer: types.RecommendedOffer{
			Amount:    int(math.Round(float64(baseOffer) * 1.1)),
			Reasoning: "Algorithmic suggestion based on initial offer/base value.",
		},
		NextSteps: []string{"Schedule a call", "Prepare campaign brief"},
		Method:    types.MethodFallback,
	}
}

// fallbackFollowUp is the deterministic follow-up email.
func fallbackFollowUp(creator types.Creator, brand backend.BrandInfo, daysSince int) *types.OutreachMessage {
	creatorName := creator.Name
	if creatorName == "" {
		creatorName = "Creator"
	}
	brandName := brand.Name
	if brandName == "" {
		brandName = "Our Brand"
	}

	subject := fmt.Sprintf("Following Up: %s & %s Collaboration", brandName, creatorName)
	body := fmt.Sprintf(`Hi %s,

Just wanted to gently touch base regarding our previous message about a potential collaboration with %s.
It has been %d days, and we wanted to see if you had any thoughts or questions.

We understand you're busy, so no pressure at all. If you're interested, we'd love to hear from you. If not, we appreciate your time and wish you the best!

Sincerely,
The %s Team`, creatorName, brandName, daysSince, brandName)

	strategy := FollowUpStrategyFor(daysSince)
	return &types.OutreachMessage{
		Subject:   subject,
		Message:   body,
		Reasoning: fmt.Sprintf("Algorithmic follow-up (%s).", strategy.Strategy),
		KeyPoints: []string{strategy.Focus, strategy.Tone},
		NextSteps: []string{"Monitor for any response"},
		Method:    types.MethodFallback,
	}
}

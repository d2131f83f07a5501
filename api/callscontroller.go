package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"influencerflow/agents"
	"influencerflow/calltrack"
	"influencerflow/store"
	"influencerflow/voice"
)

// InitiateCallRequest starts an outbound call to a creator. When
// UseNegotiationScript is set, a negotiation strategy is generated and its
// suggested response used as the call script.
type InitiateCallRequest struct {
	ConversationID       string `json:"conversationId"`
	Phone                string `json:"phone"`
	BrandName            string `json:"brandName"`
	CampaignTitle        string `json:"campaignTitle,omitempty"`
	UseNegotiationScript bool   `json:"useNegotiationScript,omitempty"`
}

// RegisterCallRoutes registers call-tracking routes.
func RegisterCallRoutes(r *gin.Engine, engine *calltrack.Engine, negotiation *agents.NegotiationAgent, convStore store.ConversationStore) {
	r.POST("/api/calls/initiate", handleInitiateCall(engine, negotiation, convStore))
	r.GET("/api/calls/state", handleCallState(engine))
	r.POST("/api/calls/fetch-last", handleFetchLast(engine))
}

func handleInitiateCall(engine *calltrack.Engine, negotiation *agents.NegotiationAgent, convStore store.ConversationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InitiateCallRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if req.Phone == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "phone is required"})
			return
		}

		callReq := voice.CallRequest{
			Phone:          req.Phone,
			BrandName:      req.BrandName,
			CampaignTitle:  req.CampaignTitle,
			ConversationID: req.ConversationID,
		}

		var rec *store.ConversationRecord
		if req.ConversationID != "" {
			found, err := convStore.Find(c.Request.Context(), req.ConversationID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
				return
			}
			rec = found
		}
		if rec != nil {
			callReq.CreatorName = rec.CreatorName
		}

		if req.UseNegotiationScript {
			negCtx := agents.NegotiationContextFor(rec, req.BrandName, req.CampaignTitle)
			strategy := negotiation.GenerateStrategy(c.Request.Context(), negCtx)
			callReq.Script = strategy.SuggestedResponse
		}

		callID, err := engine.InitiateCall(c.Request.Context(), callReq)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"success": true, "callId": callID})
	}
}

func handleCallState(engine *calltrack.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, engine.GetSnapshot())
	}
}

func handleFetchLast(engine *calltrack.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := engine.FetchLast(c.Request.Context()); err != nil {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "state": engine.GetSnapshot()})
	}
}

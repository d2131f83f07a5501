// Package api exposes the workflow and call-tracking endpoints over HTTP.
package api

import (
	"github.com/gin-gonic/gin"

	"influencerflow/agents"
	"influencerflow/calltrack"
	"influencerflow/store"
	"influencerflow/workflow"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(runner *workflow.Runner, engine *calltrack.Engine, negotiation *agents.NegotiationAgent, convStore store.ConversationStore) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterWorkflowRoutes(r, runner)
	RegisterCallRoutes(r, engine, negotiation, convStore)
	RegisterHealthRoutes(r)
	return r
}

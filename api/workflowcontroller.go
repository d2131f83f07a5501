package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"influencerflow/types"
	"influencerflow/workflow"
)

// RegisterWorkflowRoutes registers workflow-related routes.
func RegisterWorkflowRoutes(r *gin.Engine, runner *workflow.Runner) {
	r.POST("/api/workflow/start", handleStartWorkflow(runner))
	r.GET("/api/workflow/status", handleWorkflowStatus(runner))
}

// handleStartWorkflow kicks off a workflow run in the background. Only one
// run at a time; a second start while running returns 409.
func handleStartWorkflow(runner *workflow.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.BusinessRequirements
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		if runner.Manager().GetState() == workflow.StateRunning {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "a workflow is already running"})
			return
		}

		log.Printf("📥 Workflow start requested for %q", req.CompanyName)
		go func() {
			if _, err := runner.Run(context.Background(), req); err != nil {
				log.Printf("❌ Workflow failed: %v", err)
			}
		}()

		c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "workflow started"})
	}
}

func handleWorkflowStatus(runner *workflow.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, runner.Manager().GetStatus())
	}
}

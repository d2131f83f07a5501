package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"influencerflow/calltrack"
	"influencerflow/types"
	"influencerflow/workflow"
)

// APIClient is a thin HTTP client for the workflow API
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetStatus fetches the current workflow status
func (c *APIClient) GetStatus() (*workflow.StatusResponse, error) {
	resp, err := c.client.Get(c.baseURL + "/api/workflow/status")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var status workflow.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &status, nil
}

// GetCallState fetches the current call-tracking snapshot
func (c *APIClient) GetCallState() (*calltrack.Snapshot, error) {
	resp, err := c.client.Get(c.baseURL + "/api/calls/state")
	if err != nil {
		return nil, fmt.Errorf("failed to get call state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var snap calltrack.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &snap, nil
}

// StartWorkflow kicks off a run with the given requirements
func (c *APIClient) StartWorkflow(req types.BusinessRequirements) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal requirements: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+"/api/workflow/start", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to start workflow: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Package voice is the HTTP client for the outbound calling service. It
// starts calls, reports their status while they are live, and fetches the
// recording and transcript after they end.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"influencerflow/auth"
	"influencerflow/backend"
	"influencerflow/config"
)

// CallRequest describes the call to place.
type CallRequest struct {
	Phone          string `json:"phone"`
	CreatorName    string `json:"creatorName"`
	BrandName      string `json:"brandName"`
	CampaignTitle  string `json:"campaignTitle,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Script         string `json:"script,omitempty"`
}

// RawTranscriptEntry is a transcript line exactly as the voice service sends
// it. Timestamp is untyped on purpose: the service returns strings, unix
// numbers, or nothing depending on the provider behind it.
type RawTranscriptEntry struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp any    `json:"timestamp"`
}

// CallDetails is the post-call artifact payload.
type CallDetails struct {
	CallID            string               `json:"callId"`
	RecordingURL      string               `json:"recordingUrl"`
	RecordingDuration int                  `json:"recordingDuration"`
	Transcript        []RawTranscriptEntry `json:"transcript"`
	ConversationID    string               `json:"conversationId"`
}

// Dialer is the surface the call tracker needs from the voice service.
type Dialer interface {
	InitiateCall(ctx context.Context, req CallRequest) (string, error)
	CallStatus(ctx context.Context, callID string) (string, error)
	CallDetails(ctx context.Context, callID string) (*CallDetails, error)
}

// Client talks to the voice service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    auth.SessionProvider
}

// NewClient creates a voice client. An empty baseURL falls back to VOICE_URL,
// then the built-in default.
func NewClient(baseURL string, session auth.SessionProvider) *Client {
	if baseURL == "" {
		baseURL = backend.GetEnvOrDefault("VOICE_URL", config.DefaultVoiceURL)
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: config.CallRequestTimeout},
		session:    session,
	}
}

// InitiateCall starts an outbound call and returns the new call id.
func (c *Client) InitiateCall(ctx context.Context, req CallRequest) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		CallID  string `json:"callId"`
		Error   string `json:"error"`
	}
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/voice/call", req, &out); err != nil {
		return "", fmt.Errorf("failed to initiate call: %w", err)
	}
	if !out.Success {
		return "", fmt.Errorf("voice service rejected call: %s", out.Error)
	}
	if out.CallID == "" {
		return "", fmt.Errorf("voice service returned no call id")
	}
	return out.CallID, nil
}

// CallStatus returns the current status string for a call.
func (c *Client) CallStatus(ctx context.Context, callID string) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
		Error   string `json:"error"`
	}
	path := fmt.Sprintf("/api/voice/call/%s/status", callID)
	if err := c.doJSONRequest(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", fmt.Errorf("failed to fetch call status: %w", err)
	}
	if !out.Success {
		return "", fmt.Errorf("voice service status error: %s", out.Error)
	}
	return out.Status, nil
}

// CallDetails fetches the recording and transcript for a finished call.
func (c *Client) CallDetails(ctx context.Context, callID string) (*CallDetails, error) {
	var out struct {
		Success bool         `json:"success"`
		Details *CallDetails `json:"details"`
		Error   string       `json:"error"`
	}
	path := fmt.Sprintf("/api/voice/call/%s/details", callID)
	if err := c.doJSONRequest(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch call details: %w", err)
	}
	if !out.Success || out.Details == nil {
		return nil, fmt.Errorf("voice service details error: %s", out.Error)
	}
	if out.Details.CallID == "" {
		out.Details.CallID = callID
	}
	return out.Details, nil
}

func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload, result interface{}) error {
	token, err := c.session.Token(ctx)
	if err != nil {
		return fmt.Errorf("voice auth: %w", err)
	}

	url := fmt.Sprintf("%s%s", c.baseURL, path)

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("voice service returned %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

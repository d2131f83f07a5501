// Package backend is the HTTP client for the AI backend that powers every
// pipeline stage: campaign generation, query analysis, candidate discovery,
// creator scoring, outreach copywriting, and negotiation strategy.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"influencerflow/auth"
	"influencerflow/config"
)

// Client talks to the AI backend. Every request carries the current session's
// bearer token; a missing session surfaces as an error the stage services
// absorb with their local fallbacks.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    auth.SessionProvider
}

// NewClient creates a backend client. An empty baseURL falls back to
// BACKEND_URL, then the built-in default.
func NewClient(baseURL string, session auth.SessionProvider) *Client {
	if baseURL == "" {
		baseURL = GetEnvOrDefault("BACKEND_URL", config.DefaultBackendURL)
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		session:    session,
	}
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// doJSONRequest performs an authenticated JSON request against the backend.
// It marshals the payload, attaches the bearer token, executes the request,
// and unmarshals the response into result (skipped when result is nil).
func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload, result interface{}) error {
	token, err := c.session.Token(ctx)
	if err != nil {
		return fmt.Errorf("backend auth: %w", err)
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
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SetTimeout overrides the default request timeout (tests use short ones).
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

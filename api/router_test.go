package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"influencerflow/agents"
	"influencerflow/backend"
	"influencerflow/calltrack"
	"influencerflow/config"
	"influencerflow/ratelimit"
	"influencerflow/store"
	"influencerflow/voice"
	"influencerflow/workflow"
)

type stubDialer struct{}

func (stubDialer) InitiateCall(ctx context.Context, req voice.CallRequest) (string, error) {
	return "call-test", nil
}

func (stubDialer) CallStatus(ctx context.Context, callID string) (string, error) {
	return "completed", nil
}

func (stubDialer) CallDetails(ctx context.Context, callID string) (*voice.CallDetails, error) {
	return &voice.CallDetails{CallID: callID}, nil
}

// newTestRouter wires the full stack over an unreachable backend, so every
// stage resolves through its local fallback.
func newTestRouter(t *testing.T) (*gin.Engine, *workflow.Runner) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	limiter := ratelimit.New(1000, config.RateLimitWindow, time.Millisecond)
	client := backend.NewClient("http://127.0.0.1:1", noSession{})
	st := store.NewMemory()

	runner := workflow.NewRunner(
		agents.NewCampaignAgent(limiter, client),
		agents.NewDiscoveryAgent(limiter, client),
		agents.NewScoringAgent(limiter, client),
		agents.NewOutreachAgent(limiter, client, st),
		limiter,
		workflow.NewManager(),
	)
	negotiation := agents.NewNegotiationAgent(limiter, client)
	engine := calltrack.NewEngine(stubDialer{}, st, nil, nil, time.Millisecond, 24)
	t.Cleanup(engine.Stop)

	return NewRouter(runner, engine, negotiation, st), runner
}

type noSession struct{}

func (noSession) Token(ctx context.Context) (string, error) {
	return "", context.Canceled
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestWorkflowStartAndStatus(t *testing.T) {
	router, runner := newTestRouter(t)

	body := `{"companyName":"Acme","outreachCount":2,"budgetRange":{"min":10000,"max":50000}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/workflow/start", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("start status = %d, want 202: %s", w.Code, w.Body.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runner.Manager().GetState() == workflow.StateComplete {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/workflow/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d, want 200", w.Code)
	}
	var status workflow.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.State != workflow.StateComplete {
		t.Fatalf("state = %q, want complete", status.State)
	}
	if status.Result == nil || status.Result.Campaign == nil {
		t.Fatal("completed status missing result")
	}
}

func TestWorkflowStartRejectsBadJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/workflow/start", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestInitiateCallRequiresPhone(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/calls/initiate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestInitiateCallAndState(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/calls/initiate", strings.NewReader(`{"phone":"+15550001"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("initiate = %d, want 202: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/calls/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("state = %d, want 200", w.Code)
	}
	var snap calltrack.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.LastCallID != "call-test" {
		t.Errorf("lastCallId = %q, want call-test", snap.LastCallID)
	}
}

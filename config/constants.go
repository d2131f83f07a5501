package config

import "time"

// Rate Limiting Constants
const (
	// RateLimitMaxCalls is the maximum number of backend calls admitted per window
	RateLimitMaxCalls = 5

	// RateLimitWindow is the sliding window duration for admission control
	RateLimitWindow = 60 * time.Second

	// RateLimitSafetyMargin is added to computed waits so a re-check lands
	// strictly after the oldest timestamp has left the window
	RateLimitSafetyMargin = 100 * time.Millisecond
)

// Call Tracking Constants
const (
	// CallPollInterval is the delay between consecutive status polls
	CallPollInterval = 5 * time.Second

	// CallPollMaxAttempts caps status polls before a call is treated as timed out
	// (24 attempts at 5s is roughly two minutes)
	CallPollMaxAttempts = 24

	// CallRequestTimeout bounds any single voice-service request
	CallRequestTimeout = 15 * time.Second
)

// Backend Constants
const (
	// DefaultBackendURL is the AI backend used when BACKEND_URL is unset
	DefaultBackendURL = "http://localhost:5001"

	// DefaultVoiceURL is the voice service used when VOICE_URL is unset
	DefaultVoiceURL = "http://localhost:5002"

	// RequestTimeout bounds any single backend HTTP request
	RequestTimeout = 30 * time.Second
)

// Workflow Constants
const (
	// FallbackCampaignConfidence is assigned to algorithmically generated campaigns
	FallbackCampaignConfidence = 0.60

	// DefaultCampaignConfidence is assumed when the backend omits a confidence value
	DefaultCampaignConfidence = 0.85

	// LiveAIConfidenceNudge is added to the final confidence when at least one
	// rate-limited backend call was actually consumed during the run
	LiveAIConfidenceNudge = 0.05
)

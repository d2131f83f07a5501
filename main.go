package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"influencerflow/agents"
	"influencerflow/api"
	"influencerflow/archive"
	"influencerflow/auth"
	"influencerflow/backend"
	"influencerflow/calltrack"
	"influencerflow/config"
	"influencerflow/events"
	"influencerflow/followup"
	"influencerflow/ratelimit"
	"influencerflow/store"
	"influencerflow/voice"
	"influencerflow/workflow"
)

// conversationStore is the combined persistence surface main wires up: the
// outreach stage creates conversations, the call tracker updates them.
type conversationStore interface {
	store.ConversationStore
	store.OutreachStore
	store.ConversationLister
}

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	session := &auth.EnvSession{}
	backendClient := backend.NewClient("", session)
	voiceClient := voice.NewClient("", session)
	limiter := ratelimit.New(config.RateLimitMaxCalls, config.RateLimitWindow, config.RateLimitSafetyMargin)

	convStore := buildStore()

	runner := workflow.NewRunner(
		agents.NewCampaignAgent(limiter, backendClient),
		agents.NewDiscoveryAgent(limiter, backendClient),
		agents.NewScoringAgent(limiter, backendClient),
		agents.NewOutreachAgent(limiter, backendClient, convStore),
		limiter,
		workflow.NewManager(),
	)
	negotiation := agents.NewNegotiationAgent(limiter, backendClient)

	var eventSink calltrack.EventSink
	publisher, err := events.NewPublisherFromEnv()
	if err != nil {
		log.Printf("⚠️  Kafka disabled: %v", err)
	} else if publisher != nil {
		defer publisher.Close()
		runner.AddSink(publisher)
		eventSink = publisher
	}

	var archiver calltrack.Archiver
	arch, err := archive.New(context.Background(), archive.ConfigFromEnv())
	if err != nil {
		log.Printf("⚠️  S3 archiving disabled: %v", err)
	} else if arch != nil {
		archiver = arch
	}

	engine := calltrack.NewEngine(voiceClient, convStore, archiver, eventSink,
		config.CallPollInterval, config.CallPollMaxAttempts)
	defer engine.Stop()

	if spec := os.Getenv("FOLLOWUP_CRON"); spec != "" {
		scheduler := followup.New(negotiation, convStore, backend.BrandInfo{Name: os.Getenv("BRAND_NAME")})
		if err := scheduler.Start(spec); err != nil {
			log.Fatalf("❌ Invalid FOLLOWUP_CRON %q: %v", spec, err)
		}
		defer scheduler.Stop()
	}

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	r := api.NewRouter(runner, engine, negotiation, convStore)
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET  /health")
	log.Println("  POST /api/workflow/start")
	log.Println("  GET  /api/workflow/status")
	log.Println("  POST /api/calls/initiate")
	log.Println("  GET  /api/calls/state")
	log.Println("  POST /api/calls/fetch-last")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// buildStore prefers Redis when configured and falls back to the in-memory
// store otherwise.
func buildStore() conversationStore {
	redisStore, err := store.NewRedisFromEnv()
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	if redisStore != nil {
		log.Println("✅ Using Redis conversation store")
		return redisStore
	}
	log.Println("⚠️  REDIS_ADDR not set, using in-memory conversation store")
	return store.NewMemory()
}

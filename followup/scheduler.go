// Package followup runs the scheduled follow-up sweep: conversations that
// were contacted but have gone quiet get a follow-up message whose tone is
// picked by how long they have been quiet.
package followup

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"influencerflow/agents"
	"influencerflow/backend"
	"influencerflow/store"
	"influencerflow/types"
)

// Store is the persistence surface the sweep needs: enumerate conversations,
// then append the follow-up to the ones that qualify.
type Store interface {
	store.ConversationLister
	SendMessage(ctx context.Context, conversationID, subject, body string) error
}

// Scheduler owns the cron job driving periodic sweeps.
type Scheduler struct {
	cron  *cron.Cron
	agent *agents.NegotiationAgent
	store Store
	brand backend.BrandInfo
	now   func() time.Time
}

// New creates a follow-up scheduler. Start must be called to begin sweeping.
func New(agent *agents.NegotiationAgent, st Store, brand backend.BrandInfo) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		agent: agent,
		store: st,
		brand: brand,
		now:   time.Now,
	}
}

// Start registers the sweep on the given cron schedule and starts the cron
// runner.
func (s *Scheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		sent, err := s.Sweep(context.Background())
		if err != nil {
			log.Printf("❌ Follow-up sweep failed: %v", err)
			return
		}
		log.Printf("📬 Follow-up sweep complete: %d message(s) sent", sent)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("⏰ Follow-up sweep scheduled: %s", schedule)
	return nil
}

// Stop halts the cron runner. Sweeps already in flight finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Sweep walks every contacted conversation and sends a follow-up to the ones
// quiet for long enough. The day-tier strategy decides whether to message at
// all; "Wait Longer" conversations are left alone.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	records, err := s.store.ListConversations(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, rec := range records {
		if rec.Status != "contacted" || rec.LastContactedAt.IsZero() {
			continue
		}
		days := int(s.now().Sub(rec.LastContactedAt).Hours() / 24)
		strategy := agents.FollowUpStrategyFor(days)
		if strategy.Strategy == "Wait Longer" {
			continue
		}

		creator := types.Creator{ID: rec.CreatorID, Name: rec.CreatorName}
		message := s.agent.FollowUp(ctx, creator, s.brand, days, "initial", "")
		if err := s.store.SendMessage(ctx, rec.ID, message.Subject, message.Message); err != nil {
			log.Printf("❌ Follow-up to %s failed: %v", rec.CreatorName, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// Package calltrack owns the lifecycle of the single active outbound call:
// it starts the call, polls its status on a ticker until a terminal state or
// the attempt ceiling, fetches the recording and transcript, and writes the
// contact outcome back onto the originating conversation.
package calltrack

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"influencerflow/store"
	"influencerflow/types"
	"influencerflow/voice"
)

// Snapshot is the externally visible polling state. Every read hands out an
// independent copy; mutating a snapshot never touches the engine.
type Snapshot struct {
	IsPolling              bool                 `json:"isPolling"`
	IsFetchingDetails      bool                 `json:"isFetchingDetails"`
	ActiveCallID           string               `json:"activeCallId,omitempty"`
	LastCallID             string               `json:"lastCallId,omitempty"`
	OriginalConversationID string               `json:"originalConversationId,omitempty"`
	StatusMessage          string               `json:"statusMessage,omitempty"`
	ErrorMessage           string               `json:"errorMessage,omitempty"`
	Artifacts              *types.CallArtifacts `json:"artifacts,omitempty"`
	AttemptCount           int                  `json:"attemptCount"`
	DataChanged            bool                 `json:"dataChanged"`
}

// CallEvent is published on call lifecycle transitions.
type CallEvent struct {
	CallID    string    `json:"callId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Archiver persists completed call artifacts to durable storage.
type Archiver interface {
	ArchiveCallArtifacts(ctx context.Context, artifacts types.CallArtifacts) error
}

// EventSink receives call lifecycle events.
type EventSink interface {
	PublishCallEvent(ev CallEvent)
}

// Subscriber receives state snapshots. The current snapshot is delivered
// immediately on subscribe, then one per state change. Subscribers run on the
// engine's goroutine and must not call back into the engine.
type Subscriber func(Snapshot)

// Engine tracks one call at a time. A new InitiateCall supersedes whatever
// call is in flight: the old poll loop is cancelled before the new call is
// placed and none of its remaining ticks can touch state.
type Engine struct {
	dialer      voice.Dialer
	store       store.ConversationStore
	archiver    Archiver
	events      EventSink
	interval    time.Duration
	maxAttempts int
	now         func() time.Time

	mu         sync.Mutex
	state      Snapshot
	generation int
	cancelLoop context.CancelFunc
	subs       map[int]Subscriber
	nextSubID  int
}

// NewEngine creates a call tracking engine. archiver and events may be nil.
func NewEngine(dialer voice.Dialer, convStore store.ConversationStore, archiver Archiver, events EventSink, interval time.Duration, maxAttempts int) *Engine {
	return &Engine{
		dialer:      dialer,
		store:       convStore,
		archiver:    archiver,
		events:      events,
		interval:    interval,
		maxAttempts: maxAttempts,
		now:         time.Now,
		subs:        make(map[int]Subscriber),
	}
}

// GetSnapshot returns a copy of the current polling state.
func (e *Engine) GetSnapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := e.state
	if e.state.Artifacts != nil {
		artifacts := *e.state.Artifacts
		artifacts.Transcript = append([]types.TranscriptEntry{}, e.state.Artifacts.Transcript...)
		snap.Artifacts = &artifacts
	}
	return snap
}

// Subscribe registers a snapshot consumer. The subscriber is invoked
// synchronously with the current state before Subscribe returns, so a new
// subscriber always starts from the same view GetSnapshot would give it.
// The returned function removes the subscription and is safe to call twice.
func (e *Engine) Subscribe(sub Subscriber) func() {
	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subs[id] = sub
	// Replay under the lock so no broadcast can slip in front of it.
	sub(e.snapshotLocked())
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// broadcastLocked notifies every subscriber with the current snapshot, then
// clears the one-shot dataChanged flag. Callers hold e.mu.
func (e *Engine) broadcastLocked() {
	snap := e.snapshotLocked()
	for _, sub := range e.subs {
		sub(snap)
	}
	e.state.DataChanged = false
}

// InitiateCall places a new outbound call and starts polling it. Any call
// already being tracked is superseded: its poll loop is cancelled and its
// pending ticks are discarded.
func (e *Engine) InitiateCall(ctx context.Context, req voice.CallRequest) (string, error) {
	e.mu.Lock()
	e.supersedeLocked()
	gen := e.generation
	e.state = Snapshot{
		LastCallID:             e.state.LastCallID,
		OriginalConversationID: req.ConversationID,
		StatusMessage:          "initiating call",
	}
	e.broadcastLocked()
	e.mu.Unlock()

	callID, err := e.dialer.InitiateCall(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		// Another initiate superseded us while dialing.
		return callID, err
	}
	if err != nil {
		e.state.ErrorMessage = fmt.Sprintf("failed to start call: %v", err)
		e.state.StatusMessage = ""
		e.broadcastLocked()
		return "", err
	}

	log.Printf("📞 Call %s initiated for conversation %q", callID, req.ConversationID)
	e.state.IsPolling = true
	e.state.ActiveCallID = callID
	e.state.LastCallID = callID
	e.state.StatusMessage = "call started"
	e.state.AttemptCount = 0
	e.publishEvent(callID, "initiated")
	e.broadcastLocked()

	loopCtx, cancel := context.WithCancel(context.Background())
	e.cancelLoop = cancel
	go e.pollLoop(loopCtx, gen, callID)
	return callID, nil
}

// supersedeLocked cancels the active poll loop and invalidates its ticks.
func (e *Engine) supersedeLocked() {
	e.generation++
	if e.cancelLoop != nil {
		e.cancelLoop()
		e.cancelLoop = nil
	}
}

// Stop cancels any active polling. Safe to call repeatedly.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsPolling && e.cancelLoop == nil {
		return
	}
	e.supersedeLocked()
	e.state.IsPolling = false
	e.state.IsFetchingDetails = false
	e.state.ActiveCallID = ""
	e.state.StatusMessage = "polling stopped"
	e.broadcastLocked()
}

// pollLoop drains the ticker from a single goroutine. The status fetch for
// tick N happens inside the tick, so tick N+1 cannot start until N settles.
func (e *Engine) pollLoop(ctx context.Context, gen int, callID string) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := e.tick(ctx, gen, callID); done {
				return
			}
		}
	}
}

// tick performs one poll attempt and reports whether the loop should stop.
// The attempt ceiling is applied after the status query, so a call that
// reaches a terminal status on the final attempt is still handled as terminal.
func (e *Engine) tick(ctx context.Context, gen int, callID string) bool {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return true
	}
	e.state.AttemptCount++
	attempt := e.state.AttemptCount
	e.mu.Unlock()

	status, err := e.dialer.CallStatus(ctx, callID)

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return true
	}
	if err != nil || types.InProgressCallStatus(status) {
		if attempt >= e.maxAttempts {
			log.Printf("⚠️  Call %s: gave up after %d poll attempts", callID, e.maxAttempts)
			e.state.IsPolling = false
			e.state.ActiveCallID = ""
			e.state.StatusMessage = ""
			e.state.ErrorMessage = fmt.Sprintf("call %s timed out after %d status checks", callID, e.maxAttempts)
			e.publishEvent(callID, "timeout")
			e.broadcastLocked()
			e.mu.Unlock()
			return true
		}
		if err != nil {
			// Transient; keep polling until the attempt ceiling.
			e.state.StatusMessage = fmt.Sprintf("status check %d failed, retrying", attempt)
		} else {
			e.state.StatusMessage = fmt.Sprintf("call %s (attempt %d/%d)", status, attempt, e.maxAttempts)
		}
		e.broadcastLocked()
		e.mu.Unlock()
		return false
	}

	// Terminal status.
	e.state.IsPolling = false
	e.publishEvent(callID, status)
	if status != types.CallStatusCompleted {
		log.Printf("❌ Call %s ended: %s", callID, status)
		e.state.ActiveCallID = ""
		e.state.StatusMessage = ""
		e.state.ErrorMessage = fmt.Sprintf("call ended without completing: %s", status)
		e.broadcastLocked()
		e.mu.Unlock()
		return true
	}

	log.Printf("✅ Call %s completed, fetching artifacts", callID)
	e.state.StatusMessage = "call completed, fetching details"
	e.broadcastLocked()
	e.mu.Unlock()

	e.fetchArtifacts(ctx, gen, callID)
	return true
}

// FetchLast re-fetches artifacts for the most recent call, outside the poll
// loop. Used when a completed call's details were not captured. A call still
// being polled has its poll loop stopped before the manual fetch takes over,
// so no tick can race the fetch or re-run it afterwards.
func (e *Engine) FetchLast(ctx context.Context) error {
	e.mu.Lock()
	if e.state.IsFetchingDetails {
		e.mu.Unlock()
		return errors.New("artifact fetch already in progress")
	}
	callID := e.state.LastCallID
	if callID == "" {
		e.mu.Unlock()
		return errors.New("no call to fetch details for")
	}
	if e.state.ActiveCallID == callID {
		e.supersedeLocked()
		e.state.IsPolling = false
	}
	gen := e.generation
	e.mu.Unlock()

	return e.fetchArtifacts(ctx, gen, callID)
}

// fetchArtifacts pulls call details, normalizes them, and records the contact
// outcome on the resolved conversation. The conversation id is resolved in
// priority order: the id the call was started with, then the id embedded in
// the call details, then the call id itself.
func (e *Engine) fetchArtifacts(ctx context.Context, gen int, callID string) error {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return nil
	}
	e.state.IsFetchingDetails = true
	e.broadcastLocked()
	originalConvID := e.state.OriginalConversationID
	e.mu.Unlock()

	details, err := e.dialer.CallDetails(ctx, callID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return nil
	}
	e.state.IsFetchingDetails = false

	if err != nil {
		// A fetch failure invalidates whatever artifacts were cached; stale
		// data next to a fresh error would mislead subscribers.
		e.state.Artifacts = nil
		e.state.ErrorMessage = fmt.Sprintf("failed to fetch call details: %v", err)
		e.finishCallLocked(callID)
		e.broadcastLocked()
		return err
	}

	artifacts := normalizeArtifacts(callID, details)
	e.state.Artifacts = &artifacts
	e.state.DataChanged = true

	convID := originalConvID
	if convID == "" {
		convID = details.ConversationID
	}
	if convID == "" {
		convID = callID
	}

	if _, findErr := e.store.Find(ctx, convID); findErr != nil {
		// No matching conversation record: keep the artifacts in state but
		// write nothing.
		e.state.ErrorMessage = fmt.Sprintf("call %s completed but conversation %q was not found; contact record not updated", callID, convID)
		log.Printf("⚠️  %s", e.state.ErrorMessage)
		e.finishCallLocked(callID)
		e.broadcastLocked()
		return nil
	}

	update := store.ContactUpdate{
		ContactedAt:       e.now(),
		RecordingURL:      artifacts.RecordingURL,
		RecordingDuration: artifacts.RecordingDuration,
	}
	if _, updateErr := e.store.UpdateContact(ctx, convID, update); updateErr != nil {
		e.state.ErrorMessage = fmt.Sprintf("failed to record contact on conversation %q: %v", convID, updateErr)
		e.finishCallLocked(callID)
		e.broadcastLocked()
		return updateErr
	}

	e.state.StatusMessage = "call details saved"
	e.state.ErrorMessage = ""
	e.publishEvent(callID, "artifacts-saved")
	e.finishCallLocked(callID)
	e.broadcastLocked()

	if e.archiver != nil {
		archived := artifacts
		go func() {
			if archiveErr := e.archiver.ArchiveCallArtifacts(context.Background(), archived); archiveErr != nil {
				log.Printf("⚠️  Failed to archive call %s: %v", archived.CallID, archiveErr)
			}
		}()
	}
	return nil
}

// finishCallLocked transitions out of the active-call state if this call is
// still the active one.
func (e *Engine) finishCallLocked(callID string) {
	if e.state.ActiveCallID == callID {
		e.state.ActiveCallID = ""
		e.state.IsPolling = false
	}
	e.state.LastCallID = callID
}

func (e *Engine) publishEvent(callID, status string) {
	if e.events == nil {
		return
	}
	e.events.PublishCallEvent(CallEvent{CallID: callID, Status: status, Timestamp: e.now()})
}

// normalizeArtifacts converts raw call details into canonical artifacts with
// RFC 3339 transcript timestamps.
func normalizeArtifacts(callID string, details *voice.CallDetails) types.CallArtifacts {
	artifacts := types.CallArtifacts{
		CallID:            callID,
		RecordingURL:      details.RecordingURL,
		RecordingDuration: details.RecordingDuration,
		ConversationID:    details.ConversationID,
	}
	for _, raw := range details.Transcript {
		artifacts.Transcript = append(artifacts.Transcript, types.TranscriptEntry{
			Role:      raw.Role,
			Content:   raw.Content,
			Timestamp: normalizeTimestamp(raw.Timestamp),
		})
	}
	return artifacts
}

// normalizeTimestamp coerces the voice service's mixed timestamp types into
// an RFC 3339 string. Unknown shapes come back empty rather than garbled.
func normalizeTimestamp(v any) string {
	switch ts := v.(type) {
	case nil:
		return ""
	case string:
		if ts == "" {
			return ""
		}
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			return parsed.UTC().Format(time.RFC3339)
		}
		if parsed, err := time.Parse("2006-01-02 15:04:05", ts); err == nil {
			return parsed.UTC().Format(time.RFC3339)
		}
		return ts
	case float64:
		// JSON numbers decode as float64; treat them as unix seconds,
		// milliseconds when the magnitude says so.
		sec := int64(ts)
		if sec > 1e12 {
			return time.UnixMilli(sec).UTC().Format(time.RFC3339)
		}
		return time.Unix(sec, 0).UTC().Format(time.RFC3339)
	case int64:
		return time.Unix(ts, 0).UTC().Format(time.RFC3339)
	case int:
		return time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

package calltrack

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"influencerflow/store"
	"influencerflow/types"
	"influencerflow/voice"
)

// fakeDialer scripts the voice service. Statuses are consumed in order per
// call id; the last one repeats.
type fakeDialer struct {
	mu sync.Mutex

	callIDs  []string
	initErr  error
	statuses map[string][]string
	details  map[string]*voice.CallDetails

	initiated    int
	statusCounts map[string]int
	detailsCalls int
}

func (f *fakeDialer) InitiateCall(ctx context.Context, req voice.CallRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initErr != nil {
		return "", f.initErr
	}
	id := f.callIDs[f.initiated%len(f.callIDs)]
	f.initiated++
	return id, nil
}

func (f *fakeDialer) CallStatus(ctx context.Context, callID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusCounts == nil {
		f.statusCounts = make(map[string]int)
	}
	f.statusCounts[callID]++
	seq := f.statuses[callID]
	if len(seq) == 0 {
		return "", errors.New("unknown call")
	}
	status := seq[0]
	if len(seq) > 1 {
		f.statuses[callID] = seq[1:]
	}
	return status, nil
}

func (f *fakeDialer) CallDetails(ctx context.Context, callID string) (*voice.CallDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailsCalls++
	d, ok := f.details[callID]
	if !ok {
		return nil, errors.New("no details")
	}
	return d, nil
}

func (f *fakeDialer) statusCount(callID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCounts[callID]
}

func (f *fakeDialer) detailsCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailsCalls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func newTestEngine(d *fakeDialer, st store.ConversationStore, maxAttempts int) *Engine {
	return NewEngine(d, st, nil, nil, 2*time.Millisecond, maxAttempts)
}

func TestCompletedCallSavesArtifactsAndContact(t *testing.T) {
	st := store.NewMemory()
	convID, _ := st.CreateConversation(context.Background(), store.ConversationRecord{
		CreatorName: "Asha",
		Status:      "contacted",
	})

	d := &fakeDialer{
		callIDs: []string{"call-1"},
		statuses: map[string][]string{
			"call-1": {types.CallStatusRinging, types.CallStatusInProgress, types.CallStatusCompleted},
		},
		details: map[string]*voice.CallDetails{
			"call-1": {
				CallID:            "call-1",
				RecordingURL:      "https://recordings.example/call-1.mp3",
				RecordingDuration: 92,
				Transcript: []voice.RawTranscriptEntry{
					{Role: "agent", Content: "hello", Timestamp: "2026-08-27T10:00:00Z"},
					{Role: "creator", Content: "hi", Timestamp: float64(1787133600)},
				},
			},
		},
	}
	engine := newTestEngine(d, st, 24)

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+15550001", ConversationID: convID}); err != nil {
		t.Fatalf("InitiateCall: %v", err)
	}
	waitFor(t, func() bool {
		snap := engine.GetSnapshot()
		return !snap.IsPolling && !snap.IsFetchingDetails && snap.Artifacts != nil
	})

	snap := engine.GetSnapshot()
	if snap.ErrorMessage != "" {
		t.Fatalf("unexpected error: %s", snap.ErrorMessage)
	}
	if snap.Artifacts.RecordingURL != "https://recordings.example/call-1.mp3" {
		t.Errorf("recording url = %q", snap.Artifacts.RecordingURL)
	}
	for i, entry := range snap.Artifacts.Transcript {
		if _, err := time.Parse(time.RFC3339, entry.Timestamp); err != nil {
			t.Errorf("transcript[%d] timestamp %q is not RFC 3339", i, entry.Timestamp)
		}
	}

	rec, err := st.Find(context.Background(), convID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if rec.RecordingURL == "" || rec.RecordingDuration != 92 {
		t.Errorf("contact update not applied: %+v", rec)
	}
	if rec.LastContactedAt.IsZero() {
		t.Error("lastContactedAt not set")
	}
	if rec.Status != "contacted" {
		t.Errorf("status changed to %q; contact update must touch nothing else", rec.Status)
	}
}

func TestInitiateSupersedesActiveCall(t *testing.T) {
	d := &fakeDialer{
		callIDs: []string{"call-A", "call-B"},
		statuses: map[string][]string{
			"call-A": {types.CallStatusInProgress},
			"call-B": {types.CallStatusInProgress},
		},
	}
	engine := newTestEngine(d, store.NewMemory(), 1000)

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+1"}); err != nil {
		t.Fatalf("first InitiateCall: %v", err)
	}
	waitFor(t, func() bool { return d.statusCount("call-A") > 0 })

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+2"}); err != nil {
		t.Fatalf("second InitiateCall: %v", err)
	}

	if got := engine.GetSnapshot().ActiveCallID; got != "call-B" {
		t.Fatalf("active call = %q, want call-B", got)
	}

	// The superseded loop must stop polling call-A.
	time.Sleep(20 * time.Millisecond)
	before := d.statusCount("call-A")
	time.Sleep(30 * time.Millisecond)
	if after := d.statusCount("call-A"); after != before {
		t.Errorf("superseded call still polled: %d -> %d", before, after)
	}
	if engine.GetSnapshot().ActiveCallID != "call-B" {
		t.Error("stale tick overwrote the superseding call's state")
	}
	engine.Stop()
}

func TestPollingStopsAtAttemptCeiling(t *testing.T) {
	d := &fakeDialer{
		callIDs:  []string{"call-1"},
		statuses: map[string][]string{"call-1": {types.CallStatusInProgress}},
	}
	engine := newTestEngine(d, store.NewMemory(), 3)

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+1"}); err != nil {
		t.Fatalf("InitiateCall: %v", err)
	}
	waitFor(t, func() bool { return !engine.GetSnapshot().IsPolling })

	snap := engine.GetSnapshot()
	if !strings.Contains(snap.ErrorMessage, "timed out") {
		t.Errorf("error = %q, want timeout message", snap.ErrorMessage)
	}
	if snap.ActiveCallID != "" {
		t.Errorf("active call = %q, want cleared after timeout", snap.ActiveCallID)
	}
	if d.detailsCount() != 0 {
		t.Error("details fetched for a timed-out call")
	}
}

func TestFailedCallDoesNotFetchDetails(t *testing.T) {
	d := &fakeDialer{
		callIDs:  []string{"call-1"},
		statuses: map[string][]string{"call-1": {types.CallStatusRinging, types.CallStatusNoAnswer}},
	}
	engine := newTestEngine(d, store.NewMemory(), 24)

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+1"}); err != nil {
		t.Fatalf("InitiateCall: %v", err)
	}
	waitFor(t, func() bool { return !engine.GetSnapshot().IsPolling })

	snap := engine.GetSnapshot()
	if !strings.Contains(snap.ErrorMessage, types.CallStatusNoAnswer) {
		t.Errorf("error = %q, want terminal status mentioned", snap.ErrorMessage)
	}
	if d.detailsCount() != 0 {
		t.Error("details fetched for a call that never completed")
	}
}

func TestMissingConversationLeavesStoreUntouched(t *testing.T) {
	st := store.NewMemory()
	d := &fakeDialer{
		callIDs:  []string{"call-1"},
		statuses: map[string][]string{"call-1": {types.CallStatusCompleted}},
		details: map[string]*voice.CallDetails{
			"call-1": {CallID: "call-1", RecordingURL: "u", ConversationID: "conv-ghost"},
		},
	}
	engine := newTestEngine(d, st, 24)

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+1"}); err != nil {
		t.Fatalf("InitiateCall: %v", err)
	}
	waitFor(t, func() bool {
		snap := engine.GetSnapshot()
		return !snap.IsPolling && !snap.IsFetchingDetails
	})

	snap := engine.GetSnapshot()
	if !strings.Contains(snap.ErrorMessage, "not found") {
		t.Errorf("error = %q, want missing-conversation message", snap.ErrorMessage)
	}
	if snap.Artifacts == nil {
		t.Error("artifacts should be retained in state even without a conversation record")
	}
	if _, err := st.Find(context.Background(), "conv-ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("a record was created for the unknown conversation: %v", err)
	}
}

func TestConversationResolutionPrefersOriginalContext(t *testing.T) {
	st := store.NewMemory()
	originalID, _ := st.CreateConversation(context.Background(), store.ConversationRecord{CreatorName: "A"})
	embeddedID, _ := st.CreateConversation(context.Background(), store.ConversationRecord{CreatorName: "B"})

	d := &fakeDialer{
		callIDs:  []string{"call-1"},
		statuses: map[string][]string{"call-1": {types.CallStatusCompleted}},
		details: map[string]*voice.CallDetails{
			"call-1": {CallID: "call-1", RecordingURL: "u", RecordingDuration: 5, ConversationID: embeddedID},
		},
	}
	engine := newTestEngine(d, st, 24)

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+1", ConversationID: originalID}); err != nil {
		t.Fatalf("InitiateCall: %v", err)
	}
	waitFor(t, func() bool {
		snap := engine.GetSnapshot()
		return !snap.IsPolling && !snap.IsFetchingDetails
	})

	original, _ := st.Find(context.Background(), originalID)
	embedded, _ := st.Find(context.Background(), embeddedID)
	if original.RecordingURL == "" {
		t.Error("original conversation did not receive the contact update")
	}
	if embedded.RecordingURL != "" {
		t.Error("embedded conversation id won over the original context")
	}
}

func TestSubscribeReplaysCurrentSnapshot(t *testing.T) {
	engine := newTestEngine(&fakeDialer{callIDs: []string{"x"}}, store.NewMemory(), 24)

	want := engine.GetSnapshot()
	var mu sync.Mutex
	var got []Snapshot
	unsubscribe := engine.Subscribe(func(s Snapshot) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})
	defer unsubscribe()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("replay count = %d, want 1", len(got))
	}
	if got[0] != want {
		t.Errorf("replayed snapshot %+v != GetSnapshot %+v", got[0], want)
	}
}

func TestDataChangedIsOneShot(t *testing.T) {
	st := store.NewMemory()
	convID, _ := st.CreateConversation(context.Background(), store.ConversationRecord{CreatorName: "A"})
	d := &fakeDialer{
		callIDs:  []string{"call-1"},
		statuses: map[string][]string{"call-1": {types.CallStatusCompleted}},
		details: map[string]*voice.CallDetails{
			"call-1": {CallID: "call-1", RecordingURL: "u"},
		},
	}
	engine := newTestEngine(d, st, 24)

	var mu sync.Mutex
	sawChange := false
	engine.Subscribe(func(s Snapshot) {
		mu.Lock()
		if s.DataChanged {
			sawChange = true
		}
		mu.Unlock()
	})

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+1", ConversationID: convID}); err != nil {
		t.Fatalf("InitiateCall: %v", err)
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return sawChange
	})

	if engine.GetSnapshot().DataChanged {
		t.Error("dataChanged still set after subscribers were notified")
	}
}

func TestFetchLastWithoutCall(t *testing.T) {
	engine := newTestEngine(&fakeDialer{callIDs: []string{"x"}}, store.NewMemory(), 24)
	if err := engine.FetchLast(context.Background()); err == nil {
		t.Fatal("expected error when no call has been placed")
	}
}

func TestFetchLastStopsActivePolling(t *testing.T) {
	st := store.NewMemory()
	convID, _ := st.CreateConversation(context.Background(), store.ConversationRecord{CreatorName: "A"})
	d := &fakeDialer{
		callIDs:  []string{"call-1"},
		statuses: map[string][]string{"call-1": {types.CallStatusInProgress}},
		details: map[string]*voice.CallDetails{
			"call-1": {CallID: "call-1", RecordingURL: "manual", RecordingDuration: 7},
		},
	}
	engine := newTestEngine(d, st, 1000)

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+1", ConversationID: convID}); err != nil {
		t.Fatalf("InitiateCall: %v", err)
	}
	waitFor(t, func() bool { return d.statusCount("call-1") > 2 })

	if err := engine.FetchLast(context.Background()); err != nil {
		t.Fatalf("FetchLast: %v", err)
	}

	snap := engine.GetSnapshot()
	if snap.IsPolling || snap.ActiveCallID != "" {
		t.Errorf("state still active after manual fetch: polling=%v active=%q", snap.IsPolling, snap.ActiveCallID)
	}

	// The poll loop must actually be gone, not just the flags cleared.
	time.Sleep(20 * time.Millisecond)
	before := d.statusCount("call-1")
	time.Sleep(30 * time.Millisecond)
	if after := d.statusCount("call-1"); after != before {
		t.Errorf("poll loop still running after manual fetch: status calls %d -> %d", before, after)
	}

	rec, _ := st.Find(context.Background(), convID)
	if rec.RecordingURL != "manual" {
		t.Errorf("recording url = %q, want manual", rec.RecordingURL)
	}
}

func TestFetchErrorClearsCachedArtifacts(t *testing.T) {
	st := store.NewMemory()
	convID, _ := st.CreateConversation(context.Background(), store.ConversationRecord{CreatorName: "A"})
	d := &fakeDialer{
		callIDs:  []string{"call-1"},
		statuses: map[string][]string{"call-1": {types.CallStatusCompleted}},
		details: map[string]*voice.CallDetails{
			"call-1": {CallID: "call-1", RecordingURL: "u"},
		},
	}
	engine := newTestEngine(d, st, 24)

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+1", ConversationID: convID}); err != nil {
		t.Fatalf("InitiateCall: %v", err)
	}
	waitFor(t, func() bool { return engine.GetSnapshot().Artifacts != nil })

	d.mu.Lock()
	d.details = nil
	d.mu.Unlock()

	if err := engine.FetchLast(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}

	snap := engine.GetSnapshot()
	if snap.Artifacts != nil {
		t.Errorf("stale artifacts retained after fetch error: %+v", snap.Artifacts)
	}
	if !strings.Contains(snap.ErrorMessage, "failed to fetch call details") {
		t.Errorf("error = %q, want fetch failure recorded", snap.ErrorMessage)
	}
}

func TestTerminalStatusOnFinalAttemptIsNotTimeout(t *testing.T) {
	st := store.NewMemory()
	convID, _ := st.CreateConversation(context.Background(), store.ConversationRecord{CreatorName: "A"})
	d := &fakeDialer{
		callIDs: []string{"call-1"},
		statuses: map[string][]string{
			"call-1": {types.CallStatusInProgress, types.CallStatusInProgress, types.CallStatusCompleted},
		},
		details: map[string]*voice.CallDetails{
			"call-1": {CallID: "call-1", RecordingURL: "u", RecordingDuration: 3},
		},
	}
	engine := newTestEngine(d, st, 3)

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+1", ConversationID: convID}); err != nil {
		t.Fatalf("InitiateCall: %v", err)
	}
	waitFor(t, func() bool {
		snap := engine.GetSnapshot()
		return !snap.IsPolling && !snap.IsFetchingDetails
	})

	snap := engine.GetSnapshot()
	if strings.Contains(snap.ErrorMessage, "timed out") {
		t.Fatalf("call completing on the final attempt reported as timeout: %q", snap.ErrorMessage)
	}
	if snap.Artifacts == nil {
		t.Fatal("artifacts not fetched for call that completed on the final attempt")
	}
}

func TestSubscriberSnapshotsArriveInOrder(t *testing.T) {
	d := &fakeDialer{
		callIDs:  []string{"call-1"},
		statuses: map[string][]string{"call-1": {types.CallStatusInProgress}},
	}
	engine := newTestEngine(d, store.NewMemory(), 5)

	var mu sync.Mutex
	var attempts []int
	done := make(chan struct{})
	engine.Subscribe(func(s Snapshot) {
		mu.Lock()
		attempts = append(attempts, s.AttemptCount)
		mu.Unlock()
		if s.ErrorMessage != "" {
			select {
			case <-done:
			default:
				close(done)
			}
		}
	})

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+1"}); err != nil {
		t.Fatalf("InitiateCall: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout state never broadcast")
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(attempts); i++ {
		if attempts[i] < attempts[i-1] {
			t.Fatalf("snapshots delivered out of order: %v", attempts)
		}
	}
}

func TestFetchLastRecoversDetails(t *testing.T) {
	st := store.NewMemory()
	convID, _ := st.CreateConversation(context.Background(), store.ConversationRecord{CreatorName: "A"})
	d := &fakeDialer{
		callIDs:  []string{"call-1"},
		statuses: map[string][]string{"call-1": {types.CallStatusInProgress}},
	}
	engine := newTestEngine(d, st, 1000)

	if _, err := engine.InitiateCall(context.Background(), voice.CallRequest{Phone: "+1", ConversationID: convID}); err != nil {
		t.Fatalf("InitiateCall: %v", err)
	}
	engine.Stop()

	d.mu.Lock()
	d.details = map[string]*voice.CallDetails{
		"call-1": {CallID: "call-1", RecordingURL: "late", RecordingDuration: 12},
	}
	d.mu.Unlock()

	if err := engine.FetchLast(context.Background()); err != nil {
		t.Fatalf("FetchLast: %v", err)
	}
	rec, _ := st.Find(context.Background(), convID)
	if rec.RecordingURL != "late" {
		t.Errorf("recording url = %q, want late", rec.RecordingURL)
	}
}

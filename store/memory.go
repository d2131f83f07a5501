package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process store used for tests and redis-less runs.
type Memory struct {
	mu            sync.RWMutex
	conversations map[string]ConversationRecord
	messages      map[string][]Message
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		conversations: make(map[string]ConversationRecord),
		messages:      make(map[string][]Message),
	}
}

func (m *Memory) Find(ctx context.Context, id string) (*ConversationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := rec
	return &copy, nil
}

func (m *Memory) UpdateContact(ctx context.Context, id string, update ContactUpdate) (*ConversationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.LastContactedAt = update.ContactedAt
	if update.RecordingURL != "" {
		rec.RecordingURL = update.RecordingURL
	}
	if update.RecordingDuration > 0 {
		rec.RecordingDuration = update.RecordingDuration
	}
	m.conversations[id] = rec
	copy := rec
	return &copy, nil
}

func (m *Memory) CreateConversation(ctx context.Context, rec ConversationRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	m.conversations[rec.ID] = rec
	return rec.ID, nil
}

func (m *Memory) SendMessage(ctx context.Context, conversationID, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conversations[conversationID]; !ok {
		return ErrNotFound
	}
	m.messages[conversationID] = append(m.messages[conversationID], Message{
		ConversationID: conversationID,
		Subject:        subject,
		Body:           body,
		SentAt:         time.Now(),
	})
	return nil
}

func (m *Memory) ListConversations(ctx context.Context) ([]ConversationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ConversationRecord, 0, len(m.conversations))
	for _, rec := range m.conversations {
		out = append(out, rec)
	}
	return out, nil
}

// Messages returns the messages stored for a conversation (test helper).
func (m *Memory) Messages(conversationID string) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Message{}, m.messages[conversationID]...)
}

// Package store persists conversation and outreach records. The engine and
// agents only depend on the interfaces here; Redis and in-memory
// implementations are provided.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no record exists for the given id.
var ErrNotFound = errors.New("record not found")

// ConversationRecord is the stored state of one creator conversation.
type ConversationRecord struct {
	ID                string    `json:"id"`
	CampaignID        string    `json:"campaignId,omitempty"`
	CreatorID         string    `json:"creatorId"`
	CreatorName       string    `json:"creatorName"`
	Subject           string    `json:"subject,omitempty"`
	Status            string    `json:"status,omitempty"`
	CurrentOffer      int       `json:"currentOffer,omitempty"`
	LastContactedAt   time.Time `json:"lastContactedAt,omitempty"`
	RecordingURL      string    `json:"recordingUrl,omitempty"`
	RecordingDuration int       `json:"recordingDuration,omitempty"`
}

// ContactUpdate is the narrow write the call-tracking engine performs after a
// completed call: last-contacted plus recording metadata, nothing else.
type ContactUpdate struct {
	ContactedAt       time.Time
	RecordingURL      string
	RecordingDuration int
}

// ConversationStore is the conversation-record collaborator contract.
type ConversationStore interface {
	// Find returns the record for id, or ErrNotFound.
	Find(ctx context.Context, id string) (*ConversationRecord, error)
	// UpdateContact applies a ContactUpdate to an existing record. It returns
	// ErrNotFound rather than creating a record for an unknown id.
	UpdateContact(ctx context.Context, id string, update ContactUpdate) (*ConversationRecord, error)
}

// ConversationLister enumerates stored conversations, for periodic sweeps.
type ConversationLister interface {
	ListConversations(ctx context.Context) ([]ConversationRecord, error)
}

// Message is one persisted conversation message.
type Message struct {
	ConversationID string    `json:"conversationId"`
	Subject        string    `json:"subject,omitempty"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sentAt"`
}

// OutreachStore is the outreach-dispatch collaborator contract: persist the
// outreach record, then send the message on its conversation.
type OutreachStore interface {
	// CreateConversation stores a new conversation record and returns its id.
	CreateConversation(ctx context.Context, rec ConversationRecord) (string, error)
	// SendMessage appends a message to an existing conversation.
	SendMessage(ctx context.Context, conversationID, subject, body string) error
}

package memory

import (
	"context"
	"time"
)

// Message represents a single message in a conversation
type Message struct {
	Role      string    `json:"role"`      // "user" or "assistant"
	Content   string    `json:"content"`   // The actual message text
	Timestamp time.Time `json:"timestamp"` // When the message was sent
}

// ConversationData represents one user's stored conversation
type ConversationData struct {
	UserID   string    `json:"user_id"`
	Messages []Message `json:"messages"`
	Metadata Metadata  `json:"metadata"`
}

// Metadata contains conversation information
type Metadata struct {
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int       `json:"message_count"`
}

// Store defines the interface for conversation storage, keyed by user id.
// This allows us to swap between Redis, in-memory, etc.
type Store interface {
	// LoadConversation loads a user's conversation from storage
	LoadConversation(ctx context.Context, userID string) (*ConversationData, error)

	// SaveMessage appends a message to a user's conversation
	SaveMessage(ctx context.Context, userID string, msg Message) error

	// GetMessages retrieves all messages for a user
	GetMessages(ctx context.Context, userID string) ([]Message, error)

	// ClearConversation removes a user's conversation from storage
	ClearConversation(ctx context.Context, userID string) error

	// UpdateActivity updates the last activity timestamp
	UpdateActivity(ctx context.Context, userID string) error
}

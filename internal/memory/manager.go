package memory

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/memory"
)

// Manager orchestrates conversation memory using Redis + LangChainGo.
// The buffer cache is per-process; Redis is the source of truth, so any
// instance can rebuild a buffer from the stored conversation.
type Manager struct {
	store Store
	// lifetime bounds how long a cached buffer is trusted. It matches
	// the store TTL, so cached context never outlives the stored
	// conversation another instance may have expired or cleared.
	lifetime time.Duration

	mu      sync.Mutex
	buffers map[string]*cachedBuffer
}

type cachedBuffer struct {
	buf      *memory.ConversationBuffer
	loadedAt time.Time
}

// NewManager creates a new memory manager
func NewManager(store Store, lifetime time.Duration) *Manager {
	return &Manager{
		store:    store,
		lifetime: lifetime,
		buffers:  make(map[string]*cachedBuffer),
	}
}

// getOrCreateBuffer returns the cached LangChainGo buffer for a user,
// loading history from the store on first use or after the cached copy
// has outlived its lifetime.
func (m *Manager) getOrCreateBuffer(ctx context.Context, userID string) (*memory.ConversationBuffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpired()

	if cached, exists := m.buffers[userID]; exists {
		return cached.buf, nil
	}

	buf := memory.NewConversationBuffer()

	conversation, err := m.store.LoadConversation(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	for _, msg := range conversation.Messages {
		var chatMsg schema.ChatMessage

		switch msg.Role {
		case "user":
			chatMsg = schema.HumanChatMessage{Content: msg.Content}
		case "assistant":
			chatMsg = schema.AIChatMessage{Content: msg.Content}
		case "system":
			chatMsg = schema.SystemChatMessage{Content: msg.Content}
		default:
			log.Printf("unknown message role: %s, skipping", msg.Role)
			continue
		}

		if err := buf.ChatHistory.AddMessage(ctx, chatMsg); err != nil {
			return nil, fmt.Errorf("failed to add message to memory: %w", err)
		}
	}

	m.buffers[userID] = &cachedBuffer{buf: buf, loadedAt: time.Now()}

	return buf, nil
}

// evictExpired drops buffers past their lifetime; they are rebuilt from
// the store on next use. Callers must hold m.mu.
func (m *Manager) evictExpired() {
	for userID, cached := range m.buffers {
		if time.Since(cached.loadedAt) >= m.lifetime {
			delete(m.buffers, userID)
		}
	}
}

// SaveUserMessage saves a user message to both Redis and the buffer
func (m *Manager) SaveUserMessage(ctx context.Context, userID, message string) error {
	buf, err := m.getOrCreateBuffer(ctx, userID)
	if err != nil {
		return err
	}

	if err := buf.ChatHistory.AddUserMessage(ctx, message); err != nil {
		return fmt.Errorf("failed to add user message to memory: %w", err)
	}

	msg := Message{
		Role:      "user",
		Content:   message,
		Timestamp: time.Now(),
	}

	if err := m.store.SaveMessage(ctx, userID, msg); err != nil {
		return fmt.Errorf("failed to save message to store: %w", err)
	}

	return nil
}

// SaveAssistantMessage saves an assistant message to both Redis and the buffer
func (m *Manager) SaveAssistantMessage(ctx context.Context, userID, message string) error {
	buf, err := m.getOrCreateBuffer(ctx, userID)
	if err != nil {
		return err
	}

	if err := buf.ChatHistory.AddAIMessage(ctx, message); err != nil {
		return fmt.Errorf("failed to add AI message to memory: %w", err)
	}

	msg := Message{
		Role:      "assistant",
		Content:   message,
		Timestamp: time.Now(),
	}

	if err := m.store.SaveMessage(ctx, userID, msg); err != nil {
		return fmt.Errorf("failed to save message to store: %w", err)
	}

	return nil
}

// GetFormattedHistory returns the conversation as a prompt-ready string,
// or "" when there is no history yet.
func (m *Manager) GetFormattedHistory(ctx context.Context, userID string) (string, error) {
	buf, err := m.getOrCreateBuffer(ctx, userID)
	if err != nil {
		return "", err
	}

	messages, err := buf.ChatHistory.Messages(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get messages: %w", err)
	}

	if len(messages) == 0 {
		return "", nil
	}

	var formatted string
	for _, msg := range messages {
		switch m := msg.(type) {
		case schema.HumanChatMessage:
			formatted += fmt.Sprintf("User: %s\n", m.Content)
		case schema.AIChatMessage:
			formatted += fmt.Sprintf("Assistant: %s\n", m.Content)
		case schema.SystemChatMessage:
			formatted += fmt.Sprintf("System: %s\n", m.Content)
		}
	}

	return formatted, nil
}

// GetMessages returns raw messages from the store
func (m *Manager) GetMessages(ctx context.Context, userID string) ([]Message, error) {
	return m.store.GetMessages(ctx, userID)
}

// ClearConversation clears a conversation from both cache and store
func (m *Manager) ClearConversation(ctx context.Context, userID string) error {
	m.mu.Lock()
	delete(m.buffers, userID)
	m.mu.Unlock()

	if err := m.store.ClearConversation(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear conversation from store: %w", err)
	}

	return nil
}

// UpdateActivity refreshes the conversation TTL in the store
func (m *Manager) UpdateActivity(ctx context.Context, userID string) error {
	return m.store.UpdateActivity(ctx, userID)
}

// ActiveBufferCount returns the number of cached conversation buffers
func (m *Manager) ActiveBufferCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffers)
}

// Close closes the underlying store
func (m *Manager) Close() error {
	if closer, ok := m.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

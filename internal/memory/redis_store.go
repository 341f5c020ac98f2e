package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis. Conversations expire after the
// configured TTL; activity refreshes it.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed store
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
	}, nil
}

// Client exposes the underlying connection so the session gate can share it.
func (r *RedisStore) Client() *redis.Client {
	return r.client
}

func (r *RedisStore) conversationKey(userID string) string {
	return fmt.Sprintf("conversation:%s", userID)
}

// LoadConversation loads a conversation from Redis
func (r *RedisStore) LoadConversation(ctx context.Context, userID string) (*ConversationData, error) {
	key := r.conversationKey(userID)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// No conversation yet - return an empty one
		return &ConversationData{
			UserID:   userID,
			Messages: []Message{},
			Metadata: Metadata{
				StartedAt:    time.Now(),
				LastActivity: time.Now(),
				MessageCount: 0,
			},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation from Redis: %w", err)
	}

	var conversation ConversationData
	if err := json.Unmarshal([]byte(data), &conversation); err != nil {
		return nil, fmt.Errorf("failed to parse conversation data: %w", err)
	}

	return &conversation, nil
}

// SaveMessage appends a message to a user's conversation
func (r *RedisStore) SaveMessage(ctx context.Context, userID string, msg Message) error {
	conversation, err := r.LoadConversation(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	conversation.Messages = append(conversation.Messages, msg)

	conversation.Metadata.LastActivity = time.Now()
	conversation.Metadata.MessageCount = len(conversation.Messages)

	// If this is the first message, set started_at
	if conversation.Metadata.MessageCount == 1 {
		conversation.Metadata.StartedAt = msg.Timestamp
	}

	return r.saveConversation(ctx, conversation)
}

// saveConversation saves conversation data to Redis with TTL
func (r *RedisStore) saveConversation(ctx context.Context, conversation *ConversationData) error {
	key := r.conversationKey(conversation.UserID)

	data, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save conversation to Redis: %w", err)
	}

	return nil
}

// GetMessages retrieves all messages for a user
func (r *RedisStore) GetMessages(ctx context.Context, userID string) ([]Message, error) {
	conversation, err := r.LoadConversation(ctx, userID)
	if err != nil {
		return nil, err
	}

	return conversation.Messages, nil
}

// ClearConversation removes a user's conversation from Redis
func (r *RedisStore) ClearConversation(ctx context.Context, userID string) error {
	key := r.conversationKey(userID)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}

	return nil
}

// UpdateActivity updates the last activity timestamp and refreshes TTL
func (r *RedisStore) UpdateActivity(ctx context.Context, userID string) error {
	conversation, err := r.LoadConversation(ctx, userID)
	if err != nil {
		return err
	}

	conversation.Metadata.LastActivity = time.Now()

	// Save back (this refreshes TTL)
	return r.saveConversation(ctx, conversation)
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Ping verifies the Redis connection is alive
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Package session holds the authorization precondition for the pipeline.
// A user may proceed only when a login session exists for them; the
// session keys are written by the auth flow, which lives outside this
// service.
package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Gate answers whether a user may use the assistant.
type Gate interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

// RedisGate checks session existence in Redis.
type RedisGate struct {
	client *redis.Client
}

func NewRedisGate(client *redis.Client) *RedisGate {
	return &RedisGate{client: client}
}

func (g *RedisGate) Allow(ctx context.Context, userID string) (bool, error) {
	key := fmt.Sprintf("session:%s", userID)

	exists, err := g.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}

	return exists > 0, nil
}

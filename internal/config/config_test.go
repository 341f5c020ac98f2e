package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nats://localhost:4222", cfg.NatsURL)
	assert.Equal(t, "chat.message", cfg.NatsMessageSubject)
	assert.Equal(t, "chat.feedback", cfg.NatsFeedbackSubject)
	assert.Equal(t, "chat.status", cfg.NatsStatusSubject)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 30*time.Second, cfg.GeminiTimeout)
	assert.Equal(t, "http://localhost:8000", cfg.APIServerURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "quid-intent", cfg.ServiceName)
}

func TestLoad_RequiresGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_TIMEOUT", "10s")
	t.Setenv("NATS_MESSAGE_SUBJECT", "quid.chat")
	t.Setenv("SESSION_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.GeminiTimeout)
	assert.Equal(t, "quid.chat", cfg.NatsMessageSubject)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.GeminiTimeout)
}

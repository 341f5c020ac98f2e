package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	// NATS configuration
	NatsURL             string
	NatsMessageSubject  string
	NatsFeedbackSubject string
	NatsStatusSubject   string
	NatsTimeout         time.Duration

	// Gemini configuration
	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	// Invoice API server
	APIServerURL string
	APITimeout   time.Duration

	// Redis / sessions
	RedisURL   string
	SessionTTL time.Duration
	LoginURL   string

	// Service configuration
	ServiceName string
}

func Load() (*Config, error) {
	cfg := &Config{
		// NATS settings
		NatsURL:             getEnv("NATS_URL", "nats://localhost:4222"),
		NatsMessageSubject:  getEnv("NATS_MESSAGE_SUBJECT", "chat.message"),
		NatsFeedbackSubject: getEnv("NATS_FEEDBACK_SUBJECT", "chat.feedback"),
		NatsStatusSubject:   getEnv("NATS_STATUS_SUBJECT", "chat.status"),
		NatsTimeout:         getDurationEnv("NATS_TIMEOUT", 30*time.Second),

		// Gemini settings; the key has no default on purpose
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTimeout: getDurationEnv("GEMINI_TIMEOUT", 30*time.Second),

		// Backend settings
		APIServerURL: getEnv("API_SERVER_URL", "http://localhost:8000"),
		APITimeout:   getDurationEnv("API_TIMEOUT", 15*time.Second),

		// Redis settings
		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL: getDurationEnv("SESSION_TTL", 30*time.Minute),
		LoginURL:   getEnv("LOGIN_URL", ""),

		// Service settings
		ServiceName: getEnv("SERVICE_NAME", "quid-intent"),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

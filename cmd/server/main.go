package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/quidlabs/quid-intent/internal/config"
	"github.com/quidlabs/quid-intent/internal/handlers"
	"github.com/quidlabs/quid-intent/internal/invoice"
	"github.com/quidlabs/quid-intent/internal/llm"
	"github.com/quidlabs/quid-intent/internal/memory"
	"github.com/quidlabs/quid-intent/internal/session"
	"github.com/quidlabs/quid-intent/internal/transport"
)

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("🚀 Starting Quid Intent Service...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	log.Printf("📋 Service: %s", cfg.ServiceName)
	log.Printf("📡 NATS URL: %s", cfg.NatsURL)
	log.Printf("🤖 Gemini Model: %s", cfg.GeminiModel)
	log.Printf("🧾 Invoice API: %s", cfg.APIServerURL)
	log.Printf("💾 Redis URL: %s", cfg.RedisURL)

	// Initialize Redis store
	log.Println("🔌 Connecting to Redis...")
	redisStore, err := memory.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisStore.Close()
	log.Println("✅ Redis connected")

	// Initialize memory manager
	memoryManager := memory.NewManager(redisStore, cfg.SessionTTL)
	defer memoryManager.Close()
	log.Println("✅ Memory manager initialized")

	// Session gate shares the Redis connection
	gate := session.NewRedisGate(redisStore.Client())
	log.Println("✅ Session gate initialized")

	// Initialize LLM provider
	geminiProvider := llm.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout)
	log.Println("✅ Gemini provider initialized")

	// Initialize invoice API client
	invoiceClient := invoice.NewClient(cfg.APIServerURL, cfg.APITimeout)
	log.Println("✅ Invoice API client initialized")

	// Wire the pipeline
	pipeline := handlers.NewPipeline(geminiProvider, invoiceClient, memoryManager, gate, cfg.LoginURL)
	log.Println("✅ Pipeline initialized")

	// Initialize NATS transport
	log.Println("📡 Connecting to NATS...")
	natsTransport, err := transport.NewNATSTransport(cfg, pipeline)
	if err != nil {
		log.Fatalf("❌ Failed to initialize NATS transport: %v", err)
	}
	defer natsTransport.Close()

	// Start listening for requests
	if err := natsTransport.Start(); err != nil {
		log.Fatalf("❌ Failed to start NATS transport: %v", err)
	}

	log.Println("✅ Quid Intent Service is running!")
	log.Printf("👂 Listening on subjects: %s, %s", cfg.NatsMessageSubject, cfg.NatsFeedbackSubject)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Printf("🛑 Received signal: %v", sig)
	log.Println("🔄 Shutting down gracefully...")

	log.Printf("📊 Final buffer count: %d", memoryManager.ActiveBufferCount())

	if err := memoryManager.Close(); err != nil {
		log.Printf("⚠️ Error closing memory manager: %v", err)
	}

	if err := natsTransport.Close(); err != nil {
		log.Printf("⚠️ Error closing NATS transport: %v", err)
	}

	log.Println("👋 Quid Intent Service stopped")
}

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/quidlabs/quid-intent/internal/config"
	"github.com/quidlabs/quid-intent/internal/handlers"
	"github.com/quidlabs/quid-intent/internal/models"
)

// NATSTransport bridges the chat gateway to the pipeline over
// request/reply subjects: one for messages, one for feedback buttons.
type NATSTransport struct {
	conn     *nats.Conn
	config   *config.Config
	pipeline *handlers.Pipeline
}

func NewNATSTransport(cfg *config.Config, pipeline *handlers.Pipeline) (*NATSTransport, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name(cfg.ServiceName),
		nats.Timeout(cfg.NatsTimeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // Infinite reconnects
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Printf("Connected to NATS server: %s", cfg.NatsURL)

	return &NATSTransport{
		conn:     conn,
		config:   cfg,
		pipeline: pipeline,
	}, nil
}

func (nt *NATSTransport) Start() error {
	if _, err := nt.conn.Subscribe(nt.config.NatsMessageSubject, nt.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", nt.config.NatsMessageSubject, err)
	}
	if _, err := nt.conn.Subscribe(nt.config.NatsFeedbackSubject, nt.handleFeedback); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", nt.config.NatsFeedbackSubject, err)
	}

	log.Printf("Subscribed to subjects: %s, %s", nt.config.NatsMessageSubject, nt.config.NatsFeedbackSubject)
	return nil
}

func (nt *NATSTransport) handleMessage(msg *nats.Msg) {
	var request models.ChatRequest
	if err := json.Unmarshal(msg.Data, &request); err != nil {
		log.Printf("Error parsing chat request: %v", err)
		nt.respond(msg, &models.ChatResponse{
			Text: "Sorry, I encountered an error processing your request. Please try again.",
		})
		return
	}

	log.Printf("Processing chat message for user: %s", request.UserID)

	nt.publishLoading(request.UserID)

	// The pipeline makes up to three network round-trips; bound them all.
	ctx, cancel := context.WithTimeout(context.Background(), nt.config.NatsTimeout)
	defer cancel()

	response := nt.pipeline.HandleMessage(ctx, request.UserID, request.Text)
	nt.respond(msg, response)
}

// publishLoading tells the gateway to post the placeholder message
// before the pipeline's network round-trips start. Best effort.
func (nt *NATSTransport) publishLoading(userID string) {
	data, err := json.Marshal(nt.pipeline.LoadingResponse(userID))
	if err != nil {
		log.Printf("Error marshaling loading response: %v", err)
		return
	}
	if err := nt.conn.Publish(nt.config.NatsStatusSubject, data); err != nil {
		log.Printf("Error publishing loading response: %v", err)
	}
}

func (nt *NATSTransport) handleFeedback(msg *nats.Msg) {
	var request models.FeedbackRequest
	if err := json.Unmarshal(msg.Data, &request); err != nil {
		log.Printf("Error parsing feedback request: %v", err)
		return
	}

	response := nt.pipeline.HandleFeedback(request.UserID, request.ActionID)

	data, err := json.Marshal(response)
	if err != nil {
		log.Printf("Error marshaling feedback response: %v", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		log.Printf("Error sending feedback response: %v", err)
	}
}

func (nt *NATSTransport) respond(msg *nats.Msg, response *models.ChatResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		log.Printf("Error marshaling response: %v", err)
		return
	}

	if err := msg.Respond(data); err != nil {
		log.Printf("Error sending response: %v", err)
		return
	}

	log.Printf("Response sent for user: %s", response.UserID)
}

func (nt *NATSTransport) Close() error {
	if nt.conn != nil {
		nt.conn.Close()
		log.Println("NATS connection closed")
	}
	return nil
}

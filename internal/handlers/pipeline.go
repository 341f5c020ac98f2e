package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/quidlabs/quid-intent/internal/blocks"
	"github.com/quidlabs/quid-intent/internal/invoice"
	"github.com/quidlabs/quid-intent/internal/llm"
	"github.com/quidlabs/quid-intent/internal/memory"
	"github.com/quidlabs/quid-intent/internal/models"
	"github.com/quidlabs/quid-intent/internal/prompts"
	"github.com/quidlabs/quid-intent/internal/session"
)

// Pipeline runs one chat turn: gate, parse, dispatch, format, render.
// Every stage normalizes its own failures; HandleMessage always returns
// a reply and never an error.
type Pipeline struct {
	provider llm.Provider
	invoices *invoice.Client
	memory   *memory.Manager
	gate     session.Gate
	loginURL string
}

func NewPipeline(provider llm.Provider, invoices *invoice.Client, mem *memory.Manager, gate session.Gate, loginURL string) *Pipeline {
	return &Pipeline{
		provider: provider,
		invoices: invoices,
		memory:   mem,
		gate:     gate,
		loginURL: loginURL,
	}
}

// HandleMessage processes one inbound chat message from userID.
func (p *Pipeline) HandleMessage(ctx context.Context, userID, text string) *models.ChatResponse {
	allowed, err := p.gate.Allow(ctx, userID)
	if err != nil {
		log.Printf("session gate check failed for %s: %v", userID, err)
	}
	if !allowed {
		return p.blockResponse(userID, "Please log in to use this bot.", blocks.LoginReply(p.loginURL))
	}

	history, err := p.memory.GetFormattedHistory(ctx, userID)
	if err != nil {
		// Degraded but not fatal: parse without conversation context.
		log.Printf("failed to load history for %s: %v", userID, err)
		history = ""
	}

	if err := p.memory.SaveUserMessage(ctx, userID, text); err != nil {
		log.Printf("failed to save user message for %s: %v", userID, err)
	}

	action := p.parseIntent(ctx, text, history)
	if action == nil {
		return p.textResponse(ctx, userID, prompts.FallbackMessage)
	}

	log.Printf("dispatching action=%s for user %s", action.Action, userID)

	result := p.invoices.Dispatch(ctx, action, userID)
	if result.IsError() {
		// Pure errors skip the second LLM call.
		return p.textResponse(ctx, userID, result.Err)
	}

	return p.formatResult(ctx, userID, text, result)
}

// parseIntent runs the first LLM pass. The LLM is a degraded dependency:
// any failure here means "non-actionable", never a fault.
func (p *Pipeline) parseIntent(ctx context.Context, text, history string) *models.ActionRequest {
	prompt := prompts.BuildIntentPrompt(text, history)

	raw, err := p.provider.Generate(ctx, prompt)
	if err != nil {
		log.Printf("intent LLM call failed: %v", err)
		return nil
	}

	return prompts.ParseActionRequest(raw)
}

// formatResult runs the second LLM pass and renders blocks. Decode
// failures fall back to the fixed layout; raw LLM output never reaches
// the user.
func (p *Pipeline) formatResult(ctx context.Context, userID, text string, result *models.ActionResult) *models.ChatResponse {
	prompt := prompts.BuildFormatPrompt(result.Data, text)

	raw, err := p.provider.Generate(ctx, prompt)
	if err != nil {
		log.Printf("format LLM call failed: %v", err)
		return p.blockResponse(userID, prompts.FormatFallbackMessage, blocks.FallbackReply(prompts.FormatFallbackMessage))
	}

	reply, err := prompts.ParseFormattedReply(raw)
	if err != nil {
		log.Printf("failed to decode formatted reply: %v", err)
		return p.blockResponse(userID, prompts.FormatFallbackMessage, blocks.FallbackReply(prompts.FormatFallbackMessage))
	}

	p.saveReply(ctx, userID, reply.PlainText)

	return p.blockResponse(userID, reply.PlainText, blocks.RenderReply(reply))
}

// LoadingResponse is the interim reply the transport publishes while
// HandleMessage runs, so the gateway can post a placeholder message.
func (p *Pipeline) LoadingResponse(userID string) *models.ChatResponse {
	return p.blockResponse(userID, blocks.LoadingMessage, blocks.LoadingReply())
}

// HandleFeedback answers a helpful / not-helpful button press.
func (p *Pipeline) HandleFeedback(userID, actionID string) *models.FeedbackResponse {
	response := &models.FeedbackResponse{EventID: uuid.NewString()}

	switch actionID {
	case models.FeedbackHelpful:
		response.Text = fmt.Sprintf("<@%s> Thank you for your feedback!", userID)
	case models.FeedbackNotHelpful:
		modal, err := json.Marshal(blocks.NotHelpfulModal())
		if err != nil {
			log.Printf("failed to marshal feedback modal: %v", err)
			response.Text = fmt.Sprintf("<@%s> Thank you for your feedback!", userID)
			break
		}
		response.Modal = modal
	default:
		response.Text = fmt.Sprintf("<@%s> Thank you for your feedback!", userID)
	}

	return response
}

// textResponse builds a plain mention reply and records it in memory.
func (p *Pipeline) textResponse(ctx context.Context, userID, message string) *models.ChatResponse {
	text := fmt.Sprintf("<@%s> Sorry, %s", userID, message)
	p.saveReply(ctx, userID, text)
	return &models.ChatResponse{UserID: userID, Text: text}
}

func (p *Pipeline) blockResponse(userID, fallbackText string, layout []blocks.Block) *models.ChatResponse {
	data, err := json.Marshal(layout)
	if err != nil {
		log.Printf("failed to marshal blocks: %v", err)
		return &models.ChatResponse{UserID: userID, Text: fallbackText}
	}
	return &models.ChatResponse{UserID: userID, Text: fallbackText, Blocks: data}
}

func (p *Pipeline) saveReply(ctx context.Context, userID, message string) {
	if message == "" {
		return
	}
	if err := p.memory.SaveAssistantMessage(ctx, userID, message); err != nil {
		log.Printf("failed to save assistant message for %s: %v", userID, err)
	}
}

package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quidlabs/quid-intent/internal/models"
)

// SystemPrompt teaches the model the four invoice actions and the exact
// JSON shape to answer with. Worked examples keep informal phrasings
// ("is inv-2024-001 paid?") mapped onto the right action.
const SystemPrompt = `You are an AI assistant for invoice management. ` +
	`You can call the following API endpoints to help users with their requests. ` +
	`For invoice-related requests, respond with a JSON object as described below.
If the query is about an invoice, even if the wording is informal or partial (e.g., 'status of invoice INV-2024-001', 'show invoice INV-2024-001', 'is INV-2024-001 paid?'), respond with the appropriate JSON action as described below.
API Endpoints:
1. get_invoice: Get details for a specific invoice.
   Params: invoice_id (str), user_id (str, optional)
2. update_invoice_status: Update the status of an invoice.
   Params: invoice_id (str), status (str: Draft/Sent/Paid/Overdue/Cancelled), user_id (str, optional)
3. get_summary: Get a summary of invoices (for aggregate numbers only, not lists).
   Params: status (str, optional), due_date_before (str, optional), customer_name (str, optional), created_by_user_id (str, optional), invoice_type (str, optional)
4. search_invoices: Search for and list invoices matching criteria (for when the user asks for a list of invoices, e.g., 'all invoices with status Draft').
   Params: status (str, optional), created_by_user_id (str, optional), customer_name (str, optional), limit (int, optional, default 10, max 50)
Respond in this format:
{"action": "search_invoices", "params": { ... }}

Examples:
User: Give all invoices with status Draft
{"action": "search_invoices", "params": {"status": "Draft"}}
User: What is the total outstanding for paid invoices?
{"action": "get_summary", "params": {"status": "Paid"}}
User: status of invoice inv-2024-001
{"action": "get_invoice", "params": {"invoice_id": "inv-2024-001"}}
User: is inv-2024-001 paid?
{"action": "get_invoice", "params": {"invoice_id": "inv-2024-001"}}
`

// FormatPrompt asks the model to turn a raw API result into the
// three-field reply shape the block renderer understands.
const FormatPrompt = `You are a helpful assistant that formats invoice data for Slack using blocks. ` +
	`Your task is to transform raw invoice data into a JSON object with these fields: ` +
	`'plain_text' (string, a concise summary addressing the user's query), ` +
	`'list' (array of strings, for bullet points if needed, else empty array), ` +
	`'error' (boolean, true if there is an error or empty result, else false). ` +
	`Do not include any other fields. ` +
	`Do not use markdown. ` +
	`Example output: {"plain_text": "Here's a summary...", "list": ["item 1", "item 2"], "error": false} ` +
	`If there is an error or empty result, set 'error' to true and explain in 'plain_text'. `

// FallbackMessage is the user-facing reply body when intent parsing
// fails; the pipeline prepends the mention and apology prefix.
const FallbackMessage = "I couldn't understand your request."

// FormatFallbackMessage is the user-facing reply when the formatting
// response cannot be decoded.
const FormatFallbackMessage = "Sorry, I couldn't format the response."

// BuildIntentPrompt assembles the single-turn parsing prompt. context is
// the formatted conversation history and may be empty.
func BuildIntentPrompt(userText, context string) string {
	var builder strings.Builder

	builder.WriteString(SystemPrompt)
	builder.WriteString("\n")
	if context != "" {
		builder.WriteString(context)
		builder.WriteString("\n")
	}
	builder.WriteString("User: ")
	builder.WriteString(userText)

	return builder.String()
}

// BuildFormatPrompt assembles the second-pass formatting prompt from the
// original query and the JSON-serialized API result.
func BuildFormatPrompt(result json.RawMessage, originalQuery string) string {
	return fmt.Sprintf("%s\n\nUser's original query: %s\n\nAPI Response: %s\n\nPlease provide only the JSON object as described.",
		FormatPrompt, originalQuery, string(result))
}

// StripCodeFence removes a fenced-code-block wrapper if the model added
// one. The first and last lines are the fence markers; everything between
// is returned byte-for-byte.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return text
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}

// ParseActionRequest decodes an LLM parsing reply into an ActionRequest.
// Returns nil when the reply is not actionable: undecodable JSON, or an
// object missing either the action or the params key. Action-kind and
// parameter validity are the dispatcher's problem.
func ParseActionRequest(content string) *models.ActionRequest {
	cleaned := StripCodeFence(content)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil
	}
	if _, ok := raw["action"]; !ok {
		return nil
	}
	if _, ok := raw["params"]; !ok {
		return nil
	}

	var request models.ActionRequest
	if err := json.Unmarshal([]byte(cleaned), &request); err != nil {
		return nil
	}
	if request.Params == nil {
		request.Params = make(map[string]any)
	}

	return &request
}

// ParseFormattedReply decodes an LLM formatting reply.
func ParseFormattedReply(content string) (*models.FormattedReply, error) {
	cleaned := StripCodeFence(content)

	var reply models.FormattedReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse formatted reply: %w", err)
	}

	return &reply, nil
}

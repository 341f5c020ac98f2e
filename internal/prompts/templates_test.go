package prompts

import (
	"testing"

	"github.com/quidlabs/quid-intent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json fence",
			input: "```json\n{\"action\": \"get_invoice\"}\n```",
			want:  `{"action": "get_invoice"}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "multiline payload preserved byte for byte",
			input: "```json\n{\n  \"action\": \"get_summary\",\n  \"params\": {}\n}\n```",
			want:  "{\n  \"action\": \"get_summary\",\n  \"params\": {}\n}",
		},
		{
			name:  "no fence returns input unchanged",
			input: `{"action": "get_invoice"}`,
			want:  `{"action": "get_invoice"}`,
		},
		{
			name:  "surrounding whitespace around fence",
			input: "\n  ```json\n{\"x\": true}\n```  \n",
			want:  `{"x": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.input))
		})
	}
}

func TestParseActionRequest(t *testing.T) {
	request := ParseActionRequest(`{"action": "get_invoice", "params": {"invoice_id": "INV-2024-001"}}`)
	require.NotNil(t, request)
	assert.Equal(t, models.ActionGetInvoice, request.Action)

	id, ok := request.StringParam("invoice_id")
	require.True(t, ok)
	assert.Equal(t, "INV-2024-001", id)
}

func TestParseActionRequest_Fenced(t *testing.T) {
	request := ParseActionRequest("```json\n{\"action\": \"search_invoices\", \"params\": {\"status\": \"Draft\"}}\n```")
	require.NotNil(t, request)
	assert.Equal(t, models.ActionSearchInvoices, request.Action)
}

func TestParseActionRequest_NonActionable(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "I'm sorry, I can't help with that."},
		{"missing params", `{"action": "get_invoice"}`},
		{"missing action", `{"params": {"invoice_id": "INV-2024-001"}}`},
		{"empty object", `{}`},
		{"array", `[{"action": "get_invoice", "params": {}}]`},
		{"params not an object", `{"action": "get_invoice", "params": "oops"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ParseActionRequest(tt.input))
		})
	}
}

func TestParseActionRequest_NullParams(t *testing.T) {
	// A present-but-null params key still counts as actionable; the
	// dispatcher sees an empty param set.
	request := ParseActionRequest(`{"action": "get_summary", "params": null}`)
	require.NotNil(t, request)
	assert.NotNil(t, request.Params)
	assert.Empty(t, request.Params)
}

func TestParseFormattedReply(t *testing.T) {
	reply, err := ParseFormattedReply("```json\n{\"plain_text\": \"Invoice INV-2024-001 is Paid.\", \"list\": [], \"error\": false}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Invoice INV-2024-001 is Paid.", reply.PlainText)
	assert.False(t, reply.Error)
}

func TestParseFormattedReply_Invalid(t *testing.T) {
	_, err := ParseFormattedReply("here is your nicely formatted answer")
	assert.Error(t, err)
}

func TestBuildIntentPrompt(t *testing.T) {
	prompt := BuildIntentPrompt("is INV-2024-001 paid?", "User: hello\nAssistant: hi\n")

	assert.Contains(t, prompt, "get_invoice")
	assert.Contains(t, prompt, "update_invoice_status")
	assert.Contains(t, prompt, "get_summary")
	assert.Contains(t, prompt, "search_invoices")
	assert.Contains(t, prompt, "User: hello")
	assert.Contains(t, prompt, "User: is INV-2024-001 paid?")
}

func TestBuildFormatPrompt(t *testing.T) {
	prompt := BuildFormatPrompt([]byte(`{"status": "Paid"}`), "is INV-2024-001 paid?")

	assert.Contains(t, prompt, "plain_text")
	assert.Contains(t, prompt, `API Response: {"status": "Paid"}`)
	assert.Contains(t, prompt, "User's original query: is INV-2024-001 paid?")
}

package blocks

import (
	"encoding/json"
	"testing"

	"github.com/quidlabs/quid-intent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestRenderReply_FullLayout(t *testing.T) {
	reply := &models.FormattedReply{
		PlainText: "You have 2 draft invoices.",
		List:      []string{"INV-2024-001 - Acme Corp - $120.00", "INV-2024-002 - Globex - $89.50"},
	}

	rendered := RenderReply(reply)

	// divider, summary, details list, buttons, divider
	require.Len(t, rendered, 5)
	assert.Equal(t, "divider", rendered[0].Type)
	assert.Equal(t, "rich_text", rendered[1].Type)
	assert.Equal(t, "rich_text", rendered[2].Type)
	assert.Equal(t, "actions", rendered[3].Type)
	assert.Equal(t, "divider", rendered[4].Type)

	out := marshal(t, rendered)
	assert.Contains(t, out, "You have 2 draft invoices.")
	assert.Contains(t, out, "Details:")
	assert.Contains(t, out, "rich_text_list")
	assert.Contains(t, out, `"style":"bullet"`)
	assert.Contains(t, out, "INV-2024-002 - Globex - $89.50")
	assert.Contains(t, out, `"action_id":"helpful"`)
	assert.Contains(t, out, `"action_id":"not-helpful"`)
}

func TestRenderReply_NoList(t *testing.T) {
	reply := &models.FormattedReply{PlainText: "Invoice INV-2024-001 is Paid."}

	rendered := RenderReply(reply)

	// divider, summary, buttons, divider — no Details block
	require.Len(t, rendered, 4)
	assert.NotContains(t, marshal(t, rendered), "Details:")
}

func TestFallbackReply(t *testing.T) {
	rendered := FallbackReply("Sorry, I couldn't format the response.")

	require.Len(t, rendered, 3)
	assert.Equal(t, "divider", rendered[0].Type)
	assert.Equal(t, "divider", rendered[2].Type)

	out := marshal(t, rendered)
	assert.Contains(t, out, "Sorry, I couldn't format the response.")
	assert.NotContains(t, out, "actions", "fallback layout carries no feedback buttons")
}

func TestLoadingReply(t *testing.T) {
	rendered := LoadingReply()

	require.Len(t, rendered, 3)
	assert.Contains(t, marshal(t, rendered), "Quid is working on your request...")
}

func TestLoginReply(t *testing.T) {
	rendered := LoginReply("https://example.com/login")

	out := marshal(t, rendered)
	assert.Contains(t, out, "Please log in to use this bot.")
	assert.Contains(t, out, "https://example.com/login")
}

func TestNotHelpfulModal(t *testing.T) {
	modal := NotHelpfulModal()

	assert.Equal(t, "modal", modal.Type)
	assert.Equal(t, "not_helpful_modal", modal.CallbackID)

	out := marshal(t, modal)
	assert.Contains(t, out, "checkboxes")
	assert.Contains(t, out, "not-accurate")
}

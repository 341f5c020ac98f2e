package models

import (
	"encoding/json"
	"strconv"
)

// ActionKind is the closed set of invoice actions the intent parser can
// produce. Adding a kind means updating ValidActionKinds and the dispatcher
// switch together.
type ActionKind string

const (
	ActionGetInvoice          ActionKind = "get_invoice"
	ActionUpdateInvoiceStatus ActionKind = "update_invoice_status"
	ActionGetSummary          ActionKind = "get_summary"
	ActionSearchInvoices      ActionKind = "search_invoices"
)

// ValidActionKinds lists every recognized action, in prompt order.
var ValidActionKinds = []ActionKind{
	ActionGetInvoice,
	ActionUpdateInvoiceStatus,
	ActionGetSummary,
	ActionSearchInvoices,
}

func (k ActionKind) Valid() bool {
	for _, v := range ValidActionKinds {
		if k == v {
			return true
		}
	}
	return false
}

// ActionRequest is a decoded intent. Params values are strings or numbers
// as emitted by the LLM; absent optional params are simply missing keys.
type ActionRequest struct {
	Action ActionKind     `json:"action"`
	Params map[string]any `json:"params"`
}

// StringParam returns the named param as a non-empty string. ok is false
// when the key is absent, null, empty, or not a string.
func (r *ActionRequest) StringParam(name string) (string, bool) {
	v, ok := r.Params[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// IntParam returns the named param as an int. JSON numbers decode as
// float64; numeric strings are accepted too since the LLM emits both.
func (r *ActionRequest) IntParam(name string) (int, bool) {
	v, ok := r.Params[name]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// ActionResult is the outcome of one dispatch. Exactly one of Data or Err
// is set; created per call and consumed immediately by the formatter.
type ActionResult struct {
	Data json.RawMessage
	Err  string
}

func (r *ActionResult) IsError() bool {
	return r.Err != ""
}

// FormattedReply is the shape the formatting prompt asks the LLM to emit.
type FormattedReply struct {
	PlainText string   `json:"plain_text"`
	List      []string `json:"list"`
	Error     bool     `json:"error"`
}

// InvoiceStatus values, as stored by the API server.
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "Draft"
	StatusSent      InvoiceStatus = "Sent"
	StatusPaid      InvoiceStatus = "Paid"
	StatusOverdue   InvoiceStatus = "Overdue"
	StatusCancelled InvoiceStatus = "Cancelled"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

type InvoiceType string

const (
	TypeReceivable InvoiceType = "RECEIVABLE"
	TypePayable    InvoiceType = "PAYABLE"
)

func (t InvoiceType) Valid() bool {
	return t == TypeReceivable || t == TypePayable
}

type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Invoice mirrors the API server's record shape. The service never mutates
// these fields; they pass through to the formatter as JSON.
type Invoice struct {
	ID              int           `json:"id"`
	InvoiceID       string        `json:"invoice_id"`
	CustomerName    string        `json:"customer_name"`
	Amount          float64       `json:"amount"`
	Currency        string        `json:"currency"`
	Status          InvoiceStatus `json:"status"`
	Type            InvoiceType   `json:"type"`
	IssueDate       string        `json:"issue_date"`
	DueDate         string        `json:"due_date"`
	LineItems       []LineItem    `json:"line_items"`
	Notes           string        `json:"notes,omitempty"`
	CreatedByUserID string        `json:"created_by_user_id,omitempty"`
	LastUpdated     string        `json:"last_updated"`
}

// InvoiceSummary is the aggregate object returned by the summary endpoint.
type InvoiceSummary struct {
	TotalOutstanding float64          `json:"total_outstanding"`
	OverdueCount     int              `json:"overdue_count"`
	DueThisMonth     []map[string]any `json:"due_this_month"`
	TotalInvoices    int              `json:"total_invoices"`
	PaidThisMonth    float64          `json:"paid_this_month"`
	DraftCount       int              `json:"draft_count"`
}

// NATS request from the chat gateway
type ChatRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// NATS response to the chat gateway. Blocks carries Slack Block Kit JSON
// when block rendering applies; Text is the plain-text fallback.
type ChatResponse struct {
	UserID string          `json:"user_id"`
	Text   string          `json:"text,omitempty"`
	Blocks json.RawMessage `json:"blocks,omitempty"`
}

// FeedbackRequest carries a helpful / not-helpful button press.
type FeedbackRequest struct {
	UserID   string `json:"user_id"`
	ActionID string `json:"action_id"`
}

type FeedbackResponse struct {
	EventID string          `json:"event_id"`
	Text    string          `json:"text,omitempty"`
	Modal   json.RawMessage `json:"modal,omitempty"`
}

// Feedback action ids, matching the button action_ids in the reply blocks.
const (
	FeedbackHelpful    = "helpful"
	FeedbackNotHelpful = "not-helpful"
)

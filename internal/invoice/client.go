package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quidlabs/quid-intent/internal/models"
)

// Search limit bounds enforced before the backend ever sees the value.
const (
	defaultSearchLimit = 10
	minSearchLimit     = 1
	maxSearchLimit     = 50
)

// Canned messages used when an error response carries no usable body.
const (
	msgNotFound      = "Invoice not found."
	msgUpdateFailed  = "Failed to update invoice status."
	msgSummaryFailed = "Could not get summary."
	msgSearchFailed  = "Could not search invoices."
	msgUnknownAction = "Unknown action."
)

// Client talks to the invoice API server and normalizes every failure
// mode into an ActionResult. No retries: this is a conversational flow,
// each call is single-attempt.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Dispatch executes the backend call implied by the action request.
// actingUserID fills in the user_id param for the two invoice-scoped
// actions when the parser didn't extract one; summary and search use
// created_by_user_id verbatim and stay unscoped by default.
func (c *Client) Dispatch(ctx context.Context, request *models.ActionRequest, actingUserID string) *models.ActionResult {
	switch request.Action {
	case models.ActionGetInvoice:
		return c.getInvoice(ctx, request, actingUserID)
	case models.ActionUpdateInvoiceStatus:
		return c.updateInvoiceStatus(ctx, request, actingUserID)
	case models.ActionGetSummary:
		return c.getSummary(ctx, request)
	case models.ActionSearchInvoices:
		return c.searchInvoices(ctx, request)
	default:
		return &models.ActionResult{Err: msgUnknownAction}
	}
}

func (c *Client) getInvoice(ctx context.Context, request *models.ActionRequest, actingUserID string) *models.ActionResult {
	invoiceID, _ := request.StringParam("invoice_id")
	userID, ok := request.StringParam("user_id")
	if !ok {
		userID = actingUserID
	}

	endpoint := fmt.Sprintf("%s/api/invoices/%s?user_id=%s",
		c.baseURL, url.PathEscape(invoiceID), url.QueryEscape(userID))

	return c.do(ctx, http.MethodGet, endpoint, nil, msgNotFound)
}

func (c *Client) updateInvoiceStatus(ctx context.Context, request *models.ActionRequest, actingUserID string) *models.ActionResult {
	invoiceID, _ := request.StringParam("invoice_id")
	status, _ := request.StringParam("status")
	userID, ok := request.StringParam("user_id")
	if !ok {
		userID = actingUserID
	}

	endpoint := fmt.Sprintf("%s/api/invoices/%s/status?user_id=%s",
		c.baseURL, url.PathEscape(invoiceID), url.QueryEscape(userID))

	body, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return &models.ActionResult{Err: fmt.Sprintf("API call failed: %v", err)}
	}

	return c.do(ctx, http.MethodPut, endpoint, body, msgUpdateFailed)
}

func (c *Client) getSummary(ctx context.Context, request *models.ActionRequest) *models.ActionResult {
	query := url.Values{}
	if status, ok := request.StringParam("status"); ok {
		// A bad enum must not widen the query into an unfiltered one.
		if !models.InvoiceStatus(status).Valid() {
			return &models.ActionResult{Err: msgSummaryFailed}
		}
		query.Set("status", status)
	}
	if before, ok := request.StringParam("due_date_before"); ok {
		query.Set("due_date_before", before)
	}
	if name, ok := request.StringParam("customer_name"); ok {
		query.Set("customer_name", name)
	}
	if creator, ok := request.StringParam("created_by_user_id"); ok {
		query.Set("created_by_user_id", creator)
	}
	if invoiceType, ok := request.StringParam("invoice_type"); ok {
		if !models.InvoiceType(invoiceType).Valid() {
			return &models.ActionResult{Err: msgSummaryFailed}
		}
		query.Set("invoice_type", invoiceType)
	}

	endpoint := c.baseURL + "/api/invoices/summary"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	return c.do(ctx, http.MethodGet, endpoint, nil, msgSummaryFailed)
}

func (c *Client) searchInvoices(ctx context.Context, request *models.ActionRequest) *models.ActionResult {
	query := url.Values{}
	if status, ok := request.StringParam("status"); ok {
		if !models.InvoiceStatus(status).Valid() {
			return &models.ActionResult{Err: msgSearchFailed}
		}
		query.Set("status", status)
	}
	if creator, ok := request.StringParam("created_by_user_id"); ok {
		query.Set("created_by_user_id", creator)
	}
	if name, ok := request.StringParam("customer_name"); ok {
		query.Set("customer_name", name)
	}
	query.Set("limit", strconv.Itoa(clampLimit(request)))

	endpoint := c.baseURL + "/api/invoices/search?" + query.Encode()

	return c.do(ctx, http.MethodGet, endpoint, nil, msgSearchFailed)
}

// clampLimit applies the default and bounds the value into [1,50].
func clampLimit(request *models.ActionRequest) int {
	limit, ok := request.IntParam("limit")
	if !ok {
		return defaultSearchLimit
	}
	if limit < minSearchLimit {
		return minSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}

// do issues one request and folds transport errors, HTTP error statuses
// and unreadable bodies into an ActionResult.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, cannedError string) *models.ActionResult {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &models.ActionResult{Err: fmt.Sprintf("API call failed: %v", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &models.ActionResult{Err: fmt.Sprintf("API call failed: %v", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.ActionResult{Err: fmt.Sprintf("API call failed: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &models.ActionResult{Err: errorMessage(data, cannedError)}
	}

	return &models.ActionResult{Data: data}
}

// errorMessage pulls an error or detail field out of the backend's error
// body, falling back to the canned per-action message.
func errorMessage(body []byte, canned string) string {
	var parsed struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return canned
	}
	if parsed.Error != "" {
		return parsed.Error
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return canned
}

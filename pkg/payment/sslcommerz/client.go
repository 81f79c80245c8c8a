// Package sslcommerz talks to the SSLCommerz hosted-checkout gateway:
// session creation (returns the page the customer is redirected to) and the
// validator API the server calls before trusting any payment callback.
package sslcommerz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/bistro-boss-server/config"
)

const (
	sandboxBase = "https://sandbox.sslcommerz.com"
	liveBase    = "https://securepay.sslcommerz.com"
)

// Client is the SSLCommerz API client. One instance is shared by the whole
// server; it is safe for concurrent use.
type Client struct {
	baseURL    string
	storeID    string
	storePass  string
	successURL string
	failURL    string
	cancelURL  string
	httpc      *http.Client
}

// New constructs a client from configuration.
func New() *Client {
	base := liveBase
	if config.SSLSandbox() {
		base = sandboxBase
	}
	return &Client{
		baseURL:    base,
		storeID:    config.SSLStoreID(),
		storePass:  config.SSLStorePass(),
		successURL: config.SSLSuccessURL(),
		failURL:    config.SSLFailURL(),
		cancelURL:  config.SSLCancelURL(),
		httpc:      &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithBase constructs a client pointed at an arbitrary base URL.
// Intended for tests against a mock gateway.
func NewWithBase(base, storeID, storePass string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(base, "/"),
		storeID:   storeID,
		storePass: storePass,
		httpc:     &http.Client{Timeout: 30 * time.Second},
	}
}

// SessionRequest carries what the gateway needs to open a checkout session.
// TranID is the correlation id that later links the callback to the local
// transaction ledger.
type SessionRequest struct {
	TranID        string
	Amount        float64
	Currency      string
	CustomerName  string
	CustomerEmail string
	ProductName   string
}

// SessionResponse is the subset of the gateway's session reply the server
// cares about.
type SessionResponse struct {
	Status         string `json:"status"` // "SUCCESS" | "FAILED"
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// CreateSession opens a hosted-checkout session and returns the redirect URL.
// A network or gateway-side failure is returned to the caller unretried.
func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (*SessionResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	form := url.Values{}
	form.Set("store_id", c.storeID)
	form.Set("store_passwd", c.storePass)
	form.Set("total_amount", strconv.FormatFloat(req.Amount, 'f', 2, 64))
	form.Set("currency", currency)
	form.Set("tran_id", req.TranID)
	form.Set("success_url", c.successURL)
	form.Set("fail_url", c.failURL)
	form.Set("cancel_url", c.cancelURL)
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("product_name", req.ProductName)
	form.Set("product_category", "food")
	form.Set("product_profile", "general")
	form.Set("shipping_method", "NO")
	// The validator rejects sessions without a customer address block.
	form.Set("cus_add1", "Dhaka")
	form.Set("cus_city", "Dhaka")
	form.Set("cus_country", "Bangladesh")
	form.Set("cus_phone", "01711111111")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/gwprocess/v4/api.php", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: build session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: session call: %w", err)
	}
	defer resp.Body.Close()

	var out SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("sslcommerz: decode session response: %w", err)
	}

	if !strings.EqualFold(out.Status, "SUCCESS") || out.GatewayPageURL == "" {
		return nil, fmt.Errorf("sslcommerz: session refused: %s", out.FailedReason)
	}

	return &out, nil
}

// ValidationResponse is the validator API reply for a val_id.
type ValidationResponse struct {
	Status   string `json:"status"` // "VALID" | "VALIDATED" | "INVALID_TRANSACTION" | ...
	TranID   string `json:"tran_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	BankTran string `json:"bank_tran_id"`
}

// Valid reports whether the gateway vouches for this payment. Both VALID and
// VALIDATED count: the gateway downgrades to VALIDATED when the same val_id
// is checked a second time.
func (v *ValidationResponse) Valid() bool {
	return strings.EqualFold(v.Status, "VALID") || strings.EqualFold(v.Status, "VALIDATED")
}

// ValidatePayment asks the gateway's validator API whether valID represents
// a real, completed payment. Callbacks are never trusted without this check.
func (c *Client) ValidatePayment(ctx context.Context, valID string) (*ValidationResponse, error) {
	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", c.storeID)
	q.Set("store_passwd", c.storePass)
	q.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/validator/api/validationserverAPI.php?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: build validation request: %w", err)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: validation call: %w", err)
	}
	defer resp.Body.Close()

	var out ValidationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("sslcommerz: decode validation response: %w", err)
	}

	return &out, nil
}

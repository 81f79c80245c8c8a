// Package stripe mints payment intents through the official Stripe SDK.
// The server only ever needs a client secret for a fixed amount;
// confirmation happens client-side, so nothing else of the API surface is
// wrapped here.
package stripe

import (
	"context"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/shashiranjanraj/bistro-boss-server/config"
)

// Client calls the Stripe payment-intent API with secret-key auth.
type Client struct {
	api *client.API
}

// New constructs a client from configuration.
func New() *Client {
	return NewWithKey(config.StripeSecret())
}

// NewWithKey constructs a client with an explicit secret key.
func NewWithKey(secret string) *Client {
	api := &client.API{}
	api.Init(secret, nil)
	return &Client{api: api}
}

// NewWithBackend constructs a client pointed at an arbitrary API host.
// Intended for tests against a mock gateway.
func NewWithBackend(secret, baseURL string) *Client {
	backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, &stripeapi.BackendConfig{
		URL: stripeapi.String(baseURL),
	})
	api := &client.API{}
	api.Init(secret, &stripeapi.Backends{API: backend})
	return &Client{api: api}
}

// Intent is the subset of a Stripe PaymentIntent the server passes through.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// CreateIntent creates a PaymentIntent for amountCents and returns it.
// No local record is written; the ledger row is created only when the client
// reports the confirmed payment.
func (c *Client) CreateIntent(ctx context.Context, amountCents int64, currency string) (*Intent, error) {
	if currency == "" {
		currency = "usd"
	}

	pi, err := c.api.PaymentIntents.New(&stripeapi.PaymentIntentParams{
		Params:             stripeapi.Params{Context: ctx},
		Amount:             stripeapi.Int64(amountCents),
		Currency:           stripeapi.String(currency),
		PaymentMethodTypes: stripeapi.StringSlice([]string{"card"}),
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: create intent: %w", err)
	}
	if pi.ClientSecret == "" {
		return nil, fmt.Errorf("stripe: intent missing client secret")
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

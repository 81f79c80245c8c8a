// Package jobs holds the background jobs dispatched through pkg/queue.
package jobs

import (
	"fmt"

	"github.com/shashiranjanraj/bistro-boss-server/pkg/mail"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/queue"
)

// OrderMailName is the registry key for OrderMailJob.
const OrderMailName = "jobs.OrderMailJob"

// OrderMailJob emails an order confirmation after a transaction reaches
// success. It runs off the request path: a delivery failure is retried by
// the queue and, if exhausted, logged — it never affects the HTTP response
// that triggered it.
type OrderMailJob struct {
	Email         string  `json:"email"`
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
}

// Register wires the job type into the queue registry. Call once at boot.
func Register() {
	queue.Register(OrderMailName, func() queue.Job { return &OrderMailJob{} })
}

// Handle sends the confirmation email.
func (j *OrderMailJob) Handle() error {
	body := fmt.Sprintf(
		"<h2>Thanks for your order!</h2>"+
			"<p>Your payment of %.2f %s was received.</p>"+
			"<p>Reference: %s</p>",
		j.Amount, j.Currency, j.TransactionID,
	)

	return mail.To(j.Email).
		Subject("Your Bistro Boss order is confirmed").
		Body(body).
		Send()
}

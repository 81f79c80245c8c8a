package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/bistro-boss-server/app/models"
	"github.com/shashiranjanraj/bistro-boss-server/app/repositories"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/logger"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/metrics"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/payment/sslcommerz"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/payment/stripe"
)

// TransactionStore is the slice of the ledger repository the orchestrator
// needs.
type TransactionStore interface {
	Create(ctx context.Context, t *models.Transaction) error
	FindByTransactionID(ctx context.Context, tranID string) (*models.Transaction, error)
	FindByOwner(ctx context.Context, email string) ([]models.Transaction, error)
	MarkSuccess(ctx context.Context, tranID string) (bool, error)
}

// CartStore is the slice of the cart repository the orchestrator needs.
type CartStore interface {
	DeleteByIDs(ctx context.Context, email string, ids []primitive.ObjectID) (int64, error)
}

// SSLGateway abstracts the SSLCommerz client for testing.
type SSLGateway interface {
	CreateSession(ctx context.Context, req sslcommerz.SessionRequest) (*sslcommerz.SessionResponse, error)
	ValidatePayment(ctx context.Context, valID string) (*sslcommerz.ValidationResponse, error)
}

// IntentGateway abstracts the Stripe client for testing.
type IntentGateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (*stripe.Intent, error)
}

// Notifier receives the committed transaction for out-of-band notification.
// Failures inside the notifier must never surface here.
type Notifier func(t *models.Transaction)

// PaymentService drives the external payment flow end to end, reconciling
// gateway callbacks with the transaction ledger and cart cleanup.
//
// State machine per transaction:
//
//	CREATE_INTENT -> PENDING_REDIRECT -> (gateway callback) -> VALIDATING -> SUCCESS | FAILED
type PaymentService struct {
	txns   TransactionStore
	carts  CartStore
	ssl    SSLGateway
	stripe IntentGateway
	notify Notifier
}

func NewPaymentService(txns TransactionStore, carts CartStore, ssl SSLGateway, intent IntentGateway, notify Notifier) *PaymentService {
	return &PaymentService{txns: txns, carts: carts, ssl: ssl, stripe: intent, notify: notify}
}

// CommitResult reports what a commit did.
type CommitResult struct {
	Transaction      *models.Transaction
	CartItemsDeleted int64
	AlreadyCommitted bool
}

// newTranID generates the locally unique correlation id shared with the
// gateway.
func newTranID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return "TXN-" + hex.EncodeToString(b)
}

// InitiateSSL persists a pending ledger row with a fresh correlation id and
// opens a gateway checkout session, returning the redirect URL.
//
// If the gateway call fails the pending row stays behind (orphaned) —
// per design, cleanup is a manual reconciliation task, and the caller must
// not assume it happened.
func (s *PaymentService) InitiateSSL(ctx context.Context, email, name string, price float64, cartIDs []primitive.ObjectID) (string, error) {
	t := &models.Transaction{
		Email:         email,
		Price:         price,
		Currency:      "USD",
		CartIDs:       cartIDs,
		TransactionID: newTranID(),
		Status:        models.StatusPending,
		Date:          time.Now(),
	}
	if err := s.txns.Create(ctx, t); err != nil {
		return "", fmt.Errorf("payment: create transaction: %w", err)
	}

	session, err := s.ssl.CreateSession(ctx, sslcommerz.SessionRequest{
		TranID:        t.TransactionID,
		Amount:        price,
		Currency:      t.Currency,
		CustomerName:  name,
		CustomerEmail: email,
		ProductName:   "Bistro Boss order",
	})
	if err != nil {
		logger.WithCtx(ctx).Warn("payment: gateway session failed, transaction left pending",
			"tran_id", t.TransactionID, "error", err)
		return "", errors.Join(ErrGatewayUnavailable, err)
	}

	metrics.PaymentsInitiated.WithLabelValues("sslcommerz").Inc()
	return session.GatewayPageURL, nil
}

// ConfirmCallback handles the gateway-initiated callback: re-validate the
// payment with the gateway's validator API and, only on the gateway's valid
// sentinel, commit the referenced transaction. An invalid validation leaves
// the ledger row untouched for manual reconciliation.
func (s *PaymentService) ConfirmCallback(ctx context.Context, valID, tranID string) (*CommitResult, error) {
	validation, err := s.ssl.ValidatePayment(ctx, valID)
	if err != nil {
		return nil, errors.Join(ErrGatewayUnavailable, err)
	}
	if !validation.Valid() {
		metrics.PaymentsRejected.Inc()
		logger.WithCtx(ctx).Warn("payment: callback rejected by validator",
			"val_id", valID, "tran_id", tranID, "status", validation.Status)
		return nil, ErrInvalidPayment
	}

	// Prefer the reference the validator vouched for over the one in the
	// raw callback body.
	ref := validation.TranID
	if ref == "" {
		ref = tranID
	}

	return s.Commit(ctx, ref)
}

// Commit performs the terminal transition for tranID: status pending→success
// via compare-and-set, then best-effort deletion of the frozen cart ids.
//
// Idempotent: committing an already-successful transaction is a no-op, not
// an error, so the callback path and the trusted client path may race
// safely. A transaction that does not exist at all is a data-integrity
// failure and is reported loudly.
func (s *PaymentService) Commit(ctx context.Context, tranID string) (*CommitResult, error) {
	t, err := s.txns.FindByTransactionID(ctx, tranID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.WithCtx(ctx).Error("payment: commit for unknown transaction", "tran_id", tranID)
			return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, tranID)
		}
		return nil, fmt.Errorf("payment: load transaction %s: %w", tranID, err)
	}

	transitioned, err := s.txns.MarkSuccess(ctx, tranID)
	if err != nil {
		return nil, fmt.Errorf("payment: mark success %s: %w", tranID, err)
	}
	if !transitioned {
		if t.Status == models.StatusSuccess {
			// Lost the race (or a repeat callback): the first pass already
			// cleared the cart and sent the mail.
			return &CommitResult{Transaction: t, AlreadyCommitted: true}, nil
		}
		return nil, fmt.Errorf("payment: transaction %s is %s, cannot commit", tranID, t.Status)
	}
	t.Status = models.StatusSuccess

	// Cart cleanup is best-effort: payment truth is gateway-confirmed, so a
	// deletion failure is logged for operator follow-up, never rolled back.
	// Scoped to the transaction owner so frozen ids cannot reach into
	// another user's cart.
	deleted, err := s.carts.DeleteByIDs(ctx, t.Email, t.CartIDs)
	if err != nil {
		logger.WithCtx(ctx).Error("payment: cart cleanup failed after success",
			"tran_id", tranID, "cart_ids", len(t.CartIDs), "error", err)
		deleted = 0
	}

	metrics.PaymentsConfirmed.Inc()
	if s.notify != nil {
		s.notify(t)
	}

	return &CommitResult{Transaction: t, CartItemsDeleted: deleted}, nil
}

// History returns the ledger rows belonging to email, most useful for the
// storefront's payment-history page.
func (s *PaymentService) History(ctx context.Context, email string) ([]models.Transaction, error) {
	return s.txns.FindByOwner(ctx, email)
}

// CreateIntent is the synchronous-intent path: delegate to Stripe for a
// short-lived client secret at a fixed amount. No ledger row is written
// here; that happens when the client reports the confirmed payment.
func (s *PaymentService) CreateIntent(ctx context.Context, price float64) (string, error) {
	cents := int64(math.Round(price * 100))
	intent, err := s.stripe.CreateIntent(ctx, cents, "usd")
	if err != nil {
		return "", errors.Join(ErrGatewayUnavailable, err)
	}
	metrics.PaymentsInitiated.WithLabelValues("stripe").Inc()
	return intent.ClientSecret, nil
}

// Record is the trusted client path: the client confirmed the payment with
// the gateway client-side, so the ledger row is created here and committed
// through the same logic as the callback path.
//
// Idempotent on the gateway reference: client retries reuse the same
// tranID, so a row that already exists means a replay — skip the insert and
// let the commit CAS sort it out. The unique transactionId index backs the
// same guarantee when two retries race past the lookup.
func (s *PaymentService) Record(ctx context.Context, email string, price float64, tranID string, cartIDs []primitive.ObjectID) (*CommitResult, error) {
	if tranID == "" {
		tranID = newTranID()
	}

	if _, err := s.txns.FindByTransactionID(ctx, tranID); err == nil {
		return s.Commit(ctx, tranID)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("payment: load transaction %s: %w", tranID, err)
	}

	t := &models.Transaction{
		Email:         email,
		Price:         price,
		Currency:      "USD",
		CartIDs:       cartIDs,
		TransactionID: tranID,
		Status:        models.StatusPending,
		Date:          time.Now(),
	}
	if err := s.txns.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// Lost the race against a concurrent retry that inserted first.
			return s.Commit(ctx, tranID)
		}
		return nil, fmt.Errorf("payment: record transaction: %w", err)
	}

	return s.Commit(ctx, tranID)
}

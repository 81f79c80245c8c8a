package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/bistro-boss-server/app/models"
	"github.com/shashiranjanraj/bistro-boss-server/app/repositories"
	"github.com/shashiranjanraj/bistro-boss-server/app/services"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/payment/sslcommerz"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/payment/stripe"
)

// ─── Fakes ────────────────────────────────────────────────────────────────────

type fakeTxnStore struct {
	byTranID    map[string]*models.Transaction
	createCalls int
	createErr   error
}

func newFakeTxnStore() *fakeTxnStore {
	return &fakeTxnStore{byTranID: map[string]*models.Transaction{}}
}

// Create mirrors the unique transactionId index: a second insert for the
// same reference collides.
func (s *fakeTxnStore) Create(_ context.Context, t *models.Transaction) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.byTranID[t.TransactionID]; exists {
		return repositories.ErrDuplicate
	}
	s.createCalls++
	cp := *t
	s.byTranID[t.TransactionID] = &cp
	return nil
}

func (s *fakeTxnStore) FindByTransactionID(_ context.Context, tranID string) (*models.Transaction, error) {
	t, ok := s.byTranID[tranID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTxnStore) FindByOwner(_ context.Context, email string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range s.byTranID {
		if t.Email == email {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeTxnStore) MarkSuccess(_ context.Context, tranID string) (bool, error) {
	t, ok := s.byTranID[tranID]
	if !ok || t.Status != models.StatusPending {
		return false, nil
	}
	t.Status = models.StatusSuccess
	return true, nil
}

type fakeCartStore struct {
	owners    map[primitive.ObjectID]string // id → owner; nil treats every id as owned
	deleted   [][]primitive.ObjectID
	lastEmail string
	deleteErr error
}

func (s *fakeCartStore) DeleteByIDs(_ context.Context, email string, ids []primitive.ObjectID) (int64, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	s.lastEmail = email
	owned := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if s.owners == nil || s.owners[id] == email {
			owned = append(owned, id)
		}
	}
	s.deleted = append(s.deleted, owned)
	return int64(len(owned)), nil
}

type fakeSSL struct {
	sessionURL    string
	sessionErr    error
	validation    *sslcommerz.ValidationResponse
	validationErr error
	lastSession   sslcommerz.SessionRequest
	lastValID     string
}

func (g *fakeSSL) CreateSession(_ context.Context, req sslcommerz.SessionRequest) (*sslcommerz.SessionResponse, error) {
	g.lastSession = req
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	return &sslcommerz.SessionResponse{Status: "SUCCESS", GatewayPageURL: g.sessionURL}, nil
}

func (g *fakeSSL) ValidatePayment(_ context.Context, valID string) (*sslcommerz.ValidationResponse, error) {
	g.lastValID = valID
	if g.validationErr != nil {
		return nil, g.validationErr
	}
	return g.validation, nil
}

type fakeStripe struct {
	lastAmount int64
	err        error
}

func (g *fakeStripe) CreateIntent(_ context.Context, amountCents int64, currency string) (*stripe.Intent, error) {
	g.lastAmount = amountCents
	if g.err != nil {
		return nil, g.err
	}
	return &stripe.Intent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

type notifyRecorder struct {
	calls []*models.Transaction
}

func (n *notifyRecorder) notify(t *models.Transaction) {
	n.calls = append(n.calls, t)
}

func oid(t *testing.T) primitive.ObjectID {
	t.Helper()
	return primitive.NewObjectID()
}

// ─── InitiateSSL ──────────────────────────────────────────────────────────────

func TestInitiateSSLCreatesPendingAndReturnsRedirect(t *testing.T) {
	txns := newFakeTxnStore()
	ssl := &fakeSSL{sessionURL: "https://gw.example/pay/abc"}
	svc := services.NewPaymentService(txns, &fakeCartStore{}, ssl, &fakeStripe{}, nil)

	ids := []primitive.ObjectID{oid(t), oid(t)}
	url, err := svc.InitiateSSL(context.Background(), "amina@example.com", "Amina", 42.50, ids)
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example/pay/abc", url)

	require.Len(t, txns.byTranID, 1)
	stored := txns.byTranID[ssl.lastSession.TranID]
	require.NotNil(t, stored)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, "amina@example.com", stored.Email)
	assert.Equal(t, 42.50, stored.Price)
	assert.Equal(t, ids, stored.CartIDs)
	assert.Equal(t, 42.50, ssl.lastSession.Amount)
}

func TestInitiateSSLGatewayFailureLeavesPendingRow(t *testing.T) {
	txns := newFakeTxnStore()
	ssl := &fakeSSL{sessionErr: errors.New("connection refused")}
	svc := services.NewPaymentService(txns, &fakeCartStore{}, ssl, &fakeStripe{}, nil)

	_, err := svc.InitiateSSL(context.Background(), "amina@example.com", "Amina", 10, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrGatewayUnavailable)

	// The pending row is intentionally left behind for reconciliation.
	require.Len(t, txns.byTranID, 1)
	for _, stored := range txns.byTranID {
		assert.Equal(t, models.StatusPending, stored.Status)
	}
}

// ─── ConfirmCallback ──────────────────────────────────────────────────────────

func TestConfirmCallbackCommitsOnValidPayment(t *testing.T) {
	txns := newFakeTxnStore()
	carts := &fakeCartStore{}
	ids := []primitive.ObjectID{oid(t), oid(t)}
	txns.byTranID["TX123"] = &models.Transaction{
		Email: "amina@example.com", Price: 42.50, Currency: "USD",
		CartIDs: ids, TransactionID: "TX123", Status: models.StatusPending,
	}
	ssl := &fakeSSL{validation: &sslcommerz.ValidationResponse{Status: "VALID", TranID: "TX123"}}
	rec := &notifyRecorder{}
	svc := services.NewPaymentService(txns, carts, ssl, &fakeStripe{}, rec.notify)

	res, err := svc.ConfirmCallback(context.Background(), "VAL1", "TX123")
	require.NoError(t, err)
	assert.False(t, res.AlreadyCommitted)
	assert.Equal(t, int64(2), res.CartItemsDeleted)
	assert.Equal(t, models.StatusSuccess, txns.byTranID["TX123"].Status)
	require.Len(t, carts.deleted, 1)
	assert.Equal(t, ids, carts.deleted[0])
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "TX123", rec.calls[0].TransactionID)
	assert.Equal(t, "VAL1", ssl.lastValID)
}

func TestConfirmCallbackRejectsInvalidValidation(t *testing.T) {
	txns := newFakeTxnStore()
	txns.byTranID["TX123"] = &models.Transaction{
		TransactionID: "TX123", Status: models.StatusPending,
	}
	ssl := &fakeSSL{validation: &sslcommerz.ValidationResponse{Status: "INVALID_TRANSACTION"}}
	rec := &notifyRecorder{}
	svc := services.NewPaymentService(txns, &fakeCartStore{}, ssl, &fakeStripe{}, rec.notify)

	_, err := svc.ConfirmCallback(context.Background(), "VAL1", "TX123")
	assert.ErrorIs(t, err, services.ErrInvalidPayment)

	// Ledger row stays pending, nothing notified.
	assert.Equal(t, models.StatusPending, txns.byTranID["TX123"].Status)
	assert.Empty(t, rec.calls)
}

func TestConfirmCallbackValidatorUnreachable(t *testing.T) {
	ssl := &fakeSSL{validationErr: errors.New("timeout")}
	svc := services.NewPaymentService(newFakeTxnStore(), &fakeCartStore{}, ssl, &fakeStripe{}, nil)

	_, err := svc.ConfirmCallback(context.Background(), "VAL1", "TX123")
	assert.ErrorIs(t, err, services.ErrGatewayUnavailable)
}

func TestConfirmCallbackPrefersValidatorReference(t *testing.T) {
	txns := newFakeTxnStore()
	txns.byTranID["REAL"] = &models.Transaction{
		TransactionID: "REAL", Status: models.StatusPending,
	}
	ssl := &fakeSSL{validation: &sslcommerz.ValidationResponse{Status: "VALIDATED", TranID: "REAL"}}
	svc := services.NewPaymentService(txns, &fakeCartStore{}, ssl, &fakeStripe{}, nil)

	res, err := svc.ConfirmCallback(context.Background(), "VAL1", "FORGED")
	require.NoError(t, err)
	assert.Equal(t, "REAL", res.Transaction.TransactionID)
}

// ─── Commit ───────────────────────────────────────────────────────────────────

func TestCommitIsIdempotent(t *testing.T) {
	txns := newFakeTxnStore()
	carts := &fakeCartStore{}
	txns.byTranID["TX9"] = &models.Transaction{
		TransactionID: "TX9", Status: models.StatusPending,
		CartIDs: []primitive.ObjectID{oid(t)},
	}
	rec := &notifyRecorder{}
	svc := services.NewPaymentService(txns, carts, &fakeSSL{}, &fakeStripe{}, rec.notify)

	first, err := svc.Commit(context.Background(), "TX9")
	require.NoError(t, err)
	assert.False(t, first.AlreadyCommitted)

	second, err := svc.Commit(context.Background(), "TX9")
	require.NoError(t, err)
	assert.True(t, second.AlreadyCommitted)
	assert.Zero(t, second.CartItemsDeleted)

	// Cart cleared once, mail sent once.
	assert.Len(t, carts.deleted, 1)
	assert.Len(t, rec.calls, 1)
}

func TestCommitUnknownTransactionIsHardFailure(t *testing.T) {
	svc := services.NewPaymentService(newFakeTxnStore(), &fakeCartStore{}, &fakeSSL{}, &fakeStripe{}, nil)

	_, err := svc.Commit(context.Background(), "NOPE")
	assert.ErrorIs(t, err, services.ErrTransactionNotFound)
}

func TestCommitCartCleanupFailureIsNotRolledBack(t *testing.T) {
	txns := newFakeTxnStore()
	txns.byTranID["TX5"] = &models.Transaction{
		TransactionID: "TX5", Status: models.StatusPending,
		CartIDs: []primitive.ObjectID{oid(t)},
	}
	carts := &fakeCartStore{deleteErr: errors.New("mongo down")}
	rec := &notifyRecorder{}
	svc := services.NewPaymentService(txns, carts, &fakeSSL{}, &fakeStripe{}, rec.notify)

	res, err := svc.Commit(context.Background(), "TX5")
	require.NoError(t, err)
	assert.Zero(t, res.CartItemsDeleted)
	assert.Equal(t, models.StatusSuccess, txns.byTranID["TX5"].Status)
	assert.Len(t, rec.calls, 1)
}

func TestCommitDeletesOnlyOwnedCartItems(t *testing.T) {
	mine, foreign := oid(t), oid(t)
	txns := newFakeTxnStore()
	txns.byTranID["TX11"] = &models.Transaction{
		Email: "amina@example.com", TransactionID: "TX11",
		Status: models.StatusPending, CartIDs: []primitive.ObjectID{mine, foreign},
	}
	carts := &fakeCartStore{owners: map[primitive.ObjectID]string{
		mine:    "amina@example.com",
		foreign: "other@example.com",
	}}
	svc := services.NewPaymentService(txns, carts, &fakeSSL{}, &fakeStripe{}, nil)

	res, err := svc.Commit(context.Background(), "TX11")
	require.NoError(t, err)

	// The foreign id is simply not matched by the owner-scoped delete.
	assert.Equal(t, int64(1), res.CartItemsDeleted)
	assert.Equal(t, "amina@example.com", carts.lastEmail)
	require.Len(t, carts.deleted, 1)
	assert.Equal(t, []primitive.ObjectID{mine}, carts.deleted[0])
}

func TestCommitEmptyCartIsAccepted(t *testing.T) {
	txns := newFakeTxnStore()
	txns.byTranID["TX7"] = &models.Transaction{
		TransactionID: "TX7", Status: models.StatusPending,
	}
	carts := &fakeCartStore{}
	svc := services.NewPaymentService(txns, carts, &fakeSSL{}, &fakeStripe{}, nil)

	res, err := svc.Commit(context.Background(), "TX7")
	require.NoError(t, err)
	assert.Zero(t, res.CartItemsDeleted)
}

// ─── CreateIntent ─────────────────────────────────────────────────────────────

func TestCreateIntentConvertsToCents(t *testing.T) {
	gw := &fakeStripe{}
	svc := services.NewPaymentService(newFakeTxnStore(), &fakeCartStore{}, &fakeSSL{}, gw, nil)

	secret, err := svc.CreateIntent(context.Background(), 42.50)
	require.NoError(t, err)
	assert.Equal(t, "pi_test_secret", secret)
	assert.Equal(t, int64(4250), gw.lastAmount)
}

func TestCreateIntentRoundsHalfCents(t *testing.T) {
	gw := &fakeStripe{}
	svc := services.NewPaymentService(newFakeTxnStore(), &fakeCartStore{}, &fakeSSL{}, gw, nil)

	_, err := svc.CreateIntent(context.Background(), 0.125)
	require.NoError(t, err)
	assert.Equal(t, int64(13), gw.lastAmount)
}

func TestCreateIntentGatewayFailure(t *testing.T) {
	gw := &fakeStripe{err: errors.New("api key invalid")}
	svc := services.NewPaymentService(newFakeTxnStore(), &fakeCartStore{}, &fakeSSL{}, gw, nil)

	_, err := svc.CreateIntent(context.Background(), 10)
	assert.ErrorIs(t, err, services.ErrGatewayUnavailable)
}

// ─── Record ───────────────────────────────────────────────────────────────────

func TestRecordCreatesAndCommits(t *testing.T) {
	txns := newFakeTxnStore()
	carts := &fakeCartStore{}
	rec := &notifyRecorder{}
	svc := services.NewPaymentService(txns, carts, &fakeSSL{}, &fakeStripe{}, rec.notify)

	ids := []primitive.ObjectID{oid(t), oid(t)}
	res, err := svc.Record(context.Background(), "amina@example.com", 19.99, "pi_abc", ids)
	require.NoError(t, err)
	assert.False(t, res.AlreadyCommitted)
	assert.Equal(t, int64(2), res.CartItemsDeleted)
	assert.Equal(t, models.StatusSuccess, txns.byTranID["pi_abc"].Status)
	assert.Len(t, rec.calls, 1)
}

func TestRecordRetryDoesNotDuplicateLedgerRow(t *testing.T) {
	txns := newFakeTxnStore()
	carts := &fakeCartStore{}
	rec := &notifyRecorder{}
	svc := services.NewPaymentService(txns, carts, &fakeSSL{}, &fakeStripe{}, rec.notify)

	ids := []primitive.ObjectID{oid(t)}
	first, err := svc.Record(context.Background(), "amina@example.com", 19.99, "pi_abc", ids)
	require.NoError(t, err)
	assert.False(t, first.AlreadyCommitted)

	second, err := svc.Record(context.Background(), "amina@example.com", 19.99, "pi_abc", ids)
	require.NoError(t, err)
	assert.True(t, second.AlreadyCommitted)

	// One row, one cart sweep, one confirmation mail.
	assert.Equal(t, 1, txns.createCalls)
	assert.Len(t, txns.byTranID, 1)
	assert.Len(t, carts.deleted, 1)
	assert.Len(t, rec.calls, 1)
}

// staleTxnStore misses the first lookup, modelling a retry that races the
// original insert past the existence check.
type staleTxnStore struct {
	*fakeTxnStore
	missed bool
}

func (s *staleTxnStore) FindByTransactionID(ctx context.Context, tranID string) (*models.Transaction, error) {
	if !s.missed {
		s.missed = true
		return nil, repositories.ErrNotFound
	}
	return s.fakeTxnStore.FindByTransactionID(ctx, tranID)
}

func TestRecordDuplicateInsertCommitsExistingRow(t *testing.T) {
	inner := newFakeTxnStore()
	inner.byTranID["pi_race"] = &models.Transaction{
		Email: "amina@example.com", TransactionID: "pi_race", Status: models.StatusPending,
	}
	txns := &staleTxnStore{fakeTxnStore: inner}
	svc := services.NewPaymentService(txns, &fakeCartStore{}, &fakeSSL{}, &fakeStripe{}, nil)

	res, err := svc.Record(context.Background(), "amina@example.com", 5, "pi_race", nil)
	require.NoError(t, err)
	assert.False(t, res.AlreadyCommitted)
	assert.Equal(t, models.StatusSuccess, inner.byTranID["pi_race"].Status)
	assert.Zero(t, inner.createCalls)
}

func TestHistoryIsOwnerScoped(t *testing.T) {
	txns := newFakeTxnStore()
	txns.byTranID["A"] = &models.Transaction{TransactionID: "A", Email: "amina@example.com"}
	txns.byTranID["B"] = &models.Transaction{TransactionID: "B", Email: "other@example.com"}
	svc := services.NewPaymentService(txns, &fakeCartStore{}, &fakeSSL{}, &fakeStripe{}, nil)

	got, err := svc.History(context.Background(), "amina@example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].TransactionID)
}

func TestRecordGeneratesReferenceWhenMissing(t *testing.T) {
	txns := newFakeTxnStore()
	svc := services.NewPaymentService(txns, &fakeCartStore{}, &fakeSSL{}, &fakeStripe{}, nil)

	res, err := svc.Record(context.Background(), "amina@example.com", 5, "", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Transaction.TransactionID)
}

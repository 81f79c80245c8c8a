package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/bistro-boss-server/app/models"
	"github.com/shashiranjanraj/bistro-boss-server/app/services"
	"github.com/shashiranjanraj/bistro-boss-server/config"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/logger"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/middleware"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/response"
)

type PaymentController struct {
	service *services.PaymentService
}

func NewPaymentController(service *services.PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

// parseCartIDs converts the hex ids a client sends into ObjectIDs,
// silently skipping malformed entries the same way the storefront does.
func parseCartIDs(raw []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

// CreateIntent handles POST /create-payment-intent: a Stripe client secret
// for the given price. Nothing is written locally at this step.
func (c *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Price <= 0 {
		response.Error(w, http.StatusBadRequest, "price must be positive")
		return
	}

	secret, err := c.service.CreateIntent(r.Context(), body.Price)
	if err != nil {
		response.BadGateway(w, "payment gateway unavailable")
		return
	}

	response.Success(w, map[string]string{"clientSecret": secret})
}

// CreateSSLPayment handles POST /create-ssl-payment: opens a hosted
// checkout session and returns the redirect URL. The body email must match
// the authenticated subject — a user cannot initiate payments for someone
// else's cart.
func (c *PaymentController) CreateSSLPayment(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body struct {
		Price   float64  `json:"price"`
		Email   string   `json:"email"`
		Name    string   `json:"name"`
		CartIDs []string `json:"cartIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Price <= 0 {
		response.Error(w, http.StatusBadRequest, "price must be positive")
		return
	}
	if body.Email != subject {
		response.Forbidden(w)
		return
	}

	gatewayURL, err := c.service.InitiateSSL(r.Context(), subject, body.Name, body.Price, parseCartIDs(body.CartIDs))
	if err != nil {
		response.BadGateway(w, "payment gateway unavailable")
		return
	}

	response.Success(w, map[string]string{"gatewayUrl": gatewayURL})
}

// SuccessPayment handles POST /success-payment, the gateway-initiated
// callback. There is no session token here; authentication is the
// validator call back to the gateway. On a vouched payment the user is
// redirected to the storefront; anything else is 404 so the gateway page
// shows its failure state.
func (c *PaymentController) SuccessPayment(w http.ResponseWriter, r *http.Request) {
	valID, tranID := callbackRefs(r)
	if valID == "" {
		response.NotFound(w, "invalid payment")
		return
	}

	_, err := c.service.ConfirmCallback(r.Context(), valID, tranID)
	switch {
	case err == nil:
		http.Redirect(w, r, config.StorefrontURL(), http.StatusSeeOther)
	case errors.Is(err, services.ErrInvalidPayment):
		response.NotFound(w, "invalid payment")
	case errors.Is(err, services.ErrTransactionNotFound):
		// Gateway vouched for a payment we have no ledger row for. The
		// service already logged it; do not pretend it succeeded.
		response.NotFound(w, "unknown transaction")
	case errors.Is(err, services.ErrGatewayUnavailable):
		response.BadGateway(w, "payment gateway unavailable")
	default:
		logger.WithCtx(r.Context()).Error("payment callback failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "payment processing failed")
	}
}

// callbackRefs pulls val_id and tran_id out of the callback, accepting both
// the gateway's form post and a JSON body.
func callbackRefs(r *http.Request) (valID, tranID string) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			ValID  string `json:"val_id"`
			TranID string `json:"tran_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			return body.ValID, body.TranID
		}
		return "", ""
	}

	_ = r.ParseForm()
	return r.PostFormValue("val_id"), r.PostFormValue("tran_id")
}

// ListTransactions handles GET /transaction: the caller's own payment
// history, newest data straight from the ledger.
func (c *PaymentController) ListTransactions(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	history, err := c.service.History(r.Context(), subject)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load transactions")
		return
	}
	if history == nil {
		history = []models.Transaction{}
	}
	response.Success(w, history)
}

// RecordTransaction handles POST /transaction, the trusted client path:
// the client confirmed a Stripe payment client-side and reports it so the
// ledger row is created and the cart cleared.
func (c *PaymentController) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body struct {
		Price         float64  `json:"price"`
		Email         string   `json:"email"`
		TransactionID string   `json:"transactionId"`
		CartIDs       []string `json:"cartIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Price <= 0 {
		response.Error(w, http.StatusBadRequest, "price must be positive")
		return
	}
	if body.Email != "" && body.Email != subject {
		response.Forbidden(w)
		return
	}

	result, err := c.service.Record(r.Context(), subject, body.Price, body.TransactionID, parseCartIDs(body.CartIDs))
	if err != nil {
		logger.WithCtx(r.Context()).Error("record transaction failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "could not record transaction")
		return
	}

	response.Created(w, map[string]interface{}{
		"success":           true,
		"transactionResult": result.Transaction,
		"deleteResult":      map[string]int64{"deletedCount": result.CartItemsDeleted},
	})
}

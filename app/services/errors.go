package services

import "errors"

// Error taxonomy surfaced by the service layer. Controllers map these onto
// HTTP statuses; nothing here is retried automatically.
var (
	// ErrForbidden: valid identity, insufficient role or mismatched ownership.
	ErrForbidden = errors.New("services: forbidden")

	// ErrInvalidPayment: the gateway validator rejected the callback.
	ErrInvalidPayment = errors.New("services: invalid payment")

	// ErrGatewayUnavailable: network or provider failure talking to a
	// payment gateway. Single attempt; the caller re-initiates.
	ErrGatewayUnavailable = errors.New("services: payment gateway unavailable")

	// ErrTransactionNotFound: a commit referenced a ledger row that does
	// not exist. The ledger and the gateway disagree — a data-integrity
	// problem that must fail loudly, never silently.
	ErrTransactionNotFound = errors.New("services: transaction not found")
)

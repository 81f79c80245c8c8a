package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction statuses. success and failed are terminal: once reached the
// row is never mutated again.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Transaction is one row in the payment ledger. Created pending when a
// payment is initiated; moved to a terminal status only by callback
// validation or the trusted client path. TransactionID is the correlation
// id shared with the gateway — unique and stable once assigned. CartIDs is
// frozen at creation time.
type Transaction struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Email         string               `bson:"email"         json:"email"`
	Price         float64              `bson:"price"         json:"price"`
	Currency      string               `bson:"currency"      json:"currency"`
	CartIDs       []primitive.ObjectID `bson:"cartIds"       json:"cartIds"`
	TransactionID string               `bson:"transactionId" json:"transactionId"`
	Status        string               `bson:"status"        json:"status"`
	Date          time.Time            `bson:"date"          json:"date"`
}

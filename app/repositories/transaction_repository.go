package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/bistro-boss-server/app/models"
)

// TransactionRepository handles the payment ledger. Terminal statuses are
// enforced here: the only status mutation available is the guarded
// pending→success transition.
type TransactionRepository struct {
	col *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{col: db.Collection("transactions")}
}

// EnsureIndexes creates the unique index on the gateway correlation id.
// The index is what makes transactionId actually unique across retries;
// call it once at boot before the server accepts traffic.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "transactionId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create inserts a ledger row and fills in its generated ID. A collision on
// the transactionId index comes back as ErrDuplicate.
func (r *TransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	res, err := r.col.InsertOne(ctx, t)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid
	}
	return nil
}

// FindByTransactionID looks up a ledger row by its gateway correlation id.
func (r *TransactionRepository) FindByTransactionID(ctx context.Context, tranID string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.col.FindOne(ctx, bson.M{"transactionId": tranID}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByOwner returns all transactions belonging to email.
func (r *TransactionRepository) FindByOwner(ctx context.Context, email string) ([]models.Transaction, error) {
	cursor, err := r.col.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	var out []models.Transaction
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSuccess transitions the row for tranID from pending to success and
// reports whether this call performed the transition. The status filter
// makes the operation a compare-and-set: a row already in a terminal state
// matches nothing, so concurrent commits cannot double-fire.
func (r *TransactionRepository) MarkSuccess(ctx context.Context, tranID string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"transactionId": tranID, "status": models.StatusPending},
		bson.M{"$set": bson.M{"status": models.StatusSuccess}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/bistro-boss-server/app/models"
)

// CartRepository handles the cart collection. Reads are owner-email scoped;
// the controller is responsible for matching the authenticated identity
// against the requested owner.
type CartRepository struct {
	col *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{col: db.Collection("cart")}
}

// FindByOwner returns all cart items belonging to email.
func (r *CartRepository) FindByOwner(ctx context.Context, email string) ([]models.CartItem, error) {
	cursor, err := r.col.Find(ctx, bson.M{"userEmail": email})
	if err != nil {
		return nil, err
	}
	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a cart item and fills in its generated ID.
func (r *CartRepository) Create(ctx context.Context, item *models.CartItem) error {
	res, err := r.col.InsertOne(ctx, item)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid
	}
	return nil
}

// DeleteOwned removes a single cart item, but only when it belongs to email.
func (r *CartRepository) DeleteOwned(ctx context.Context, id primitive.ObjectID, email string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "userEmail": email})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByIDs bulk-deletes the given cart item ids, restricted to items
// owned by email, and returns how many documents went away. Used by the
// payment commit: the owner filter stops a forged cartIds list from
// touching another user's cart, and re-deleting already removed ids
// matches zero documents, which keeps the commit idempotent.
func (r *CartRepository) DeleteByIDs(ctx context.Context, email string, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}, "userEmail": email})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

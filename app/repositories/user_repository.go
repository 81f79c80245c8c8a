package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/bistro-boss-server/app/models"
)

// ErrNotFound is returned by repository lookups that match no document.
var ErrNotFound = errors.New("repositories: not found")

// ErrDuplicate is returned when an insert collides with a unique index.
var ErrDuplicate = errors.New("repositories: duplicate key")

// UserRepository handles the users collection.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// EnsureExists creates the user on first sign-in. If a user with the same
// email already exists nothing changes, preserving whatever role an admin
// may have assigned.
func (r *UserRepository) EnsureExists(ctx context.Context, email, name string) error {
	update := bson.M{
		"$setOnInsert": bson.M{
			"email":     email,
			"name":      name,
			"role":      models.RoleGuest,
			"createdAt": time.Now(),
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"email": email}, update, opts)
	return err
}

// All returns every user. Admin-only surface.
func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Promote sets the user's role to admin.
func (r *UserRepository) Promote(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": models.RoleAdmin}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user. Only reachable through the admin surface.
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

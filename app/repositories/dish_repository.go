package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/bistro-boss-server/app/models"
)

// DishRepository handles the dishes collection.
type DishRepository struct {
	col *mongo.Collection
}

func NewDishRepository(db *mongo.Database) *DishRepository {
	return &DishRepository{col: db.Collection("dishes")}
}

// All returns every dish, optionally filtered by category.
func (r *DishRepository) All(ctx context.Context, category string) ([]models.Dish, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var dishes []models.Dish
	if err := cursor.All(ctx, &dishes); err != nil {
		return nil, err
	}
	return dishes, nil
}

// FindByID looks up a single dish.
func (r *DishRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Dish, error) {
	var dish models.Dish
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&dish)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dish, nil
}

// Create inserts a new dish and fills in its generated ID.
func (r *DishRepository) Create(ctx context.Context, dish *models.Dish) error {
	res, err := r.col.InsertOne(ctx, dish)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		dish.ID = oid
	}
	return nil
}

// Update patches the mutable dish fields.
func (r *DishRepository) Update(ctx context.Context, id primitive.ObjectID, dish *models.Dish) error {
	update := bson.M{"$set": bson.M{
		"name":     dish.Name,
		"category": dish.Category,
		"price":    dish.Price,
		"recipe":   dish.Recipe,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetImage stores the public URL of an uploaded dish image.
func (r *DishRepository) SetImage(ctx context.Context, id primitive.ObjectID, imageURL string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"image": imageURL}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a dish.
func (r *DishRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

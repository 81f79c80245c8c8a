package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CartItem is one dish a user intends to order. Items are created on
// add-to-cart and deleted in bulk when the owning transaction succeeds.
// The name/image/price fields are snapshots so the cart stays stable even
// if the dish is edited later.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserEmail string             `bson:"userEmail"     json:"userEmail"`
	DishID    primitive.ObjectID `bson:"dishId"        json:"dishId"`
	Name      string             `bson:"name"          json:"name"`
	Image     string             `bson:"image"         json:"image"`
	Price     float64            `bson:"price"         json:"price"`
	Quantity  int                `bson:"quantity"      json:"quantity"`
}

package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Dish is one menu item. Independent of the payment flow; CRUD only.
type Dish struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name"          json:"name"`
	Category string             `bson:"category"      json:"category"`
	Price    float64            `bson:"price"         json:"price"`
	Recipe   string             `bson:"recipe"        json:"recipe"`
	Image    string             `bson:"image"         json:"image"`
}

// Review is customer feedback shown on the storefront.
type Review struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name    string             `bson:"name"          json:"name"`
	Details string             `bson:"details"       json:"details"`
	Rating  float64            `bson:"rating"        json:"rating"`
}

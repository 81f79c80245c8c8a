package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. A user holds exactly one role at any time.
const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

// User is created on first sign-in if absent; its role is only ever mutated
// by an admin action.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name"          json:"name"`
	Email     string             `bson:"email"         json:"email"`
	Role      string             `bson:"role"          json:"role"`
	CreatedAt time.Time          `bson:"createdAt"     json:"createdAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name         string              `json:"name" bson:"name"`
	Email        string              `json:"email" bson:"email"`
	PasswordHash string              `json:"-" bson:"passwordHash"`
	Role         Role                `json:"role" bson:"role"`
	Supplier     *primitive.ObjectID `json:"supplier,omitempty" bson:"supplier,omitempty"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error

	// GetByID returns a NotFoundError when no user matches.
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)

	// GetByEmail returns a NotFoundError when no user matches.
	GetByEmail(ctx context.Context, email string) (*User, error)

	Count(ctx context.Context) (int64, error)
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type CartItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	CartItems []CartItem         `bson:"cartItems" json:"cartItems"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

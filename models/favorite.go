package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Favorite holds one user's favorite products. One document per user,
// products is a set (no duplicates).
type Favorite struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID   primitive.ObjectID   `bson:"userId" json:"userId"`
	Products []primitive.ObjectID `bson:"products" json:"products"`
}

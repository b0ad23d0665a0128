package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Coupon struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Code               string             `bson:"code" json:"code"`
	DiscountPercentage int64              `bson:"discountPercentage" json:"discountPercentage"`
	ExpirationDate     time.Time          `bson:"expirationDate" json:"expirationDate"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	IsActive           bool               `bson:"isActive" json:"isActive"`
}

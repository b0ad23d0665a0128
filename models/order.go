package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentMethodCard = "card"
	PaymentMethodCOD  = "cod"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"

	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusOnTheWay  = "on-the-way"
	OrderStatusDelivered = "delivered"
)

// OrderStatuses is the full fulfillment state set, in workflow order.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusShipped,
	OrderStatusOnTheWay,
	OrderStatusDelivered,
}

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
	// Price is the unit price in dollars snapshotted at order time, it does
	// not follow later catalog changes.
	Price float64 `bson:"price" json:"price"`
}

type ShippingAddress struct {
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
	Phone      string `bson:"phone" json:"phone"`
	IsDefault  bool   `bson:"isDefault" json:"isDefault"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID          primitive.ObjectID `bson:"user" json:"user"`
	Products        []OrderItem        `bson:"products" json:"products"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	ShippingAddress *ShippingAddress   `bson:"shippingAddress,omitempty" json:"shippingAddress,omitempty"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	Status          string             `bson:"status" json:"status"`
	StripeSessionID string             `bson:"stripeSessionId,omitempty" json:"stripeSessionId,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// IsValidOrderStatus reports whether status belongs to the fulfillment state
// set. Membership is the only server-side check, staff may skip states or move
// an order backwards.
func IsValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// AdvanceFulfillment moves the order to the target fulfillment status and
// applies the cash reconciliation rule: a cash-on-delivery order that reaches
// delivered has been paid in cash, so its payment status flips to paid unless
// it already was.
func (o *Order) AdvanceFulfillment(target string) error {
	if !IsValidOrderStatus(target) {
		return fmt.Errorf("invalid order status %q", target)
	}

	o.Status = target
	if target == OrderStatusDelivered &&
		o.PaymentMethod == PaymentMethodCOD &&
		o.PaymentStatus != PaymentStatusPaid {
		o.PaymentStatus = PaymentStatusPaid
	}
	return nil
}

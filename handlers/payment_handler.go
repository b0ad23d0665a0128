package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/events"
	"storefront/middleware"
	"storefront/models"
	"storefront/payment"
)

type checkoutRequest struct {
	Products        []CheckoutProduct       `json:"products"`
	CouponCode      string                  `json:"couponCode"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress"`
}

// CreateCheckoutSessionHandler builds a provider checkout session for a card
// payment. No order is created here, the session metadata carries everything
// needed to create one once the provider confirms payment.
func CreateCheckoutSessionHandler(c *gin.Context, db *mongo.Database, provider payment.Provider, clientURL string) {
	user, ok := middleware.RequestUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated. Please login first.",
		})
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	if len(req.Products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid or empty products array",
		})
		return
	}

	totalCents := CartTotalCents(req.Products)

	var discountPercentage int64
	if req.CouponCode != "" {
		coupon, err := findActiveCoupon(c.Request.Context(), db, user.ID, req.CouponCode)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error processing checkout",
				"error":   err.Error(),
			})
			return
		}
		if coupon != nil {
			discountPercentage = coupon.DiscountPercentage
			totalCents = ApplyDiscountCents(totalCents, discountPercentage)
		}
	}

	cartMetadata, err := encodeCartMetadata(req.Products)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error processing checkout",
			"error":   err.Error(),
		})
		return
	}
	addressMetadata, err := encodeShippingAddress(req.ShippingAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error processing checkout",
			"error":   err.Error(),
		})
		return
	}

	lineItems := make([]payment.LineItem, 0, len(req.Products))
	for _, product := range req.Products {
		quantity := product.Quantity
		if quantity < 1 {
			quantity = 1
		}
		lineItems = append(lineItems, payment.LineItem{
			Name:       product.Name,
			Image:      product.Image,
			UnitAmount: UnitAmountCents(product.Price),
			Quantity:   quantity,
		})
	}

	session, err := provider.CreateCheckoutSession(c.Request.Context(), payment.SessionParams{
		LineItems:          lineItems,
		DiscountPercentage: discountPercentage,
		SuccessURL:         clientURL + "/purchase-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:          clientURL + "/purchase-cancel",
		Metadata: map[string]string{
			"userId":          user.ID.Hex(),
			"couponCode":      req.CouponCode,
			"products":        cartMetadata,
			"shippingAddress": addressMetadata,
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error processing checkout",
			"error":   err.Error(),
		})
		return
	}

	log.Printf("checkout session created: %s", session.ID)

	if totalCents >= rewardThresholdCents {
		if err := issueRewardCoupon(c.Request.Context(), db, user.ID); err != nil {
			// Reward issuance is not transactional with checkout, a failure
			// here skips the reward and nothing else.
			log.Printf("failed to issue reward coupon for user %s: %v", user.ID.Hex(), err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"url": session.URL,
	})
}

// CreateCodOrderHandler places a cash-on-delivery order. Unlike the card
// path this creates the order immediately and redeems the coupon
// synchronously, there is no later confirmation to wait for.
func CreateCodOrderHandler(c *gin.Context, db *mongo.Database, publisher *events.Publisher) {
	user, ok := middleware.RequestUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated. Please login first.",
		})
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	if len(req.Products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid or empty products array",
		})
		return
	}

	totalCents := CartTotalCents(req.Products)

	if req.CouponCode != "" {
		coupon, err := redeemCoupon(c.Request.Context(), db, user.ID, req.CouponCode)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error creating COD order",
				"error":   err.Error(),
			})
			return
		}
		if coupon != nil {
			totalCents = ApplyDiscountCents(totalCents, coupon.DiscountPercentage)
		}
	}

	orderItems, err := orderItemsFromCheckout(req.Products)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid product id in cart",
			"error":   err.Error(),
		})
		return
	}

	order := models.Order{
		UserID:          user.ID,
		Products:        orderItems,
		TotalAmount:     CentsToDollars(totalCents),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   models.PaymentMethodCOD,
		PaymentStatus:   models.PaymentStatusPending,
		Status:          models.OrderStatusPending,
		CreatedAt:       time.Now(),
	}

	result, err := db.Collection("orders").InsertOne(c.Request.Context(), order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error creating COD order",
			"error":   err.Error(),
		})
		return
	}
	orderID := result.InsertedID.(primitive.ObjectID)
	order.ID = orderID

	if totalCents >= rewardThresholdCents {
		if err := issueRewardCoupon(c.Request.Context(), db, user.ID); err != nil {
			log.Printf("failed to issue reward coupon for user %s: %v", user.ID.Hex(), err)
		}
	}

	publisher.Publish(c.Request.Context(), events.TopicOrderCreated, orderID.Hex(), order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orderId": orderID.Hex(),
	})
}

// CheckoutSuccessHandler turns a completed provider session into an order.
// This is the only path that creates a card-paid order, and the total is
// taken from the provider's captured amount rather than recomputed, so a
// tampered client cannot change what was actually charged.
func CheckoutSuccessHandler(c *gin.Context, db *mongo.Database, provider payment.Provider, publisher *events.Publisher) {
	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	session, err := provider.RetrieveCheckoutSession(c.Request.Context(), req.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error processing successful checkout",
			"error":   err.Error(),
		})
		return
	}

	if session.PaymentStatus != payment.PaymentStatusPaid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Payment not completed",
		})
		return
	}

	// A confirmation can arrive more than once for the same session, the
	// existing order is the answer both times.
	if existing, err := findOrderBySession(c.Request.Context(), db, session.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error processing successful checkout",
			"error":   err.Error(),
		})
		return
	} else if existing != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Order already recorded for this session.",
			"orderId": existing.ID.Hex(),
		})
		return
	}

	userID, err := primitive.ObjectIDFromHex(session.Metadata["userId"])
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error processing successful checkout",
			"error":   "invalid user id in session metadata",
		})
		return
	}

	if couponCode := session.Metadata["couponCode"]; couponCode != "" {
		_, err := db.Collection("coupons").UpdateOne(
			c.Request.Context(),
			bson.M{"code": couponCode, "userId": userID},
			bson.M{"$set": bson.M{"isActive": false}},
		)
		if err != nil {
			log.Printf("failed to deactivate coupon %s for user %s: %v", couponCode, userID.Hex(), err)
		}
	}

	cartItems, err := decodeCartMetadata(session.Metadata["products"])
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error processing successful checkout",
			"error":   err.Error(),
		})
		return
	}

	orderItems := make([]models.OrderItem, 0, len(cartItems))
	for _, item := range cartItems {
		productID, err := primitive.ObjectIDFromHex(item.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error processing successful checkout",
				"error":   "invalid product id in session metadata",
			})
			return
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	shippingAddress, err := decodeShippingAddress(session.Metadata["shippingAddress"])
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error processing successful checkout",
			"error":   err.Error(),
		})
		return
	}

	order := models.Order{
		UserID:          userID,
		Products:        orderItems,
		TotalAmount:     CentsToDollars(session.AmountTotal),
		ShippingAddress: shippingAddress,
		PaymentMethod:   models.PaymentMethodCard,
		PaymentStatus:   models.PaymentStatusPaid,
		Status:          models.OrderStatusPending,
		StripeSessionID: session.ID,
		CreatedAt:       time.Now(),
	}

	result, err := db.Collection("orders").InsertOne(c.Request.Context(), order)
	if err != nil {
		// Two confirmations racing past the lookup above land here, the
		// unique index keeps one insert and the other returns the winner.
		if mongo.IsDuplicateKeyError(err) {
			if existing, findErr := findOrderBySession(c.Request.Context(), db, session.ID); findErr == nil && existing != nil {
				c.JSON(http.StatusOK, gin.H{
					"success": true,
					"message": "Order already recorded for this session.",
					"orderId": existing.ID.Hex(),
				})
				return
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error processing successful checkout",
			"error":   err.Error(),
		})
		return
	}
	orderID := result.InsertedID.(primitive.ObjectID)
	order.ID = orderID

	publisher.Publish(c.Request.Context(), events.TopicOrderCreated, orderID.Hex(), order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment successful, order created.",
		"orderId": orderID.Hex(),
	})
}

func orderItemsFromCheckout(products []CheckoutProduct) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(products))
	for _, product := range products {
		productID, err := primitive.ObjectIDFromHex(product.ID)
		if err != nil {
			return nil, err
		}
		quantity := product.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, models.OrderItem{
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
		})
	}
	return items, nil
}

func findOrderBySession(ctx context.Context, db *mongo.Database, sessionID string) (*models.Order, error) {
	var order models.Order
	err := db.Collection("orders").
		FindOne(ctx, bson.M{"stripeSessionId": sessionID}).
		Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// findActiveCoupon looks up an active coupon owned by the user without
// redeeming it. The card path uses this, redemption happens on confirmation.
func findActiveCoupon(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := db.Collection("coupons").
		FindOne(ctx, bson.M{"code": code, "userId": userID, "isActive": true}).
		Decode(&coupon)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// redeemCoupon atomically deactivates an active coupon owned by the user and
// returns it. The isActive filter makes two concurrent redemptions of the
// same coupon resolve to a single winner.
func redeemCoupon(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := db.Collection("coupons").FindOneAndUpdate(
		ctx,
		bson.M{"code": code, "userId": userID, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false}},
	).Decode(&coupon)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// issueRewardCoupon grants the 10% reward coupon, replacing whatever coupon
// the user held before. The upsert keyed by userId keeps "at most one coupon
// per user" a single atomic write instead of a delete-then-create pair.
func issueRewardCoupon(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) error {
	code, err := NewRewardCouponCode()
	if err != nil {
		return err
	}

	coupon := models.Coupon{
		Code:               code,
		DiscountPercentage: rewardDiscountPct,
		ExpirationDate:     time.Now().Add(rewardValidDays * 24 * time.Hour),
		UserID:             userID,
		IsActive:           true,
	}

	_, err = db.Collection("coupons").ReplaceOne(
		ctx,
		bson.M{"userId": userID},
		coupon,
		options.Replace().SetUpsert(true),
	)
	return err
}

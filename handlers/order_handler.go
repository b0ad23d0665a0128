package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/events"
	"storefront/middleware"
	"storefront/models"
)

// productsByID loads the products referenced by the given orders so line
// items can be served with display fields joined in.
func productsByID(ctx context.Context, db *mongo.Database, orders []models.Order) (map[primitive.ObjectID]models.Product, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, order := range orders {
		for _, item := range order.Products {
			idSet[item.ProductID] = struct{}{}
		}
	}

	products := make(map[primitive.ObjectID]models.Product, len(idSet))
	if len(idSet) == 0 {
		return products, nil
	}

	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var found []models.Product
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	for _, product := range found {
		products[product.ID] = product
	}

	return products, nil
}

func orderResponse(order models.Order, products map[primitive.ObjectID]models.Product) gin.H {
	items := make([]gin.H, 0, len(order.Products))
	for _, item := range order.Products {
		entry := gin.H{
			"quantity": item.Quantity,
			"price":    item.Price,
		}
		if product, ok := products[item.ProductID]; ok {
			entry["product"] = gin.H{
				"_id":   product.ID,
				"name":  product.Name,
				"price": product.Price,
				"image": product.Image,
			}
		} else {
			// The product may have been removed from the catalog since the
			// order was placed, the snapshot still stands.
			entry["product"] = gin.H{"_id": item.ProductID}
		}
		items = append(items, entry)
	}

	response := gin.H{
		"_id":             order.ID,
		"user":            order.UserID,
		"products":        items,
		"totalAmount":     order.TotalAmount,
		"shippingAddress": order.ShippingAddress,
		"paymentMethod":   order.PaymentMethod,
		"paymentStatus":   order.PaymentStatus,
		"status":          order.Status,
		"createdAt":       order.CreatedAt,
	}
	if order.StripeSessionID != "" {
		response["stripeSessionId"] = order.StripeSessionID
	}
	return response
}

// GetMyOrdersHandler lists the requester's orders, newest first.
func GetMyOrdersHandler(c *gin.Context, db *mongo.Database) {
	user, ok := middleware.RequestUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Unauthorized - please login first",
		})
		return
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.Collection("orders").Find(c.Request.Context(), bson.M{"user": user.ID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch orders",
			"error":   err.Error(),
		})
		return
	}

	var orders []models.Order
	if err := cursor.All(c.Request.Context(), &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch orders",
			"error":   err.Error(),
		})
		return
	}

	products, err := productsByID(c.Request.Context(), db, orders)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch orders",
			"error":   err.Error(),
		})
		return
	}

	response := make([]gin.H, 0, len(orders))
	for _, order := range orders {
		response = append(response, orderResponse(order, products))
	}

	c.JSON(http.StatusOK, response)
}

// GetAllOrdersHandler lists every order for staff, newest first, with the
// owning user's name and email joined in.
func GetAllOrdersHandler(c *gin.Context, db *mongo.Database) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.Collection("orders").Find(c.Request.Context(), bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch orders",
			"error":   err.Error(),
		})
		return
	}

	var orders []models.Order
	if err := cursor.All(c.Request.Context(), &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch orders",
			"error":   err.Error(),
		})
		return
	}

	products, err := productsByID(c.Request.Context(), db, orders)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch orders",
			"error":   err.Error(),
		})
		return
	}

	userIDSet := make(map[primitive.ObjectID]struct{})
	for _, order := range orders {
		userIDSet[order.UserID] = struct{}{}
	}
	userIDs := make([]primitive.ObjectID, 0, len(userIDSet))
	for id := range userIDSet {
		userIDs = append(userIDs, id)
	}

	users := make(map[primitive.ObjectID]models.User, len(userIDs))
	if len(userIDs) > 0 {
		userCursor, err := db.Collection("users").Find(c.Request.Context(), bson.M{"_id": bson.M{"$in": userIDs}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Failed to fetch orders",
				"error":   err.Error(),
			})
			return
		}
		var found []models.User
		if err := userCursor.All(c.Request.Context(), &found); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Failed to fetch orders",
				"error":   err.Error(),
			})
			return
		}
		for _, user := range found {
			users[user.ID] = user
		}
	}

	response := make([]gin.H, 0, len(orders))
	for _, order := range orders {
		entry := orderResponse(order, products)
		if user, ok := users[order.UserID]; ok {
			entry["user"] = gin.H{
				"_id":   user.ID,
				"name":  user.Name,
				"email": user.Email,
			}
		}
		response = append(response, entry)
	}

	c.JSON(http.StatusOK, response)
}

// UpdateOrderStatusHandler moves an order through the fulfillment workflow.
// The target status only has to belong to the fixed state set, staff may
// skip ahead or move an order back.
func UpdateOrderStatusHandler(c *gin.Context, db *mongo.Database, publisher *events.Publisher) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid order id",
		})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid status",
			"error":   err.Error(),
		})
		return
	}

	if !models.IsValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid status",
		})
		return
	}

	var order models.Order
	err = db.Collection("orders").
		FindOne(c.Request.Context(), bson.M{"_id": orderID}).
		Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Order not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to update order",
			"error":   err.Error(),
		})
		return
	}

	if err := order.AdvanceFulfillment(req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid status",
		})
		return
	}

	_, err = db.Collection("orders").UpdateOne(
		c.Request.Context(),
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{
			"status":        order.Status,
			"paymentStatus": order.PaymentStatus,
		}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to update order",
			"error":   err.Error(),
		})
		return
	}

	publisher.Publish(c.Request.Context(), events.TopicOrderStatusUpdated, orderID.Hex(), order)

	products, err := productsByID(c.Request.Context(), db, []models.Order{order})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to update order",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, orderResponse(order, products))
}

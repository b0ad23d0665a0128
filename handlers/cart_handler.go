package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/middleware"
	"storefront/models"
)

// GetCartHandler returns the user's cart items joined with current product
// display fields. Prices here are live catalog prices, snapshots only happen
// at order time.
func GetCartHandler(c *gin.Context, db *mongo.Database) {
	user, ok := middleware.RequestUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Unauthorized - please login first",
		})
		return
	}

	if len(user.CartItems) == 0 {
		c.JSON(http.StatusOK, []gin.H{})
		return
	}

	productIDs := make([]primitive.ObjectID, 0, len(user.CartItems))
	quantities := make(map[primitive.ObjectID]int64, len(user.CartItems))
	for _, item := range user.CartItems {
		productIDs = append(productIDs, item.ProductID)
		quantities[item.ProductID] = item.Quantity
	}

	cursor, err := db.Collection("products").Find(
		c.Request.Context(),
		bson.M{"_id": bson.M{"$in": productIDs}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch cart",
			"error":   err.Error(),
		})
		return
	}

	var products []models.Product
	if err := cursor.All(c.Request.Context(), &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch cart",
			"error":   err.Error(),
		})
		return
	}

	cartItems := make([]gin.H, 0, len(products))
	for _, product := range products {
		cartItems = append(cartItems, gin.H{
			"_id":         product.ID,
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"image":       product.Image,
			"category":    product.Category,
			"quantity":    quantities[product.ID],
		})
	}

	c.JSON(http.StatusOK, cartItems)
}

func AddToCartHandler(c *gin.Context, db *mongo.Database) {
	user, ok := middleware.RequestUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Unauthorized - please login first",
		})
		return
	}

	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Product ID is required",
			"error":   err.Error(),
		})
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid product id",
		})
		return
	}

	users := db.Collection("users")

	// Bump the quantity when the product is already in the cart, otherwise
	// append a new row.
	result, err := users.UpdateOne(
		c.Request.Context(),
		bson.M{"_id": user.ID, "cartItems.product": productID},
		bson.M{"$inc": bson.M{"cartItems.$.quantity": 1}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to add to cart",
			"error":   err.Error(),
		})
		return
	}

	if result.MatchedCount == 0 {
		_, err = users.UpdateOne(
			c.Request.Context(),
			bson.M{"_id": user.ID},
			bson.M{"$push": bson.M{"cartItems": models.CartItem{ProductID: productID, Quantity: 1}}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Failed to add to cart",
				"error":   err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product added to cart",
	})
}

// RemoveFromCartHandler removes one product from the cart, or empties the
// cart entirely when no product id is given.
func RemoveFromCartHandler(c *gin.Context, db *mongo.Database) {
	user, ok := middleware.RequestUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Unauthorized - please login first",
		})
		return
	}

	var req struct {
		ProductID string `json:"productId"`
	}
	// DELETE may come without a body at all.
	_ = c.ShouldBindJSON(&req)

	users := db.Collection("users")

	if req.ProductID == "" {
		_, err := users.UpdateOne(
			c.Request.Context(),
			bson.M{"_id": user.ID},
			bson.M{"$set": bson.M{"cartItems": []models.CartItem{}}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Failed to clear cart",
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Cart cleared",
		})
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid product id",
		})
		return
	}

	_, err = users.UpdateOne(
		c.Request.Context(),
		bson.M{"_id": user.ID},
		bson.M{"$pull": bson.M{"cartItems": bson.M{"product": productID}}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to remove from cart",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed from cart",
	})
}

func UpdateCartQuantityHandler(c *gin.Context, db *mongo.Database) {
	user, ok := middleware.RequestUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Unauthorized - please login first",
		})
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid product id",
		})
		return
	}

	var req struct {
		Quantity *int64 `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Quantity is required",
			"error":   err.Error(),
		})
		return
	}

	quantity := *req.Quantity
	if quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Quantity cannot be negative",
		})
		return
	}

	users := db.Collection("users")

	if quantity == 0 {
		_, err = users.UpdateOne(
			c.Request.Context(),
			bson.M{"_id": user.ID},
			bson.M{"$pull": bson.M{"cartItems": bson.M{"product": productID}}},
		)
	} else {
		_, err = users.UpdateOne(
			c.Request.Context(),
			bson.M{"_id": user.ID, "cartItems.product": productID},
			bson.M{"$set": bson.M{"cartItems.$.quantity": quantity}},
		)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to update cart",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
	})
}

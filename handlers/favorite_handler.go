package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/middleware"
	"storefront/models"
)

// GetFavoritesHandler returns the user's favorite products. No favorites
// document yet means an empty list, not an error.
func GetFavoritesHandler(c *gin.Context, db *mongo.Database) {
	user, ok := middleware.RequestUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Unauthorized - please login first",
		})
		return
	}

	var favorite models.Favorite
	err := db.Collection("favorites").
		FindOne(c.Request.Context(), bson.M{"userId": user.ID}).
		Decode(&favorite)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusOK, []models.Product{})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error fetching favorites",
			"error":   err.Error(),
		})
		return
	}

	products := []models.Product{}
	if len(favorite.Products) > 0 {
		cursor, err := db.Collection("products").Find(
			c.Request.Context(),
			bson.M{"_id": bson.M{"$in": favorite.Products}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error fetching favorites",
				"error":   err.Error(),
			})
			return
		}
		if err := cursor.All(c.Request.Context(), &products); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error fetching favorites",
				"error":   err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, products)
}

// AddToFavoritesHandler adds a product to the user's favorites. $addToSet
// makes a repeat add a no-op, the upsert creates the document on first use.
func AddToFavoritesHandler(c *gin.Context, db *mongo.Database) {
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

	_, err = db.Collection("favorites").UpdateOne(
		c.Request.Context(),
		bson.M{"userId": user.ID},
		bson.M{"$addToSet": bson.M{"products": productID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error adding to favorites",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product added to favorites",
	})
}

// RemoveFromFavoritesHandler removes a product from the user's favorites.
// Removing a product that is not favorited succeeds as a no-op.
func RemoveFromFavoritesHandler(c *gin.Context, db *mongo.Database) {
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

	result, err := db.Collection("favorites").UpdateOne(
		c.Request.Context(),
		bson.M{"userId": user.ID},
		bson.M{"$pull": bson.M{"products": productID}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error removing from favorites",
			"error":   err.Error(),
		})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Favorites not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed from favorites",
	})
}

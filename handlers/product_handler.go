package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/models"
)

const featuredProductsKey = "featured_products"

func GetAllProductsHandler(c *gin.Context, db *mongo.Database) {
	cursor, err := db.Collection("products").Find(c.Request.Context(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch products",
			"error":   err.Error(),
		})
		return
	}

	products := []models.Product{}
	if err := cursor.All(c.Request.Context(), &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch products",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
	})
}

// GetFeaturedProductsHandler serves the featured list from Redis when it can,
// falling back to Mongo and repopulating the cache. Cache trouble only costs
// a database read, never the request.
func GetFeaturedProductsHandler(c *gin.Context, db *mongo.Database, rdb *redis.Client) {
	cached, err := rdb.Get(c.Request.Context(), featuredProductsKey).Result()
	if err == nil {
		var products []models.Product
		if err := json.Unmarshal([]byte(cached), &products); err == nil {
			c.JSON(http.StatusOK, products)
			return
		}
		log.Printf("failed to decode cached featured products: %v", err)
	} else if err != redis.Nil {
		log.Printf("featured products cache unavailable: %v", err)
	}

	products, err := fetchAndCacheFeaturedProducts(c.Request.Context(), db, rdb)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch featured products",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, products)
}

func fetchAndCacheFeaturedProducts(ctx context.Context, db *mongo.Database, rdb *redis.Client) ([]models.Product, error) {
	cursor, err := db.Collection("products").Find(ctx, bson.M{"isFeatured": true})
	if err != nil {
		return nil, err
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(products)
	if err != nil {
		return products, nil
	}
	if err := rdb.Set(ctx, featuredProductsKey, encoded, 0).Err(); err != nil {
		log.Printf("failed to cache featured products: %v", err)
	}

	return products, nil
}

func GetProductsByCategoryHandler(c *gin.Context, db *mongo.Database) {
	category := c.Param("category")

	cursor, err := db.Collection("products").Find(c.Request.Context(), bson.M{"category": category})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch products",
			"error":   err.Error(),
		})
		return
	}

	products := []models.Product{}
	if err := cursor.All(c.Request.Context(), &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch products",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
	})
}

// GetRecommendedProductsHandler returns a small random sample for the
// "people also bought" strip.
func GetRecommendedProductsHandler(c *gin.Context, db *mongo.Database) {
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.M{"size": 4}}},
		{{Key: "$project", Value: bson.M{
			"_id":         1,
			"name":        1,
			"description": 1,
			"image":       1,
			"price":       1,
		}}},
	}

	cursor, err := db.Collection("products").Aggregate(c.Request.Context(), pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch recommended products",
			"error":   err.Error(),
		})
		return
	}

	products := []models.Product{}
	if err := cursor.All(c.Request.Context(), &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch recommended products",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, products)
}

func CreateProductHandler(c *gin.Context, db *mongo.Database, rdb *redis.Client) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		Price       float64 `json:"price" binding:"required,gt=0"`
		Image       string  `json:"image"`
		Category    string  `json:"category" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
		CreatedAt:   time.Now(),
	}

	result, err := db.Collection("products").InsertOne(c.Request.Context(), product)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to create product",
			"error":   err.Error(),
		})
		return
	}
	product.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, product)
}

func DeleteProductHandler(c *gin.Context, db *mongo.Database, rdb *redis.Client) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid product id",
		})
		return
	}

	result, err := db.Collection("products").DeleteOne(c.Request.Context(), bson.M{"_id": productID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to delete product",
			"error":   err.Error(),
		})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Product not found",
		})
		return
	}

	// Deleted products must not linger on the landing page.
	if _, err := fetchAndCacheFeaturedProducts(c.Request.Context(), db, rdb); err != nil {
		log.Printf("failed to refresh featured products cache: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

func ToggleFeaturedProductHandler(c *gin.Context, db *mongo.Database, rdb *redis.Client) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid product id",
		})
		return
	}

	var product models.Product
	err = db.Collection("products").
		FindOne(c.Request.Context(), bson.M{"_id": productID}).
		Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Product not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch product",
			"error":   err.Error(),
		})
		return
	}

	product.IsFeatured = !product.IsFeatured
	_, err = db.Collection("products").UpdateOne(
		c.Request.Context(),
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"isFeatured": product.IsFeatured}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to update product",
			"error":   err.Error(),
		})
		return
	}

	if _, err := fetchAndCacheFeaturedProducts(c.Request.Context(), db, rdb); err != nil {
		log.Printf("failed to refresh featured products cache: %v", err)
	}

	c.JSON(http.StatusOK, product)
}

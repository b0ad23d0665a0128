package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/middleware"
	"storefront/models"
)

// GetCouponHandler returns the requester's active coupon, or null when they
// hold none.
func GetCouponHandler(c *gin.Context, db *mongo.Database) {
	user, ok := middleware.RequestUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Unauthorized - please login first",
		})
		return
	}

	var coupon models.Coupon
	err := db.Collection("coupons").
		FindOne(c.Request.Context(), bson.M{"userId": user.ID, "isActive": true}).
		Decode(&coupon)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusOK, nil)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch coupon",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, coupon)
}

// ValidateCouponHandler checks a code against the requester's coupon. An
// expired coupon is deactivated on the spot.
func ValidateCouponHandler(c *gin.Context, db *mongo.Database) {
	user, ok := middleware.RequestUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Unauthorized - please login first",
		})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Coupon code is required",
			"error":   err.Error(),
		})
		return
	}

	var coupon models.Coupon
	err := db.Collection("coupons").
		FindOne(c.Request.Context(), bson.M{"code": req.Code, "userId": user.ID, "isActive": true}).
		Decode(&coupon)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Coupon not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to validate coupon",
			"error":   err.Error(),
		})
		return
	}

	if time.Now().After(coupon.ExpirationDate) {
		_, err := db.Collection("coupons").UpdateOne(
			c.Request.Context(),
			bson.M{"_id": coupon.ID},
			bson.M{"$set": bson.M{"isActive": false}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Failed to validate coupon",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Coupon expired",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "Coupon is valid",
		"code":               coupon.Code,
		"discountPercentage": coupon.DiscountPercentage,
	})
}

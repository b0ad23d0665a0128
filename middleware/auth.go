package middleware

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/jwt"
	"storefront/models"
)

// accessToken reads the credential from the accessToken cookie, falling back
// to a bearer Authorization header for non-browser clients.
func accessToken(c *gin.Context) string {
	if cookie, err := c.Request.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.GetHeader("Authorization")
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// AuthMiddleware resolves the requesting user from the access token and puts
// it on the context. Requests without a valid token pass through anonymous,
// CheckLoginMiddleware is the gate that rejects them.
func AuthMiddleware(db *mongo.Database, issuer *jwt.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			c.Next()
			return
		}

		userID, err := issuer.VerifyAccessToken(token)
		if err != nil {
			c.Next()
			return
		}

		objectID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			c.Next()
			return
		}

		var user models.User
		err = db.Collection("users").
			FindOne(c.Request.Context(), bson.M{"_id": objectID}).
			Decode(&user)
		if err != nil {
			if err != mongo.ErrNoDocuments {
				log.Printf("failed to load user %s: %v", userID, err)
			}
			c.Next()
			return
		}

		c.Set("User", &user)
		c.Set("UserID", user.ID)
		c.Set("Role", user.Role)
		c.Next()
	}
}

// RequestUser returns the authenticated user set by AuthMiddleware.
func RequestUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("User")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

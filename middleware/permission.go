package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/models"
)

// CheckAdminPermissionMiddleware aborts requests whose user is not an admin.
func CheckAdminPermissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("Role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized - please login first",
			})
			c.Abort()
			return
		}
		if role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"message": "Access denied - admin only",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

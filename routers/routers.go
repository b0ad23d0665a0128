package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/events"
	"storefront/handlers"
	"storefront/jwt"
	"storefront/middleware"
	"storefront/payment"
)

func SetupRouters(db *mongo.Database, rdb *redis.Client, issuer *jwt.Issuer, provider payment.Provider, publisher *events.Publisher, clientURL string) *gin.Engine {
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", clientURL)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Next()
	})
	err := router.SetTrustedProxies(nil)
	if err != nil {
		return nil
	}

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.AuthMiddleware(db, issuer))
	{
		auth := router.Group("/api/auth")
		{
			auth.POST("/signup", func(c *gin.Context) {
				handlers.SignupHandler(c, db, rdb, issuer)
			})
			auth.POST("/login", func(c *gin.Context) {
				handlers.LoginHandler(c, db, rdb, issuer)
			})
			auth.POST("/logout", func(c *gin.Context) {
				handlers.LogoutHandler(c, rdb, issuer)
			})
			auth.POST("/refresh-token", func(c *gin.Context) {
				handlers.RefreshTokenHandler(c, rdb, issuer)
			})
			auth.GET("/profile", middleware.CheckLoginMiddleware(), func(c *gin.Context) {
				handlers.GetProfileHandler(c)
			})
		}

		products := router.Group("/api/products")
		{
			products.GET("/featured", func(c *gin.Context) {
				handlers.GetFeaturedProductsHandler(c, db, rdb)
			})
			products.GET("/category/:category", func(c *gin.Context) {
				handlers.GetProductsByCategoryHandler(c, db)
			})
			products.GET("/recommendations", func(c *gin.Context) {
				handlers.GetRecommendedProductsHandler(c, db)
			})

			adminProducts := products.Group("")
			adminProducts.Use(middleware.CheckLoginMiddleware(), middleware.CheckAdminPermissionMiddleware())
			{
				adminProducts.GET("", func(c *gin.Context) {
					handlers.GetAllProductsHandler(c, db)
				})
				adminProducts.POST("", func(c *gin.Context) {
					handlers.CreateProductHandler(c, db, rdb)
				})
				adminProducts.PATCH("/:id", func(c *gin.Context) {
					handlers.ToggleFeaturedProductHandler(c, db, rdb)
				})
				adminProducts.DELETE("/:id", func(c *gin.Context) {
					handlers.DeleteProductHandler(c, db, rdb)
				})
			}
		}

		cart := router.Group("/api/cart")
		cart.Use(middleware.CheckLoginMiddleware())
		{
			cart.GET("", func(c *gin.Context) {
				handlers.GetCartHandler(c, db)
			})
			cart.POST("", func(c *gin.Context) {
				handlers.AddToCartHandler(c, db)
			})
			cart.DELETE("", func(c *gin.Context) {
				handlers.RemoveFromCartHandler(c, db)
			})
			cart.PUT("/:id", func(c *gin.Context) {
				handlers.UpdateCartQuantityHandler(c, db)
			})
		}

		coupons := router.Group("/api/coupons")
		coupons.Use(middleware.CheckLoginMiddleware())
		{
			coupons.GET("", func(c *gin.Context) {
				handlers.GetCouponHandler(c, db)
			})
			coupons.POST("/validate", func(c *gin.Context) {
				handlers.ValidateCouponHandler(c, db)
			})
		}

		payments := router.Group("/api/payments")
		{
			payments.POST("/create-checkout-session", middleware.CheckLoginMiddleware(), func(c *gin.Context) {
				handlers.CreateCheckoutSessionHandler(c, db, provider, clientURL)
			})
			payments.POST("/create-cod-order", middleware.CheckLoginMiddleware(), func(c *gin.Context) {
				handlers.CreateCodOrderHandler(c, db, publisher)
			})
			payments.POST("/checkout-success", func(c *gin.Context) {
				handlers.CheckoutSuccessHandler(c, db, provider, publisher)
			})
		}

		orders := router.Group("/api/orders")
		orders.Use(middleware.CheckLoginMiddleware())
		{
			orders.GET("/my-orders", func(c *gin.Context) {
				handlers.GetMyOrdersHandler(c, db)
			})

			adminOrders := orders.Group("")
			adminOrders.Use(middleware.CheckAdminPermissionMiddleware())
			{
				adminOrders.GET("/all-orders", func(c *gin.Context) {
					handlers.GetAllOrdersHandler(c, db)
				})
				adminOrders.PATCH("/:orderId/status", func(c *gin.Context) {
					handlers.UpdateOrderStatusHandler(c, db, publisher)
				})
			}
		}

		favorites := router.Group("/api/favorites")
		favorites.Use(middleware.CheckLoginMiddleware())
		{
			favorites.GET("", func(c *gin.Context) {
				handlers.GetFavoritesHandler(c, db)
			})
			favorites.POST("", func(c *gin.Context) {
				handlers.AddToFavoritesHandler(c, db)
			})
			favorites.DELETE("", func(c *gin.Context) {
				handlers.RemoveFromFavoritesHandler(c, db)
			})
		}

		analytics := router.Group("/api/analytics")
		analytics.Use(middleware.CheckLoginMiddleware(), middleware.CheckAdminPermissionMiddleware())
		{
			analytics.GET("", func(c *gin.Context) {
				handlers.GetAnalyticsHandler(c, db)
			})
		}
	}

	return router
}

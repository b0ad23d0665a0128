package main

import (
	"context"
	"log"

	"storefront/config"
	"storefront/events"
	"storefront/jwt"
	"storefront/payment"
	"storefront/routers"
)

func main() {
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	mongoClient, db, err := config.SetupMongoConnection(cfg)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := config.SetupRedisConnection(cfg)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	issuer := jwt.NewIssuer(cfg.Token.AccessSecret, cfg.Token.RefreshSecret)
	provider := payment.NewStripeProvider(cfg.Stripe.SecretKey)

	publisher := events.NewPublisher(cfg.Kafka.Brokers)
	defer publisher.Close()

	router := routers.SetupRouters(db, rdb, issuer, provider, publisher, cfg.Server.ClientURL)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

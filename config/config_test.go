package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "5000"
  clientUrl: "http://localhost:5173"
mongo:
  uri: "mongodb://localhost:27017"
  database: "storefront"
redis:
  addr: "localhost:6379"
  database: 2
stripe:
  secretKey: "sk_test_abc"
token:
  accessSecret: "access"
  refreshSecret: "refresh"
kafka:
  brokers:
    - "localhost:9092"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "http://localhost:5173", cfg.Server.ClientURL)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "storefront", cfg.Mongo.Database)
	assert.Equal(t, 2, cfg.Redis.Database)
	assert.Equal(t, "sk_test_abc", cfg.Stripe.SecretKey)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "5000"
mongo:
  uri: "mongodb://localhost:27017"
  database: "storefront"
`)

	t.Setenv("PORT", "8080")
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27017")
	t.Setenv("STRIPE_SECRET_KEY", "sk_live_override")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mongodb://db.internal:27017", cfg.Mongo.URI)
	assert.Equal(t, "sk_live_override", cfg.Stripe.SecretKey)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// Startup should fail fast on an unreachable Redis instead of handing back a
// client that errors on first use.
func TestSetupRedisConnectionUnreachable(t *testing.T) {
	cfg := Config{
		Redis: RedisConfig{Addr: "127.0.0.1:1"},
	}

	client, err := SetupRedisConnection(cfg)
	assert.Error(t, err)
	assert.Nil(t, client)
}

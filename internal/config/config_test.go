package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, StoreDynamo, cfg.StoreDriver)
	assert.Equal(t, BusMemory, cfg.EventBus)
	assert.Equal(t, PushLog, cfg.PushProvider)
	assert.Equal(t, "conference_notifications", cfg.DynamoTables.ConferenceNotifications)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DYNAMO_TABLE_USERS", "conf_users")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("EVENT_BUS", "kafka")
	t.Setenv("ALLOWED_ORIGINS", "https://admin.example.com,https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "conf_users", cfg.DynamoTables.Users)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, BusKafka, cfg.EventBus)
	assert.Len(t, cfg.AllowedOrigins, 2)
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	_, err := Load()
	assert.ErrorContains(t, err, "DB_DSN is required")
}

func TestLoad_UnknownPushProvider(t *testing.T) {
	t.Setenv("PUSH_PROVIDER", "pigeon")
	_, err := Load()
	assert.ErrorContains(t, err, "unknown PUSH_PROVIDER")
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "a week")
	_, err := Load()
	assert.ErrorContains(t, err, "parse env")
}

func TestIsProduction(t *testing.T) {
	assert.False(t, (&Config{AppEnv: "development"}).IsProduction())
	assert.True(t, (&Config{AppEnv: "production"}).IsProduction())
}

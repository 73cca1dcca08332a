package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_PATH", "KAFKA_ENABLED", "KAFKA_BROKERS", "DB_MAX_OPEN_CONNS", "SERVER_READ_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "./database/invitations.db", cfg.Database.Path)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Len(t, cfg.Kafka.Topics.All(), 3)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("DATABASE_PATH", "/tmp/rsvp.db")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("DB_MAX_OPEN_CONNS", "8")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "/tmp/rsvp.db", cfg.Database.Path)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 8, cfg.Database.MaxOpenConns)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	t.Setenv("KAFKA_ENABLED", "perhaps")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

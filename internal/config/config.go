package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	// Path is the SQLite database file, or ":memory:".
	Path         string
	BusyTimeout  time.Duration
	MaxOpenConns int
	AutoMigrate  bool
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	TicketCreated        string
	PreferencesSubmitted string
	PreferencesUpdated   string
}

type LogConfig struct {
	Dir     string
	Level   string
	NoColor bool
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", ":8080"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			Path:         getEnv("DATABASE_PATH", "./database/invitations.db"),
			BusyTimeout:  getEnvDuration("DB_BUSY_TIMEOUT", 5*time.Second),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 4),
			AutoMigrate:  getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Topics: TopicConfig{
				TicketCreated:        getEnv("KAFKA_TOPIC_TICKET_CREATED", "rsvp.ticket.created"),
				PreferencesSubmitted: getEnv("KAFKA_TOPIC_PREFERENCES_SUBMITTED", "rsvp.ticket.preferences_submitted"),
				PreferencesUpdated:   getEnv("KAFKA_TOPIC_PREFERENCES_UPDATED", "rsvp.ticket.preferences_updated"),
			},
		},
		Log: LogConfig{
			Dir:     getEnv("LOG_DIR", "logs"),
			Level:   getEnv("LOG_LEVEL", "INFO"),
			NoColor: getEnvBool("LOG_NO_COLOR", false),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}
}

// All returns every configured topic, used to pre-create them on startup.
func (t TopicConfig) All() []string {
	return []string{t.TicketCreated, t.PreferencesSubmitted, t.PreferencesUpdated}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

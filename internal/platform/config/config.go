package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every runtime knob so main stays lean.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Admin    AdminConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// PostgresConfig holds the connection string for the profile and legacy
// credential stores. Empty means in-memory stores.
type PostgresConfig struct {
	URL string
}

// RedisConfig holds connection settings for the session snapshot store.
// Empty URL means the file-backed store is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds broker settings for the audit trail sink.
// Empty brokers means audit events stay in memory.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// AuthConfig carries session token settings.
type AuthConfig struct {
	JWTSigningKey string
	TokenTTL      time.Duration
}

// AdminConfig carries the phone allow-list, comma separated in the
// environment.
type AdminConfig struct {
	Phones []string
}

// FromEnv builds the full configuration from environment variables.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Addr:            envOr("GESHER_ADDR", ":8080"),
			AllowedOrigins:  envList("GESHER_ALLOWED_ORIGINS", []string{"*"}),
			ShutdownTimeout: envDuration("GESHER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("GESHER_POSTGRES_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("GESHER_REDIS_URL"),
			PoolSize:     envInt("GESHER_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("GESHER_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("GESHER_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("GESHER_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("GESHER_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: envList("GESHER_KAFKA_BROKERS", nil),
			Topic:   envOr("GESHER_KAFKA_AUDIT_TOPIC", "gesher.audit.auth"),
		},
		Auth: AuthConfig{
			// Default only suits development; override in production.
			JWTSigningKey: envOr("GESHER_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			TokenTTL:      envDuration("GESHER_TOKEN_TTL", 24*time.Hour),
		},
		Admin: AdminConfig{
			Phones: envList("GESHER_ADMIN_PHONES", nil),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

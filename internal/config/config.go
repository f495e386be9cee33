package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds process-wide configuration. It is loaded once at startup and passed explicitly.
type AppConfig struct {
	DB DBConfig `ignored:"true"`

	JWTSecret string `envconfig:"JWT_SECRET_KEY" required:"true"`
	AdminCode string `envconfig:"ADMIN_CODE" required:"true"`

	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"text"`

	AuthRatePerMinute int `envconfig:"AUTH_RATE_PER_MINUTE" default:"20"`
	AuthRateBurst     int `envconfig:"AUTH_RATE_BURST" default:"5"`

	// Empty means no proxy is trusted and X-Forwarded-For is ignored
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	AuditStream   string `envconfig:"AUDIT_STREAM" default:"gym:audit"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"gym-backend"`
}

// DBConfig holds database connection parameters
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" required:"true"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// DSN builds the PostgreSQL connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Load reads an optional .env file and then the process environment
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found or error loading, relying on environment variables")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := envconfig.Process("", &cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to load DB config: %w", err)
	}
	if cfg.JWTSecret == "" || cfg.AdminCode == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY and ADMIN_CODE must not be empty")
	}
	if cfg.AuthRatePerMinute <= 0 {
		return nil, fmt.Errorf("AUTH_RATE_PER_MINUTE must be positive, got %d", cfg.AuthRatePerMinute)
	}
	return &cfg, nil
}
